package jobs

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	pruneRemovedMessageConstant = "removed job script"
	logFieldRetentionConstant   = "retention"
)

// PruneReport lists the script artifacts removed by a prune pass.
type PruneReport struct {
	RemovedScripts []string
}

// ArtifactPruner deletes script artifacts older than a retention window.
// It only runs when invoked; scripts are never removed after execution.
type ArtifactPruner struct {
	logger      *zap.Logger
	provisioner *LogPathProvisioner
	clock       Clock
}

// NewArtifactPruner constructs a pruner sweeping the provisioner's history root.
func NewArtifactPruner(logger *zap.Logger, provisioner *LogPathProvisioner, clock Clock) (*ArtifactPruner, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if provisioner == nil {
		return nil, ErrProvisionerNotConfigured
	}
	if clock == nil {
		clock = time.Now
	}
	return &ArtifactPruner{logger: logger, provisioner: provisioner, clock: clock}, nil
}

// Prune removes job-*.sh files under the history root modified before now minus retention.
func (pruner *ArtifactPruner) Prune(retention time.Duration) (PruneReport, error) {
	historyRoot, rootError := pruner.provisioner.HistoryRoot()
	if rootError != nil {
		return PruneReport{}, rootError
	}

	fileSystem := pruner.provisioner.FileSystem()
	cutoff := pruner.clock().Add(-retention)
	report := PruneReport{}

	walkError := afero.Walk(fileSystem, historyRoot, func(path string, info fs.FileInfo, visitError error) error {
		if visitError != nil {
			if errors.Is(visitError, os.ErrNotExist) {
				return nil
			}
			return visitError
		}
		if info.IsDir() || !isScriptArtifact(info.Name()) {
			return nil
		}
		if !info.ModTime().Before(cutoff) {
			return nil
		}
		if removeError := fileSystem.Remove(path); removeError != nil {
			return removeError
		}
		pruner.logger.Debug(pruneRemovedMessageConstant, zap.String(logFieldScriptPathConstant, path), zap.Duration(logFieldRetentionConstant, retention))
		report.RemovedScripts = append(report.RemovedScripts, path)
		return nil
	})
	if walkError != nil {
		return report, walkError
	}
	return report, nil
}

func isScriptArtifact(fileName string) bool {
	return strings.HasPrefix(fileName, scriptFileNamePrefixConstant) && filepath.Ext(fileName) == scriptFileExtensionConstant
}
