package jobs

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const persistedFilePermissionsConstant = 0o644

// PersistStatus reports the outcome of a persistence request.
type PersistStatus struct {
	Status       bool
	WrittenFiles []string
}

// OutputPersister writes each field of an ExecutionResult to its own file.
type OutputPersister struct {
	fileSystem    afero.Fs
	configuration Configuration
}

// NewOutputPersister constructs a persister. A nil filesystem selects the operating system.
func NewOutputPersister(fileSystem afero.Fs, configuration Configuration) *OutputPersister {
	if fileSystem == nil {
		fileSystem = afero.NewOsFs()
	}
	return &OutputPersister{fileSystem: fileSystem, configuration: configuration.sanitize()}
}

// Persist writes <outputDirectory>/<prefix><field> for every result field, overwriting existing files.
// Nothing is written when job logging is disabled.
func (persister *OutputPersister) Persist(result ExecutionResult, outputDirectory string, prefix string) (PersistStatus, error) {
	if persister.configuration.NoJobLogging {
		return PersistStatus{Status: true}, nil
	}

	status := PersistStatus{Status: true}
	for _, field := range result.Fields() {
		destination := filepath.Join(outputDirectory, prefix+field.Name)
		if writeError := afero.WriteFile(persister.fileSystem, destination, []byte(field.Value), persistedFilePermissionsConstant); writeError != nil {
			return PersistStatus{}, fmt.Errorf(persistWriteErrorTemplateConstant, destination, writeError)
		}
		status.WrittenFiles = append(status.WrittenFiles, destination)
	}
	return status, nil
}
