// Package pathutils resolves user-supplied filesystem locations for jobber.
package pathutils
