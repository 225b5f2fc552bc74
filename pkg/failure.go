package finddups

import (
	"errors"
	"io/fs"

	"golang.org/x/sys/unix"
)

// ErrAborted is returned when a run is cancelled before it completes
var ErrAborted = errors.New("operation aborted")

// FailureRecord is a path that could not be read, with the reason why
type FailureRecord struct {
	Path   string `json:"path" yaml:"path"`
	Reason string `json:"reason" yaml:"reason"`
	Err    error  `json:"-" yaml:"-"`
}

// newFailureRecord classifies a read error for path
func newFailureRecord(path string, err error) FailureRecord {
	return FailureRecord{
		Path:   path,
		Reason: classifyReadError(err),
		Err:    err,
	}
}

// classifyReadError maps a read error to the reason shown to the user
func classifyReadError(err error) string {
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return ReasonNotFound
	case errors.Is(err, unix.EISDIR):
		return ReasonIsDirectory
	case errors.Is(err, fs.ErrPermission):
		return ReasonPermission
	}

	var pathErr *fs.PathError
	if errors.As(err, &pathErr) {
		return pathErr.Err.Error()
	}
	return err.Error()
}
