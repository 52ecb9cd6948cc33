package flow

import (
	"errors"
	"fmt"
	"strings"

	"github.com/specialistvlad/celerity/internal/dag"
)

var (
	ErrEmptyName             = errors.New("empty name")
	ErrDuplicateName         = errors.New("duplicate name")
	ErrUnknownReference      = errors.New("unknown reference")
	ErrConflictingCheckpoint = errors.New("conflicting checkpoint declaration")
	ErrMissingBody           = errors.New("missing task body")
	ErrCycle                 = errors.New("cycle detected")
)

// BuildError is a resolution failure. Kind is one of the package sentinels
// and Names lists the tasks and checkpoints involved.
type BuildError struct {
	Kind  error
	Names []string
	Msg   string
}

func (e *BuildError) Error() string {
	if e == nil {
		return ""
	}
	if e.Msg == "" {
		return e.Kind.Error()
	}
	return fmt.Sprintf("%s: %s", e.Kind.Error(), e.Msg)
}

func (e *BuildError) Unwrap() error { return e.Kind }

func buildErrorf(kind error, names []string, format string, args ...any) error {
	return &BuildError{Kind: kind, Names: names, Msg: fmt.Sprintf(format, args...)}
}

func cycleError(path []string) error {
	return &BuildError{Kind: ErrCycle, Names: path, Msg: strings.Join(path, " -> ")}
}

// fromGraphError converts a dag cycle into a BuildError and passes anything else through.
func fromGraphError(err error) error {
	var cycleErr *dag.CycleError
	if errors.As(err, &cycleErr) {
		return cycleError(cycleErr.Path)
	}
	return err
}
