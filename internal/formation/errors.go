package formation

import (
	"errors"
	"fmt"
)

var (
	ErrIndexOutOfRange = errors.New("formation index out of range")
	ErrDuplicateName   = errors.New("formation name already exists")
	ErrInvalidRecord   = errors.New("invalid formation record")
	ErrPersist         = errors.New("persist formations")
)

// DuplicateNameError is returned by Add and Rename when unique names are
// enforced and the name is taken.
type DuplicateNameError struct {
	Name  string
	Index int // index of the formation already holding Name
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("formation name %q already used at index %d", e.Name, e.Index)
}

func (e *DuplicateNameError) Is(target error) bool { return target == ErrDuplicateName }
