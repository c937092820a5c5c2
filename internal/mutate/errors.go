package mutate

import "errors"

var (
	ErrUnknownSurface = errors.New("unknown surface")
	ErrNoTarget       = errors.New("drop has no target")
	ErrKindMismatch   = errors.New("target is not on the dragged card's surface")
	ErrNotRenameable  = errors.New("kind cannot be renamed")
)
