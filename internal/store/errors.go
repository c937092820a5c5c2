package store

import (
	"errors"
	"fmt"
)

type NotFoundError struct {
	Kind string
	ID   string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.ID)
}

var (
	ErrUnknownField = errors.New("unknown field")
	ErrFieldValue   = errors.New("invalid field value")
)
