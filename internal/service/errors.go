package service

import (
	"errors"
	"fmt"

	"github.com/hongminglow/social-api/internal/storage"
)

const (
	EntityUser    = "user"
	EntityThought = "thought"
)

// NotFoundError reports that an id or reference did not resolve to a record.
type NotFoundError struct {
	Entity string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s does not exist", e.Entity)
}

func (e *NotFoundError) Unwrap() error {
	return storage.ErrNotFound
}

// notFound converts storage.ErrNotFound into a NotFoundError for entity and
// leaves every other error as is.
func notFound(err error, entity string) error {
	if errors.Is(err, storage.ErrNotFound) {
		return &NotFoundError{Entity: entity}
	}
	return err
}
