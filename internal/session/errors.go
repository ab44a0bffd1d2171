package session

import (
	"errors"
	"fmt"

	"github.com/google/uuid"

	"bilancio/internal/core"
)

// ErrReassignToSelf rejects deleting a category while reassigning its
// transactions to itself.
var ErrReassignToSelf = errors.New("cannot reassign transactions to the category being deleted")

// NotFoundError reports a reference to an entity missing from the session
// snapshot.
type NotFoundError struct {
	Resource string
	ID       uuid.UUID
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError reports a referential conflict: the entity is still
// referenced by Blocking transactions worth BlockingTotal. The caller is
// expected to offer a remediation path (reassign or delete first).
type ConflictError struct {
	Resource      string
	ID            uuid.UUID
	Blocking      int
	BlockingTotal core.Money
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %s still referenced by %d transactions (total %s)",
		e.Resource, e.ID, e.Blocking, e.BlockingTotal)
}

// PersistenceError wraps a failed atomic commit. When it is returned the
// in-memory snapshot has already been left in (or restored to) its
// pre-mutation state.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}
