package exoscale

import (
	"errors"
)

// Sentinel classes. RealClient wraps provider errors with these so callers
// can use errors.Is without importing the SDK. Classification never looks at
// error text, which carries resource and operation IDs.
var (
	ErrNotFound      = errors.New("resource not found")
	ErrConflict      = errors.New("resource conflict")
	ErrAlreadyExists = errors.New("resource already exists")
	ErrInUse         = errors.New("resource in use")
)

// IsNotFound reports whether err means the resource does not exist.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsConflict reports whether err is a conflict, such as a resource that is
// still locked by another operation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrConflict)
}

// IsAlreadyExists reports whether a create call failed because the name is taken.
func IsAlreadyExists(err error) bool {
	return errors.Is(err, ErrAlreadyExists)
}

// IsInUse reports whether a delete failed because something still references
// the resource. Conflicts count, since a locked resource answers 409.
func IsInUse(err error) bool {
	return errors.Is(err, ErrInUse) || errors.Is(err, ErrConflict)
}
