package destroy

import (
	"errors"
	"fmt"
)

// CleanupError accumulates per-target deletion errors.
type CleanupError struct {
	Errors []error
}

func (e *CleanupError) Error() string {
	if len(e.Errors) == 1 {
		return e.Errors[0].Error()
	}
	return fmt.Sprintf("cleanup encountered %d errors: %v", len(e.Errors), e.Errors)
}

func (e *CleanupError) Unwrap() error {
	if len(e.Errors) == 1 {
		return e.Errors[0]
	}
	return errors.Join(e.Errors...)
}

func (e *CleanupError) Add(err error) {
	if err != nil {
		e.Errors = append(e.Errors, err)
	}
}

func (e *CleanupError) HasErrors() bool {
	return len(e.Errors) > 0
}

// ListingError records a resource kind that discovery could not list.
type ListingError struct {
	Kind Kind
	Err  error
}

func (e *ListingError) Error() string {
	return fmt.Sprintf("failed to list %s: %v", e.Kind, e.Err)
}

func (e *ListingError) Unwrap() error {
	return e.Err
}

// optionalListing is true for kinds whose listing may fail without
// aborting a teardown. Clusters and security groups must be listed.
func optionalListing(k Kind) bool {
	switch k {
	case KindDatabase, KindBucket, KindLoadBalancer:
		return true
	}
	return false
}

// splitListingErrors separates tolerated listing failures from the rest.
// The returned error is nil when every failure was tolerated.
func splitListingErrors(err error) ([]*ListingError, error) {
	if err == nil {
		return nil, nil
	}
	var cerr *CleanupError
	if !errors.As(err, &cerr) {
		return nil, err
	}
	var tolerated []*ListingError
	rest := &CleanupError{}
	for _, e := range cerr.Errors {
		var le *ListingError
		if errors.As(e, &le) && optionalListing(le.Kind) {
			tolerated = append(tolerated, le)
			continue
		}
		rest.Add(e)
	}
	if rest.HasErrors() {
		return tolerated, rest
	}
	return tolerated, nil
}
