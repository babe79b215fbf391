package exoscale

import (
	"errors"
	"fmt"
	"testing"

	v3 "github.com/exoscale/egoscale/v3"
	"github.com/stretchr/testify/assert"
)

func apiErr(sentinel error, msg string) error {
	return fmt.Errorf("%w: %s", sentinel, msg)
}

func TestTranslate(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name          string
		tr            func(error) error
		err           error
		notFound      bool
		conflict      bool
		alreadyExists bool
		inUse         bool
	}{
		{name: "nil", tr: translate, err: nil},
		{name: "not found", tr: translate, err: apiErr(v3.ErrNotFound, "cluster not found"), notFound: true},
		{name: "gone", tr: translate, err: apiErr(v3.ErrGone, "deleted"), notFound: true},
		{name: "conflict", tr: translate, err: apiErr(v3.ErrConflict, "operation pending"), conflict: true, inUse: true},
		{name: "locked", tr: translate, err: apiErr(v3.ErrLocked, "locked"), inUse: true},
		{name: "failed dependency", tr: translate, err: apiErr(v3.ErrFailedDependency, "referenced"), inUse: true},
		{name: "bad request mentioning 404", tr: translate, err: apiErr(v3.ErrBadRequest, "instance 7c1e4040-4404-4b2a-9404-0000000c0404 invalid")},
		{name: "server error mentioning in use", tr: translate, err: apiErr(v3.ErrInternalServerError, "name already in use")},
		{name: "create conflict", tr: translateCreate, err: apiErr(v3.ErrConflict, "name taken"), alreadyExists: true},
		{name: "create not found", tr: translateCreate, err: apiErr(v3.ErrNotFound, "no such template"), notFound: true},
		{name: "delete conflict", tr: translateDelete, err: apiErr(v3.ErrConflict, "instances attached"), conflict: true, inUse: true},
		{name: "delete not found", tr: translateDelete, err: apiErr(v3.ErrNotFound, "gone"), notFound: true},
		{name: "unrelated", tr: translate, err: errors.New("dial tcp: timeout")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := tt.tr(tt.err)
			assert.Equal(t, tt.notFound, IsNotFound(got), "IsNotFound")
			assert.Equal(t, tt.conflict, IsConflict(got), "IsConflict")
			assert.Equal(t, tt.alreadyExists, IsAlreadyExists(got), "IsAlreadyExists")
			assert.Equal(t, tt.inUse, IsInUse(got), "IsInUse")
			if tt.err != nil {
				assert.ErrorIs(t, got, tt.err)
			}
		})
	}
}
