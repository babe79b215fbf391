package k8s

import (
	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// IsPermanent reports whether err is an API rejection that will not change
// on retry: bad credentials, missing RBAC, or an invalid object.
func IsPermanent(err error) bool {
	return apierrors.IsUnauthorized(err) ||
		apierrors.IsForbidden(err) ||
		apierrors.IsInvalid(err) ||
		apierrors.IsBadRequest(err)
}
