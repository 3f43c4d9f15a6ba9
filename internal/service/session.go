package service

import (
	"github.com/noah-isme/campushub-api/internal/models"
	appErrors "github.com/noah-isme/campushub-api/pkg/errors"
)

// tenantOf returns the tenant every data access of the request is scoped to.
func tenantOf(session *models.Session) (string, error) {
	if session == nil {
		return "", appErrors.ErrUnauthorized
	}
	if session.TenantID == "" {
		return "", appErrors.Clone(appErrors.ErrForbidden, "session is not bound to a tenant")
	}
	return session.TenantID, nil
}
