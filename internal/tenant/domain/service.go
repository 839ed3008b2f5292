package domain

import (
	"context"
	"errors"
)

// Service resolves tenants together with their property for invoicing.
type Service interface {
	Get(ctx context.Context, id string) (TenantDetails, error)
	List(ctx context.Context) ([]TenantDetails, error)
}

var (
	ErrInvalidOrganization = errors.New("invalid_organization")
	ErrInvalidID           = errors.New("invalid_id")
	ErrNotFound            = errors.New("tenant_not_found")
)
