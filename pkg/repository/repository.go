package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/pkg/db/option"
	"gorm.io/gorm"
)

// OrgColumn is the tenant-isolation column every scoped model carries.
const OrgColumn = "organization_id"

var (
	ErrNotFound     = errors.New("record_not_found")
	ErrInvalidScope = errors.New("invalid_organization_scope")
)

// Repository is a generic store over one organization-scoped GORM model.
// Every statement it issues is filtered by organization_id, so callers cannot
// read or change another organization's rows by id.
type Repository[T any] interface {
	WithTrx(tx *gorm.DB) Repository[T]
	Find(ctx context.Context, orgID snowflake.ID, query *T, opts ...option.QueryOption) ([]T, error)
	FindOne(ctx context.Context, orgID snowflake.ID, query *T, opts ...option.QueryOption) (*T, error)
	FindByID(ctx context.Context, orgID, id snowflake.ID) (*T, error)
	Count(ctx context.Context, orgID snowflake.ID, query *T) (int64, error)
	Create(ctx context.Context, resource *T) error
	UpdateByID(ctx context.Context, orgID, id snowflake.ID, fields map[string]any) error
	UpdateWhere(ctx context.Context, orgID snowflake.ID, query *T, fields map[string]any) (int64, error)
	DeleteByID(ctx context.Context, orgID, id snowflake.ID) error
}
