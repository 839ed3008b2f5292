package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/rentledger/pkg/db/option"
	"gorm.io/gorm"
)

type store[T any] struct {
	db *gorm.DB
}

func New[T any](db *gorm.DB) Repository[T] {
	return &store[T]{db: db}
}

func (r *store[T]) WithTrx(tx *gorm.DB) Repository[T] {
	return &store[T]{db: tx}
}

func (r *store[T]) Find(ctx context.Context, orgID snowflake.ID, query *T, opts ...option.QueryOption) ([]T, error) {
	stmt, err := r.scoped(ctx, orgID, query)
	if err != nil {
		return nil, err
	}
	var result []T
	if err := option.Apply(stmt, opts...).Find(&result).Error; err != nil {
		return nil, err
	}
	return result, nil
}

// FindOne returns nil without error when nothing matches.
func (r *store[T]) FindOne(ctx context.Context, orgID snowflake.ID, query *T, opts ...option.QueryOption) (*T, error) {
	stmt, err := r.scoped(ctx, orgID, query)
	if err != nil {
		return nil, err
	}
	var result []T
	if err := option.Apply(stmt, opts...).Limit(1).Find(&result).Error; err != nil {
		return nil, err
	}
	if len(result) == 0 {
		return nil, nil
	}
	return &result[0], nil
}

func (r *store[T]) FindByID(ctx context.Context, orgID, id snowflake.ID) (*T, error) {
	if id == 0 {
		return nil, nil
	}
	return r.FindOne(ctx, orgID, nil, option.ApplyOperator(option.Condition{Field: "id", Operator: option.EQ, Value: id}))
}

func (r *store[T]) Count(ctx context.Context, orgID snowflake.ID, query *T) (int64, error) {
	stmt, err := r.scoped(ctx, orgID, query)
	if err != nil {
		return 0, err
	}
	var count int64
	err = stmt.Count(&count).Error
	return count, err
}

func (r *store[T]) Create(ctx context.Context, resource *T) error {
	return r.db.WithContext(ctx).Create(resource).Error
}

func (r *store[T]) UpdateByID(ctx context.Context, orgID, id snowflake.ID, fields map[string]any) error {
	stmt, err := r.scoped(ctx, orgID, nil)
	if err != nil {
		return err
	}
	res := stmt.Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *store[T]) UpdateWhere(ctx context.Context, orgID snowflake.ID, query *T, fields map[string]any) (int64, error) {
	stmt, err := r.scoped(ctx, orgID, query)
	if err != nil {
		return 0, err
	}
	res := stmt.Updates(fields)
	return res.RowsAffected, res.Error
}

func (r *store[T]) DeleteByID(ctx context.Context, orgID, id snowflake.ID) error {
	stmt, err := r.scoped(ctx, orgID, nil)
	if err != nil {
		return err
	}
	res := stmt.Where("id = ?", id).Delete(new(T))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *store[T]) scoped(ctx context.Context, orgID snowflake.ID, query *T) (*gorm.DB, error) {
	if orgID == 0 {
		return nil, ErrInvalidScope
	}
	stmt := r.db.WithContext(ctx).Model(new(T)).Where(OrgColumn+" = ?", orgID)
	if query != nil {
		stmt = stmt.Where(query)
	}
	return stmt, nil
}
