package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entries []*Activity) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]*Activity, error)
	Count(ctx context.Context, db *gorm.DB) (int64, error)
	// Trim keeps the newest keep rows and returns how many were evicted.
	Trim(ctx context.Context, db *gorm.DB, keep int) (int64, error)
}
