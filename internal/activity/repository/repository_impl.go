package repository

import (
	"context"
	"errors"
	"strings"

	"github.com/smallbiznis/solarflow/internal/activity/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entries []*domain.Activity) error {
	if len(entries) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(entries).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListFilter) ([]*domain.Activity, error) {
	var logs []*domain.Activity
	stmt := db.WithContext(ctx).Model(&domain.Activity{})

	if filter.CustomerID != 0 {
		stmt = stmt.Where("customer_id = ?", filter.CustomerID)
	}
	if userID := strings.TrimSpace(filter.UserID); userID != "" {
		stmt = stmt.Where("user_id = ?", userID)
	}
	if section := strings.TrimSpace(filter.Section); section != "" {
		stmt = stmt.Where("section = ?", section)
	}
	if filter.BeforeID != 0 {
		stmt = stmt.Where("id < ?", filter.BeforeID)
	}

	stmt = stmt.Order("id desc")
	if filter.Limit > 0 {
		stmt = stmt.Limit(filter.Limit + 1)
	}

	if err := stmt.Find(&logs).Error; err != nil {
		return nil, err
	}
	return logs, nil
}

func (r *repo) Count(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.Activity{}).Count(&count).Error
	return count, err
}

func (r *repo) Trim(ctx context.Context, db *gorm.DB, keep int) (int64, error) {
	if keep <= 0 {
		return 0, nil
	}

	var oldestKept domain.Activity
	err := db.WithContext(ctx).
		Model(&domain.Activity{}).
		Select("id").
		Order("id desc").
		Offset(keep - 1).
		Limit(1).
		Take(&oldestKept).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}

	res := db.WithContext(ctx).Where("id < ?", oldestKept.ID).Delete(&domain.Activity{})
	return res.RowsAffected, res.Error
}
