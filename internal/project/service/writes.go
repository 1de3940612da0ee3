package service

import (
	"context"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

const writeMarkCallback = "solarflow:mark_write"

type writeMarkKey struct{}

// withWriteMark returns a context whose statements flag wrote once any of
// them changes a row.
func withWriteMark(ctx context.Context, wrote *bool) context.Context {
	return context.WithValue(ctx, writeMarkKey{}, wrote)
}

func markWrite(db *gorm.DB) {
	if db.Error != nil || db.Statement == nil || db.Statement.RowsAffected <= 0 {
		return
	}
	if db.Statement.Context == nil {
		return
	}
	if wrote, ok := db.Statement.Context.Value(writeMarkKey{}).(*bool); ok && wrote != nil {
		*wrote = true
	}
}

// registerWriteMark hooks every create, update and delete on db. A failed
// registration leaves notifications unconditional.
func registerWriteMark(db *gorm.DB, log *zap.Logger) bool {
	if db == nil {
		return false
	}
	cb := db.Callback()
	if err := cb.Create().After("gorm:create").Register(writeMarkCallback, markWrite); err != nil {
		log.Warn("write mark callback not registered", zap.String("statement", "create"), zap.Error(err))
		return false
	}
	if err := cb.Update().After("gorm:update").Register(writeMarkCallback, markWrite); err != nil {
		log.Warn("write mark callback not registered", zap.String("statement", "update"), zap.Error(err))
		return false
	}
	if err := cb.Delete().After("gorm:delete").Register(writeMarkCallback, markWrite); err != nil {
		log.Warn("write mark callback not registered", zap.String("statement", "delete"), zap.Error(err))
		return false
	}
	return true
}
