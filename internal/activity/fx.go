package activity

import (
	"github.com/smallbiznis/solarflow/internal/activity/domain"
	"github.com/smallbiznis/solarflow/internal/activity/repository"
	"github.com/smallbiznis/solarflow/internal/activity/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("activity.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
	fx.Invoke(func(db *gorm.DB) error {
		return db.AutoMigrate(domain.Models()...)
	}),
)
