package project

import (
	"github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/smallbiznis/solarflow/internal/project/repository"
	"github.com/smallbiznis/solarflow/internal/project/service"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

var Module = fx.Module("project.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
	fx.Invoke(func(db *gorm.DB) error {
		return db.AutoMigrate(domain.Models()...)
	}),
)
