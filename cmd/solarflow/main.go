package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smallbiznis/solarflow/internal/activity"
	"github.com/smallbiznis/solarflow/internal/clock"
	"github.com/smallbiznis/solarflow/internal/config"
	"github.com/smallbiznis/solarflow/internal/events"
	"github.com/smallbiznis/solarflow/internal/observability"
	"github.com/smallbiznis/solarflow/internal/project"
	"github.com/smallbiznis/solarflow/internal/scheduler"
	"github.com/smallbiznis/solarflow/internal/server"
	"github.com/smallbiznis/solarflow/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core Infrastructure
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		events.Module,

		// Functional Domains
		activity.Module,
		project.Module,
		scheduler.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake(cfg config.Config) (*snowflake.Node, error) {
	return snowflake.NewNode(cfg.NodeID)
}
