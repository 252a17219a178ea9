package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/cohortly/cohortly/internal/clock"
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/migration"
	"github.com/cohortly/cohortly/internal/observability"
	"github.com/cohortly/cohortly/internal/server"
	"github.com/cohortly/cohortly/pkg/db"
)

// HTTP API only. The phase broadcast job runs in apps/scheduler.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
