package main

import (
	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"

	"github.com/cohortly/cohortly/internal/clock"
	"github.com/cohortly/cohortly/internal/config"
	"github.com/cohortly/cohortly/internal/notify"
	"github.com/cohortly/cohortly/internal/observability"
	"github.com/cohortly/cohortly/internal/phase"
	"github.com/cohortly/cohortly/internal/providers/email"
	"github.com/cohortly/cohortly/internal/ratelimit"
	"github.com/cohortly/cohortly/internal/scheduler"
	"github.com/cohortly/cohortly/pkg/db"
)

// Phase broadcast job only, no HTTP server. Safe to run alongside api
// replicas; the redis lock keeps concurrent instances from double-sending.
func main() {
	app := fx.New(
		config.Module,
		observability.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,

		phase.Module,
		notify.Module,
		email.Module,
		ratelimit.Module,
		scheduler.Module,
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
