package auth

import (
	"github.com/cohortly/cohortly/internal/auth/client"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.client",
	fx.Provide(client.New),
)
