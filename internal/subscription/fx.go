package subscription

import (
	"github.com/cohortly/cohortly/internal/subscription/repository"
	"github.com/cohortly/cohortly/internal/subscription/service"
	"go.uber.org/fx"
)

var Module = fx.Module("subscription.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
