package notify

import (
	"github.com/cohortly/cohortly/internal/notify/repository"
	"github.com/cohortly/cohortly/internal/notify/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notify.broadcaster",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
