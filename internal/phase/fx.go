package phase

import (
	"github.com/cohortly/cohortly/internal/phase/repository"
	"github.com/cohortly/cohortly/internal/phase/service"
	"go.uber.org/fx"
)

var Module = fx.Module("phase.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
