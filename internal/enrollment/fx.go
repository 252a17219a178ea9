package enrollment

import (
	"github.com/cohortly/cohortly/internal/enrollment/repository"
	"github.com/cohortly/cohortly/internal/enrollment/service"
	"go.uber.org/fx"
)

var Module = fx.Module("enrollment.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
