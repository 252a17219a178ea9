package catalog

import (
	"github.com/cohortly/cohortly/internal/catalog/repository"
	"github.com/cohortly/cohortly/internal/catalog/service"
	"go.uber.org/fx"
)

var Module = fx.Module("catalog.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
