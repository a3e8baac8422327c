package cashflow

import (
	"github.com/gestorhq/gestor/internal/cashflow/repository"
	"github.com/gestorhq/gestor/internal/cashflow/service"
	"go.uber.org/fx"
)

var Module = fx.Module("cashflow.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
