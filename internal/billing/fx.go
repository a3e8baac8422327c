package billing

import (
	"github.com/gestorhq/gestor/internal/billing/repository"
	"github.com/gestorhq/gestor/internal/billing/service"
	"go.uber.org/fx"
)

var Module = fx.Module("billing.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
