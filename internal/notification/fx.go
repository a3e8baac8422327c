package notification

import (
	"github.com/gestorhq/gestor/internal/notification/repository"
	"github.com/gestorhq/gestor/internal/notification/service"
	"go.uber.org/fx"
)

var Module = fx.Module("notification.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
