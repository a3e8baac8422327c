package client

import (
	"github.com/gestorhq/gestor/internal/client/repository"
	"github.com/gestorhq/gestor/internal/client/service"
	"go.uber.org/fx"
)

var Module = fx.Module("client.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.New),
)
