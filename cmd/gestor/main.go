package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/gestorhq/gestor/internal/billing"
	"github.com/gestorhq/gestor/internal/cashflow"
	"github.com/gestorhq/gestor/internal/client"
	"github.com/gestorhq/gestor/internal/clock"
	"github.com/gestorhq/gestor/internal/config"
	"github.com/gestorhq/gestor/internal/logger"
	"github.com/gestorhq/gestor/internal/migration"
	"github.com/gestorhq/gestor/internal/notification"
	"github.com/gestorhq/gestor/internal/payment"
	"github.com/gestorhq/gestor/internal/providers/email"
	"github.com/gestorhq/gestor/internal/scheduler"
	"github.com/gestorhq/gestor/internal/server"
	"github.com/gestorhq/gestor/pkg/db"
	"go.uber.org/fx"
)

func main() {
	app := fx.New(
		// Core infrastructure
		config.Module,
		logger.Module,
		fx.Provide(RegisterSnowflake),
		db.Module,
		clock.Module,
		migration.Module,

		// Functional domains
		client.Module,
		billing.Module,
		payment.Module,
		email.Module,
		notification.Module,
		cashflow.Module,

		// Surfaces
		scheduler.Module,
		server.Module,
	)
	app.Run()
}

func RegisterSnowflake() *snowflake.Node {
	node, err := snowflake.NewNode(1)
	if err != nil {
		panic(err)
	}
	return node
}
