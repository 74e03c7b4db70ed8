// cmd/inventory-service/main.go
package main

import (
	"atlas/internal/pkg/bootstrap"
	"atlas/internal/pkg/logger"
	"atlas/internal/service/inventory/application"
	"atlas/internal/service/inventory/infrastructure"
	"atlas/internal/service/inventory/interfaces"

	"go.opentelemetry.io/otel"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	serviceName = "inventory-service"
	servicePort = 8081
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	db, err := gorm.Open(gormmysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormItemRepository(db)
	if err := repo.Migrate(); err != nil {
		logger.L().Fatal().Err(err).Msg("migration failed")
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			svc := application.NewService(repo, otel.Tracer(serviceName))
			interfaces.NewItemHandler(svc).RegisterRoutes(appCtx.Mux)
		},
	})
}
