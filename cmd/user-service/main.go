// cmd/user-service/main.go
package main

import (
	"atlas/internal/pkg/bootstrap"
	"atlas/internal/pkg/logger"
	"atlas/internal/service/user/application"
	"atlas/internal/service/user/infrastructure"
	"atlas/internal/service/user/interfaces"

	"go.opentelemetry.io/otel"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	serviceName = "user-service"
	servicePort = 8082
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	db, err := gorm.Open(gormmysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormUserRepository(db)
	if err := repo.Migrate(); err != nil {
		logger.L().Fatal().Err(err).Msg("migration failed")
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			svc := application.NewService(repo, otel.Tracer(serviceName))
			interfaces.NewUserHandler(svc).RegisterRoutes(appCtx.Mux)
		},
	})
}
