// cmd/order-service/main.go
package main

import (
	"atlas/internal/pkg/bootstrap"
	"atlas/internal/pkg/dlock"
	"atlas/internal/pkg/httpclient"
	"atlas/internal/pkg/logger"
	"atlas/internal/pkg/mq"
	"atlas/internal/pkg/redis"
	"atlas/internal/service/order/application"
	"atlas/internal/service/order/application/rules"
	"atlas/internal/service/order/application/saga"
	"atlas/internal/service/order/domain/port"
	"atlas/internal/service/order/infrastructure"
	"atlas/internal/service/order/infrastructure/adapter"
	"atlas/internal/service/order/interfaces"

	"go.opentelemetry.io/otel"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"
)

const (
	serviceName = "order-service"
	servicePort = 8083
)

func main() {
	bootstrap.Init()
	cfg := bootstrap.GetCurrentConfig()

	db, err := gorm.Open(gormmysql.Open(cfg.Infra.MySQL.DSN), &gorm.Config{TranslateError: true})
	if err != nil {
		logger.L().Fatal().Err(err).Msg("failed to connect to mysql")
	}
	repo := infrastructure.NewGormOrderRepository(db)
	if err := repo.Migrate(); err != nil {
		logger.L().Fatal().Err(err).Msg("migration failed")
	}

	var cache *redis.Client
	if cfg.Infra.Redis.Addr != "" {
		cache, err = redis.NewClient(cfg.Infra.Redis.Addr)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer cache.Close()
	}

	var publisher port.EventPublisher
	if len(cfg.Infra.Kafka.Brokers) > 0 {
		writer := mq.NewWriter(cfg.Infra.Kafka.Brokers, cfg.Infra.Kafka.OrderEventsTopic)
		defer writer.Close()
		publisher = infrastructure.NewKafkaEventProducer(writer)
	}

	var locker dlock.Locker = dlock.Noop{}
	if cfg.App.FeatureFlags.SerializeSKUAdjustments {
		zkLocker, err := dlock.NewZKLocker(cfg.Infra.Zookeeper.Addrs)
		if err != nil {
			logger.L().Fatal().Err(err).Msg("failed to connect to zookeeper")
		}
		defer zkLocker.Close()
		locker = zkLocker
	}

	engine, err := rules.NewEngine(cfg.App.OrderRule)
	if err != nil {
		logger.L().Fatal().Err(err).Str("rule", cfg.App.OrderRule).Msg("invalid order rule")
	}

	bootstrap.StartService(bootstrap.AppInfo{
		ServiceName: serviceName,
		Port:        servicePort,
		RegisterHandlers: func(appCtx bootstrap.AppCtx) {
			tracer := otel.Tracer(serviceName)

			var resolver httpclient.Resolver = httpclient.StaticResolver{
				adapter.InventoryServiceName: cfg.Services.InventoryURL,
				adapter.UserServiceName:      cfg.Services.UsersURL,
			}
			if appCtx.Nacos != nil {
				resolver = appCtx.Nacos
			}
			client := httpclient.NewClient(tracer, resolver)

			inventory := adapter.NewInventoryHTTPAdapter(client)
			users := adapter.NewUserHTTPAdapter(client, cache)
			coordinator := saga.NewCoordinator(inventory, locker, tracer)

			svc := application.NewOrderApplicationService(application.Config{
				Repo:            repo,
				Ledger:          repo,
				Users:           users,
				Inventory:       inventory,
				Coordinator:     coordinator,
				Rules:           engine,
				Publisher:       publisher,
				Tracer:          tracer,
				RestoreOnDelete: cfg.App.FeatureFlags.RestoreStockOnDelete,
			})
			interfaces.NewOrderHandler(svc).RegisterRoutes(appCtx.Mux)
		},
	})
}
