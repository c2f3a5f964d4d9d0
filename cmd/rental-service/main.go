package main

import (
	"context"
	"flag"
	"fmt"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/CarRentLink/CarRentLink/internal/car"
	"github.com/CarRentLink/CarRentLink/internal/common/config"
	"github.com/CarRentLink/CarRentLink/internal/common/db"
	"github.com/CarRentLink/CarRentLink/internal/common/logger"
	"github.com/CarRentLink/CarRentLink/internal/common/metrics"
	"github.com/CarRentLink/CarRentLink/internal/common/server"
	"github.com/CarRentLink/CarRentLink/internal/common/tracing"
	"github.com/CarRentLink/CarRentLink/internal/customer"
	"github.com/CarRentLink/CarRentLink/internal/loader"
	"github.com/CarRentLink/CarRentLink/internal/rental"
)

var (
	configPath = flag.String("config", "configs/rental-service.json", "配置文件路径")
	consulKey  = flag.String("consul-config-key", "", "从 Consul KV 加载配置（优先于 -config）")
)

func main() {
	flag.Parse()

	// 加载配置（优先 Consul KV，失败回退本地文件）
	cfg, err := loadConfig()
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	// 初始化日志
	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// 初始化链路追踪
	tracer, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}
	_ = tracer

	// 构建服务（数据库可选：host 为空时纯内存运行）
	reg := rental.NewRegistry()
	opts := []rental.Option{
		rental.WithRetention(retention(cfg)),
	}
	if cfg.Database.Host != "" {
		gormDB, err := db.NewMySQL(
			cfg.Database.Host,
			cfg.Database.Port,
			cfg.Database.User,
			cfg.Database.Password,
			cfg.Database.Database,
			cfg.Database.MaxIdle,
			cfg.Database.MaxOpen,
		)
		if err != nil {
			log.Fatalf("failed to init mysql: %v", err)
		}
		if err := gormDB.AutoMigrate(&car.Car{}, &customer.Customer{}, &rental.Rental{}); err != nil {
			log.Fatalf("failed to migrate mysql schema: %v", err)
		}
		opts = append(opts, rental.WithMirror(gormDB))
	}

	svc := rental.NewService(reg, log, opts...)

	ctx := context.Background()
	if err := svc.LoadFromMirror(ctx); err != nil {
		log.Fatalf("failed to restore registry from mirror: %v", err)
	}

	// 种子数据（仅空注册表时导入）
	if err := seed(ctx, cfg, svc, log); err != nil {
		log.Fatalf("failed to seed registry: %v", err)
	}

	// 启动统一的 HTTP 服务模板
	if err := server.RunHTTPServer(cfg, log, func(r chi.Router) {
		r.Handle("/metrics", metrics.Handler())
		rental.NewHTTPServer(svc).Mount(r)
	}); err != nil {
		log.Fatalf("rental-service exited with error: %v", err)
	}
}

func loadConfig() (*config.Config, error) {
	if *consulKey != "" {
		base := config.GetConfig()
		cfg, err := config.LoadConfigFromConsulKV(base.Consul.Host, base.Consul.Port, *consulKey)
		if err == nil {
			return cfg, nil
		}
	}
	return config.LoadConfig(*configPath)
}

func retention(cfg *config.Config) time.Duration {
	days := cfg.Registry.RentalRetentionDays
	if days <= 0 {
		days = 30
	}
	return time.Duration(days) * 24 * time.Hour
}

// seed 从配置的种子文件导入车辆与客户（重启且镜像已有数据时跳过）。
func seed(ctx context.Context, cfg *config.Config, svc *rental.Service, log logger.Logger) error {
	if svc.Summary().TotalCars > 0 {
		return nil
	}
	if path := cfg.Registry.SeedCarsJSON; path != "" {
		cars, err := loader.LoadCarsJSON(path)
		if err != nil {
			return err
		}
		for _, c := range cars {
			if err := svc.AddCar(ctx, c); err != nil {
				return err
			}
		}
		log.Infof("seeded %d cars from %s", len(cars), path)
	}
	if path := cfg.Registry.SeedCustomersCSV; path != "" {
		customers, err := loader.LoadCustomersCSV(path)
		if err != nil {
			return err
		}
		for _, c := range customers {
			if err := svc.AddCustomer(ctx, c); err != nil {
				return err
			}
		}
		log.Infof("seeded %d customers from %s", len(customers), path)
	}
	return nil
}
