package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"

	"github.com/ParkSmart/ParkSmart/internal/common/config"
	"github.com/ParkSmart/ParkSmart/internal/common/db"
	"github.com/ParkSmart/ParkSmart/internal/common/logger"
	"github.com/ParkSmart/ParkSmart/internal/common/middleware"
	"github.com/ParkSmart/ParkSmart/internal/common/server"
	"github.com/ParkSmart/ParkSmart/internal/common/tracing"
	"github.com/ParkSmart/ParkSmart/internal/parking"
	"github.com/ParkSmart/ParkSmart/internal/slot"
	"github.com/ParkSmart/ParkSmart/internal/user"
	"github.com/ParkSmart/ParkSmart/internal/vehicle"
	"github.com/go-chi/chi/v5"
)

var (
	configPath = flag.String("config", "configs/parking-service.json", "config file path")
)

func main() {
	flag.Parse()

	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		panic(fmt.Sprintf("failed to load config: %v", err))
	}

	log, err := logger.NewLogger(cfg.Log.Level, cfg.Log.Format, cfg.Log.Output, cfg.Log.Path)
	if err != nil {
		panic(fmt.Sprintf("failed to init logger: %v", err))
	}

	// A non-empty consul.config_key overrides the file config from Consul KV.
	if cfg.Consul.Enabled && cfg.Consul.ConfigKey != "" {
		kvCfg, err := config.LoadConfigFromConsulKV(cfg.Consul.Host, cfg.Consul.Port, cfg.Consul.ConfigKey)
		if err != nil {
			log.Warnf("failed to load config from Consul KV key=%s: %v", cfg.Consul.ConfigKey, err)
		} else {
			cfg = kvCfg
		}
	}

	// InitTracer installs the tracer globally; the Tracing middleware picks
	// it up from there.
	_, closer, err := tracing.InitTracer(
		cfg.Server.Name,
		cfg.Jaeger.Endpoint,
		cfg.Jaeger.Sampler,
	)
	if err != nil {
		log.Warnf("failed to init tracer: %v", err)
	} else {
		defer closer.Close()
	}

	gormDB, err := db.Open(cfg.Database)
	if err != nil {
		log.Fatalf("failed to init database: %v", err)
	}
	if err := gormDB.AutoMigrate(
		&user.User{},
		&vehicle.Vehicle{},
		&slot.ParkingSlot{},
		&parking.ParkingRecord{},
	); err != nil {
		log.Fatalf("failed to migrate schema: %v", err)
	}

	if cfg.Parking.SeedSlots {
		total, err := slot.InitSlots(context.Background(), gormDB)
		if err != nil {
			log.Fatalf("failed to seed parking slots: %v", err)
		}
		log.Infof("parking slots ready: %d", total)
	}

	picker := parking.NewPicker(cfg.Parking.Selection)
	parkingSvc := parking.NewService(gormDB, picker, cfg.Parking.RatePerHour, log)

	r := chi.NewRouter()
	r.Use(server.Recovery(log))
	r.Use(server.Tracing(cfg.Server.Name))
	r.Use(server.AccessLog(log))
	if cfg.RateLimit.Enabled {
		bucket := middleware.NewTokenBucket(cfg.RateLimit.Capacity, cfg.RateLimit.RefillRate)
		r.Use(middleware.RateLimit(bucket))
	}
	r.Use(server.JWTAuth(cfg.Auth, log))

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	user.NewHandler(gormDB, cfg.Auth).Mount(r)
	vehicle.NewHandler(gormDB).Mount(r)
	slot.NewHandler(gormDB).Mount(r)
	parking.NewHandler(parkingSvc).Mount(r)

	if err := server.RunHTTPServer(cfg, log, r); err != nil {
		log.Fatalf("parking-service exited with error: %v", err)
	}
}
