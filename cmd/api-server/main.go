package main

import (
	"flag"
	"time"

	"fisski-backend/lib/configutil"
	configsqlite "fisski-backend/lib/configutil/sqlite"
	"fisski-backend/lib/scrapers/fis"
	"fisski-backend/lib/serviceutil"
	"fisski-backend/services/competitions"
	"fisski-backend/services/competitions/db"
	"fisski-backend/services/competitions/server"

	"github.com/gorilla/mux"
)

type FisConfig struct {
	BaseUrl           string  `json:"base_url"`
	SeasonCode        string  `json:"season_code"`
	RequestsPerSecond float64 `json:"requests_per_second"`
	Burst             int     `json:"burst"`
}

type CacheConfig struct {
	CalendarSeconds int `json:"calendar_seconds"`
	EventSeconds    int `json:"event_seconds"`
}

type Config struct {
	Port     int                 `json:"port"`
	Database configsqlite.Struct `json:"database"`
	Fis      FisConfig           `json:"fis"`
	Cache    CacheConfig         `json:"cache"`
}

func main() {
	verbose := flag.Bool("v", false, "Enable verbose logging/instrumentation.")
	flag.Parse()

	ctx := serviceutil.SignalContext()

	InitTelemetry(ctx, *verbose)

	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil {
		serviceutil.Fatal("read config", err)
	}
	if cfg.Port == 0 {
		cfg.Port = 8000
	}

	database, err := cfg.Database.OpenDB(db.Schema)
	if err != nil {
		serviceutil.Fatal("open cache database", err)
	}

	client, err := fis.NewClient(fis.ClientOptions{
		BaseUrl:           cfg.Fis.BaseUrl,
		SeasonCode:        cfg.Fis.SeasonCode,
		RequestsPerSecond: cfg.Fis.RequestsPerSecond,
		Burst:             cfg.Fis.Burst,
	})
	if err != nil {
		serviceutil.Fatal("init fis client", err)
	}

	svc := competitions.NewService(database, client, competitions.Options{
		CalendarTTL: time.Duration(cfg.Cache.CalendarSeconds) * time.Second,
		EventTTL:    time.Duration(cfg.Cache.EventSeconds) * time.Second,
	})
	svc.StartCacheJanitor(ctx, time.Hour, time.Hour*24)

	router := mux.NewRouter()
	server.RegisterRoutes(router, svc)

	go serviceutil.StartHttpServer(cfg.Port, router)
	<-ctx.Done()
}
