package main

import (
	"log"
	"os"

	"github.com/joho/godotenv"

	"github.com/presenced/presenced/internal/api"
	"github.com/presenced/presenced/internal/config"
	"github.com/presenced/presenced/internal/service"
	"github.com/presenced/presenced/internal/store"
)

func main() {
	_ = godotenv.Load()

	argPath := "/etc/presenced/config.toml"
	if len(os.Args) > 1 {
		argPath = os.Args[1]
	}
	cfg, err := config.LoadFromFile(argPath)
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	st, err := store.Open(cfg.DSNFromEnv())
	if err != nil {
		log.Fatal("Failed to open store:", err)
	}

	h := &api.Handler{
		Store:      st,
		Svc:        service.New(st, "", cfg.Windows),
		Windows:    cfg.Windows,
		CronSecret: os.Getenv("CRON_SECRET"),
	}
	r := api.NewRouter(h)

	log.Printf("Dashboard listening on %s", cfg.API.Listen)
	if err := r.Run(cfg.API.Listen); err != nil {
		log.Fatal(err)
	}
}
