package main

import (
	"log"
	"os"

	"github.com/NoBodyyy-dev/shispare-backend-sub000/cmd/shop-api/app"
	"github.com/NoBodyyy-dev/shispare-backend-sub000/configs"
)

func main() {
	env := os.Getenv("APP_ENV") // dev | staging | prod
	if env == "" {
		env = "dev"
	}

	cfg, err := configs.Load("configs", env)
	if err != nil {
		log.Fatal(err)
	}

	application, cleanup, err := app.InitWithConfig(cfg)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	log.Printf("shop-api (%s) listening on %s", env, cfg.App.HTTPAddr)
	if err := application.Router.Run(cfg.App.HTTPAddr); err != nil {
		log.Fatal(err)
	}
}
