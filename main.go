package main

import (
	"flag"
	"os"
	"os/signal"

	"github.com/rs/zerolog"

	"github.com/mc-hub/config"
	"github.com/mc-hub/database"
	"github.com/mc-hub/hub"
	"github.com/mc-hub/platform"
)

func main() {
	confPath := flag.String("conf", "conf.ini", "path to the ini config")
	flag.Parse()

	log := zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()

	cfg, err := config.LoadConfig(*confPath)
	if err != nil {
		log.Fatal().Err(err).Msg("config load failed")
	}

	engine, err := database.InitMysqlDb(cfg.Mysql.Source)
	if err != nil {
		log.Fatal().Err(err).Msg("mysql init failed")
	}
	store, err := database.NewDbStore(engine)
	if err != nil {
		log.Fatal().Err(err).Msg("schema sync failed")
	}

	var cache database.UserCache
	if cfg.Redis.Addr != "" {
		client, err := database.InitRedis(cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.Db)
		if err != nil {
			log.Fatal().Err(err).Msg("redis init failed")
		}
		cache = database.NewRedisUserCache(client)
	}

	client := platform.NewRestClient(cfg.Platform.APIBase, cfg.Platform.Token, log)
	webhooks := platform.NewWebhookSender(cfg.Platform.WebhookBase)

	h := hub.NewHub(cfg, store, cache, client, webhooks, log)

	// The operator console and an interrupt both stop the hub.
	go func() {
		hub.NewConsole(store, os.Stdin, os.Stdout).Run()
		h.Close()
	}()
	sc := make(chan os.Signal, 1)
	signal.Notify(sc, os.Interrupt)
	go func() {
		<-sc
		h.Close()
	}()

	if err := h.Run(); err != nil {
		log.Fatal().Err(err).Msg("listen failed")
	}
}
