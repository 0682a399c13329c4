package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"

	"github.com/cobom/geoloc193/internal/archive"
	"github.com/cobom/geoloc193/internal/auth"
	"github.com/cobom/geoloc193/internal/config"
	"github.com/cobom/geoloc193/internal/db"
	"github.com/cobom/geoloc193/internal/httpapi"
	"github.com/cobom/geoloc193/internal/push"
	"github.com/cobom/geoloc193/internal/request"
	"github.com/cobom/geoloc193/internal/shortlink"
	"github.com/cobom/geoloc193/internal/store/rabbitmq"
	"github.com/cobom/geoloc193/internal/store/redisstore"
	"github.com/cobom/geoloc193/internal/upload"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	db.Migrate(gdb)

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisAddr,
		Password: cfg.RedisPassword,
		DB:       cfg.RedisDB,
	})
	rds := redisstore.New(rdb, 24*time.Hour)

	// Geocoding is enrichment; a missing broker must not stop dispatch.
	var geo request.GeocodePublisher
	pub, err := rabbitmq.NewPublisher(cfg.RabbitURL, cfg.RabbitQueue)
	if err != nil {
		log.Printf("rabbitmq unavailable, geocoding disabled: %v", err)
	} else {
		defer pub.Close()
		geo = pub
	}

	eng := request.NewEngine(cfg.LinkTTL, cfg.ChatTTL, cfg.ArchiveAge)
	svc := request.NewService(request.NewRepo(gdb), eng, geo, push.NewClient())

	uploads := upload.NewStore(cfg.UploadDir)
	short := shortlink.NewStore(gdb)
	sessions := auth.NewSessionValidator(gdb, rds)

	sweeper, err := archive.New(cfg.SweepInterval, func(ctx context.Context) (int64, error) {
		return svc.SweepArchive(ctx, time.Now())
	})
	if err != nil {
		log.Fatalf("sweeper: %v", err)
	}
	sweeper.Start()
	defer sweeper.Stop()

	r := httpapi.NewRouter(gdb, cfg, rds, svc, uploads, short, sessions)

	log.Printf("listening on %s", cfg.Addr)
	if err := r.Run(cfg.Addr); err != nil {
		log.Fatalf("server: %v", err)
	}
}
