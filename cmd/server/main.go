package main

import (
	"log"
	"strings"

	"github.com/avdonin/foodreel/internal/config"
	"github.com/avdonin/foodreel/internal/es"
	"github.com/avdonin/foodreel/internal/logging"
	"github.com/avdonin/foodreel/internal/mykafka"
	"github.com/avdonin/foodreel/internal/service"
	"github.com/avdonin/foodreel/internal/storage"
	transport "github.com/avdonin/foodreel/internal/transport/http"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}

	logger := logging.New(cfg.LOG_LEVEL)

	db, err := config.InitDB(cfg)
	if err != nil {
		log.Fatalf("database error: %v", err)
	}

	uploads, err := storage.NewFileStore(cfg.UPLOAD_DIR)
	if err != nil {
		log.Fatalf("storage error: %v", err)
	}

	producer, err := mykafka.NewProducer(
		strings.Split(cfg.KAFKA_ADDRESS, ","),
		[]string{"user_events", "cart_events", "product_events"},
	)
	if err != nil {
		log.Fatalf("kafka error: %v", err)
	}
	defer producer.Close()

	esClient, err := es.NewClient(cfg)
	if err != nil {
		logger.Warn("elasticsearch unavailable, search disabled", "error", err)
		esClient = nil
	}

	tokenService := &service.TokenService{
		DB:            db,
		JWTSecret:     []byte(cfg.JWT_SECRET),
		RefreshSecret: []byte(cfg.REFRESH_SECRET),
	}
	cartService := &service.CartService{DB: db}

	e := transport.NewRouter(transport.Deps{
		DB:       db,
		Logger:   logger,
		Tokens:   tokenService,
		Cart:     cartService,
		Producer: producer,
		Uploads:  uploads,
		ES:       esClient,
	})

	e.Logger.Fatal(e.Start(cfg.LISTEN_ADDR))
}
