package main

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/ikanisa/MomoTerminal-sub001/internal/api"
	"github.com/ikanisa/MomoTerminal-sub001/internal/config"
	"github.com/ikanisa/MomoTerminal-sub001/internal/events"
	eventskafka "github.com/ikanisa/MomoTerminal-sub001/internal/events/kafka"
	"github.com/ikanisa/MomoTerminal-sub001/internal/ingest"
	"github.com/ikanisa/MomoTerminal-sub001/internal/ledger"
	"github.com/ikanisa/MomoTerminal-sub001/internal/logger"
	"github.com/ikanisa/MomoTerminal-sub001/internal/momo"
	"github.com/ikanisa/MomoTerminal-sub001/internal/router"
	"github.com/ikanisa/MomoTerminal-sub001/internal/storage/postgres"
	"github.com/ikanisa/MomoTerminal-sub001/internal/wallet"
)

func main() {
	cfg := config.Load()
	log := logger.New()

	if cfg.DB.URL == "" {
		log.Fatal().Msg("DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.DB.URL)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating pgx pool")
	}
	defer pool.Close()
	if err := pool.Ping(ctx); err != nil {
		log.Fatal().Err(err).Msg("error pinging database")
	}

	store := postgres.NewStore(pool)
	watcher := wallet.NewWatcher()

	var publisher events.Publisher = events.NoopPublisher{}
	if len(cfg.Kafka.Brokers) > 0 {
		kp := eventskafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		defer kp.Close()
		publisher = kp
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("kafka publisher enabled")
	}

	led := ledger.New(store, watcher, publisher, cfg.Kafka.Topic)

	pipeline := ingest.NewService(
		momo.NewClassifier(),
		momo.NewExtractor(cfg.Market.DefaultCurrency),
		store,
		led,
	)
	pipeline.AuditDB = pool

	server := api.NewServer(pipeline, led, store, cfg.Market.DefaultCurrency)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			message := "internal server error"

			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				code = fiberErr.Code
				message = fiberErr.Message
			}

			return c.Status(code).JSON(fiber.Map{"error": message})
		},
	})

	app.Use(router.CorsMiddleware())
	app.Use(requestLogger(log))

	r := &router.Router{
		API:       server,
		InboundMW: router.RateLimitInbound(cfg.App.RateLimitMax, cfg.App.RateLimitWindow),
		APIKeyMW:  router.APIKeyMiddleware(cfg.App.APIKey),
	}
	r.RegisterRoutes(app)

	log.Info().Str("port", cfg.App.Port).Str("env", cfg.App.Env).Msg("listening")
	if err := app.Listen(":" + cfg.App.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

// requestLogger attaches the app logger to each request context and emits
// one structured line per request.
func requestLogger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		c.SetUserContext(logger.WithContext(c.UserContext(), log))
		err := c.Next()
		log.Info().
			Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", c.Response().StatusCode()).
			Dur("duration", time.Since(start)).
			Msg("request")
		return err
	}
}
