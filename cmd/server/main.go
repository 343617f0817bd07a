package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/remodela/remodela-backend/internal/api"
	"github.com/remodela/remodela-backend/internal/chat"
	"github.com/remodela/remodela-backend/internal/config"
	"github.com/remodela/remodela-backend/internal/database"
	"github.com/remodela/remodela-backend/internal/embedding"
	"github.com/remodela/remodela-backend/internal/llm"
	"github.com/remodela/remodela-backend/internal/repository/postgres"
	"github.com/remodela/remodela-backend/internal/retrieval"
	"github.com/remodela/remodela-backend/internal/store/qdrant"
)

func main() {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	log := logrus.New()
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load()
	if err != nil {
		log.WithError(err).Fatal("Failed to load configuration")
	}

	db, err := database.NewConnection(cfg.Database)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to database")
	}
	defer db.Close()

	if err := database.RunMigrations(cfg.Database); err != nil {
		log.WithError(err).Fatal("Failed to run migrations")
	}

	docStore, err := qdrant.New(cfg.Qdrant, cfg.Retrieval.NumCandidates, log)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to document store")
	}

	llmClient, err := llm.NewClient(cfg.LLM)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize LLM client")
	}

	embedder := embedding.NewClient(cfg.Embedding)
	guardrail := retrieval.NewGuardrail(llmClient, log)
	composer := chat.NewComposer(llmClient, log)
	engine := retrieval.NewEngine(docStore, embedder, guardrail, composer, cfg.Retrieval, cfg.Data, log)

	sessionRepo := postgres.NewSessionRepository(db.DB)
	messageRepo := postgres.NewMessageRepository(db.DB)
	svc := chat.NewService(engine, composer, sessionRepo, messageRepo, log)

	app := fiber.New(fiber.Config{
		AppName:      "Remodela Backend",
		ErrorHandler: customErrorHandler,
	})

	app.Use(recover.New())
	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: getOrigins(),
		AllowHeaders: "Origin, Content-Type, Accept",
		AllowMethods: "GET, POST, DELETE, OPTIONS",
	}))

	api.SetupRoutes(app, svc)

	// Source PDFs and extracted page images, referenced by answer payloads.
	app.Static("/data", cfg.Data.Dir)
	app.Static("/images", filepath.Join(cfg.Data.Dir, "processed", "images"))

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	log.WithField("addr", addr).Info("Remodela backend starting")
	if err := app.Listen(addr); err != nil {
		log.WithError(err).Fatal("Failed to start server")
	}
}

func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
	}

	return c.Status(code).JSON(fiber.Map{
		"error": err.Error(),
		"code":  code,
	})
}

func getOrigins() string {
	origins := os.Getenv("REMODELA_CORS_ORIGINS")
	if origins == "" {
		return "http://localhost:5173,http://localhost:3000"
	}
	return origins
}
