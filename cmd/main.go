package main

import (
	"context"
	"time"

	"inventory-intake-backend/config"
	"inventory-intake-backend/middleware"
	"inventory-intake-backend/token"
	"inventory-intake-backend/utils"

	// Repositories
	audit_repositories "inventory-intake-backend/audit/repositories"
	ingestion_repositories "inventory-intake-backend/ingestion/repositories"
	lots_repositories "inventory-intake-backend/lots/repositories"

	// Services
	audit_services "inventory-intake-backend/audit/services"
	ingestion_services "inventory-intake-backend/ingestion/services"
	internal_services "inventory-intake-backend/internal/services"
	lots_services "inventory-intake-backend/lots/services"

	// Controllers and routes
	audit_controllers "inventory-intake-backend/audit/controllers"
	audit_routes "inventory-intake-backend/audit/routes"
	ingestion_controllers "inventory-intake-backend/ingestion/controllers"
	ingestion_routes "inventory-intake-backend/ingestion/routes"
	lots_controllers "inventory-intake-backend/lots/controllers"
	lots_routes "inventory-intake-backend/lots/routes"

	// Bleve
	bleveControllers "inventory-intake-backend/bleve/controllers"
	bleveRepositories "inventory-intake-backend/bleve/repositories"
	bleveRoutes "inventory-intake-backend/bleve/routes"
	bleveServices "inventory-intake-backend/bleve/services"

	// Background tasks
	"inventory-intake-backend/tasks"

	// WebSocket
	"inventory-intake-backend/websocket"

	"github.com/gofiber/fiber/v2"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

const sessionTTL = 2 * time.Hour

func main() {
	config.InitLogger()

	err := godotenv.Load(".env")
	if err != nil {
		config.Logger.Fatal("Error loading .env file", zap.Error(err))
	}

	app := fiber.New(fiber.Config{
		BodyLimit: ingestion_services.MaxUploadBytes + 1<<20,
	})

	middleware.InitCors(app)

	db := config.ConfigureDatabase()
	port := config.GetEnv("PORT")
	ctx := context.Background()

	redisAddr := config.GetEnv("REDIS_ADDRESS")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
		config.Logger.Warn("REDIS_ADDRESS not set, using default: localhost:6379")
	}

	redisClient := config.InitRedisServer(ctx, redisAddr)

	asynqRedisOpt := asynq.RedisClientOpt{
		Addr:     redisAddr,
		Password: config.GetEnv("REDIS_PASSWORD"),
		DB:       0,
	}

	asynqClient := asynq.NewClient(asynqRedisOpt)
	defer asynqClient.Close()

	tokenKey := config.GetEnv("TOKEN_SYMMETRIC_KEY")
	tokenMaker, err := token.NewPasetoMaker(tokenKey)
	if err != nil {
		config.Logger.Fatal("Cannot create token maker", zap.Error(err))
	}

	indexPath := config.GetEnv("BLEVE_INDEX_PATH")
	if indexPath == "" {
		indexPath = "./bleve_data"
		config.Logger.Warn("BLEVE_INDEX_PATH not set, using default: ./bleve_data")
	}

	baseURL := config.GetEnv("BASE_URL")
	if baseURL == "" {
		baseURL = "http://localhost:8080"
		config.Logger.Warn("BASE_URL not set, using default", zap.String("url", baseURL))
	}

	utils.InitializeMailer()

	// External column classifier is optional: without an API key the mapper
	// relies on aliases and heuristics alone.
	var classifier ingestion_services.ColumnClassifier
	if apiKey := config.GetGeminiAPIKey(); apiKey != "" {
		geminiService, err := internal_services.NewGeminiService(apiKey)
		if err != nil {
			config.Logger.Warn("Failed to create Gemini service, continuing without external classification", zap.Error(err))
		} else {
			classifier = geminiService
		}
	}

	wsHub := websocket.NewHub()
	go wsHub.Run()

	app.Static("/public", "./public")

	// Repositories
	bleveIndexingService := bleveServices.NewIndexingService(config.Logger, indexPath)
	bleveServiceRepo, bleveInterfaceRepo := bleveRepositories.NewBleveRepository(bleveIndexingService)
	productRepo := ingestion_repositories.NewProductRepository(db)
	lotRepo := lots_repositories.NewLotRepository(db)
	uploadLogRepo := audit_repositories.NewUploadLogRepository(db)

	// Services
	sessions := ingestion_services.NewSessionRegistry(sessionTTL)
	mapper := ingestion_services.NewColumnMapper(classifier, config.Logger)
	uploader := ingestion_services.NewBatchUploader(productRepo, config.Logger)
	lotService := lots_services.NewLotService(lotRepo, productRepo, config.Logger)
	recorder := audit_services.NewRecorder(uploadLogRepo, config.Logger)

	// Background worker for error report e-mails
	asynqServer := asynq.NewServer(asynqRedisOpt, asynq.Config{Concurrency: 2})
	mux := asynq.NewServeMux()
	mux.Handle(tasks.TypeUploadErrorReport, tasks.NewUploadErrorReportProcessor(productRepo, baseURL))
	go func() {
		if err := asynqServer.Run(mux); err != nil {
			config.Logger.Error("Asynq server stopped", zap.Error(err))
		}
	}()

	appCtx := &middleware.AppContext{
		PasetoMaker: tokenMaker,
		Ctx:         ctx,
		RedisClient: redisClient,
	}

	ingestionController := &ingestion_controllers.IngestionController{
		DB:          db,
		ProductRepo: productRepo,
		LotService:  lotService,
		Recorder:    recorder,
		Sessions:    sessions,
		Mapper:      mapper,
		Uploader:    uploader,
		BleveRepo:   bleveInterfaceRepo,
		Hub:         wsHub,
		AsynqClient: asynqClient,
	}
	ingestion_routes.IngestionRouterInit(app, ingestionController, appCtx)

	lotController := &lots_controllers.LotController{
		LotRepo:    lotRepo,
		LotService: lotService,
		DB:         db,
	}
	lots_routes.LotRouterInit(app, lotController, appCtx)

	auditController := &audit_controllers.AuditController{
		UploadLogRepo: uploadLogRepo,
	}
	audit_routes.AuditRouterInit(app, auditController, appCtx)

	bleveController := bleveControllers.NewSearchController(bleveServiceRepo)
	bleveRoutes.InitBleveRoutes(app, bleveController)

	wsHandler := websocket.NewWsHandler(wsHub, tokenMaker)
	app.Get("/ws", wsHandler.HandleWebSocket)
	config.Logger.Info("WebSocket endpoint registered at /ws")

	cleanupCron := utils.StartScheduledCleanup(sessions)
	defer cleanupCron.Stop()

	config.Logger.Info("Server starting", zap.String("port", port))
	config.Logger.Fatal("Server failed", zap.String("port", port), zap.Error(app.Listen(":"+port)))
}
