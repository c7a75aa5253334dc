package main

import (
	"database/sql"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/hibiken/asynq"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/robfig/cron"

	config "github.com/blogpilot/blogpilot/configs"
	"github.com/blogpilot/blogpilot/internal/api/handlers"
	"github.com/blogpilot/blogpilot/internal/api/middleware"
	job "github.com/blogpilot/blogpilot/internal/jobs"
	"github.com/blogpilot/blogpilot/internal/queue"
	"github.com/blogpilot/blogpilot/internal/repository"
	"github.com/blogpilot/blogpilot/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: Failed to load environment variables", err)
	}

	cfg := config.LoadConfig()

	db, err := sql.Open("postgres", cfg.PostgresURI)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer closeDB(db)

	if err := db.Ping(); err != nil {
		log.Fatalf("Database is unreachable: %v", err)
	}

	redisConn := asynq.RedisClientOpt{Addr: cfg.RedisURI}
	client := asynq.NewClient(redisConn)
	defer client.Close()

	app := fiber.New(fiber.Config{
		ReadTimeout:  10 * time.Minute,
		WriteTimeout: 10 * time.Minute,
		BodyLimit:    100 * 1024 * 1024, // 100 MB
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
		},
	})

	app.Use(logger.New())
	app.Use(cors.New(cors.Config{
		AllowOriginsFunc: func(origin string) bool {
			return true
		},
		AllowMethods:     "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           3600,
	}))

	userRepo := repository.NewUserRepository(db)
	requestRepo := repository.NewContentRequestRepository(db)
	contentRepo := repository.NewGeneratedContentRepository(db)
	scheduleRepo := repository.NewScheduleRepository(db)
	recordRepo := repository.NewRecordRepository(db)
	historyRepo := repository.NewHistoryRepository(db)
	storeRepo := repository.NewStoreRepository(db)
	mediaAssetRepo := repository.NewMediaAssetRepository(db)
	apiKeyRepo := repository.NewApiKeyRepository(db)

	authService := service.NewAuthService(*cfg, userRepo)
	userService := service.NewUserService(userRepo)
	apiKeyService := service.NewApiKeyService(apiKeyRepo)
	r2Service := service.NewR2Service(*cfg)
	pexelsService := service.NewPexelsService(cfg.PexelsAPIKey)
	mediaService := service.NewMediaService(mediaAssetRepo, pexelsService, r2Service)
	shopifyService := service.NewShopifyService(*cfg, storeRepo)

	providers := []service.TextProvider{
		service.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIModel),
		service.NewOpenAIProvider(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, cfg.OpenAIBackupModel),
		service.NewTemplateProvider(),
	}
	generationService := service.NewGenerationService(providers)

	schedulerService := service.NewSchedulerService(scheduleRepo, recordRepo, historyRepo, contentRepo, storeRepo, shopifyService)
	contentService := service.NewContentService(requestRepo, contentRepo, storeRepo, generationService, mediaService, schedulerService,
		time.Duration(cfg.BulkDelaySeconds)*time.Second)

	authMiddleware := middleware.NewAuthMiddleware(*cfg, apiKeyService)

	auth := handlers.NewAuthHandler(*cfg, authService)
	app.Get("/login", auth.Login)
	app.Get("/login/callback", auth.LoginCallbackHandler)

	store := handlers.NewStoreHandler(shopifyService, *cfg)
	app.Get("/stores/connect", store.ConnectStore)
	app.Get("/stores/callback", store.CallbackHandler)

	api := app.Group("/api")
	api.Use(authMiddleware.AuthMiddleware())

	user := handlers.NewUserHandler(userService)
	api.Get("/user/info", user.GetUserInfo)

	apiKeys := handlers.NewApiKeyHandler(apiKeyService)
	api.Post("/api_key/new", apiKeys.CreateApiKey)
	api.Get("/api_key/list", apiKeys.ListKeys)
	api.Post("/api_key/remove", apiKeys.RemoveAPIKey)

	content := handlers.NewContentHandler(contentService, client)
	api.Post("/content/generate", content.Generate)
	api.Post("/content/bulk", content.GenerateBulk)
	api.Get("/content", content.ListContents)

	schedule := handlers.NewScheduleHandler(schedulerService, client)
	api.Get("/schedules", schedule.ListSchedules)
	api.Get("/schedules/history", schedule.PublicationHistory)
	api.Post("/schedules/activate", schedule.ScheduleDraft)
	api.Post("/schedules/cancel", schedule.CancelSchedule)

	media := handlers.NewMediaHandler(mediaService)
	api.Post("/media/upload", media.UploadAssets)
	api.Get("/media", media.ListAssets)
	api.Post("/media/remove", media.RemoveAsset)

	// store management api routes
	api.Get("/stores", store.ListStores)
	api.Post("/stores/remove", store.DeleteStore)

	// cron jobs
	promoteJob := job.NewPromoteSchedulesJob(schedulerService)

	//queue
	queueW := queue.NewQueue(contentService, schedulerService)

	c := cron.New()
	c.AddFunc(fmt.Sprintf("@every 00h%02dm00s", cfg.PromoteIntervalMin), promoteJob.PromoteDue)
	c.Start()

	go func() {
		server := asynq.NewServer(redisConn, asynq.Config{
			Concurrency: 10,
		})

		mux := asynq.NewServeMux()
		mux.HandleFunc(queue.TaskTypeBulkGenerate, queueW.HandleBulkGenerateTask)
		mux.HandleFunc(queue.TaskTypePromoteSchedule, queueW.HandlePromoteScheduleTask)

		log.Println("Starting the Asynq server...")
		if err := server.Run(mux); err != nil {
			log.Fatalf("Could not start Asynq server: %v", err)
		}
	}()

	go func() {
		if err := app.Listen(":3000"); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()
	log.Println("Server is running on http://localhost:3000")

	gracefulShutdown(app, db)
}

func closeDB(db *sql.DB) {
	fmt.Fprint(os.Stdout, "Closing database connection... ")
	if err := db.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to close database: %v", err)
		return
	}
	fmt.Fprintln(os.Stdout, "Done")
}

func gracefulShutdown(app *fiber.App, db *sql.DB) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	<-quit
	log.Println("Shutting down server...")

	if err := app.Shutdown(); err != nil {
		log.Fatalf("Failed to shut down server: %v", err)
	}

	closeDB(db)
	log.Println("Server shutdown complete.")
}
