package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/community-api/internal/config"
	"github.com/yourusername/community-api/internal/handler"
	"github.com/yourusername/community-api/internal/middleware"
	pgRepo "github.com/yourusername/community-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/community-api/internal/repository/redis"
	"github.com/yourusername/community-api/internal/scheduler"
	"github.com/yourusername/community-api/internal/service"
	"github.com/yourusername/community-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis с использованием унифицированной конфигурации
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Таймзона сообщества: по ней считаются дневные границы лимитов
	// и смена "сегодняшнего" вопроса
	loc := cfg.Quiz.Location()
	log.Printf("Таймзона дневных границ: %s", loc)

	// Инициализируем репозитории
	pointRepo := pgRepo.NewActivityPointRepo(db)
	typeRepo := pgRepo.NewActivityTypeConfigRepo(db)
	logRepo := pgRepo.NewAccumulationLogRepo(db)
	historyRepo := pgRepo.NewPointAwardHistoryRepo(db)
	questionRepo := pgRepo.NewQuizQuestionRepo(db)
	categoryRepo := pgRepo.NewQuizCategoryRepo(db)
	quizConfigRepo := pgRepo.NewQuizConfigRepo(db)
	publishRepo := pgRepo.NewQuizPublishHistoryRepo(db)
	answerRepo := pgRepo.NewQuizAnswerRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Инициализируем сервисы
	pointService := service.NewPointService(pointRepo, typeRepo, logRepo, historyRepo, cacheRepo, db, loc)
	questionService := service.NewQuestionService(questionRepo, categoryRepo)
	quizService := service.NewQuizService(questionRepo, publishRepo, answerRepo, quizConfigRepo, cacheRepo, pointService, loc)

	// Заполняем реестр типов активности стартовыми значениями
	if err := pointService.SeedDefaultConfigs(); err != nil {
		log.Printf("Failed to seed activity types: %v", err)
		os.Exit(1)
	}

	// Планировщик дневного цикла квиза
	quizScheduler := scheduler.NewScheduler(quizService, loc)
	if err := quizScheduler.Start(); err != nil {
		log.Printf("Failed to start quiz scheduler: %v", err)
		os.Exit(1)
	}
	defer quizScheduler.Stop()

	// Инициализируем обработчики
	pointHandler := handler.NewPointHandler(pointService)
	quizHandler := handler.NewQuizHandler(quizService, questionService, quizScheduler)

	// Rate limiting на базе Redis
	rateLimiter := middleware.NewRateLimiter(redisClient)

	// Инициализируем роутер Gin
	router := gin.Default()

	isProduction := gin.Mode() == gin.ReleaseMode

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	// В production (GIN_MODE=release): не доверяем прокси (защита от IP spoofing)
	// В development: доверяем localhost
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS. API закрыт ключом и вызывается только gateway,
	// но админ-панель ходит из браузера.
	router.Use(cors.New(cors.Config{
		AllowOrigins:  []string{"http://localhost:5173", "http://localhost:3000"},
		AllowMethods:  []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:  []string{"Origin", "Content-Type", "Accept", middleware.APIKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders: []string{"Content-Length", "Content-Disposition", middleware.RequestIDHeader},
		MaxAge:        12 * time.Hour,
	}))

	router.Use(middleware.RequestID())

	// Проверка живости (без ключа, для оркестратора)
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Настраиваем маршруты API
	api := router.Group("/api")
	api.Use(middleware.APIKeyAuth(cfg.Server.APIKey))
	api.Use(rateLimiter.LimitByIP(middleware.DefaultAPIRateLimitConfig()))
	{
		// Очки активности
		points := api.Group("/points")
		{
			points.POST("/accumulate", pointHandler.Accumulate)
			points.DELETE("", pointHandler.ResetAllPoints)

			points.GET("/ranking", pointHandler.GetRanking)
			points.GET("/ranking/export",
				rateLimiter.Limit(middleware.ExportRateLimitConfig()),
				pointHandler.ExportRanking)

			points.GET("/activity-types", pointHandler.GetActivityTypes)
			points.PUT("/activity-types/:type", pointHandler.SetActivityType)

			users := points.Group("/users/:user_id")
			{
				users.GET("", pointHandler.GetUserPoints)
				users.PUT("", pointHandler.SetPoints)
				users.DELETE("", pointHandler.ResetUserPoints)
				users.POST("/adjust", pointHandler.AdjustPoints)
				users.GET("/history", pointHandler.GetPointHistory)
			}
		}

		// Дневной квиз
		quiz := api.Group("/quiz")
		{
			quiz.GET("/config", quizHandler.GetQuizConfig)
			quiz.PUT("/config", quizHandler.SetQuizConfig)

			quiz.GET("/today", quizHandler.GetTodayQuiz)
			quiz.GET("/today/stats", quizHandler.GetAnswerStats)
			quiz.PUT("/today/message", quizHandler.SetTodayMessageID)

			quiz.POST("/publish", quizHandler.PublishQuiz)
			quiz.POST("/reveal", quizHandler.RevealQuiz)
			quiz.POST("/answers", quizHandler.SubmitAnswer)

			// Банк вопросов
			questions := quiz.Group("/questions")
			{
				questions.POST("", quizHandler.RegisterQuestions)
				questions.GET("", quizHandler.ListQuestions)

				questionWithID := questions.Group("/:id")
				questionWithID.Use(middleware.ExtractUintParam("id", "questionID"))
				{
					questionWithID.GET("", quizHandler.GetQuestion)
					questionWithID.DELETE("", quizHandler.DeleteQuestion)
				}
			}

			// Категории
			categories := quiz.Group("/categories")
			{
				categories.POST("", quizHandler.CreateCategory)
				categories.GET("", quizHandler.ListCategories)

				categoryWithID := categories.Group("/:id")
				categoryWithID.Use(middleware.ExtractUintParam("id", "categoryID"))
				{
					categoryWithID.DELETE("", quizHandler.DeleteCategory)
				}
			}
		}
	}

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	quizScheduler.Stop()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	if err := redisClient.Close(); err != nil {
		log.Printf("Error closing Redis client: %v", err)
	}

	log.Println("Server exited properly")
}
