package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/time/rate"

	"github.com/spendwise/api/internal/command"
	"github.com/spendwise/api/internal/config"
	"github.com/spendwise/api/internal/events"
	"github.com/spendwise/api/internal/handler"
	"github.com/spendwise/api/internal/mailer"
	"github.com/spendwise/api/internal/middleware"
	"github.com/spendwise/api/internal/models"
	"github.com/spendwise/api/internal/query"
	redisclient "github.com/spendwise/api/internal/redis"
	"github.com/spendwise/api/internal/repository"
	"github.com/spendwise/api/internal/token"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Database connection (write store)
	db, err := sql.Open("postgres", cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.Ping(); err != nil {
		log.Fatalf("Failed to ping database: %v", err)
	}
	if err := repository.RunMigrations(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Redis connection (summary cache + event streaming)
	redis, err := redisclient.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	defer redis.Close()

	var mail mailer.Mailer = mailer.LogMailer{}
	if cfg.SendGridAPIKey != "" {
		mail = mailer.NewSendGrid(cfg.SendGridAPIKey, cfg.EmailFrom, cfg.EmailFromName)
	}

	// --- CQRS wiring ---
	publisher := events.NewPublisher(redis.Client)
	tokens := token.NewManager(cfg.JWTSecret, cfg.TokenTTL)

	userRepo := repository.NewUserRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	transactionRepo := repository.NewTransactionRepository(db)

	summaryCache := redisclient.NewViewCache[models.DashboardSummary](redis.Client, 0)
	dashboardQry := query.NewDashboardQueryService(transactionRepo, userRepo, summaryCache)

	authCmd := command.NewAuthCommandService(userRepo, mail, publisher, cfg.OTPTTL)
	authQry := query.NewAuthQueryService(userRepo, tokens)
	categoryCmd := command.NewCategoryCommandService(categoryRepo, publisher)
	categoryQry := query.NewCategoryQueryService(categoryRepo)
	transactionCmd := command.NewTransactionCommandService(transactionRepo, categoryRepo, dashboardQry, publisher)
	transactionQry := query.NewTransactionQueryService(transactionRepo)
	userCmd := command.NewUserCommandService(userRepo, dashboardQry, publisher)
	userQry := query.NewUserQueryService(userRepo)

	authHandler := handler.NewAuthHandler(authCmd, authQry, int(cfg.TokenTTL.Seconds()))
	categoryHandler := handler.NewCategoryHandler(categoryCmd, categoryQry)
	incomeHandler := handler.NewTransactionHandler(models.KindIncome, transactionCmd, transactionQry)
	expenseHandler := handler.NewTransactionHandler(models.KindExpense, transactionCmd, transactionQry)
	userHandler := handler.NewUserHandler(userCmd, userQry)
	dashboardHandler := handler.NewDashboardHandler(dashboardQry)

	// Setup router
	router := gin.Default()
	router.Use(middleware.RequestLogger())

	authRequired := middleware.RequireAuth(tokens, userRepo)
	adminOnly := middleware.Authorize(models.RoleAdmin)
	userOnly := middleware.Authorize(models.RoleUser)
	authLimiter := middleware.NewRateLimiter(rate.Limit(1), 5)

	api := router.Group("/api")
	{
		auth := api.Group("/auth")
		{
			auth.POST("/signup", authLimiter.Middleware(), authHandler.SignUp)
			auth.POST("/signin", authLimiter.Middleware(), authHandler.SignIn)
			auth.POST("/verify-email", authHandler.VerifyEmail)
			auth.POST("/resend-otp", authLimiter.Middleware(), authHandler.ResendOTP)
			auth.POST("/signout", authRequired, authHandler.SignOut)
			auth.GET("/me", authRequired, authHandler.Me)
			auth.POST("/change-password", authRequired, authHandler.ChangePassword)
		}

		categories := api.Group("/categories", authRequired)
		{
			categories.GET("", categoryHandler.List)
			categories.GET("/:id", categoryHandler.Get)
			categories.POST("", adminOnly, categoryHandler.Create)
			categories.PUT("/:id", adminOnly, categoryHandler.Update)
			categories.DELETE("/:id", adminOnly, categoryHandler.Delete)
		}

		income := api.Group("/income", authRequired)
		{
			income.GET("", incomeHandler.List)
			income.POST("", incomeHandler.Create)
			income.PUT("/:id", incomeHandler.Update)
			income.DELETE("/:id", incomeHandler.Delete)
		}

		expenses := api.Group("/expenses", authRequired)
		{
			expenses.GET("", expenseHandler.List)
			expenses.POST("", expenseHandler.Create)
			expenses.PUT("/:id", expenseHandler.Update)
			expenses.DELETE("/:id", expenseHandler.Delete)
		}

		dashboard := api.Group("/dashboard", authRequired)
		{
			dashboard.GET("/summary", userOnly, dashboardHandler.UserSummary)
			dashboard.GET("/category-expense", userOnly, dashboardHandler.CategoryWiseExpense)
			dashboard.GET("/admin-summary", adminOnly, dashboardHandler.AdminSummary)
			dashboard.GET("/transactions-trend", adminOnly, dashboardHandler.TransactionsTrend)
		}

		users := api.Group("/users", authRequired, adminOnly)
		{
			users.GET("", userHandler.List)
			users.GET("/:id", userHandler.Get)
			users.POST("", userHandler.Create)
			users.PUT("/:id", userHandler.Update)
			users.DELETE("/:id", userHandler.Delete)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Subscriber keeps cached summaries honest even when rows are written by
	// another instance of the service.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		subscriber := events.NewSubscriber(redis.Client, events.SubscriberConfig{
			Group:    "dashboard-group",
			Consumer: "dashboard-consumer-1",
			Stream:   events.TransactionEventsStream,
			Handler: func(ctx context.Context, event events.Event) error {
				raw, err := json.Marshal(event.Data)
				if err != nil {
					return err
				}
				var data events.TransactionEvent
				if err := json.Unmarshal(raw, &data); err != nil {
					return err
				}
				dashboardQry.InvalidateSummary(ctx, data.UserID)
				return nil
			},
		})
		if err := subscriber.Start(ctx); err != nil {
			log.Printf("Subscriber stopped: %v", err)
		}
	}()

	// Graceful shutdown
	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan
		log.Println("Shutting down...")
		cancel()
	}()

	log.Printf("Spendwise API starting on port %s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
