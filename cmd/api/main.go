package main

import (
	"log"

	_ "wabackend/api/swagger" // swagger docs
	"wabackend/internal/config"
	"wabackend/internal/database"
	"wabackend/internal/handler"
	"wabackend/internal/middleware"
	"wabackend/internal/repository"
	"wabackend/internal/service"
	"wabackend/internal/websocket"
	"wabackend/pkg/mailer"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

// @title           WhatsApp SaaS Backend API
// @version         1.0
// @description     Multi-tenant WhatsApp messaging backend: CS routing, orders, subscriptions, guarded by a privilege/module matrix.
// @host            localhost:8080
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()

	db, err := database.NewConnection(cfg.DSN)
	if err != nil {
		log.Fatalf("Database connection failed: %v", err)
	}
	log.Println("Connected to PostgreSQL successfully.")

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Database migration failed: %v", err)
	}

	middleware.InitAccessMiddleware(db, []byte(cfg.JWTSecret))

	// Set up WebSocket Hub
	wsHub := websocket.NewHub()
	go wsHub.Run()

	otpMailer := mailer.NewSMTPMailer(cfg.SMTPHost, cfg.SMTPPort, cfg.SMTPUser, cfg.SMTPPassword, cfg.MailFrom)

	// Set up dependencies (Repository -> Service -> Handler)
	txManager := repository.NewTransactionManager(db)
	userRepo := repository.NewUserRepository(db)
	privilegeRepo := repository.NewPrivilegeRepository(db)
	csRepo := repository.NewCustomerServiceRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	templateRepo := repository.NewTemplateRepository(db)
	subscriptionRepo := repository.NewSubscriptionRepository(db)
	auditRepo := repository.NewAuditRepository(db)
	analyticsRepo := repository.NewAnalyticsRepository(db)
	courseRepo := repository.NewCourseRepository(db)

	authService := service.NewAuthService(userRepo, txManager, otpMailer, cfg)
	privilegeService := service.NewPrivilegeService(privilegeRepo, txManager)
	csService := service.NewCustomerServiceService(csRepo, userRepo, subscriptionRepo, cfg)
	orderService := service.NewOrderService(orderRepo, csRepo, auditRepo, txManager, wsHub)
	templateService := service.NewTemplateService(templateRepo)
	subscriptionService := service.NewSubscriptionService(subscriptionRepo, userRepo, auditRepo, txManager, cfg)
	analyticsService := service.NewAnalyticsService(analyticsRepo, csRepo)
	auditService := service.NewAuditService(auditRepo)
	courseService := service.NewCourseService(courseRepo)

	// Initialize Handlers
	authHandler := handler.NewAuthHandler(authService)
	privilegeHandler := handler.NewPrivilegeHandler(privilegeService, authService)
	csHandler := handler.NewCustomerServiceHandler(csService)
	orderHandler := handler.NewOrderHandler(orderService)
	templateHandler := handler.NewTemplateHandler(templateService)
	subscriptionHandler := handler.NewSubscriptionHandler(subscriptionService)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, auditService, courseService)

	// Set up Gin Router
	router := gin.Default()

	// CORS configuration
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{"http://localhost:5173", "http://127.0.0.1:5173", "http://localhost:5174"} // Frontend URL
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{"Origin", "Content-Length", "Content-Type", "Authorization", "Accept"}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	router.Use(cors.New(corsConfig))

	// Swagger route
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "OK"})
	})

	// WebSocket endpoint
	router.GET("/ws", func(c *gin.Context) {
		websocket.ServeWs(wsHub, c, []byte(cfg.JWTSecret))
	})

	// Register API Routes
	authHandler.RegisterRoutes(router.Group(""))
	privilegeHandler.RegisterRoutes(router.Group(""))
	csHandler.RegisterRoutes(router.Group(""))
	orderHandler.RegisterRoutes(router.Group(""))
	templateHandler.RegisterRoutes(router.Group(""))
	subscriptionHandler.RegisterRoutes(router.Group(""))
	analyticsHandler.RegisterRoutes(router.Group(""))

	log.Printf("Server listening on :%s", cfg.Port)
	if err := router.Run(":" + cfg.Port); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}
