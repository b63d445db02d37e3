package app

import (
	"context"
	"fmt"
	"os"
	"time"

	"digiread/internal/auth"
	"digiread/internal/config"
	"digiread/internal/handlers"
	"digiread/internal/logging"
	"digiread/internal/middleware"
	"digiread/internal/pdf"
	"digiread/internal/repositories"
	"digiread/internal/routes"
	"digiread/internal/services"
	"digiread/internal/storage"
	"digiread/internal/validation"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "digiread/docs"
)

func Run() {
	cfg := config.LoadConfig()
	log := logging.New(os.Stdout, !cfg.IsDevelopment())
	ctx := context.Background()

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	// === DB ===
	client, err := repositories.Connect(ctx, cfg.Database.URI)
	if err != nil {
		fatal(log, "database connection failed", err)
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error(ctx, "database disconnect failed", "error", err)
		}
	}()
	db := client.Database(cfg.Database.Name)
	if err := repositories.EnsureIndexes(ctx, db); err != nil {
		fatal(log, "index setup failed", err)
	}

	// === Repos ===
	userRepo := repositories.NewUserRepository(db)
	tokenRepo := repositories.NewVerificationTokenRepository(db)
	authorRepo := repositories.NewAuthorRepository(db)
	bookRepo := repositories.NewBookRepository(db)
	reviewRepo := repositories.NewReviewRepository(db)
	historyRepo := repositories.NewHistoryRepository(db)
	cartRepo := repositories.NewCartRepository(db)
	orderRepo := repositories.NewOrderRepository(db)

	// === Infra ===
	store, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		fatal(log, "object storage setup failed", err)
	}
	mail := services.NewEmailService(
		cfg.Email.SMTPHost,
		cfg.Email.SMTPPort,
		cfg.Email.SMTPUser,
		cfg.Email.SMTPPassword,
		cfg.Email.FromEmail,
		cfg.Email.FromName,
	)
	// falls back to core Helvetica when the font file is absent
	receipts := pdf.NewReceiptGenerator("assets/fonts/DejaVuSans.ttf")
	snapClient := services.NewSnapClient(cfg.Midtrans.ServerKey, cfg.Midtrans.Production)

	// === Services ===
	authService := services.NewAuthService(
		userRepo,
		tokenRepo,
		mail,
		auth.NewSigner(cfg.Auth.JWTSecret),
		services.AuthConfig{
			VerificationLink: cfg.Auth.VerificationLink,
			AuthSuccessURL:   cfg.Auth.AuthSuccessURL,
		},
		log,
	)
	userService := services.NewUserService(userRepo, authorRepo, store, log)
	authorService := services.NewAuthorService(authorRepo, userRepo, bookRepo, log)
	bookService := services.NewBookService(bookRepo, authorRepo, historyRepo, store, cfg.Files.RootDir, log)
	reviewService := services.NewReviewService(reviewRepo, bookRepo)
	historyService := services.NewHistoryService(historyRepo)
	cartService := services.NewCartService(cartRepo, bookRepo)
	checkoutService := services.NewCheckoutService(cartRepo, bookRepo, orderRepo, snapClient, log)
	paymentService := services.NewPaymentService(orderRepo, userRepo, bookRepo, cartRepo, store, receipts, cfg.Midtrans.ServerKey, log)

	// === Handlers ===
	cookie := middleware.SessionCookie{Development: cfg.IsDevelopment(), TTL: auth.CredentialTTL}
	h := routes.Handlers{
		Auth:     handlers.NewAuthHandler(authService, cookie),
		Verify:   handlers.NewVerifyHandler(authService),
		User:     handlers.NewUserHandler(userService, cookie),
		Author:   handlers.NewAuthorHandler(authorService),
		Book:     handlers.NewBookHandler(bookService),
		Review:   handlers.NewReviewHandler(reviewService),
		History:  handlers.NewHistoryHandler(historyService),
		Cart:     handlers.NewCartHandler(cartService),
		Checkout: handlers.NewCheckoutHandler(checkoutService),
		Payment:  handlers.NewPaymentHandler(paymentService),
	}

	// === Gin ===
	validation.Register()
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{cfg.Server.AppURL},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
	router.Use(middleware.ErrorHandler(log))

	// Swagger
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	routes.SetupRoutes(router, authService, h)

	// === Run ===
	listenAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Info(ctx, "server started", "addr", listenAddr, "env", cfg.Server.Env)
	if err := router.Run(listenAddr); err != nil {
		fatal(log, "server stopped", err)
	}
}

func fatal(log logging.Logger, msg string, err error) {
	log.Error(context.Background(), msg, "error", err)
	os.Exit(1)
}
