package main

import (
	"context"
	"encoding/hex"
	"log"
	"net/http"

	"github.com/campuseats/campuseats/config"
	"github.com/campuseats/campuseats/internal/auth"
	handler "github.com/campuseats/campuseats/internal/handler/http"
	"github.com/campuseats/campuseats/internal/payment"
	"github.com/campuseats/campuseats/internal/repository"
	"github.com/campuseats/campuseats/internal/repository/memory"
	"github.com/campuseats/campuseats/internal/repository/postgres"
	"github.com/campuseats/campuseats/internal/service"
	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// development fallback; override with AUTH_TOKEN_KEY
const devAuthTokenKey = "f53ac685bbceebd75043e6be2e06ee07"

// stores groups the storage-port interfaces so the memory and postgres
// implementations are interchangeable at wiring time.
type stores struct {
	users       service.UserRepository
	restaurants interface {
		service.RestaurantRepository
		service.RestaurantWriter
		service.RestaurantAccountRepository
	}
	menu interface {
		service.MenuRepository
		service.MenuReader
	}
	orders interface {
		service.OrderRepository
		service.PaymentOrderRepository
	}
}

// newLogger creates logger with log level
func newLogger(level string) (*zap.Logger, error) {

	loggerLvl, err := zap.ParseAtomicLevel(level)
	if err != nil {
		return nil, err
	}
	loggerCfg := zap.NewProductionConfig()
	loggerCfg.Level = loggerLvl

	return loggerCfg.Build()
}

func main() {

	// create new config
	cfg, err := config.New()
	if err != nil {
		log.Fatalf("Error loading config: %v", err)
	}

	// initialize logger
	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("Error initializing logger: %v", err)
	}
	defer logger.Sync()

	// create context
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var st stores

	if cfg.DatabaseDSN != "" {
		// initialize database
		db, err := postgres.New(ctx, cfg.DatabaseDSN)
		if err != nil {
			logger.Fatal("Error initializing database", zap.Error(err))
		}
		defer db.Close()

		// migrate database
		if err := db.Migrate(); err != nil {
			logger.Fatal("Error migrating database", zap.Error(err))
		}

		st.users = repository.NewUserRepository(db)
		st.restaurants = repository.NewRestaurantRepository(db)
		st.menu = repository.NewMenuRepository(db)
		st.orders = repository.NewOrderRepository(db)
	} else {
		logger.Warn("No database DSN configured, using in-memory store")
		mem := memory.NewStore()
		st.users = mem
		st.restaurants = mem
		st.menu = mem
		st.orders = mem
	}

	tokenKeyHex := cfg.AuthTokenKey
	if tokenKeyHex == "" {
		tokenKeyHex = devAuthTokenKey
	}
	tokenKey, err := hex.DecodeString(tokenKeyHex)
	if err != nil {
		logger.Fatal("Error extracting token key", zap.Error(err))
	}
	token := auth.NewAuthToken(tokenKey)

	stripeClient := payment.NewClient(cfg.StripeSecretKey)

	// dependency injection
	// user
	userService := service.NewUserService(st.users, st.restaurants)
	userHandler := handler.NewUserHandler(userService, token)

	// restaurant
	restaurantService := service.NewRestaurantService(st.restaurants)
	restaurantHandler := handler.NewRestaurantHandler(restaurantService)

	// menu
	menuService := service.NewMenuService(st.menu, st.restaurants)
	menuHandler := handler.NewMenuHandler(menuService)

	// order
	orderService := service.NewOrderService(st.orders, st.menu, st.restaurants)
	orderHandler := handler.NewOrderHandler(orderService)

	// payment
	paymentService := service.NewPaymentService(st.orders, st.restaurants, st.users, stripeClient, cfg.Currency)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	webhookHandler := handler.NewWebhookHandler(paymentService, logger)

	router := chi.NewRouter()

	router.Use(handler.Logging(logger))

	router.Post("/api/auth/student/signup", userHandler.StudentSignup())
	router.Post("/api/auth/restaurant/signup", userHandler.RestaurantSignup())
	router.Post("/api/auth/login", userHandler.Login())
	router.Get("/api/restaurants", restaurantHandler.ListRestaurants())
	router.Get("/api/restaurants/{id}", restaurantHandler.GetRestaurant())
	router.Get("/api/restaurants/{id}/menu", menuHandler.ListMenu())
	router.Post("/api/stripe/webhook", webhookHandler.HandleEvent())

	// routes that require authentication
	router.Group(func(group chi.Router) {
		group.Use(handler.AuthMiddleware(token))
		group.Put("/api/restaurants/{id}", restaurantHandler.UpdateRestaurant())
		group.Post("/api/restaurants/{id}/menu", menuHandler.CreateMenuItem())
		group.Put("/api/menu-items/{id}", menuHandler.UpdateMenuItem())
		group.Delete("/api/menu-items/{id}", menuHandler.DeleteMenuItem())
		group.Post("/api/restaurants/{id}/connect-account", paymentHandler.CreateConnectAccount())
		group.Post("/api/orders", orderHandler.CreateOrder())
		group.Get("/api/orders/student/{id}", orderHandler.ListStudentOrders())
		group.Get("/api/orders/restaurant/{id}", orderHandler.ListRestaurantOrders())
		group.Put("/api/orders/{id}/status", orderHandler.UpdateOrderStatus())
		group.Post("/api/orders/{id}/payment-intent", paymentHandler.CreatePaymentIntent())
		group.Post("/api/orders/{id}/confirm-payment", paymentHandler.ConfirmPayment())
	})

	logger.Info("Running server", zap.String("addr", cfg.ServerAddr))

	if err := http.ListenAndServe(cfg.ServerAddr, router); err != nil {
		logger.Fatal("Error starting server", zap.Error(err))
	}
}
