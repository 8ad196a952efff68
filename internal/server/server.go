package server

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jmoiron/sqlx"

	"clubboard/internal/auth"
	"clubboard/internal/config"
	"clubboard/internal/email"
	"clubboard/internal/feed"
	"clubboard/internal/reservation"
	"clubboard/internal/schedule"
	"clubboard/internal/user"
)

type Server struct {
	router *gin.Engine
	http   *http.Server
	db     *sqlx.DB
	config *config.Config
	feed   *feed.Feed
	email  *email.Service
}

func New(db *sqlx.DB, cfg *config.Config, changeFeed *feed.Feed, emailService *email.Service, recurring []schedule.RecurringSlot) *Server {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(corsMiddleware())
	router.Use(RequestLoggingMiddleware())
	router.Use(MetricsMiddleware())
	router.Use(RateLimitMiddleware(20, 40))

	userRepo := user.NewRepository(db)
	userService := user.NewService(userRepo, cfg.JWTSecret)
	userHandler := user.NewHandler(userService)

	reservationRepo := reservation.NewRepository(db)
	reservationService := reservation.NewService(
		reservation.Config{
			OpeningHour: cfg.OpeningHour,
			ClosingHour: cfg.ClosingHour,
			Capacity:    cfg.SlotCapacity,
			Recurring:   recurring,
		},
		reservationRepo,
		userRepo,
		changeFeed,
		emailService,
	)
	reservationHandler := reservation.NewHandler(reservationService)

	public := router.Group("/auth")
	{
		public.POST("/register", userHandler.Register)
		public.POST("/login", userHandler.Login)
		public.POST("/refresh", userHandler.Refresh)
	}

	// The board is publicly viewable; a session only enriches it with the
	// caller's own reservations and lets clicks get past auth_required.
	board := router.Group("/")
	board.Use(auth.OptionalAuthMiddleware(cfg.JWTSecret))
	{
		board.GET("/board", reservationHandler.Board)
		board.POST("/board/click", reservationHandler.Click)
		board.GET("/board/events", Events(changeFeed))
	}

	authMiddleware := auth.AuthMiddleware(cfg.JWTSecret)
	protected := router.Group("/")
	protected.Use(authMiddleware)
	{
		protected.GET("/me", userHandler.GetMe)
		protected.DELETE("/reservations/:reservationID", reservationHandler.Cancel)
	}

	admin := router.Group("/admin")
	admin.Use(authMiddleware, auth.RequireRole(auth.RoleAdmin))
	{
		admin.GET("/reservations", reservationHandler.AdminList)
		admin.DELETE("/reservations/:reservationID", reservationHandler.AdminCancel)
		admin.PUT("/users/:userID/role", userHandler.SetRole)
	}

	router.GET("/health", Health)
	router.GET("/metrics", Metrics())
	router.GET("/test-email", TestEmail(emailService))

	return &Server{
		router: router,
		db:     db,
		config: cfg,
		feed:   changeFeed,
		email:  emailService,
	}
}

func (s *Server) Start(port string) error {
	s.http = &http.Server{
		Addr:              ":" + port,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s.http.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	if s.http == nil {
		return nil
	}
	return s.http.Shutdown(ctx)
}

func corsMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}
		c.Next()
	}
}
