// main.go
package main

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"inohax-registration/config"
	"inohax-registration/controllers"
	"inohax-registration/logger"
	"inohax-registration/middleware"
	"inohax-registration/services"
	"inohax-registration/store"
	"inohax-registration/websocket"
)

// setupRouter wires every route onto a fresh engine. It takes the store and
// connection contracts rather than the Mongo implementations so tests can
// exercise the full route table with in-memory fakes.
func setupRouter(cfg *config.Config, conn services.Connector, registrations store.RegistrationStore, admins store.AdminStore, notifier services.Notifier) *gin.Engine {
	// Live feed for admin dashboards.
	feed := websocket.NewHub()
	go feed.Run()

	registrationService := services.NewRegistrationService(
		conn, registrations, notifier, feed,
		cfg.RegistrationClose, cfg.RegistrationsDisabled,
	)

	registrationController := controllers.NewRegistrationController(registrationService, cfg.ApplicationURL)
	adminController := controllers.NewAdminController(registrations)
	adminUsersController := controllers.NewAdminUsersController(admins)
	authController := controllers.NewAuthController(admins, conn, cfg.TokenSecret, cfg.BreakGlassUser, cfg.BreakGlassPassword)

	router := gin.Default()

	// Session store for admin dashboard logins.
	sessionStore := cookie.NewStore([]byte(cfg.SessionSecret))
	sessionStore.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400, // 1 day
		HttpOnly: true,
		Secure:   cfg.Env == "production",
		SameSite: http.SameSiteLaxMode,
	})
	router.Use(sessions.Sessions("inohax_admin", sessionStore))

	router.GET("/health", controllers.Health)

	api := router.Group("/api")
	{
		api.POST("/registration", registrationController.Register)
		api.POST("/test-registration", registrationController.TestRegister)
		api.GET("/registration/qrcode", registrationController.ConfirmationQRCode)
		api.POST("/admin/login", authController.PerformAdminLogin)
	}

	adminAPI := api.Group("/admin", middleware.AdminAuth(middleware.AuthConfig{
		Admins:             admins,
		Conn:               conn,
		TokenSecret:        cfg.TokenSecret,
		BreakGlassUser:     cfg.BreakGlassUser,
		BreakGlassPassword: cfg.BreakGlassPassword,
	}))
	{
		adminAPI.GET("/registrations", adminController.ListRegistrations)
		adminAPI.DELETE("/registrations", adminController.DeleteRegistration)

		adminAPI.GET("/users", adminUsersController.List)
		adminAPI.POST("/users", adminUsersController.Create)
		adminAPI.PUT("/users", adminUsersController.Update)
		adminAPI.DELETE("/users", adminUsersController.Delete)

		adminAPI.GET("/feed", func(c *gin.Context) {
			feed.ServeWS(c.Writer, c.Request)
		})
	}

	return router
}

func main() {
	gin.SetMode(gin.ReleaseMode)

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	logger.SetLogLevel(cfg.Env)

	if cfg.MetricsEnabled {
		services.EnableMetrics()
	}

	// Persistence: one connection manager shared by every store. Nothing
	// dials the database until the first request needs it.
	conn := store.NewConnectionManager(cfg.MongoURL, cfg.DBName)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := conn.Disconnect(ctx); err != nil {
			logger.Warn.Printf("main: error disconnecting database: %v", err)
		}
	}()

	registrations := store.NewMongoRegistrationStore(conn)
	admins := store.NewMongoAdminStore(conn)
	notifier := services.NewEmailNotifier(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailUser, cfg.EmailPass, cfg.AdminEmail)

	router := setupRouter(cfg, conn, registrations, admins, notifier)

	logger.Info.Printf("main: starting server on %s", cfg.Addr())
	if err := router.Run(cfg.Addr()); err != nil {
		log.Fatalf("Failed to run server: %v", err)
	}
}
