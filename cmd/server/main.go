package main

import (
	"database/sql"
	"net/http"
	"os"
	"time"

	_ "github.com/lib/pq"

	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/config"
	_ "github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/docs"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/adapters/auth"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/adapters/email"
	deliveryhttp "github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/controllers"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/delivery/http/middleware"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/repository/postgres"
	"github.com/TrizenCodeBase/TrizenCommunityBackend-sub000/internal/services"

	"golang.org/x/crypto/bcrypt"
)

const serviceTimeout = 10 * time.Second

// @title Trizen Community API
// @version 1.0
// @description Community events backend: accounts, events, registrations with capacity management, and speaker applications.
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg, err := config.Load()
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger := config.NewLogger()

	db, err := sql.Open("postgres", cfg.DBUrl)
	if err != nil {
		logger.Error("failed to open database", "err", err)
		os.Exit(1)
	}
	defer db.Close()
	if err := db.Ping(); err != nil {
		logger.Error("failed to ping database", "err", err)
		os.Exit(1)
	}

	// Repositories
	userRepo := postgres.NewUserRepository(db)
	roleRepo := postgres.NewRoleRepository(db)
	eventRepo := postgres.NewEventRepository(db)
	regRepo := postgres.NewRegistrationRepository(db)
	speakerRepo := postgres.NewSpeakerApplicationRepository(db)

	// Adapters
	hasher := auth.NewBcryptHasher(bcrypt.DefaultCost)
	tokenIssuer := auth.NewJWTIssuer(cfg.JWTSecret)
	tokenVerifier := auth.NewJWTVerifier(cfg.JWTSecret)
	mailer, err := email.NewMailer(email.MailerConfig{
		Provider:    cfg.EmailProvider,
		FromAddress: cfg.EmailFrom,
		FromName:    cfg.EmailFromName,
		SES: email.SESConfig{
			Region:             cfg.AWSRegion,
			AccessKeyID:        cfg.AWSAccessKeyID,
			SecretAccessKey:    cfg.AWSSecretAccessKey,
			InsecureSkipVerify: cfg.SESInsecureSkipVerify,
		},
	})
	if err != nil {
		logger.Error("failed to create mailer", "err", err)
		os.Exit(1)
	}

	// Services
	emailService := services.NewEmailService(mailer, email.NewTemplateRenderer())
	userService := services.NewUserService(userRepo, roleRepo, hasher, tokenIssuer, cfg.TokenExpiry, emailService, logger)
	eventService := services.NewEventService(eventRepo, roleRepo, serviceTimeout)
	registrationService := services.NewRegistrationService(eventRepo, regRepo, userRepo, roleRepo, emailService, logger, cfg.ReleaseSpotOnCancel, serviceTimeout)
	speakerService := services.NewSpeakerService(eventRepo, speakerRepo, roleRepo, serviceTimeout)

	// HTTP delivery
	authController := controllers.NewAuthController(logger, userService)
	userController := controllers.NewUserController(logger, userService)
	eventController := controllers.NewEventController(logger, eventService)
	registrationController := controllers.NewRegistrationController(logger, registrationService)
	speakerController := controllers.NewSpeakerController(logger, speakerService)

	requireAuth := middleware.RequireAuth(tokenVerifier, logger)
	mux := deliveryhttp.NewRouter(authController, userController, eventController, registrationController, speakerController, requireAuth)

	handler := middleware.LoggingMiddleware(logger, middleware.CORS(cfg.CORSAllowedOrigins, mux))

	addr := ":" + cfg.Port
	logger.Info("server starting", "addr", addr, "env", cfg.Environment)
	if err := http.ListenAndServe(addr, handler); err != nil {
		logger.Error("server stopped", "err", err)
		os.Exit(1)
	}
}
