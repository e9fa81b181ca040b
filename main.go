package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	api "github.com/rpupo63/melba-site-backend/api"
	"github.com/rpupo63/melba-site-backend/config"
	"github.com/rpupo63/melba-site-backend/database"
	"github.com/rpupo63/melba-site-backend/models"
	"github.com/rpupo63/melba-site-backend/services"
	"github.com/rpupo63/melba-site-backend/sessions"
	"github.com/rpupo63/melba-site-backend/storage"
)

func main() {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		fmt.Printf("Warning: Error loading .env file: %v\n", err)
	}

	ctx := context.Background()
	settings, _, err := config.Load(ctx)
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	setupLogging(settings)
	log.Info().Str("dbType", settings.DBType).Bool("production", settings.Production).Msg("Initializing app...")

	currentDB, db, err := openDatabase(settings)
	if err != nil {
		log.Fatal().Err(err).Msg("Error connecting to database")
	}

	if db != nil {
		// If generating models, run generation and exit
		if settings.GenerateCode {
			log.Info().Msg("Generating models and query helpers...")
			models.GenerateModels(db)
			return
		}

		// If generating column mismatch report, run report and exit
		if settings.ColumnReport {
			log.Info().Msg("Generating column mismatch report...")
			models.GenerateColumnMismatchReportStandalone(db)
			return
		}

		if settings.Migrate {
			if err := models.Migrate(db); err != nil {
				log.Fatal().Err(err).Msg("Error migrating database")
			}
			log.Info().Msg("Database migrated")
		}
	}

	deps, err := buildDependencies(ctx, settings, currentDB)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing services")
	}

	// Buffered so the listener can still report after shutdown begins.
	errChannel := make(chan error, 2)

	server, err := api.NewServer(settings, deps)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing server")
	}

	go server.Start(errChannel)

	// Listen for interrupt signals to gracefully shutdown the server
	go listenToInterrupt(errChannel)

	fatalErr := <-errChannel
	log.Info().Msgf("Closing server: %v", fatalErr)

	server.ShutdownGracefully(30 * time.Second)
}

func setupLogging(settings config.Settings) {
	level, err := zerolog.ParseLevel(settings.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	zerolog.TimeFieldFormat = time.RFC3339

	if settings.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}

// openDatabase returns the gorm handle too for postgres backends, so the
// maintenance modes can use it.
func openDatabase(settings config.Settings) (database.Database, *gorm.DB, error) {
	var dsn string
	switch settings.DBType {
	case "memory":
		log.Warn().Msg("Using in-memory storage; data is lost on restart")
		return database.NewMemory(), nil, nil
	case "supa":
		log.Info().Msg("Connecting to Supabase database...")
		dsn = settings.Supabase.DSN()
	default:
		log.Info().Msg("Connecting to Postgres database...")
		dsn = settings.DatabaseURL
	}

	db, err := database.Open(dsn, settings.ReplicaDSN)
	if err != nil {
		return database.Database{}, nil, err
	}
	return database.New(db), db, nil
}

func buildDependencies(ctx context.Context, settings config.Settings, db database.Database) (api.Dependencies, error) {
	mailer, err := newMailer(ctx, settings.Mail)
	if err != nil {
		return api.Dependencies{}, err
	}
	opts := []services.DispatcherOption{services.WithTimeout(settings.Mail.Timeout)}
	if settings.SMS.Enabled() {
		opts = append(opts, services.WithAlerter(services.NewSMSNotifier(
			settings.SMS.AccountSID, settings.SMS.AuthToken, settings.SMS.From, settings.SMS.To,
		)))
	}

	uploads, err := newUploadStore(ctx, settings.Upload)
	if err != nil {
		return api.Dependencies{}, err
	}

	sessionStore, err := newSessionStore(ctx, settings)
	if err != nil {
		return api.Dependencies{}, err
	}

	creds, err := sessions.NewCredentials(settings.AdminUsername, settings.AdminPassword, settings.AdminPasswordHash)
	if err != nil {
		return api.Dependencies{}, fmt.Errorf("admin credentials: %w", err)
	}

	return api.Dependencies{
		Database:    db,
		Notifier:    services.NewDispatcher(mailer, settings.Mail.ContactEmail, opts...),
		Sessions:    sessionStore,
		Credentials: creds,
		Uploads:     uploads,
	}, nil
}

func newMailer(ctx context.Context, mail config.MailSettings) (services.Mailer, error) {
	log.Info().Str("transport", mail.Transport).Msg("Configuring mail transport")
	switch mail.Transport {
	case "smtp":
		return services.NewSMTPMailer(services.SMTPConfig{
			Host:     mail.Host,
			Port:     mail.Port,
			User:     mail.User,
			Password: mail.Password,
			From:     mail.From,
			FromName: "Melba Community Center",
			Secure:   mail.Secure,
		})
	case "ses":
		return services.NewSESMailerFromRegion(ctx, mail.AWSRegion, mail.SESFrom)
	case "resend":
		return services.NewResendMailer(mail.ResendKey, mail.ResendFrom)
	default:
		return services.LogMailer{}, nil
	}
}

func newUploadStore(ctx context.Context, upload config.UploadSettings) (storage.Store, error) {
	if upload.Backend == "s3" {
		return storage.NewS3StoreFromRegion(ctx, upload.AWSRegion, storage.S3Config{
			Bucket:          upload.S3Bucket,
			Prefix:          upload.S3Prefix,
			PublicBaseURL:   upload.PublicBaseURL,
			Endpoint:        upload.S3Endpoint,
			AccessKeyID:     upload.S3AccessKeyID,
			SecretAccessKey: upload.S3SecretAccessKey,
		})
	}
	return storage.NewDiskStore(upload.Dir, storage.DefaultURLPrefix)
}

func newSessionStore(ctx context.Context, settings config.Settings) (sessions.Store, error) {
	if settings.SessionStore != "redis" {
		return sessions.NewMemoryStore(sessions.DefaultTTL), nil
	}
	opts, err := goredis.ParseURL(settings.RedisURL)
	if err != nil {
		return nil, fmt.Errorf("parse REDIS_URL: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}
	return sessions.NewRedisStore(client, sessions.DefaultTTL), nil
}

// listenToInterrupt waits for SIGINT or SIGTERM and then sends an error to the error channel.
func listenToInterrupt(errChannel chan<- error) {
	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)
	errChannel <- fmt.Errorf("%s", <-c)
}
