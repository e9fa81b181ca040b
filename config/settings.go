package config

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// Settings is the typed view of the environment used at startup.
type Settings struct {
	Port       string
	Production bool

	DBType       string
	DatabaseURL  string
	ReplicaDSN   string
	Supabase     SupabaseSettings
	Migrate      bool
	GenerateCode bool
	ColumnReport bool

	SessionStore string
	RedisURL     string

	AdminUsername     string
	AdminPassword     string
	AdminPasswordHash string

	Mail MailSettings
	SMS  SMSSettings

	Upload UploadSettings

	AcceptedOrigins []string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration

	LogLevel  string
	LogFormat string
}

type SupabaseSettings struct {
	Host     string
	User     string
	Password string
	Name     string
	Port     string
}

func (s SupabaseSettings) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=require",
		s.Host, s.User, s.Password, s.Name, s.Port)
}

type MailSettings struct {
	Transport    string
	Host         string
	Port         int
	User         string
	Password     string
	From         string
	ContactEmail string
	Timeout      time.Duration

	AWSRegion   string
	SESFrom     string
	ResendKey   string
	ResendFrom  string
	Acknowledge bool
	Secure      bool
}

type SMSSettings struct {
	AccountSID string
	AuthToken  string
	From       string
	To         string
}

func (s SMSSettings) Enabled() bool {
	return s.AccountSID != "" && s.AuthToken != "" && s.From != "" && s.To != ""
}

type UploadSettings struct {
	Backend       string
	Dir           string
	S3Bucket      string
	S3Prefix      string
	PublicBaseURL string
	AWSRegion     string
	MaxBytes      int64

	S3Endpoint        string
	S3AccessKeyID     string
	S3SecretAccessKey string
}

// Load snapshots the environment, overlays SSM parameters when
// AWS_SSM_PARAMETER_PATH is set and returns the typed settings.
func Load(ctx context.Context) (Settings, map[string]string, error) {
	c := New()
	if path := GetString(c, "AWS_SSM_PARAMETER_PATH", ""); path != "" {
		if err := OverlaySSM(ctx, c, path); err != nil {
			return Settings{}, nil, err
		}
	}
	s, err := FromMap(c)
	return s, c, err
}

func FromMap(c map[string]string) (Settings, error) {
	env := strings.ToLower(GetString(c, "APP_ENV", GetString(c, "NODE_ENV", "development")))
	region := GetString(c, "AWS_REGION", "us-east-1")

	s := Settings{
		Port:       GetString(c, "PORT", "8080"),
		Production: env == "production",

		DBType:      strings.ToLower(GetString(c, "DB_TYPE", "memory")),
		DatabaseURL: GetString(c, "DATABASE_URL", ""),
		ReplicaDSN:  GetString(c, "DB_REPLICA_DSN", ""),
		Supabase: SupabaseSettings{
			Host:     GetString(c, "SUPABASE_DB_HOST", ""),
			User:     GetString(c, "SUPABASE_DB_USER", ""),
			Password: GetString(c, "SUPABASE_DB_PASSWORD", ""),
			Name:     GetString(c, "SUPABASE_DB_NAME", ""),
			Port:     GetString(c, "SUPABASE_DB_PORT", "5432"),
		},
		Migrate:      GetBool(c, "MIGRATE", false),
		GenerateCode: GetBool(c, "GENERATE_MODELS", false),
		ColumnReport: GetBool(c, "GENERATE_COLUMN_REPORT", false),

		SessionStore: strings.ToLower(GetString(c, "SESSION_STORE", "memory")),
		RedisURL:     GetString(c, "REDIS_URL", ""),

		AdminUsername:     GetString(c, "ADMIN_USERNAME", ""),
		AdminPassword:     GetString(c, "ADMIN_PASSWORD", ""),
		AdminPasswordHash: GetString(c, "ADMIN_PASSWORD_HASH", ""),

		Mail: MailSettings{
			Transport:    strings.ToLower(GetString(c, "MAIL_TRANSPORT", "log")),
			Host:         GetString(c, "EMAIL_HOST", "smtp.gmail.com"),
			Port:         GetInt(c, "EMAIL_PORT", 587),
			User:         GetString(c, "EMAIL_USER", ""),
			Password:     GetString(c, "EMAIL_PASSWORD", ""),
			From:         GetString(c, "EMAIL_FROM", GetString(c, "EMAIL_USER", "")),
			ContactEmail: GetString(c, "CONTACT_EMAIL", GetString(c, "EMAIL_USER", "")),
			Timeout:      GetSeconds(c, "MAIL_TIMEOUT_SECONDS", 15*time.Second),
			AWSRegion:    region,
			SESFrom:      GetString(c, "SES_FROM_EMAIL", ""),
			ResendKey:    GetString(c, "RESEND_API_KEY", ""),
			ResendFrom:   GetString(c, "RESEND_FROM_EMAIL", ""),
			Acknowledge:  GetBool(c, "MAIL_ACKNOWLEDGE", true),
			Secure:       GetBool(c, "EMAIL_SECURE", false),
		},
		SMS: SMSSettings{
			AccountSID: GetString(c, "TWILIO_ACCOUNT_SID", ""),
			AuthToken:  GetString(c, "TWILIO_AUTH_TOKEN", ""),
			From:       GetString(c, "TWILIO_FROM", ""),
			To:         GetString(c, "ADMIN_SMS_TO", ""),
		},
		Upload: UploadSettings{
			Backend:       strings.ToLower(GetString(c, "UPLOAD_BACKEND", "disk")),
			Dir:           GetString(c, "UPLOAD_DIR", "public/images/uploads"),
			S3Bucket:      GetString(c, "UPLOAD_S3_BUCKET", ""),
			S3Prefix:      GetString(c, "UPLOAD_S3_PREFIX", "images/uploads/"),
			PublicBaseURL: GetString(c, "UPLOAD_PUBLIC_BASE_URL", ""),
			AWSRegion:     region,
			MaxBytes:      int64(GetInt(c, "UPLOAD_MAX_BYTES", 5<<20)),

			S3Endpoint:        GetString(c, "UPLOAD_S3_ENDPOINT", ""),
			S3AccessKeyID:     GetString(c, "UPLOAD_S3_ACCESS_KEY_ID", ""),
			S3SecretAccessKey: GetString(c, "UPLOAD_S3_SECRET_ACCESS_KEY", ""),
		},

		AcceptedOrigins: GetList(c, "ACCEPTED_ORIGINS"),
		ReadTimeout:     GetSeconds(c, "READ_TIMEOUT_SECONDS", 180*time.Second),
		WriteTimeout:    GetSeconds(c, "WRITE_TIMEOUT_SECONDS", 180*time.Second),
		IdleTimeout:     GetSeconds(c, "IDLE_TIMEOUT_SECONDS", 180*time.Second),

		LogLevel:  strings.ToLower(GetString(c, "LOG_LEVEL", "info")),
		LogFormat: strings.ToLower(GetString(c, "LOG_FORMAT", "json")),
	}
	return s, s.validate()
}

func (s Settings) validate() error {
	switch s.DBType {
	case "memory", "supa":
	case "postgres":
		if s.DatabaseURL == "" {
			return fmt.Errorf("DB_TYPE=postgres requires DATABASE_URL")
		}
	default:
		return fmt.Errorf("unsupported DB_TYPE %q", s.DBType)
	}

	switch s.SessionStore {
	case "memory":
	case "redis":
		if s.RedisURL == "" {
			return fmt.Errorf("SESSION_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unsupported SESSION_STORE %q", s.SessionStore)
	}

	switch s.Mail.Transport {
	case "log", "smtp", "ses", "resend":
	default:
		return fmt.Errorf("unsupported MAIL_TRANSPORT %q", s.Mail.Transport)
	}

	switch s.Upload.Backend {
	case "disk":
	case "s3":
		if s.Upload.S3Bucket == "" {
			return fmt.Errorf("UPLOAD_BACKEND=s3 requires UPLOAD_S3_BUCKET")
		}
	default:
		return fmt.Errorf("unsupported UPLOAD_BACKEND %q", s.Upload.Backend)
	}
	return nil
}
