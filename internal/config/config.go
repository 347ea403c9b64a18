package config

import "os"

type Config struct {
	Server ServerConfig
	Mongo  MongoConfig
	Auth   AuthConfig
	SMTP   SMTPConfig
	Media  MediaConfig
}

type ServerConfig struct {
	Port           string
	AppURL         string
	Env            string
	AllowedOrigins string
	MaxPageLimit   string
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	JWTSecret    string
	BcryptCost   string
	CookieDomain string
	CookiePath   string
	Production   bool
}

type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

type MediaConfig struct {
	BaseURL string
	APIKey  string
}

func Load() Config {
	env := getenv("APP_ENV", "development")
	return Config{
		Server: ServerConfig{
			Port:           getenv("PORT", "4000"),
			AppURL:         getenv("APP_URL", "http://localhost:6969"),
			Env:            env,
			AllowedOrigins: os.Getenv("ALLOWED_ORIGINS"),
			MaxPageLimit:   getenv("MAX_PAGE_LIMIT", "500"),
		},
		Mongo: MongoConfig{
			URI:      getenv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getenv("MONGO_DB", "camshop"),
		},
		Auth: AuthConfig{
			JWTSecret:    os.Getenv("JWT_SECRET"),
			BcryptCost:   os.Getenv("BCRYPT_COST"),
			CookieDomain: os.Getenv("AUTH_COOKIE_DOMAIN"),
			CookiePath:   getenv("AUTH_COOKIE_PATH", "/"),
			Production:   env == "production",
		},
		SMTP: SMTPConfig{
			Host:     os.Getenv("SMTP_HOST"),
			Port:     getenv("SMTP_PORT", "587"),
			Username: os.Getenv("SMTP_USERNAME"),
			Password: os.Getenv("SMTP_PASSWORD"),
			From:     os.Getenv("SMTP_FROM"),
		},
		Media: MediaConfig{
			BaseURL: os.Getenv("MEDIA_BASE_URL"),
			APIKey:  os.Getenv("MEDIA_API_KEY"),
		},
	}
}

func getenv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}
