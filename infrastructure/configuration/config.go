package configuration

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"content-studio/infrastructure/logger"

	"github.com/spf13/viper"
)

type Config struct {
	Database    Database    `json:"database"`
	App         App         `json:"app"`
	Pubsub      Pubsub      `json:"pubsub"`
	ServiceBus  ServiceBus  `json:"serviceBus"`
	RedisClient RedisClient `json:"redisClient"`
	Logger      Logger      `json:"logger"`
	OAuth       OAuth       `json:"oauth"`
	Publish     Publish     `json:"publish"`
}

type App struct {
	Port        int    `json:"port"`
	SecretKey   string `json:"secretKey"`
	TLSEnabled  bool   `json:"tlsEnabled"`
	TLSCertFile string `json:"tlsCertFile"`
	TLSKeyFile  string `json:"tlsKeyFile"`
}

type Database struct {
	Psql  Db `json:"psql"`
	MySql Db `json:"mysql"`
	Mongo Db `json:"mongo"`
	Mssql Db `json:"mssql"`
}

type Db struct {
	Name     string `json:"name"`
	Host     string `json:"host"`
	Port     string `json:"port"`
	User     string `json:"user"`
	Password string `json:"password"`
}

type Pubsub struct {
	ProjectID string `json:"projectID"`
	Topic     string `json:"topic"`
}

type ServiceBus struct {
	Namespace string `json:"namespace"`
	Queue     string `json:"queue"`
}

type RedisClient struct {
	Host         string `json:"host"`
	Port         string `json:"port"`
	Password     string `json:"password"`
	DatabaseName string `json:"databaseName"`
	Username     string `json:"username"`
}

type Logger struct {
	Format string `json:"format"`
}

// OAuth holds third-party platform OAuth client credentials
type OAuth struct {
	Facebook OAuthClient `json:"facebook"`
	Threads  OAuthClient `json:"threads"`
}

type OAuthClient struct {
	ClientID     string `json:"clientId"`
	ClientSecret string `json:"clientSecret"`
	RedirectURI  string `json:"redirectURI"`
}

// Publish holds the tuning knobs of the publish orchestrator. The timing
// values are empirically tuned against the platforms' observed processing
// latency; they are deliberately configuration, not constants.
type Publish struct {
	// TokenRefreshBufferHours is how long before expiry a token is treated as
	// expiring-soon. Publish attempts can take tens of seconds, so the buffer
	// keeps a refresh from racing the publish mid-flight.
	TokenRefreshBufferHours int `json:"tokenRefreshBufferHours"`
	// TokenValidityDays is the validity window persisted after a refresh.
	TokenValidityDays int `json:"tokenValidityDays"`

	// Container poll timing, per media kind.
	InitialDelayTextMs  int `json:"initialDelayTextMs"`
	InitialDelayMediaMs int `json:"initialDelayMediaMs"`
	PollIntervalMs      int `json:"pollIntervalMs"`
	MaxAttemptsText     int `json:"maxAttemptsText"`
	MaxAttemptsImage    int `json:"maxAttemptsImage"`
	MaxAttemptsVideo    int `json:"maxAttemptsVideo"`

	// RequestTimeoutSeconds bounds each individual network call so a hung
	// socket cannot silently consume the whole publish budget.
	RequestTimeoutSeconds int `json:"requestTimeoutSeconds"`
	// OverallTimeoutSeconds bounds one orchestrated publish across all
	// requested platforms.
	OverallTimeoutSeconds int `json:"overallTimeoutSeconds"`
}

func (p Publish) TokenRefreshBuffer() time.Duration {
	return time.Duration(p.TokenRefreshBufferHours) * time.Hour
}

func (p Publish) TokenValidity() time.Duration {
	return time.Duration(p.TokenValidityDays) * 24 * time.Hour
}

func (p Publish) RequestTimeout() time.Duration {
	return time.Duration(p.RequestTimeoutSeconds) * time.Second
}

func (p Publish) OverallTimeout() time.Duration {
	return time.Duration(p.OverallTimeoutSeconds) * time.Second
}

var C Config

func init() {
	LoadConfig()
	initDatabase(&C)
	initApp(&C)
	initPublish(&C.Publish)
	// Prefer https redirect URIs locally when TLS enabled
	if C.App.TLSEnabled {
		if C.OAuth.Facebook.RedirectURI != "" && !hasHTTPS(C.OAuth.Facebook.RedirectURI) {
			C.OAuth.Facebook.RedirectURI = toHTTPSCallback(C.OAuth.Facebook.RedirectURI)
		}
		if C.OAuth.Threads.RedirectURI != "" && !hasHTTPS(C.OAuth.Threads.RedirectURI) {
			C.OAuth.Threads.RedirectURI = toHTTPSCallback(C.OAuth.Threads.RedirectURI)
		}
	}
}

func LoadConfig() {
	name := getConfig()
	viper.SetConfigName(name)
	viper.SetConfigType("json")
	viper.AddConfigPath(".")
	viper.AddConfigPath("../")
	viper.AddConfigPath("../../")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); ok {
			logger.GetLogger().Warn("Config file not found")
		} else {
			logger.GetLogger().WithField("error", err).Error("Error reading config file")
		}
	}

	logger.GetLogger().WithField("config", name).Info("Config set up successfully")
	if err := viper.Unmarshal(&C); err != nil {
		logger.GetLogger().WithField("error", err).Error("Viper unable to decode into struct")
	}
}

func getConfig() string {
	name := "config"
	env := os.Getenv("ENV")
	if env != "" {
		name = fmt.Sprintf("%s-%s", name, env)
	}
	return name
}

func initDatabase(C *Config) {
	if C.Database.Psql.Name == "" {
		C.Database.Psql.Name = os.Getenv("DB_NAME")
	}
	if C.Database.Psql.Host == "" {
		C.Database.Psql.Host = os.Getenv("DB_HOST")
	}
	if C.Database.Psql.User == "" {
		C.Database.Psql.User = os.Getenv("DB_USER")
	}
	if C.Database.Psql.Password == "" {
		C.Database.Psql.Password = os.Getenv("DB_PASSWORD")
	}
	if C.Database.Psql.Port == "" {
		C.Database.Psql.Port = os.Getenv("DB_PORT")
	}

	// Optional MSSQL config via environment variables (Azure SQL in production)
	if C.Database.Mssql.Name == "" {
		if v := os.Getenv("MSSQL_DB_NAME"); v != "" {
			C.Database.Mssql.Name = v
		}
	}
	if C.Database.Mssql.Host == "" {
		if v := os.Getenv("MSSQL_HOST"); v != "" {
			C.Database.Mssql.Host = v
		}
	}
	if C.Database.Mssql.Password == "" {
		if v := os.Getenv("MSSQL_PASSWORD"); v != "" {
			C.Database.Mssql.Password = v
		}
	}
	if C.Database.Mssql.Port == "" {
		if v := os.Getenv("MSSQL_PORT"); v != "" {
			C.Database.Mssql.Port = v
		} else {
			C.Database.Mssql.Port = "1433"
		}
	}
	if C.Database.Mssql.User == "" {
		if v := os.Getenv("MSSQL_USER"); v != "" {
			C.Database.Mssql.User = v
		}
	}

	// Fill local/dev sensible defaults for MSSQL if still empty
	if C.Database.Mssql.Host == "" {
		C.Database.Mssql.Host = "localhost"
	}
	if C.Database.Mssql.User == "" {
		C.Database.Mssql.User = "sa"
	}

	if C.Database.Mongo.Host == "" {
		C.Database.Mongo.Host = os.Getenv("MONGO_HOST")
	}
	if C.Database.Mongo.Port == "" {
		if v := os.Getenv("MONGO_PORT"); v != "" {
			C.Database.Mongo.Port = v
		} else {
			C.Database.Mongo.Port = "27017"
		}
	}
}

func initApp(C *Config) {
	// Prefer SECRET_KEY from environment for JWT verification; overrides config file when provided
	if v := os.Getenv("SECRET_KEY"); v != "" {
		C.App.SecretKey = v
	}
	// Port resolution order (env overrides config): APP_PORT -> PORT -> config -> default 10001
	if v := os.Getenv("APP_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	} else if v := os.Getenv("PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			C.App.Port = p
		}
	}
	if C.App.Port == 0 {
		C.App.Port = 10001
	}
	// Allow overriding TLS settings via env variables (both enable and disable)
	if v := os.Getenv("TLS_ENABLED"); v != "" {
		switch v {
		case "1", "true", "TRUE", "True":
			C.App.TLSEnabled = true
		case "0", "false", "FALSE", "False":
			C.App.TLSEnabled = false
		}
	}
	if C.App.TLSCertFile == "" {
		C.App.TLSCertFile = os.Getenv("TLS_CERT_FILE")
	}
	if C.App.TLSKeyFile == "" {
		C.App.TLSKeyFile = os.Getenv("TLS_KEY_FILE")
	}
	if C.App.SecretKey == "" {
		logger.GetLogger().Warn("App.SecretKey not set; JWT authentication will fail. Provide SECRET_KEY via environment.")
	}
}

// initPublish fills the orchestrator tuning defaults. The numbers come from
// observed platform-side processing latency: text containers are usually
// ready within a second, images within a handful of seconds, video
// transcodes can take tens of seconds.
func initPublish(p *Publish) {
	if p.TokenRefreshBufferHours == 0 {
		p.TokenRefreshBufferHours = 24
	}
	if p.TokenValidityDays == 0 {
		p.TokenValidityDays = 60
	}
	if p.InitialDelayTextMs == 0 {
		p.InitialDelayTextMs = 1000
	}
	if p.InitialDelayMediaMs == 0 {
		p.InitialDelayMediaMs = 2000
	}
	if p.PollIntervalMs == 0 {
		p.PollIntervalMs = 1500
	}
	if p.MaxAttemptsText == 0 {
		p.MaxAttemptsText = 10
	}
	if p.MaxAttemptsImage == 0 {
		p.MaxAttemptsImage = 20
	}
	if p.MaxAttemptsVideo == 0 {
		p.MaxAttemptsVideo = 30
	}
	if p.RequestTimeoutSeconds == 0 {
		p.RequestTimeoutSeconds = 15
	}
	if p.OverallTimeoutSeconds == 0 {
		p.OverallTimeoutSeconds = 120
	}
}

// helpers to coerce local callback to https
func hasHTTPS(u string) bool { return len(u) >= 8 && u[:8] == "https://" }
func toHTTPSCallback(u string) string {
	if len(u) >= 7 && u[:7] == "http://" {
		return "https://" + u[7:]
	}
	return u
}
