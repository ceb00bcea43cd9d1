package core

import (
	"log"
	"net"
	"net/mail"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type (
	ServerConfig struct {
		Address                   string
		DebugAddress              string
		ShutdownTimeout           time.Duration
		JWTExpirationDelta        time.Duration
		JWTRefreshExpirationDelta time.Duration
	}

	DatabaseConfig struct {
		Engine        string // postgres | sqlite
		Host          string
		Port          string
		Name          string
		User          string
		Password      string
		AdminUser     string
		AdminPassword string
		DisableTLS    bool
		Path          string // sqlite only
	}

	LogConfig struct {
		Level      string
		Filename   string
		MaxSize    int
		MaxBackups int
		MaxAge     int
		Compress   bool
	}

	ScoreConfig struct {
		Baseline          float64
		ElectricityWeight float64
		WaterWeight       float64
		WasteWeight       float64
	}

	Config struct {
		Env              string
		Build            string
		Debug            bool
		TestMode         bool
		AppName          string
		SecretKey        string
		FrontendBaseURL  string
		SendgridApiKey   string
		RollbarToken     string
		defaultFromEmail string

		Server   ServerConfig
		Database DatabaseConfig
		Log      LogConfig
		Score    ScoreConfig
	}
)

func (conf *Config) DefaultFromEmail() mail.Address {
	addr, err := mail.ParseAddress(conf.defaultFromEmail)
	if err != nil {
		return mail.Address{Name: conf.AppName, Address: conf.defaultFromEmail}
	}
	return *addr
}

func (dbc DatabaseConfig) Address() string {
	return net.JoinHostPort(dbc.Host, dbc.Port)
}

// NewConfig loads the app configuration: defaults, then `config/.env.<env>` (if any), then the environment.
// Environment variables are prefixed by the env name, e.g. PROD_SECRETKEY or TEST_DATABASE_ENGINE.
func NewConfig() *Config {
	v := viper.New()

	// defaults
	v.SetTypeByDefaultValue(true)
	v.SetDefault("build", "develop")
	v.SetDefault("debug", true)
	v.SetDefault("testMode", false)
	v.SetDefault("appName", "Eco Plus")
	v.SetDefault("secretKey", "u8#j2k(6g1!p-ecoplus-dev-only-0z+q^w3v@r7m")
	v.SetDefault("defaultFromEmail", "Eco Plus <noreply@localhost>")
	v.SetDefault("frontendBaseURL", "http://localhost:3000")
	v.SetDefault("sendgridApiKey", "")
	v.SetDefault("rollbarToken", "")

	v.SetDefault("server.address", ":8000")
	v.SetDefault("server.debugAddress", ":4000")
	v.SetDefault("server.shutdownTimeout", 5*time.Second)
	v.SetDefault("server.jwtExpirationDelta", 7*24*time.Hour)
	v.SetDefault("server.jwtRefreshExpirationDelta", 30*24*time.Hour)

	v.SetDefault("database.engine", "postgres")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", "5432")
	v.SetDefault("database.name", "ecoplus")
	v.SetDefault("database.user", "ecoplus")
	v.SetDefault("database.password", "ecoplus")
	v.SetDefault("database.adminUser", "postgres")
	v.SetDefault("database.adminPassword", "postgres")
	v.SetDefault("database.disableTLS", true)
	v.SetDefault("database.path", "ecoplus.db")

	v.SetDefault("log.level", "info")
	v.SetDefault("log.filename", "")
	v.SetDefault("log.maxSize", 100)
	v.SetDefault("log.maxBackups", 3)
	v.SetDefault("log.maxAge", 28)
	v.SetDefault("log.compress", true)

	v.SetDefault("score.baseline", 100.0)
	v.SetDefault("score.electricityWeight", 0.2)
	v.SetDefault("score.waterWeight", 0.1)
	v.SetDefault("score.wasteWeight", 0.3)

	env := strings.ToUpper(os.Getenv("ENV")) // DEV (local; default), TEST, QA, PROD
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		v.SetDefault("testMode", true)
	}
	v.SetEnvPrefix(env)

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(Getwd(), "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return &Config{
		Env:              env,
		Build:            v.GetString("build"),
		Debug:            v.GetBool("debug"),
		TestMode:         v.GetBool("testMode"),
		AppName:          v.GetString("appName"),
		SecretKey:        v.GetString("secretKey"),
		FrontendBaseURL:  v.GetString("frontendBaseURL"),
		SendgridApiKey:   v.GetString("sendgridApiKey"),
		RollbarToken:     v.GetString("rollbarToken"),
		defaultFromEmail: v.GetString("defaultFromEmail"),
		Server: ServerConfig{
			Address:                   v.GetString("server.address"),
			DebugAddress:              v.GetString("server.debugAddress"),
			ShutdownTimeout:           v.GetDuration("server.shutdownTimeout"),
			JWTExpirationDelta:        v.GetDuration("server.jwtExpirationDelta"),
			JWTRefreshExpirationDelta: v.GetDuration("server.jwtRefreshExpirationDelta"),
		},
		Database: DatabaseConfig{
			Engine:        v.GetString("database.engine"),
			Host:          v.GetString("database.host"),
			Port:          v.GetString("database.port"),
			Name:          v.GetString("database.name"),
			User:          v.GetString("database.user"),
			Password:      v.GetString("database.password"),
			AdminUser:     v.GetString("database.adminUser"),
			AdminPassword: v.GetString("database.adminPassword"),
			DisableTLS:    v.GetBool("database.disableTLS"),
			Path:          v.GetString("database.path"),
		},
		Log: LogConfig{
			Level:      v.GetString("log.level"),
			Filename:   v.GetString("log.filename"),
			MaxSize:    v.GetInt("log.maxSize"),
			MaxBackups: v.GetInt("log.maxBackups"),
			MaxAge:     v.GetInt("log.maxAge"),
			Compress:   v.GetBool("log.compress"),
		},
		Score: ScoreConfig{
			Baseline:          v.GetFloat64("score.baseline"),
			ElectricityWeight: v.GetFloat64("score.electricityWeight"),
			WaterWeight:       v.GetFloat64("score.waterWeight"),
			WasteWeight:       v.GetFloat64("score.wasteWeight"),
		},
	}
}

// NewTestConfig returns the configuration used by tests: debug off, test mode on, in-process only.
func NewTestConfig() *Config {
	conf := NewConfig()
	conf.Debug = false
	conf.TestMode = true
	conf.SecretKey = "test-secret"
	conf.Database.Engine = "sqlite"
	return conf
}
