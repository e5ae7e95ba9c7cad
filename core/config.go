package core

import (
	"log"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Env          string // DEV (local; default), TEST, QA, PROD
	Debug        bool
	TestMode     bool
	AppName      string
	Build        string
	SecretKey    string
	RollbarToken string
	WorkDir      string

	JWTExpirationDelta time.Duration

	Database struct {
		Engine     string // sqlite | postgres
		Path       string // sqlite only
		Host       string
		Port       int
		Name       string
		User       string
		Password   string
		DisableTLS bool
	}

	Server struct {
		Address         string
		DebugAddress    string
		ShutdownTimeout time.Duration
	}

	Grading struct {
		AtRiskThreshold float64
	}

	Import struct {
		DefaultPassword   string
		MaxReportedErrors int
	}
}

// DatabaseAddress returns the "host:port" of the postgres server.
func (c *Config) DatabaseAddress() string {
	return net.JoinHostPort(c.Database.Host, strconv.Itoa(c.Database.Port))
}

func NewConfig() *Config {
	conf := viper.New()

	// defaults
	conf.SetTypeByDefaultValue(true)
	conf.SetDefault("debug", true)
	conf.SetDefault("appName", "Academia")
	conf.SetDefault("build", "dev")
	conf.SetDefault("secretKey", "k3#f9-qz)wl!d2&vx+7u=ma0(r*8@tyc$bn5e4g1hs^po6j")
	conf.SetDefault("rollbarToken", "")
	conf.SetDefault("jwtExpirationDelta", 7*24*time.Hour)

	conf.SetDefault("database.engine", "sqlite")
	conf.SetDefault("database.path", "academic_system.db")
	conf.SetDefault("database.host", "localhost")
	conf.SetDefault("database.port", 5432)
	conf.SetDefault("database.name", "academia")
	conf.SetDefault("database.user", "")
	conf.SetDefault("database.password", "")
	conf.SetDefault("database.disableTLS", false)

	conf.SetDefault("server.address", ":8080")
	conf.SetDefault("server.debugAddress", ":4000")
	conf.SetDefault("server.shutdownTimeout", 5*time.Second)

	conf.SetDefault("grading.atRiskThreshold", 6.0)

	conf.SetDefault("import.defaultPassword", "default123")
	conf.SetDefault("import.maxReportedErrors", 5)

	env := strings.ToUpper(os.Getenv("ENV"))
	switch env {
	case "":
		env = "DEV"
	case "TEST":
		conf.SetDefault("testMode", true)
	}
	conf.SetEnvPrefix(env)
	conf.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	wd, err := os.Getwd()
	if err != nil {
		log.Fatalf("config.os.Getwd(): %v", err)
	}

	// load .env if it exists (ignore if it does not)
	dotEnvPath := filepath.Join(wd, "config", ".env."+strings.ToLower(env))
	if _, err := os.Stat(dotEnvPath); err == nil {
		if err := godotenv.Load(dotEnvPath); err != nil {
			log.Fatalf("config.godotenv(%s): %v", dotEnvPath, err)
		}
	} else if !os.IsNotExist(err) {
		log.Fatalf("config.os.Stat(%s): %v", dotEnvPath, err)
	}
	conf.AutomaticEnv()

	c := &Config{
		Env:                env,
		Debug:              conf.GetBool("debug"),
		TestMode:           conf.GetBool("testMode"),
		AppName:            conf.GetString("appName"),
		Build:              conf.GetString("build"),
		SecretKey:          conf.GetString("secretKey"),
		RollbarToken:       conf.GetString("rollbarToken"),
		WorkDir:            wd,
		JWTExpirationDelta: conf.GetDuration("jwtExpirationDelta"),
	}
	c.Database.Engine = conf.GetString("database.engine")
	c.Database.Path = conf.GetString("database.path")
	c.Database.Host = conf.GetString("database.host")
	c.Database.Port = conf.GetInt("database.port")
	c.Database.Name = conf.GetString("database.name")
	c.Database.User = conf.GetString("database.user")
	c.Database.Password = conf.GetString("database.password")
	c.Database.DisableTLS = conf.GetBool("database.disableTLS")

	c.Server.Address = conf.GetString("server.address")
	c.Server.DebugAddress = conf.GetString("server.debugAddress")
	c.Server.ShutdownTimeout = conf.GetDuration("server.shutdownTimeout")

	c.Grading.AtRiskThreshold = conf.GetFloat64("grading.atRiskThreshold")

	c.Import.DefaultPassword = conf.GetString("import.defaultPassword")
	c.Import.MaxReportedErrors = conf.GetInt("import.maxReportedErrors")
	return c
}
