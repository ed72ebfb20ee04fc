// Package config loads runtime configuration from configs/config.yml, an
// optional .env file and the environment.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata" // zone database for hosts without one

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

type Config struct {
	Port        string `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	Timezone    string `mapstructure:"timezone"`
	AdminUserID string `mapstructure:"admin_user_id"`

	Cron       CronConfig       `mapstructure:"cron"`
	DB         DBConfig         `mapstructure:"db"`
	Device     DeviceConfig     `mapstructure:"device"`
	Thermostat ThermostatConfig `mapstructure:"thermostat"`
	Weather    WeatherConfig    `mapstructure:"weather"`
	MQTT       MQTTConfig       `mapstructure:"mqtt"`
	Scheduler  SchedulerConfig  `mapstructure:"scheduler"`
}

type CronConfig struct {
	Secret string `mapstructure:"secret"`
}

type DBConfig struct {
	Driver      string `mapstructure:"driver"`
	Path        string `mapstructure:"path"`
	PostgresURL string `mapstructure:"postgres_url"`
}

type DeviceConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	APIKey  string        `mapstructure:"api_key"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ThermostatConfig struct {
	BaseURL      string  `mapstructure:"base_url"`
	TokenURL     string  `mapstructure:"token_url"`
	ClientID     string  `mapstructure:"client_id"`
	ClientSecret string  `mapstructure:"client_secret"`
	RefreshToken string  `mapstructure:"refresh_token"`
	HomeID       string  `mapstructure:"home_id"`
	StoveRoomID  string  `mapstructure:"stove_room_id"`
	SyncSetpoint float64 `mapstructure:"sync_setpoint"`
}

// Enabled reports whether enough is configured to talk to the thermostat.
func (c ThermostatConfig) Enabled() bool {
	return c.BaseURL != "" && c.RefreshToken != "" && c.HomeID != ""
}

type WeatherConfig struct {
	BaseURL   string  `mapstructure:"base_url"`
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

func (c WeatherConfig) Enabled() bool {
	return c.BaseURL != "" && (c.Latitude != 0 || c.Longitude != 0)
}

type MQTTConfig struct {
	Broker    string `mapstructure:"broker"`
	ClientID  string `mapstructure:"client_id"`
	TopicRoot string `mapstructure:"topic_root"`
}

type SchedulerConfig struct {
	ConfirmationDelay   time.Duration `mapstructure:"confirmation_delay"`
	ConfirmationRetries int           `mapstructure:"confirmation_retries"`
	DefaultFan          int           `mapstructure:"default_fan"`
	DefaultPower        int           `mapstructure:"default_power"`
	PIDLogRetention     time.Duration `mapstructure:"pid_log_retention"`
	PIDDefaultDt        float64       `mapstructure:"pid_default_dt"`
	IntegralLimit       float64       `mapstructure:"integral_limit"`
	TokenMaxAge         time.Duration `mapstructure:"token_max_age"`
	Tick                time.Duration `mapstructure:"tick"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "console")
	v.SetDefault("timezone", "Europe/Rome")
	v.SetDefault("admin_user_id", "")
	v.SetDefault("cron.secret", "")

	v.SetDefault("db.driver", DriverSQLite)
	v.SetDefault("db.path", "app.db")
	v.SetDefault("db.postgres_url", "")

	v.SetDefault("device.base_url", "")
	v.SetDefault("device.api_key", "")
	v.SetDefault("device.timeout", 10*time.Second)

	v.SetDefault("thermostat.base_url", "")
	v.SetDefault("thermostat.token_url", "")
	v.SetDefault("thermostat.client_id", "")
	v.SetDefault("thermostat.client_secret", "")
	v.SetDefault("thermostat.refresh_token", "")
	v.SetDefault("thermostat.home_id", "")
	v.SetDefault("thermostat.stove_room_id", "")
	v.SetDefault("thermostat.sync_setpoint", 16.0)

	v.SetDefault("weather.base_url", "")
	v.SetDefault("weather.latitude", 0.0)
	v.SetDefault("weather.longitude", 0.0)

	v.SetDefault("mqtt.broker", "")
	v.SetDefault("mqtt.client_id", "stove-automation")
	v.SetDefault("mqtt.topic_root", "stove")

	v.SetDefault("scheduler.confirmation_delay", 2*time.Second)
	v.SetDefault("scheduler.confirmation_retries", 1)
	v.SetDefault("scheduler.default_fan", 3)
	v.SetDefault("scheduler.default_power", 2)
	v.SetDefault("scheduler.pid_log_retention", 14*24*time.Hour)
	v.SetDefault("scheduler.pid_default_dt", 5.0)
	v.SetDefault("scheduler.integral_limit", 20.0)
	v.SetDefault("scheduler.token_max_age", 60*24*time.Hour)
	v.SetDefault("scheduler.tick", time.Duration(0))
}

// Load reads configuration. An empty path looks for configs/config.yml and
// tolerates its absence; an explicit path must exist.
func Load(path string) (Config, error) {
	_ = godotenv.Load(".env")

	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, fmt.Errorf("read config %q: %w", path, err)
		}
	} else {
		v.AddConfigPath("configs")
		v.SetConfigName("config")
		if err := v.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if !errors.As(err, &notFound) {
				return Config{}, fmt.Errorf("read config: %w", err)
			}
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	switch c.DB.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("unsupported db.driver %q", c.DB.Driver)
	}
	if c.DB.Driver == DriverPostgres && c.DB.PostgresURL == "" {
		return errors.New("db.postgres_url is required for the postgres driver")
	}
	if _, err := time.LoadLocation(c.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return nil
}

// Location returns the configured zone used for day/hour derivation.
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
