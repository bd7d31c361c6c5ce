package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Actuator  ActuatorConfig
	Locker    LockerConfig
	MQTT      MQTTConfig
}

type ServerConfig struct {
	Port        string
	Host        string
	Environment string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

type JWTConfig struct {
	Secret      string
	ExpiryHours int
}

type RateLimitConfig struct {
	GeneralRPS   float64
	GeneralBurst int
}

type CORSConfig struct {
	AllowedOrigins   []string
	AllowedMethods   []string
	AllowedHeaders   []string
	ExposedHeaders   []string
	AllowCredentials bool
	MaxAge           int
}

// ActuatorConfig describes the physical side of the lockers: one GPIO
// pin per solenoid channel plus an optional buzzer pin for audio cues.
type ActuatorConfig struct {
	Driver      string // "rpio" or "memory"
	HoldSeconds int
	ActiveLow   bool
	BuzzerPin   int   // 0 disables audio feedback
	ChannelPins []int // index 0 is channel 1
}

type LockerConfig struct {
	// ChannelOf maps a locker ID to its actuator channel.
	ChannelOf map[int]int
	// MaxPerUser limits how many lockers one user may hold at once.
	// Zero means unlimited.
	MaxPerUser int
}

type MQTTConfig struct {
	Enabled  bool
	Broker   string
	ClientID string
	Username string
	Password string
	Topic    string
}

func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.AddConfigPath(".")
	if homeDir, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(homeDir)
	}
	viper.AutomaticEnv()

	viper.SetDefault("ACTUATOR_DRIVER", "memory")
	viper.SetDefault("ACTUATOR_HOLD_SECONDS", 5)
	viper.SetDefault("ACTUATOR_ACTIVE_LOW", true)
	viper.SetDefault("ACTUATOR_BUZZER_PIN", 22)
	viper.SetDefault("LOCKER_CHANNEL_PINS", "17,27")
	viper.SetDefault("JWT_EXPIRY_HOURS", 24)
	viper.SetDefault("MQTT_TOPIC", "lockers/events")

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFoundError) {
			if !os.IsNotExist(err) {
				return nil, fmt.Errorf("failed to read config: %w", err)
			}
		}
		log.Printf("Warning: config file not found: %v. Falling back to environment variables only.", err)
	}

	pins, err := parsePins(viper.GetString("LOCKER_CHANNEL_PINS"))
	if err != nil {
		return nil, fmt.Errorf("invalid LOCKER_CHANNEL_PINS: %w", err)
	}

	config := &Config{
		Server: ServerConfig{
			Port:        viper.GetString("SERVER_PORT"),
			Host:        viper.GetString("SERVER_HOST"),
			Environment: viper.GetString("ENVIRONMENT"),
		},
		Database: DatabaseConfig{
			Host:     viper.GetString("DB_HOST"),
			Port:     viper.GetString("DB_PORT"),
			User:     viper.GetString("DB_USER"),
			Password: viper.GetString("DB_PASSWORD"),
			DBName:   viper.GetString("DB_NAME"),
			SSLMode:  viper.GetString("DB_SSLMODE"),
		},
		JWT: JWTConfig{
			Secret:      viper.GetString("JWT_SECRET"),
			ExpiryHours: viper.GetInt("JWT_EXPIRY_HOURS"),
		},
		RateLimit: RateLimitConfig{
			GeneralRPS:   viper.GetFloat64("RATE_LIMIT_GENERAL_RPS"),
			GeneralBurst: viper.GetInt("RATE_LIMIT_GENERAL_BURST"),
		},
		CORS: CORSConfig{
			AllowedOrigins:   viper.GetStringSlice("CORS_ALLOWED_ORIGINS"),
			AllowedMethods:   viper.GetStringSlice("CORS_ALLOWED_METHODS"),
			AllowedHeaders:   viper.GetStringSlice("CORS_ALLOWED_HEADERS"),
			ExposedHeaders:   viper.GetStringSlice("CORS_EXPOSED_HEADERS"),
			AllowCredentials: viper.GetBool("CORS_ALLOW_CREDENTIALS"),
			MaxAge:           viper.GetInt("CORS_MAX_AGE"),
		},
		Actuator: ActuatorConfig{
			Driver:      viper.GetString("ACTUATOR_DRIVER"),
			HoldSeconds: viper.GetInt("ACTUATOR_HOLD_SECONDS"),
			ActiveLow:   viper.GetBool("ACTUATOR_ACTIVE_LOW"),
			BuzzerPin:   viper.GetInt("ACTUATOR_BUZZER_PIN"),
			ChannelPins: pins,
		},
		Locker: LockerConfig{
			ChannelOf:  channelMap(len(pins)),
			MaxPerUser: viper.GetInt("LOCKER_MAX_PER_USER"),
		},
		MQTT: MQTTConfig{
			Enabled:  viper.GetBool("MQTT_ENABLED"),
			Broker:   viper.GetString("MQTT_BROKER"),
			ClientID: viper.GetString("MQTT_CLIENT_ID"),
			Username: viper.GetString("MQTT_USERNAME"),
			Password: viper.GetString("MQTT_PASSWORD"),
			Topic:    viper.GetString("MQTT_TOPIC"),
		},
	}

	return config, nil
}

func (c *DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// LockerIDs returns the fixed, pre-provisioned set of locker IDs.
func (c *LockerConfig) LockerIDs() []int {
	ids := make([]int, 0, len(c.ChannelOf))
	for id := 1; id <= len(c.ChannelOf); id++ {
		ids = append(ids, id)
	}
	return ids
}

func parsePins(s string) ([]int, error) {
	parts := strings.Split(s, ",")
	pins := make([]int, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		pin, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("pin %q is not a number", p)
		}
		pins = append(pins, pin)
	}
	if len(pins) == 0 {
		return nil, fmt.Errorf("no channel pins configured")
	}
	return pins, nil
}

// channelMap assigns locker N to channel N; lockers and channels are a
// fixed one-to-one set.
func channelMap(count int) map[int]int {
	m := make(map[int]int, count)
	for i := 1; i <= count; i++ {
		m[i] = i
	}
	return m
}
