package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config agrupa toda la configuración del binario.
// Prioridad: env > config.yaml > defaults.
type Config struct {
	Port string

	DBDSN string

	JWTSecret string
	JWTTTL    time.Duration

	LogLevel  string
	LogFormat string
	AppName   string

	AlertWebhookURL string

	// Rate limit de ingesta IoT, por device (requests/seg + burst).
	IoTRatePerSec float64
	IoTRateBurst  int
}

// Load lee env + config.yaml opcional (directorio actual).
func Load() (Config, error) {
	v := viper.New()

	v.SetDefault("port", "8080")
	v.SetDefault("db_dsn", "")
	v.SetDefault("jwt_secret", "dev-secret-change-me")
	v.SetDefault("jwt_ttl", "720h") // 30 días, igual que el backend original
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "text")
	v.SetDefault("app_name", "pet-insurance-api")
	v.SetDefault("alert_webhook_url", "")
	v.SetDefault("iot_rate_per_sec", 5.0)
	v.SetDefault("iot_rate_burst", 10)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// config.yaml es opcional; solo propagamos errores de parseo.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, err
		}
	}

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	ttl, err := time.ParseDuration(v.GetString("jwt_ttl"))
	if err != nil || ttl <= 0 {
		ttl = 720 * time.Hour
	}

	return Config{
		Port:            v.GetString("port"),
		DBDSN:           v.GetString("db_dsn"),
		JWTSecret:       v.GetString("jwt_secret"),
		JWTTTL:          ttl,
		LogLevel:        v.GetString("log_level"),
		LogFormat:       v.GetString("log_format"),
		AppName:         v.GetString("app_name"),
		AlertWebhookURL: v.GetString("alert_webhook_url"),
		IoTRatePerSec:   v.GetFloat64("iot_rate_per_sec"),
		IoTRateBurst:    v.GetInt("iot_rate_burst"),
	}, nil
}
