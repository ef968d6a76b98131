package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	AppEnv   string
	LogLevel slog.Level
	HTTPAddr string

	// SecretsPath is the path to the device secrets file (JSON) holding the
	// OpenWeather token, Wi-Fi credentials and coordinates.
	SecretsPath string

	SQLiteDriver          string
	SQLiteDSN             string
	SQLitePath            string
	SQLiteMaxOpenConns    int
	SQLiteMaxIdleConns    int
	SQLiteConnMaxLifetime time.Duration

	MQTTBroker      string
	MQTTPort        int
	MQTTClientID    string
	MQTTTopicPrefix string

	OWMBaseURL string
	OWMTimeout time.Duration
	OWMUnits   string

	DisplayID       string
	ForecastColumns int
	ForecastStep    int
	Retention       time.Duration
}

func LoadFromEnv() (Config, error) {
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = "dev"
	}
	switch appEnv {
	case "dev", "prod":
	default:
		return Config{}, fmt.Errorf("invalid APP_ENV %q (allowed: dev, prod)", appEnv)
	}

	logLevelStr := strings.TrimSpace(os.Getenv("LOG_LEVEL"))
	if logLevelStr == "" {
		logLevelStr = "info"
	}
	level, err := parseLogLevel(logLevelStr)
	if err != nil {
		return Config{}, err
	}

	httpAddr := strings.TrimSpace(os.Getenv("HTTP_ADDR"))
	if httpAddr == "" {
		httpAddr = ":8080"
	}

	secretsPath := strings.TrimSpace(os.Getenv("SECRETS_PATH"))
	if secretsPath == "" {
		secretsPath = "secrets.json"
	}

	driver := strings.TrimSpace(os.Getenv("DB_DRIVER"))
	if driver == "" {
		driver = "sqlite3"
	}
	dsn := strings.TrimSpace(os.Getenv("DB_DSN"))
	path := strings.TrimSpace(os.Getenv("SQLITE_PATH"))
	if path == "" {
		path = "data/weather.db"
	}

	maxOpenConns, err := intEnv("DB_MAX_OPEN_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	maxIdleConns, err := intEnv("DB_MAX_IDLE_CONNS", 1)
	if err != nil {
		return Config{}, err
	}
	connMaxLifetime, err := durationEnv("DB_CONN_MAX_LIFETIME", "0s")
	if err != nil {
		return Config{}, err
	}

	mqttBroker := strings.TrimSpace(os.Getenv("MQTT_BROKER"))
	if mqttBroker == "" {
		mqttBroker = "localhost"
	}
	mqttPort, err := intEnv("MQTT_PORT", 1883)
	if err != nil {
		return Config{}, err
	}
	mqttClientID := strings.TrimSpace(os.Getenv("MQTT_CLIENT_ID"))
	if mqttClientID == "" {
		mqttClientID = "magtag-weather-server"
	}
	mqttTopicPrefix := strings.TrimSpace(os.Getenv("MQTT_TOPIC_PREFIX"))
	if mqttTopicPrefix == "" {
		mqttTopicPrefix = "displays"
	}

	owmBaseURL := strings.TrimSpace(os.Getenv("OWM_BASE_URL"))
	if owmBaseURL == "" {
		owmBaseURL = "https://api.openweathermap.org/data/3.0/onecall"
	}
	owmTimeout, err := durationEnv("OWM_TIMEOUT", "10s")
	if err != nil {
		return Config{}, err
	}
	if owmTimeout <= 0 {
		return Config{}, fmt.Errorf("OWM_TIMEOUT must be positive, got %v", owmTimeout)
	}
	owmUnits := strings.TrimSpace(os.Getenv("OWM_UNITS"))
	if owmUnits == "" {
		owmUnits = "imperial"
	}
	switch owmUnits {
	case "standard", "metric", "imperial":
	default:
		return Config{}, fmt.Errorf("invalid OWM_UNITS %q (allowed: standard, metric, imperial)", owmUnits)
	}

	displayID := strings.TrimSpace(os.Getenv("DISPLAY_ID"))
	if displayID == "" {
		displayID = "magtag"
	}

	forecastColumns, err := intEnv("FORECAST_COLUMNS", 9)
	if err != nil {
		return Config{}, err
	}
	if forecastColumns <= 0 {
		return Config{}, fmt.Errorf("FORECAST_COLUMNS must be positive, got %d", forecastColumns)
	}
	forecastStep, err := intEnv("FORECAST_HOUR_STEP", 2)
	if err != nil {
		return Config{}, err
	}
	if forecastStep <= 0 {
		return Config{}, fmt.Errorf("FORECAST_HOUR_STEP must be positive, got %d", forecastStep)
	}

	retention, err := durationEnv("SNAPSHOT_RETENTION", "72h")
	if err != nil {
		return Config{}, err
	}

	return Config{
		AppEnv:                appEnv,
		LogLevel:              level,
		HTTPAddr:              httpAddr,
		SecretsPath:           secretsPath,
		SQLiteDriver:          driver,
		SQLiteDSN:             dsn,
		SQLitePath:            path,
		SQLiteMaxOpenConns:    maxOpenConns,
		SQLiteMaxIdleConns:    maxIdleConns,
		SQLiteConnMaxLifetime: connMaxLifetime,
		MQTTBroker:            mqttBroker,
		MQTTPort:              mqttPort,
		MQTTClientID:          mqttClientID,
		MQTTTopicPrefix:       mqttTopicPrefix,
		OWMBaseURL:            owmBaseURL,
		OWMTimeout:            owmTimeout,
		OWMUnits:              owmUnits,
		DisplayID:             displayID,
		ForecastColumns:       forecastColumns,
		ForecastStep:          forecastStep,
		Retention:             retention,
	}, nil
}

func intEnv(name string, def int) (int, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		return def, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return n, nil
}

func durationEnv(name string, def string) (time.Duration, error) {
	s := strings.TrimSpace(os.Getenv(name))
	if s == "" {
		s = def
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, s, err)
	}
	return d, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("invalid LOG_LEVEL %q (allowed: debug, info, warn, error)", s)
	}
}
