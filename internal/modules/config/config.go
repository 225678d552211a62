package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v2"

	"binary_bot/internal/engine"
)

const (
	configFilePathENV = "CONFIG_FILE"
	tokenTelegramENV  = "TELEGRAM_TOKEN"
	databaseDSN       = "DATABASE_DSN"
)

// Config ...
type Config struct {
	Telegram struct {
		Token string `yaml:"token"`
	} `yaml:"telegram"`
	DB string `yaml:"db_dsn"`

	Market struct {
		BaseURL string `yaml:"base_url"`
		WSURL   string `yaml:"ws_url"`
	} `yaml:"market"`

	// Jaeger-агент; пустой host — работаем без трейсера
	Tracing struct {
		Host string `yaml:"host"`
		Port int    `yaml:"port"`
	} `yaml:"tracing"`

	// Раннер: таймфреймы двух уровней и пул воркеров
	SetupInterval   string `yaml:"setup_interval"`   // например "15m"
	ConfirmInterval string `yaml:"confirm_interval"` // например "1m"
	Workers         int    `yaml:"workers"`
	// yaml.v2 не умеет Duration, поэтому только env TASK_TIMEOUT
	TaskTimeout time.Duration `yaml:"-"`

	// Пары по умолчанию для нового аккаунта
	DefaultPairs []string `yaml:"pairs"`

	// Дефолты риска
	// Сколько от депозита ставим на одну сделку
	DefaultRiskPct float64 `yaml:"risk_pct"` // например 1.0 => 1% баланса
	DefaultPayout  float64 `yaml:"payout"`   // например 0.80 => брокер платит 80%

	Engine engine.Config `yaml:"engine"`
}

func NewConfig() (*Config, error) {

	configFileName := os.Getenv(configFilePathENV)
	if configFileName == "" {
		configFileName = "values_local.yaml"
	}
	file, err := os.Open("configs/" + configFileName)
	if err != nil {
		log.Fatalf("Failed to open config file: %v", err)
	}

	defer func() {
		_ = file.Close()
	}()

	decoder := yaml.NewDecoder(file)
	config := Config{
		SetupInterval:   getenvDefault("SETUP_INTERVAL", "15m"),
		ConfirmInterval: getenvDefault("CONFIRM_INTERVAL", "1m"),
		Workers:         intFromEnv("WORKERS", 4),
		TaskTimeout:     durationFromEnv("TASK_TIMEOUT", "25s"),

		DefaultPairs: pairsFromEnv("PAIRS", []string{"EUR-USD", "GBP-USD", "USD-JPY", "AUD-USD"}),

		DefaultRiskPct: floatFromEnv("RISK_PCT", 1.0),
		DefaultPayout:  floatFromEnv("PAYOUT", 0.80),

		Engine: engine.DefaultConfig(),
	}
	err = decoder.Decode(&config)
	if err != nil {
		log.Fatalf("Failed to decode config file: %v", err)
	}

	token := os.Getenv(tokenTelegramENV)
	if token != "" {
		config.Telegram.Token = token
	}

	dsn := os.Getenv(databaseDSN)
	if dsn != "" {
		config.DB = dsn
	}

	// кривые пороги стратегии валим сразу, а не на первом сигнале
	if err = config.Engine.Validate(); err != nil {
		log.Fatalf("Invalid engine config: %v", err)
	}

	return &config, nil
}

func intFromEnv(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func floatFromEnv(key string, def float64) float64 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func pairsFromEnv(key string, def []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return def
}

func durationFromEnv(key, def string) time.Duration {
	val := getenvDefault(key, def)
	d, err := time.ParseDuration(val)
	if err != nil {
		d, _ = time.ParseDuration(def)
	}
	return d
}
