package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from environment.
type Config struct {
	API struct {
		Port         string `yaml:"port"`
		BasePath     string `yaml:"base_path"`
		DashboardDir string `yaml:"dashboard_dir"`
	} `yaml:"api"`
	DB struct {
		DSN          string `yaml:"dsn"`
		ClearOnStart bool   `yaml:"clear_on_start"`
	} `yaml:"db"`
	Alert struct {
		DangerF         float64 `yaml:"danger_f"`
		CautionOffsetF  float64 `yaml:"caution_offset_f"`
		CooldownSeconds int     `yaml:"cooldown_seconds"`
		MaxPerEvent     int     `yaml:"max_per_event"`
	} `yaml:"alert"`
	Query struct {
		PageSize int `yaml:"page_size"`
	} `yaml:"query"`
	Notification struct {
		QueueSize      int `yaml:"queue_size"`
		MaxWorkers     int `yaml:"max_workers"`
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"notification"`
	Gemini struct {
		APIKey string `yaml:"api_key"`
		Model  string `yaml:"model"`
	} `yaml:"gemini"`
	Twilio struct {
		AccountSID string `yaml:"account_sid"`
		AuthToken  string `yaml:"auth_token"`
		FromNumber string `yaml:"from_number"`
		ToNumber   string `yaml:"to_number"`
	} `yaml:"twilio"`
	Telegram struct {
		BotToken      string `yaml:"bot_token"`
		ChatID        int64  `yaml:"chat_id"`
		RatePerSecond int    `yaml:"rate_per_second"`
	} `yaml:"telegram"`
	Kafka struct {
		Broker        string `yaml:"broker"`
		ReadingsTopic string `yaml:"readings_topic"`
		EventsTopic   string `yaml:"events_topic"`
		GroupID       string `yaml:"group_id"`
	} `yaml:"kafka"`
	MQTT struct {
		Broker string `yaml:"broker"`
		Topic  string `yaml:"topic"`
	} `yaml:"mqtt"`
	Logging struct {
		Dir   string `yaml:"dir"`
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// Cooldown returns the configured cooldown as a duration.
func (c Config) Cooldown() time.Duration {
	return time.Duration(c.Alert.CooldownSeconds) * time.Second
}

// DispatchTimeout bounds a single detached dispatch.
func (c Config) DispatchTimeout() time.Duration {
	return time.Duration(c.Notification.TimeoutSeconds) * time.Second
}

// TelephonyEnabled reports whether all Twilio settings are present.
func (c Config) TelephonyEnabled() bool {
	return c.Twilio.AccountSID != "" && c.Twilio.AuthToken != "" &&
		c.Twilio.FromNumber != "" && c.Twilio.ToNumber != ""
}

// TelegramEnabled reports whether the chat mirror is configured.
func (c Config) TelegramEnabled() bool {
	return c.Telegram.BotToken != "" && c.Telegram.ChatID != 0
}

// Load reads environment variables, applies defaults, and returns a Config.
func Load() (Config, error) {
	// Load .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var cfg Config
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open config file %s: %w", path, err)
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(cfg); err != nil {
		return fmt.Errorf("decode config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *Config) error {
	setString(&cfg.API.Port, "API_PORT")
	setString(&cfg.API.BasePath, "API_BASE_PATH")
	setString(&cfg.API.DashboardDir, "DASHBOARD_DIR")

	setString(&cfg.DB.DSN, "DB_DSN")
	if err := setBool(&cfg.DB.ClearOnStart, "STORE_CLEAR_ON_START"); err != nil {
		return err
	}

	if err := setFloat(&cfg.Alert.DangerF, "ALERT_DANGER_F"); err != nil {
		return err
	}
	if err := setFloat(&cfg.Alert.CautionOffsetF, "ALERT_CAUTION_OFFSET_F"); err != nil {
		return err
	}
	if err := setInt(&cfg.Alert.CooldownSeconds, "ALERT_COOLDOWN_SECONDS"); err != nil {
		return err
	}
	if err := setInt(&cfg.Alert.MaxPerEvent, "ALERT_MAX_PER_EVENT"); err != nil {
		return err
	}
	if err := setInt(&cfg.Query.PageSize, "RECENT_PAGE_SIZE"); err != nil {
		return err
	}

	// Notification worker settings
	if err := setInt(&cfg.Notification.QueueSize, "QUEUE_SIZE"); err != nil {
		return err
	}
	if err := setInt(&cfg.Notification.MaxWorkers, "MAX_WORKERS"); err != nil {
		return err
	}
	if err := setInt(&cfg.Notification.TimeoutSeconds, "DISPATCH_TIMEOUT_SECONDS"); err != nil {
		return err
	}

	setString(&cfg.Gemini.APIKey, "GEMINI_API_KEY")
	setString(&cfg.Gemini.Model, "GEMINI_MODEL")

	setString(&cfg.Twilio.AccountSID, "TWILIO_ACCOUNT_SID")
	setString(&cfg.Twilio.AuthToken, "TWILIO_AUTH_TOKEN")
	setString(&cfg.Twilio.FromNumber, "TWILIO_PHONE_NUMBER")
	setString(&cfg.Twilio.ToNumber, "RECIPIENT_PHONE_NUMBER")

	setString(&cfg.Telegram.BotToken, "TELEGRAM_BOT_TOKEN")
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid TELEGRAM_CHAT_ID %q: %w", v, err)
		}
		cfg.Telegram.ChatID = id
	}
	if err := setInt(&cfg.Telegram.RatePerSecond, "TELEGRAM_RATE_PER_SECOND"); err != nil {
		return err
	}

	setString(&cfg.Kafka.Broker, "KAFKA_BROKER")
	setString(&cfg.Kafka.ReadingsTopic, "KAFKA_READINGS_TOPIC")
	setString(&cfg.Kafka.EventsTopic, "KAFKA_EVENTS_TOPIC")
	setString(&cfg.Kafka.GroupID, "KAFKA_GROUP_ID")

	setString(&cfg.MQTT.Broker, "MQTT_BROKER")
	setString(&cfg.MQTT.Topic, "MQTT_TOPIC")

	setString(&cfg.Logging.Dir, "LOG_DIR")
	setString(&cfg.Logging.Level, "LOG_LEVEL")
	return nil
}

func applyDefaults(cfg *Config) {
	if cfg.API.Port == "" {
		cfg.API.Port = ":5002"
	}
	if cfg.API.BasePath == "" {
		cfg.API.BasePath = "/api"
	}
	if cfg.Alert.DangerF == 0 {
		cfg.Alert.DangerF = 80.0
	}
	if cfg.Alert.CautionOffsetF == 0 {
		cfg.Alert.CautionOffsetF = 5.0
	}
	if cfg.Alert.CooldownSeconds == 0 {
		cfg.Alert.CooldownSeconds = 60
	}
	if cfg.Alert.MaxPerEvent == 0 {
		cfg.Alert.MaxPerEvent = 5
	}
	if cfg.Query.PageSize == 0 {
		cfg.Query.PageSize = 50
	}
	if cfg.Notification.QueueSize == 0 {
		cfg.Notification.QueueSize = 100
	}
	if cfg.Notification.MaxWorkers == 0 {
		cfg.Notification.MaxWorkers = 1
	}
	if cfg.Notification.TimeoutSeconds == 0 {
		cfg.Notification.TimeoutSeconds = 30
	}
	if cfg.Gemini.Model == "" {
		cfg.Gemini.Model = "gemini-2.5-flash"
	}
	if cfg.Telegram.RatePerSecond == 0 {
		cfg.Telegram.RatePerSecond = 1
	}
	if cfg.Kafka.GroupID == "" {
		cfg.Kafka.GroupID = "heat-alert-service"
	}
	if cfg.Logging.Dir == "" {
		cfg.Logging.Dir = "logs"
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
}

// Validate checks value ranges and all-or-nothing collaborator settings.
func (c Config) Validate() error {
	if c.Alert.DangerF <= 0 || c.Alert.CautionOffsetF < 0 {
		return fmt.Errorf("invalid alert thresholds: danger=%.2f caution_offset=%.2f", c.Alert.DangerF, c.Alert.CautionOffsetF)
	}
	if c.Alert.CooldownSeconds < 0 {
		return fmt.Errorf("invalid alert cooldown: %d", c.Alert.CooldownSeconds)
	}
	if c.Alert.MaxPerEvent < 1 {
		return fmt.Errorf("invalid max alerts per event: %d", c.Alert.MaxPerEvent)
	}
	if c.Query.PageSize < 1 {
		return fmt.Errorf("invalid recent page size: %d", c.Query.PageSize)
	}
	if c.Notification.MaxWorkers < 1 || c.Notification.QueueSize < 1 {
		return fmt.Errorf("invalid notification workers=%d queue=%d", c.Notification.MaxWorkers, c.Notification.QueueSize)
	}

	// Telephony is all-or-nothing
	twilio := map[string]string{
		"TWILIO_ACCOUNT_SID":     c.Twilio.AccountSID,
		"TWILIO_AUTH_TOKEN":      c.Twilio.AuthToken,
		"TWILIO_PHONE_NUMBER":    c.Twilio.FromNumber,
		"RECIPIENT_PHONE_NUMBER": c.Twilio.ToNumber,
	}
	missing := []string{}
	set := 0
	for _, key := range []string{"TWILIO_ACCOUNT_SID", "TWILIO_AUTH_TOKEN", "TWILIO_PHONE_NUMBER", "RECIPIENT_PHONE_NUMBER"} {
		if twilio[key] == "" {
			missing = append(missing, key)
		} else {
			set++
		}
	}
	if set > 0 && len(missing) > 0 {
		return fmt.Errorf("missing required configurations: %v", missing)
	}
	if c.Kafka.Broker != "" && c.Kafka.ReadingsTopic == "" && c.Kafka.EventsTopic == "" {
		return fmt.Errorf("missing required configurations: %v", []string{"KAFKA_READINGS_TOPIC or KAFKA_EVENTS_TOPIC"})
	}
	if c.MQTT.Broker != "" && c.MQTT.Topic == "" {
		return fmt.Errorf("missing required configurations: %v", []string{"MQTT_TOPIC"})
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = n
	return nil
}

func setFloat(dst *float64, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = f
	return nil
}

func setBool(dst *bool, key string) error {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	*dst = b
	return nil
}
