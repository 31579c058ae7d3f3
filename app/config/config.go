package config

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/samber/oops"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Log      Log      `yaml:"log"`
	Server   Server   `yaml:"server"`
	OpenAI   OpenAI   `yaml:"openai"`
	WhatsApp WhatsApp `yaml:"whatsapp"`
	Data     Data     `yaml:"data"`
	Rules    Rules    `yaml:"rules"`
}

type OpenAI struct {
	// OpenAI-compatible base url
	BaseURL string `yaml:"base_url" example:"https://api.openai.com/v1"`
	// OpenAI token
	Token string `yaml:"token" example:"sk-proj-abc123456789DEF789ghi012JKL345mno678PQR901stu234VWX" validate:"required"`
	// Model name
	Model string `yaml:"model" example:"gpt-4o-mini" validate:"required"`
}

type WhatsApp struct {
	// Webhook verification token configured in the Meta developer console
	VerifyToken string `yaml:"verify_token" validate:"required"`
	// Meta Cloud API access token
	AccessToken string `yaml:"access_token"`
	// WhatsApp Business phone number ID
	PhoneID string `yaml:"phone_id"`
	// App secret for X-Hub-Signature-256 verification, empty disables the check
	AppSecret string `yaml:"app_secret"`
}

type Server struct {
	// Bind host
	Host string `yaml:"host" example:"0.0.0.0"`
	// Bind port
	Port int `yaml:"port" example:"8000"`
}

type Data struct {
	// Directory for JSON persistence
	Dir string `yaml:"dir" example:"data"`
}

type Rules struct {
	// Path to a food rules YAML, empty uses the embedded catalog
	Path string `yaml:"path" example:"config/food_rules.yaml"`
}

type Log struct {
	// Telegram logging config
	Telegram TelegramLog `yaml:"telegram"`
}

type TelegramLog struct {
	// Chat bot token, obtain it via BotFather
	Token string `yaml:"token" example:"1234567890:ABCdefGHIjklMNopQRstUVwxyZ-123456789"`
	// Chat ID to send messages to
	ChatID string `yaml:"chat_id" example:"1001234567890"`
}

func Load() (*Config, error) {
	var result Config

	data, err := os.ReadFile("config.yaml")
	if err != nil {
		return nil, oops.Errorf("failed to read config file: %w", err)
	}

	if err = yaml.Unmarshal(data, &result); err != nil {
		return nil, oops.Errorf("failed to parse YAML config: %w", err)
	}

	if result.Server.Host == "" {
		result.Server.Host = "0.0.0.0"
	}
	if result.Server.Port == 0 {
		result.Server.Port = 8000
	}
	if result.OpenAI.BaseURL == "" {
		result.OpenAI.BaseURL = "https://api.openai.com/v1"
	}
	if result.Data.Dir == "" {
		result.Data.Dir = "data"
	}

	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(result); err != nil {
		return nil, oops.Errorf("failed to validate config: %w", err)
	}

	return &result, nil
}
