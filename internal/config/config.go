package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

type Config struct {
	Port        string `mapstructure:"port"`
	LogLevel    string `mapstructure:"log_level"`
	LogFormat   string `mapstructure:"log_format"`
	ServiceName string `mapstructure:"service_name"`
	SiteURL     string `mapstructure:"site_url"`

	DatabaseDriver string `mapstructure:"database_driver"`
	DatabaseURL    string `mapstructure:"database_url"`

	JWTSecret string `mapstructure:"jwt_secret"`

	Mail       MailConfig       `mapstructure:"mail"`
	MailerLite MailerLiteConfig `mapstructure:"mailerlite"`
	CRM        CRMConfig        `mapstructure:"crm"`
	WhatsApp   WhatsAppConfig   `mapstructure:"whatsapp"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Telephony  TelephonyConfig  `mapstructure:"telephony"`

	RabbitMQURL string      `mapstructure:"rabbitmq_url"`
	Redis       RedisConfig `mapstructure:"redis"`

	// Zero disables the in-process follow-up ticker.
	FollowUpInterval time.Duration `mapstructure:"follow_up_interval"`

	Tiers map[string]entity.TierLimits `mapstructure:"tiers"`
}

type MailConfig struct {
	// "mailerlite" or "smtp"
	Provider     string `mapstructure:"provider"`
	From         string `mapstructure:"from"`
	FromName     string `mapstructure:"from_name"`
	SMTPHost     string `mapstructure:"smtp_host"`
	SMTPPort     int    `mapstructure:"smtp_port"`
	SMTPUser     string `mapstructure:"smtp_user"`
	SMTPPassword string `mapstructure:"smtp_password"`

	AdminEmail   string `mapstructure:"admin_email"`
	UrgentEmail  string `mapstructure:"urgent_email"`
	ManagerEmail string `mapstructure:"manager_email"`
}

type MailerLiteConfig struct {
	APIKey  string `mapstructure:"api_key"`
	BaseURL string `mapstructure:"base_url"`
}

type CRMConfig struct {
	Type         string `mapstructure:"type"`
	HubSpotKey   string `mapstructure:"hubspot_api_key"`
	HubSpotOwner string `mapstructure:"hubspot_owner_id"`
	HubSpotURL   string `mapstructure:"hubspot_url"`
	KommoToken   string `mapstructure:"kommo_api_token"`
	KommoURL     string `mapstructure:"kommo_url"`
	CustomURL    string `mapstructure:"custom_url"`
	CustomAPIKey string `mapstructure:"custom_api_key"`
}

type WhatsAppConfig struct {
	AccessToken string `mapstructure:"access_token"`
	PhoneID     string `mapstructure:"phone_id"`
	BaseURL     string `mapstructure:"base_url"`
	AlertPhone  string `mapstructure:"alert_phone"`
	Template    string `mapstructure:"template"`
}

type LLMConfig struct {
	// "openai" or "gemini"
	Provider    string  `mapstructure:"provider"`
	OpenAIKey   string  `mapstructure:"openai_api_key"`
	OpenAIURL   string  `mapstructure:"openai_url"`
	OpenAIModel string  `mapstructure:"openai_model"`
	GeminiKey   string  `mapstructure:"gemini_api_key"`
	GeminiModel string  `mapstructure:"gemini_model"`
	Temperature float64 `mapstructure:"temperature"`
	MaxTokens   int     `mapstructure:"max_tokens"`
}

type TelephonyConfig struct {
	AgentPhone      string `mapstructure:"agent_phone"`
	SchedulingPhone string `mapstructure:"scheduling_phone"`
	WebhookBaseURL  string `mapstructure:"webhook_base_url"`
}

type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8080")
	v.SetDefault("log_level", "info")
	v.SetDefault("log_format", "json")
	v.SetDefault("service_name", "foreclosure-leads")
	v.SetDefault("site_url", "http://localhost:5173")
	v.SetDefault("database_driver", "postgres")

	v.SetDefault("mail.provider", "mailerlite")
	v.SetDefault("mail.from", "noreply@repmotivatedseller.org")
	v.SetDefault("mail.from_name", "RepMotivatedSeller")
	v.SetDefault("mail.smtp_port", 587)
	v.SetDefault("mail.admin_email", "admin@repmotivatedseller.org")
	v.SetDefault("mail.urgent_email", "urgent@repmotivatedseller.org")
	v.SetDefault("mail.manager_email", "manager@repmotivatedseller.org")

	v.SetDefault("mailerlite.base_url", "https://connect.mailerlite.com/api")

	v.SetDefault("crm.type", "hubspot")
	v.SetDefault("crm.hubspot_url", "https://api.hubapi.com")

	v.SetDefault("whatsapp.base_url", "https://graph.facebook.com/v18.0")
	v.SetDefault("whatsapp.template", "urgent_case_alert")

	v.SetDefault("llm.provider", "openai")
	v.SetDefault("llm.openai_url", "https://api.openai.com/v1")
	v.SetDefault("llm.openai_model", "gpt-4")
	v.SetDefault("llm.gemini_model", "gemini-2.0-flash")
	v.SetDefault("llm.temperature", 0.7)
	v.SetDefault("llm.max_tokens", 500)

	v.SetDefault("telephony.agent_phone", "+15551234567")
	v.SetDefault("telephony.scheduling_phone", "+15551234567")

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("follow_up_interval", "0s")

	v.SetDefault("tiers.free.daily", 10000)
	v.SetDefault("tiers.free.monthly", 100000)
	v.SetDefault("tiers.free.max_request_size", 1000)
	v.SetDefault("tiers.pro.daily", 100000)
	v.SetDefault("tiers.pro.monthly", 2000000)
	v.SetDefault("tiers.pro.max_request_size", 5000)
	v.SetDefault("tiers.enterprise.daily", 1000000)
	v.SetDefault("tiers.enterprise.monthly", 20000000)
	v.SetDefault("tiers.enterprise.max_request_size", 20000)
}

// Load reads .env (when present) and the process environment.
// Nested keys map to env vars with "_" separators: mail.admin_email -> MAIL_ADMIN_EMAIL.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	setDefaults(v)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// AutomaticEnv only resolves keys viper already knows about.
	for _, key := range []string{
		"database_url", "jwt_secret", "rabbitmq_url",
		"mail.smtp_host", "mail.smtp_user", "mail.smtp_password",
		"mailerlite.api_key",
		"crm.hubspot_api_key", "crm.hubspot_owner_id", "crm.kommo_api_token", "crm.kommo_url",
		"crm.custom_url", "crm.custom_api_key",
		"whatsapp.access_token", "whatsapp.phone_id", "whatsapp.alert_phone",
		"llm.openai_api_key", "llm.gemini_api_key",
		"telephony.webhook_base_url",
		"redis.password",
	} {
		if err := v.BindEnv(key); err != nil {
			return nil, fmt.Errorf("binding env %s: %w", key, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTSecret == "" {
		return nil, fmt.Errorf("JWT_SECRET is required")
	}

	return cfg, nil
}

// TierLimits returns the limits for tier, falling back to the free tier.
func (c *Config) TierLimits(tier string) entity.TierLimits {
	if l, ok := c.Tiers[strings.ToLower(tier)]; ok {
		return l
	}
	return c.Tiers[entity.DefaultTier]
}
