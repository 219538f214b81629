package entity

import (
	"context"
	"time"
)

const DefaultTier = "free"

type VoiceUsage struct {
	ID         string    `json:"id" db:"id"`
	UserID     string    `json:"user_id" db:"user_id"`
	TextLength int       `json:"text_length" db:"text_length"`
	Voice      string    `json:"voice" db:"voice"`
	Model      string    `json:"model" db:"model"`
	Tier       string    `json:"tier" db:"tier"`
	CreatedAt  time.Time `json:"created_at" db:"created_at"`
}

// TierLimits are character budgets for one membership tier.
type TierLimits struct {
	Daily          int `json:"daily" mapstructure:"daily"`
	Monthly        int `json:"monthly" mapstructure:"monthly"`
	MaxRequestSize int `json:"maxRequestSize" mapstructure:"max_request_size"`
}

type VoiceUsageRepositoryInterface interface {
	Create(ctx context.Context, u *VoiceUsage) error
}

// UsageCounter tracks characters consumed per user per day and month.
type UsageCounter interface {
	Add(ctx context.Context, userID string, chars int, at time.Time) error
	Usage(ctx context.Context, userID string, at time.Time) (daily, monthly int, err error)
}
