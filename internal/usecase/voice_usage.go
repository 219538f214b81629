package usecase

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

type RecordVoiceUsageInput struct {
	UserID string `json:"-"`
	Text   string `json:"text"`
	Voice  string `json:"voice"`
	Model  string `json:"model"`
	Tier   string `json:"tier"`
}

type RecordVoiceUsageUseCase struct {
	Repo     entity.VoiceUsageRepositoryInterface
	Counters entity.UsageCounter
	Logger   *zap.Logger
	Now      func() time.Time
}

func NewRecordVoiceUsageUseCase(repo entity.VoiceUsageRepositoryInterface, counters entity.UsageCounter, logger *zap.Logger) *RecordVoiceUsageUseCase {
	return &RecordVoiceUsageUseCase{Repo: repo, Counters: counters, Logger: logger, Now: time.Now}
}

func (uc *RecordVoiceUsageUseCase) Execute(ctx context.Context, in RecordVoiceUsageInput) (*entity.VoiceUsage, error) {
	if in.UserID == "" {
		return nil, &DomainError{Code: "UNAUTHENTICATED", Message: "user not authenticated"}
	}
	if errs := ValidateVoiceUsageInput(in); len(errs) > 0 {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "Missing required fields", Err: errs}
	}

	usage := &entity.VoiceUsage{
		ID:         uuid.NewString(),
		UserID:     in.UserID,
		TextLength: utf8.RuneCountInString(in.Text),
		Voice:      in.Voice,
		Model:      in.Model,
		Tier:       in.Tier,
		CreatedAt:  uc.Now().UTC(),
	}
	if err := uc.Repo.Create(ctx, usage); err != nil {
		return nil, &TechnicalError{Code: "DB_ERROR", Message: "failed to log voice usage", Err: err}
	}

	if uc.Counters != nil {
		if err := uc.Counters.Add(ctx, usage.UserID, usage.TextLength, usage.CreatedAt); err != nil {
			uc.Logger.Warn("usage counter update failed", zap.String("user_id", usage.UserID), zap.Error(err))
		}
	}

	return usage, nil
}

type CheckVoiceLimitsInput struct {
	UserID      string `json:"-"`
	Tier        string `json:"-"`
	RequestSize int    `json:"requestSize"`
}

type UsagePair struct {
	Daily   int `json:"daily"`
	Monthly int `json:"monthly"`
}

type CheckVoiceLimitsOutput struct {
	Allowed      bool              `json:"allowed"`
	CurrentUsage UsagePair         `json:"currentUsage"`
	Limits       entity.TierLimits `json:"limits"`
	Remaining    UsagePair         `json:"remaining"`
	Message      string            `json:"message,omitempty"`
}

type CheckVoiceLimitsUseCase struct {
	Counters entity.UsageCounter
	Limits   func(tier string) entity.TierLimits
	Now      func() time.Time
}

func NewCheckVoiceLimitsUseCase(counters entity.UsageCounter, limits func(tier string) entity.TierLimits) *CheckVoiceLimitsUseCase {
	return &CheckVoiceLimitsUseCase{Counters: counters, Limits: limits, Now: time.Now}
}

func (uc *CheckVoiceLimitsUseCase) Execute(ctx context.Context, in CheckVoiceLimitsInput) (*CheckVoiceLimitsOutput, error) {
	if in.UserID == "" {
		return nil, &DomainError{Code: "UNAUTHENTICATED", Message: "user not authenticated"}
	}
	if in.RequestSize < 0 {
		return nil, &DomainError{Code: "VALIDATION_ERROR", Message: "requestSize must not be negative"}
	}

	tier := in.Tier
	if tier == "" {
		tier = entity.DefaultTier
	}
	limits := uc.Limits(tier)

	daily, monthly, err := uc.Counters.Usage(ctx, in.UserID, uc.Now().UTC())
	if err != nil {
		return nil, &TechnicalError{Code: "CACHE_ERROR", Message: "failed to read usage", Err: err}
	}

	out := &CheckVoiceLimitsOutput{
		CurrentUsage: UsagePair{Daily: daily, Monthly: monthly},
		Limits:       limits,
		Remaining:    UsagePair{Daily: limits.Daily - daily, Monthly: limits.Monthly - monthly},
	}

	sizeOK := in.RequestSize <= limits.MaxRequestSize
	dailyExceeded := in.RequestSize > out.Remaining.Daily
	monthlyExceeded := in.RequestSize > out.Remaining.Monthly
	out.Allowed = sizeOK && !dailyExceeded && !monthlyExceeded

	switch {
	case !sizeOK:
		out.Message = fmt.Sprintf("Request size (%d) exceeds maximum allowed size (%d) for your %s tier.",
			in.RequestSize, limits.MaxRequestSize, tier)
	case dailyExceeded:
		out.Message = fmt.Sprintf("Request would exceed your daily limit. Remaining: %d characters.", out.Remaining.Daily)
	case monthlyExceeded:
		out.Message = fmt.Sprintf("Request would exceed your monthly limit. Remaining: %d characters.", out.Remaining.Monthly)
	}

	return out, nil
}
