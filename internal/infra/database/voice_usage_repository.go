package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

type VoiceUsageRepository struct {
	DB *sqlx.DB
}

func NewVoiceUsageRepository(db *sqlx.DB) *VoiceUsageRepository {
	return &VoiceUsageRepository{DB: db}
}

func (r *VoiceUsageRepository) Create(ctx context.Context, u *entity.VoiceUsage) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO voice_usage (id, user_id, text_length, voice, model, tier, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		u.ID, u.UserID, u.TextLength, u.Voice, u.Model, u.Tier, u.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting voice usage for %s: %w", u.UserID, err)
	}
	return nil
}
