package database

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

func TestVoiceUsageRepository_Create(t *testing.T) {
	db := newTestDB(t)
	repo := NewVoiceUsageRepository(db)

	u := &entity.VoiceUsage{
		ID: "usage-1", UserID: "user-1", TextLength: 42,
		Voice: "alloy", Model: "tts-1", Tier: "free",
		CreatedAt: time.Date(2026, 5, 4, 9, 0, 0, 0, time.UTC),
	}
	require.NoError(t, repo.Create(context.Background(), u))

	var got entity.VoiceUsage
	require.NoError(t, db.Get(&got, `SELECT id, user_id, text_length, voice, model, tier, created_at FROM voice_usage WHERE id = ?`, "usage-1"))
	assert.Equal(t, "user-1", got.UserID)
	assert.Equal(t, 42, got.TextLength)
	assert.Equal(t, "tts-1", got.Model)
}

func TestVoiceUsageRepository_CreateError(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	repo := NewVoiceUsageRepository(sqlx.NewDb(mockDB, "postgres"))

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO voice_usage")).
		WillReturnError(errors.New("disk full"))

	err = repo.Create(context.Background(), &entity.VoiceUsage{ID: "u", UserID: "user-9", CreatedAt: time.Now()})
	assert.ErrorContains(t, err, "user-9")
	assert.ErrorContains(t, err, "disk full")
	assert.NoError(t, mock.ExpectationsWereMet())
}
