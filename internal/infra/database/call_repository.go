package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

const (
	callSelect       = "SELECT id, call_sid, phone_number, call_status, priority_level, call_duration, requires_human_followup, created_at, completed_at FROM ai_calls"
	transcriptSelect = "SELECT id, call_id, speaker, message, confidence_score, timestamp_offset, created_at FROM call_transcripts"
	intentSelect     = "SELECT id, call_id, intent_name, confidence_score, entities, response_provided, fulfilled, created_at FROM call_intents"
	handoffSelect    = "SELECT id, call_id, reason, ai_summary, agent_id, handoff_time, resolution_time FROM agent_handoffs"
)

// CallRepository guarda chamadas de voz, transcrições, intents e handoffs.
type CallRepository struct {
	DB *sqlx.DB
}

func NewCallRepository(db *sqlx.DB) *CallRepository {
	return &CallRepository{DB: db}
}

func (r *CallRepository) CreateCall(ctx context.Context, c *entity.Call) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO ai_calls (id, call_sid, phone_number, call_status, priority_level,
			call_duration, requires_human_followup, created_at, completed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		c.ID, c.CallSID, c.PhoneNumber, c.CallStatus, c.PriorityLevel,
		c.CallDuration, c.RequiresHumanFollowup, c.CreatedAt.UTC(), utcPtr(c.CompletedAt),
	)
	if err != nil {
		return fmt.Errorf("inserting call %s: %w", c.CallSID, err)
	}
	return nil
}

func (r *CallRepository) FindCallBySID(ctx context.Context, sid string) (*entity.Call, error) {
	return r.findCall(ctx, "call_sid", sid)
}

func (r *CallRepository) FindCallByID(ctx context.Context, id string) (*entity.Call, error) {
	return r.findCall(ctx, "id", id)
}

func (r *CallRepository) findCall(ctx context.Context, column, value string) (*entity.Call, error) {
	var c entity.Call
	err := r.DB.GetContext(ctx, &c, r.DB.Rebind(callSelect+" WHERE "+column+" = ?"), value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, entity.ErrCallNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting call by %s: %w", column, err)
	}
	return &c, nil
}

func (r *CallRepository) MarkTransferred(ctx context.Context, callID string) error {
	res, err := r.DB.ExecContext(ctx,
		r.DB.Rebind("UPDATE ai_calls SET call_status = ?, requires_human_followup = ? WHERE id = ?"),
		entity.CallTransferred, true, callID,
	)
	if err != nil {
		return fmt.Errorf("marking call %s transferred: %w", callID, err)
	}
	return expectRow(res, entity.ErrCallNotFound)
}

// MarkCompleted also stores the call duration measured from created_at.
func (r *CallRepository) MarkCompleted(ctx context.Context, sid string, completedAt time.Time) error {
	c, err := r.FindCallBySID(ctx, sid)
	if err != nil {
		return err
	}

	duration := int(completedAt.Sub(c.CreatedAt).Seconds())
	if duration < 0 {
		duration = 0
	}

	_, err = r.DB.ExecContext(ctx,
		r.DB.Rebind("UPDATE ai_calls SET call_status = ?, completed_at = ?, call_duration = ? WHERE id = ?"),
		entity.CallCompleted, completedAt.UTC(), duration, c.ID,
	)
	if err != nil {
		return fmt.Errorf("marking call %s completed: %w", sid, err)
	}
	return nil
}

func (r *CallRepository) ListCalls(ctx context.Context) ([]*entity.Call, error) {
	var calls []*entity.Call
	if err := r.DB.SelectContext(ctx, &calls, callSelect+" ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("listing calls: %w", err)
	}
	return calls, nil
}

func (r *CallRepository) RecentCalls(ctx context.Context, limit int) ([]*entity.Call, error) {
	var calls []*entity.Call
	if err := r.DB.SelectContext(ctx, &calls,
		r.DB.Rebind(callSelect+" ORDER BY created_at DESC LIMIT ?"), limit,
	); err != nil {
		return nil, fmt.Errorf("listing recent calls: %w", err)
	}
	return calls, nil
}

func (r *CallRepository) AddTranscript(ctx context.Context, t *entity.Transcript) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO call_transcripts (id, call_id, speaker, message, confidence_score, timestamp_offset, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		t.ID, t.CallID, t.Speaker, t.Message, t.ConfidenceScore, t.TimestampOffset, t.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting transcript for call %s: %w", t.CallID, err)
	}
	return nil
}

func (r *CallRepository) TranscriptsByCall(ctx context.Context, callID string) ([]*entity.Transcript, error) {
	var out []*entity.Transcript
	if err := r.DB.SelectContext(ctx, &out,
		r.DB.Rebind(transcriptSelect+" WHERE call_id = ? ORDER BY timestamp_offset, created_at"), callID,
	); err != nil {
		return nil, fmt.Errorf("listing transcripts for call %s: %w", callID, err)
	}
	return out, nil
}

func (r *CallRepository) AddIntent(ctx context.Context, i *entity.Intent) error {
	if i.Entities == "" {
		i.Entities = "{}"
	}
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO call_intents (id, call_id, intent_name, confidence_score, entities, response_provided, fulfilled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
		i.ID, i.CallID, i.IntentName, i.ConfidenceScore, i.Entities, i.ResponseProvided, i.Fulfilled, i.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("inserting intent for call %s: %w", i.CallID, err)
	}
	return nil
}

func (r *CallRepository) IntentsByCall(ctx context.Context, callID string) ([]*entity.Intent, error) {
	var out []*entity.Intent
	if err := r.DB.SelectContext(ctx, &out,
		r.DB.Rebind(intentSelect+" WHERE call_id = ? ORDER BY created_at"), callID,
	); err != nil {
		return nil, fmt.Errorf("listing intents for call %s: %w", callID, err)
	}
	return out, nil
}

func (r *CallRepository) ListIntents(ctx context.Context) ([]*entity.Intent, error) {
	var out []*entity.Intent
	if err := r.DB.SelectContext(ctx, &out, intentSelect+" ORDER BY created_at DESC"); err != nil {
		return nil, fmt.Errorf("listing intents: %w", err)
	}
	return out, nil
}

func (r *CallRepository) AddHandoff(ctx context.Context, h *entity.Handoff) error {
	_, err := r.DB.ExecContext(ctx, r.DB.Rebind(`
		INSERT INTO agent_handoffs (id, call_id, reason, ai_summary, agent_id, handoff_time, resolution_time)
		VALUES (?, ?, ?, ?, ?, ?, ?)`),
		h.ID, h.CallID, h.Reason, h.AISummary, h.AgentID, h.HandoffTime.UTC(), utcPtr(h.ResolutionTime),
	)
	if err != nil {
		return fmt.Errorf("inserting handoff for call %s: %w", h.CallID, err)
	}
	return nil
}

// HandoffByCall returns nil without error when the call was never handed off.
func (r *CallRepository) HandoffByCall(ctx context.Context, callID string) (*entity.Handoff, error) {
	var h entity.Handoff
	err := r.DB.GetContext(ctx, &h,
		r.DB.Rebind(handoffSelect+" WHERE call_id = ? ORDER BY handoff_time DESC LIMIT 1"), callID,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("getting handoff for call %s: %w", callID, err)
	}
	return &h, nil
}

func (r *CallRepository) ListHandoffs(ctx context.Context) ([]*entity.Handoff, error) {
	var out []*entity.Handoff
	if err := r.DB.SelectContext(ctx, &out, handoffSelect+" ORDER BY handoff_time DESC"); err != nil {
		return nil, fmt.Errorf("listing handoffs: %w", err)
	}
	return out, nil
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}

func expectRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}
