package handlers

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/infra/http/middleware"
	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type leadSubmitter interface {
	Execute(ctx context.Context, input usecase.SubmitLeadInput) (*usecase.SubmitLeadOutput, error)
}

type leadGetter interface {
	Execute(ctx context.Context, id string) (*entity.Lead, error)
}

type leadStatusUpdater interface {
	Execute(ctx context.Context, in usecase.UpdateLeadStatusInput) (*usecase.UpdateLeadStatusOutput, error)
}

type LeadHandler struct {
	submit      leadSubmitter
	get         leadGetter
	update      leadStatusUpdater
	rateLimiter *RateLimiter
	logger      *zap.Logger
}

func NewLeadHandler(submit leadSubmitter, get leadGetter, update leadStatusUpdater, limiter *RateLimiter, logger *zap.Logger) *LeadHandler {
	return &LeadHandler{
		submit:      submit,
		get:         get,
		update:      update,
		rateLimiter: limiter,
		logger:      logger,
	}
}

type SubmitLeadResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	ID      string `json:"id"`
}

// Submit recebe o questionário de foreclosure (POST /api/leads).
func (h *LeadHandler) Submit(w http.ResponseWriter, r *http.Request) {
	clientIP := getClientIP(r)
	if h.rateLimiter != nil && !h.rateLimiter.Allow(clientIP) {
		writeError(w, http.StatusTooManyRequests, "Too many requests. Please try again later.")
		return
	}

	var input usecase.SubmitLeadInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	input.UserID = middleware.UserID(r.Context())

	out, err := h.submit.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			h.logger.Error("lead submission failed", zap.String("ip", clientIP), zap.Error(err))
		}
		writeUseCaseError(w, err)
		return
	}

	middleware.RecordLeadSubmitted(string(out.Urgency))
	writeJSON(w, http.StatusOK, SubmitLeadResponse{
		Success: true,
		Message: "Foreclosure questionnaire submitted successfully",
		ID:      out.ID,
	})
}

func (h *LeadHandler) Get(w http.ResponseWriter, r *http.Request) {
	lead, err := h.get.Execute(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeUseCaseError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, lead)
}

// UpdateStatus move o lead para frente no funil (PATCH /api/leads/{id}/status).
func (h *LeadHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateLeadStatusInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}
	input.ID = chi.URLParam(r, "id")

	out, err := h.update.Execute(r.Context(), input)
	if err != nil {
		if usecase.IsTechnicalError(err) {
			h.logger.Error("status update failed", zap.String("lead_id", input.ID), zap.Error(err))
		}
		writeUseCaseError(w, err)
		return
	}

	if out.NotifyError != "" {
		h.logger.Warn("status updated but notification failed",
			zap.String("lead_id", input.ID), zap.String("error", out.NotifyError))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success":     true,
		"lead":        out.Lead,
		"notified":    out.Notified,
		"notifyError": out.NotifyError,
		"recipients":  out.Recipients,
	})
}

func getClientIP(r *http.Request) string {
	// primeiro hop é o cliente
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		return strings.TrimSpace(first)
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	if host, _, err := net.SplitHostPort(r.RemoteAddr); err == nil {
		return host
	}
	return r.RemoteAddr
}

type RateLimiter struct {
	mu       sync.Mutex
	visitors map[string]*visitor
	limit    int
	window   time.Duration
	now      func() time.Time
}

type visitor struct {
	count     int
	lastReset time.Time
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	return &RateLimiter{
		visitors: make(map[string]*visitor),
		limit:    limit,
		window:   window,
		now:      time.Now,
	}
}

func (rl *RateLimiter) Allow(ip string) bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	v, exists := rl.visitors[ip]
	now := rl.now()

	if !exists {
		rl.visitors[ip] = &visitor{count: 1, lastReset: now}
		return true
	}

	if now.Sub(v.lastReset) > rl.window {
		v.count = 1
		v.lastReset = now
		return true
	}

	v.count++
	return v.count <= rl.limit
}

// Cleanup remove visitantes parados até o ctx ser cancelado.
func (rl *RateLimiter) Cleanup(ctx context.Context, every time.Duration) {
	ticker := time.NewTicker(every)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rl.mu.Lock()
			now := rl.now()
			for ip, v := range rl.visitors {
				if now.Sub(v.lastReset) > rl.window*2 {
					delete(rl.visitors, ip)
				}
			}
			rl.mu.Unlock()
		}
	}
}
