package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/usecase"
)

type callAnalytics interface {
	Dashboard(ctx context.Context) (*usecase.CallDashboard, error)
	CallDetails(ctx context.Context, callID string) (*usecase.CallDetails, error)
	IntentAnalysis(ctx context.Context) (*usecase.IntentAnalysis, error)
	AgentPerformance(ctx context.Context) (*usecase.AgentPerformance, error)
}

type AnalyticsHandler struct {
	analytics callAnalytics
	logger    *zap.Logger
}

func NewAnalyticsHandler(analytics callAnalytics, logger *zap.Logger) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics, logger: logger}
}

// Handle serve GET /api/calls/analytics?action=...
func (h *AnalyticsHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	action := r.URL.Query().Get("action")
	if action == "" {
		action = "dashboard"
	}

	var (
		out any
		err error
	)
	switch action {
	case "dashboard":
		out, err = h.analytics.Dashboard(ctx)
	case "call-details":
		out, err = h.analytics.CallDetails(ctx, r.URL.Query().Get("callId"))
	case "intent-analysis":
		out, err = h.analytics.IntentAnalysis(ctx)
	case "agent-performance":
		out, err = h.analytics.AgentPerformance(ctx)
	default:
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "Invalid action"})
		return
	}

	if err != nil {
		if usecase.IsTechnicalError(err) {
			h.logger.Error("call analytics failed", zap.String("action", action), zap.Error(err))
		}
		writeUseCaseError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, out)
}
