package usecase

import (
	"context"
	"errors"
	"math"
	"sort"
	"time"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

type NamedCount struct {
	Name  string `json:"name"`
	Count int    `json:"count"`
}

type CallOverview struct {
	TotalCalls        int `json:"totalCalls"`
	CompletedCalls    int `json:"completedCalls"`
	TransferredCalls  int `json:"transferredCalls"`
	TodayCalls        int `json:"todayCalls"`
	UrgentCalls       int `json:"urgentCalls"`
	HighPriorityCalls int `json:"highPriorityCalls"`
	AvgDuration       int `json:"avgDuration"`
	TransferRate      int `json:"transferRate"`
}

type AIPerformance struct {
	FulfillmentRate int          `json:"fulfillmentRate"`
	TopIntents      []NamedCount `json:"topIntents"`
	AvgConfidence   float64      `json:"avgConfidence"`
}

type HandoffAnalysis struct {
	TotalHandoffs     int          `json:"totalHandoffs"`
	AvgResolutionTime int          `json:"avgResolutionTime"`
	CommonReasons     []NamedCount `json:"commonReasons"`
}

type CallDashboard struct {
	Overview        CallOverview    `json:"overview"`
	AIPerformance   AIPerformance   `json:"aiPerformance"`
	HandoffAnalysis HandoffAnalysis `json:"handoffAnalysis"`
	RecentCalls     []*entity.Call  `json:"recentCalls"`
}

type CallDetails struct {
	Call       *entity.Call         `json:"call"`
	Transcript []*entity.Transcript `json:"transcript"`
	Intents    []*entity.Intent     `json:"intents"`
	Handoff    *entity.Handoff      `json:"handoff"`
}

type IntentShare struct {
	Intent     string `json:"intent"`
	Count      int    `json:"count"`
	Percentage int    `json:"percentage"`
}

type ConfidenceRanges struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

type ConfidenceAnalysis struct {
	Ranges  ConfidenceRanges `json:"ranges"`
	Average float64          `json:"average"`
}

type FulfillmentTrend struct {
	Date            string `json:"date"`
	FulfillmentRate int    `json:"fulfillmentRate"`
	TotalIntents    int    `json:"totalIntents"`
}

type IntentAnalysis struct {
	IntentDistribution   []IntentShare      `json:"intentDistribution"`
	ConfidenceAnalysis   ConfidenceAnalysis `json:"confidenceAnalysis"`
	FulfillmentTrends    []FulfillmentTrend `json:"fulfillmentTrends"`
	LowConfidenceIntents []*entity.Intent   `json:"lowConfidenceIntents"`
}

type AgentStats struct {
	AgentID           string `json:"agentId"`
	Handoffs          int    `json:"handoffs"`
	ResolvedCases     int    `json:"resolvedCases"`
	AvgResolutionTime int    `json:"avgResolutionTime"`
	ResolutionRate    int    `json:"resolutionRate"`
}

type AgentPerformance struct {
	AgentStats     []AgentStats `json:"agentStats"`
	HandoffReasons []NamedCount `json:"handoffReasons"`
}

// CallAnalyticsUseCase computes read-only reports over the call tables.
type CallAnalyticsUseCase struct {
	Calls entity.CallRepositoryInterface
	Now   func() time.Time
}

func NewCallAnalyticsUseCase(calls entity.CallRepositoryInterface) *CallAnalyticsUseCase {
	return &CallAnalyticsUseCase{Calls: calls, Now: time.Now}
}

func (uc *CallAnalyticsUseCase) Dashboard(ctx context.Context) (*CallDashboard, error) {
	calls, err := uc.Calls.ListCalls(ctx)
	if err != nil {
		return nil, analyticsError(err)
	}
	intents, err := uc.Calls.ListIntents(ctx)
	if err != nil {
		return nil, analyticsError(err)
	}
	handoffs, err := uc.Calls.ListHandoffs(ctx)
	if err != nil {
		return nil, analyticsError(err)
	}

	today := uc.Now().UTC().Format("2006-01-02")
	var ov CallOverview
	totalDuration := 0
	for _, c := range calls {
		switch c.CallStatus {
		case entity.CallCompleted:
			ov.CompletedCalls++
		case entity.CallTransferred:
			ov.TransferredCalls++
		}
		switch c.PriorityLevel {
		case "urgent":
			ov.UrgentCalls++
		case "high":
			ov.HighPriorityCalls++
		}
		if c.CreatedAt.UTC().Format("2006-01-02") == today {
			ov.TodayCalls++
		}
		totalDuration += c.CallDuration
	}
	ov.TotalCalls = len(calls)
	if ov.TotalCalls > 0 {
		ov.AvgDuration = roundDiv(float64(totalDuration), float64(ov.TotalCalls))
		ov.TransferRate = percent(ov.TransferredCalls, ov.TotalCalls)
	}

	perf := AIPerformance{TopIntents: topN(countBy(intents, func(i *entity.Intent) string { return i.IntentName }), 5)}
	fulfilled := 0
	confSum := 0.0
	for _, i := range intents {
		if i.Fulfilled {
			fulfilled++
		}
		confSum += i.ConfidenceScore
	}
	if len(intents) > 0 {
		perf.FulfillmentRate = percent(fulfilled, len(intents))
		perf.AvgConfidence = confSum / float64(len(intents))
	}

	ha := HandoffAnalysis{
		TotalHandoffs: len(handoffs),
		CommonReasons: topN(countBy(handoffs, func(h *entity.Handoff) string { return h.Reason }), 5),
	}
	var resolvedDur time.Duration
	resolved := 0
	for _, h := range handoffs {
		if h.ResolutionTime != nil {
			resolvedDur += h.ResolutionTime.Sub(h.HandoffTime)
			resolved++
		}
	}
	if resolved > 0 {
		ha.AvgResolutionTime = roundDiv(resolvedDur.Minutes(), float64(resolved))
	}

	recent := make([]*entity.Call, 0, min(len(calls), 10))
	recent = append(recent, calls[:min(len(calls), 10)]...)

	return &CallDashboard{Overview: ov, AIPerformance: perf, HandoffAnalysis: ha, RecentCalls: recent}, nil
}

func (uc *CallAnalyticsUseCase) CallDetails(ctx context.Context, callID string) (*CallDetails, error) {
	if callID == "" {
		return nil, &DomainError{Code: "MISSING_CALL_ID", Message: "Call ID required"}
	}

	call, err := uc.Calls.FindCallByID(ctx, callID)
	if err != nil {
		if errors.Is(err, entity.ErrCallNotFound) {
			return nil, &DomainError{Code: "CALL_NOT_FOUND", Message: "Call not found", Err: err}
		}
		return nil, analyticsError(err)
	}
	transcript, err := uc.Calls.TranscriptsByCall(ctx, callID)
	if err != nil {
		return nil, analyticsError(err)
	}
	intents, err := uc.Calls.IntentsByCall(ctx, callID)
	if err != nil {
		return nil, analyticsError(err)
	}
	handoff, err := uc.Calls.HandoffByCall(ctx, callID)
	if err != nil {
		return nil, analyticsError(err)
	}

	return &CallDetails{Call: call, Transcript: transcript, Intents: intents, Handoff: handoff}, nil
}

func (uc *CallAnalyticsUseCase) IntentAnalysis(ctx context.Context) (*IntentAnalysis, error) {
	intents, err := uc.Calls.ListIntents(ctx)
	if err != nil {
		return nil, analyticsError(err)
	}

	out := &IntentAnalysis{
		IntentDistribution:   []IntentShare{},
		FulfillmentTrends:    []FulfillmentTrend{},
		LowConfidenceIntents: []*entity.Intent{},
	}

	for _, nc := range topN(countBy(intents, func(i *entity.Intent) string { return i.IntentName }), 0) {
		out.IntentDistribution = append(out.IntentDistribution, IntentShare{
			Intent: nc.Name, Count: nc.Count, Percentage: percent(nc.Count, len(intents)),
		})
	}

	sum := 0.0
	type day struct{ total, fulfilled int }
	days := map[string]*day{}
	for _, i := range intents {
		switch {
		case i.ConfidenceScore >= 0.8:
			out.ConfidenceAnalysis.Ranges.High++
		case i.ConfidenceScore >= 0.6:
			out.ConfidenceAnalysis.Ranges.Medium++
		default:
			out.ConfidenceAnalysis.Ranges.Low++
		}
		if i.ConfidenceScore < 0.7 {
			out.LowConfidenceIntents = append(out.LowConfidenceIntents, i)
		}
		sum += i.ConfidenceScore

		key := i.CreatedAt.UTC().Format("2006-01-02")
		d, ok := days[key]
		if !ok {
			d = &day{}
			days[key] = d
		}
		d.total++
		if i.Fulfilled {
			d.fulfilled++
		}
	}
	if len(intents) > 0 {
		out.ConfidenceAnalysis.Average = sum / float64(len(intents))
	}

	for date, d := range days {
		out.FulfillmentTrends = append(out.FulfillmentTrends, FulfillmentTrend{
			Date: date, FulfillmentRate: percent(d.fulfilled, d.total), TotalIntents: d.total,
		})
	}
	sort.Slice(out.FulfillmentTrends, func(a, b int) bool {
		return out.FulfillmentTrends[a].Date < out.FulfillmentTrends[b].Date
	})

	return out, nil
}

func (uc *CallAnalyticsUseCase) AgentPerformance(ctx context.Context) (*AgentPerformance, error) {
	handoffs, err := uc.Calls.ListHandoffs(ctx)
	if err != nil {
		return nil, analyticsError(err)
	}

	type acc struct {
		handoffs, resolved int
		total              time.Duration
	}
	byAgent := map[string]*acc{}
	for _, h := range handoffs {
		a, ok := byAgent[h.AgentID]
		if !ok {
			a = &acc{}
			byAgent[h.AgentID] = a
		}
		a.handoffs++
		if h.ResolutionTime != nil {
			a.resolved++
			a.total += h.ResolutionTime.Sub(h.HandoffTime)
		}
	}

	out := &AgentPerformance{
		AgentStats:     []AgentStats{},
		HandoffReasons: topN(countBy(handoffs, func(h *entity.Handoff) string { return h.Reason }), 0),
	}
	for id, a := range byAgent {
		s := AgentStats{
			AgentID:        id,
			Handoffs:       a.handoffs,
			ResolvedCases:  a.resolved,
			ResolutionRate: percent(a.resolved, a.handoffs),
		}
		if a.resolved > 0 {
			s.AvgResolutionTime = roundDiv(a.total.Minutes(), float64(a.resolved))
		}
		out.AgentStats = append(out.AgentStats, s)
	}
	sort.Slice(out.AgentStats, func(i, j int) bool { return out.AgentStats[i].AgentID < out.AgentStats[j].AgentID })

	return out, nil
}

func countBy[T any](items []T, key func(T) string) map[string]int {
	out := make(map[string]int)
	for _, it := range items {
		out[key(it)]++
	}
	return out
}

// topN sorts by count desc then name; n <= 0 keeps everything.
func topN(counts map[string]int, n int) []NamedCount {
	out := make([]NamedCount, 0, len(counts))
	for name, c := range counts {
		out = append(out, NamedCount{Name: name, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Name < out[j].Name
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

func percent(part, total int) int {
	if total == 0 {
		return 0
	}
	return int(math.Round(float64(part) / float64(total) * 100))
}

func roundDiv(sum, n float64) int {
	return int(math.Round(sum / n))
}

func analyticsError(err error) error {
	return &TechnicalError{Code: "DB_ERROR", Message: "failed to load call analytics", Err: err}
}
