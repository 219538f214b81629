package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

const hubspotNoteToContact = 202

type HubSpot struct {
	http    *resty.Client
	apiKey  string
	ownerID string
	logger  *zap.Logger
	now     func() time.Time
}

func NewHubSpot(baseURL, apiKey, ownerID string, logger *zap.Logger) *HubSpot {
	rc := newHTTP(baseURL)
	if apiKey != "" {
		rc.SetAuthToken(apiKey)
	}
	return &HubSpot{http: rc, apiKey: apiKey, ownerID: ownerID, logger: logger, now: time.Now}
}

type hubspotObject struct {
	ID         string         `json:"id,omitempty"`
	Properties map[string]any `json:"properties"`
	// só usado na criação da nota
	Associations []hubspotAssociation `json:"associations,omitempty"`
}

type hubspotAssociation struct {
	To    map[string]string     `json:"to"`
	Types []hubspotAssocTypeRef `json:"types"`
}

type hubspotAssocTypeRef struct {
	Category string `json:"associationCategory"`
	TypeID   int    `json:"associationTypeId"`
}

// LogEvent cria o contato e anexa uma nota com o evento.
func (h *HubSpot) LogEvent(ctx context.Context, lead *entity.Lead, event entity.EventType, customData map[string]any) error {
	if h.apiKey == "" {
		return fmt.Errorf("hubspot não configurado: %w", entity.ErrChannelUnavailable)
	}

	now := h.now().UTC()
	first, last := splitName(lead.ContactName)
	contact := hubspotObject{Properties: map[string]any{
		"email":              lead.ContactEmail,
		"firstname":          first,
		"lastname":           last,
		"phone":              lead.ContactPhone,
		"foreclosure_status": string(lead.Status),
		"home_value":         lead.HomeValue,
		"mortgage_balance":   lead.MortgageBalance,
		"missed_payments":    lead.MissedPayments,
		"lender":             lead.Lender,
		"submission_date":    lead.CreatedAt.UTC().Format(time.RFC3339),
		"urgency_level":      string(entity.ClassifyUrgency(lead)),
		"lead_source":        "Foreclosure Questionnaire",
		"property_type":      lead.PropertyType,
		"nod_received":       lead.HasNOD(),
		"last_event_type":    string(event),
		"last_event_date":    now.Format(time.RFC3339),
	}}

	var created hubspotObject
	resp, err := h.http.R().
		SetContext(ctx).
		SetBody(contact).
		SetResult(&created).
		Post("/crm/v3/objects/contacts")
	if err := check(resp, err, "hubspot create contact"); err != nil {
		return err
	}

	note := hubspotObject{
		Properties: map[string]any{
			"hs_timestamp":     now.Format(time.RFC3339),
			"hubspot_owner_id": h.ownerID,
			"hs_note_body":     eventSummary(lead, event, customData),
		},
		Associations: []hubspotAssociation{{
			To:    map[string]string{"id": created.ID},
			Types: []hubspotAssocTypeRef{{Category: "HUBSPOT_DEFINED", TypeID: hubspotNoteToContact}},
		}},
	}
	resp, err = h.http.R().SetContext(ctx).SetBody(note).Post("/crm/v3/objects/notes")
	if err := check(resp, err, "hubspot create note"); err != nil {
		return err
	}

	h.logger.Info("event logged to hubspot",
		zap.String("lead_id", lead.ID),
		zap.String("contact_id", created.ID),
		zap.String("event", string(event)),
	)
	return nil
}
