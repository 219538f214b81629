package crm

import (
	"context"
	"fmt"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/entity"
)

// Kommo cria um lead no funil a cada nova submissão e registra os demais
// eventos como nota no contato.
type Kommo struct {
	http     *resty.Client
	apiToken string
	logger   *zap.Logger
}

func NewKommo(baseURL, apiToken string, logger *zap.Logger) *Kommo {
	rc := newHTTP(baseURL)
	if apiToken != "" {
		rc.SetAuthToken(apiToken)
	}
	return &Kommo{http: rc, apiToken: apiToken, logger: logger}
}

type kommoEmbedded struct {
	Embedded struct {
		Contacts []struct {
			ID int `json:"id"`
		} `json:"contacts"`
		Leads []struct {
			ID int `json:"id"`
		} `json:"leads"`
	} `json:"_embedded"`
}

func (k *Kommo) LogEvent(ctx context.Context, lead *entity.Lead, event entity.EventType, customData map[string]any) error {
	if k.apiToken == "" {
		return fmt.Errorf("kommo não configurado: %w", entity.ErrChannelUnavailable)
	}

	contactID, err := k.findOrCreateContact(ctx, lead)
	if err != nil {
		return fmt.Errorf("erro ao criar/buscar contato: %w", err)
	}

	if event == entity.EventNewSubmission {
		leadID, err := k.createLead(ctx, lead, contactID)
		if err != nil {
			return err
		}
		k.logger.Info("kommo lead created",
			zap.Int("kommo_lead_id", leadID),
			zap.String("lead_id", lead.ID),
		)
	}

	notes := []map[string]any{{
		"entity_id": contactID,
		"note_type": "common",
		"params":    map[string]string{"text": eventSummary(lead, event, customData)},
	}}
	resp, err := k.http.R().SetContext(ctx).SetBody(notes).Post("/contacts/notes")
	return check(resp, err, "kommo add note")
}

func (k *Kommo) createLead(ctx context.Context, lead *entity.Lead, contactID int) (int, error) {
	urgency := entity.ClassifyUrgency(lead)
	payload := []map[string]any{{
		"name": fmt.Sprintf("%s - %s", lead.ContactName, lead.Lender),
		"_embedded": map[string]any{
			"tags": []map[string]any{
				{"name": "foreclosure_questionnaire"},
				{"name": "priority_" + string(urgency)},
			},
			"contacts": []map[string]any{{"id": contactID}},
		},
	}}

	var result kommoEmbedded
	resp, err := k.http.R().SetContext(ctx).SetBody(payload).SetResult(&result).Post("/leads")
	if err := check(resp, err, "kommo create lead"); err != nil {
		return 0, err
	}
	if len(result.Embedded.Leads) == 0 {
		return 0, fmt.Errorf("lead não criado: %w", entity.ErrChannelRejected)
	}
	return result.Embedded.Leads[0].ID, nil
}

func (k *Kommo) findOrCreateContact(ctx context.Context, lead *entity.Lead) (int, error) {
	query := lead.ContactPhone
	if query == "" {
		query = lead.ContactEmail
	}
	if query != "" {
		if id, err := k.findContact(ctx, query); err == nil && id > 0 {
			return id, nil
		}
	}
	return k.createContact(ctx, lead)
}

func (k *Kommo) findContact(ctx context.Context, query string) (int, error) {
	var result kommoEmbedded
	resp, err := k.http.R().
		SetContext(ctx).
		SetQueryParam("query", query).
		SetResult(&result).
		Get("/contacts")
	if err := check(resp, err, "kommo find contact"); err != nil {
		return 0, err
	}
	// 204 sem corpo quando não acha nada
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("contato não encontrado")
	}
	return result.Embedded.Contacts[0].ID, nil
}

func (k *Kommo) createContact(ctx context.Context, lead *entity.Lead) (int, error) {
	var fields []map[string]any
	if lead.ContactPhone != "" {
		fields = append(fields, map[string]any{
			"field_code": "PHONE",
			"values":     []map[string]any{{"value": lead.ContactPhone, "enum_code": "WORK"}},
		})
	}
	if lead.ContactEmail != "" {
		fields = append(fields, map[string]any{
			"field_code": "EMAIL",
			"values":     []map[string]any{{"value": lead.ContactEmail, "enum_code": "WORK"}},
		})
	}

	name := lead.ContactName
	if name == "" {
		name = "Lead " + lead.ID
	}
	payload := []map[string]any{{"name": name, "custom_fields_values": fields}}

	var result kommoEmbedded
	resp, err := k.http.R().SetContext(ctx).SetBody(payload).SetResult(&result).Post("/contacts")
	if err := check(resp, err, "kommo create contact"); err != nil {
		return 0, err
	}
	if len(result.Embedded.Contacts) == 0 {
		return 0, fmt.Errorf("erro ao obter ID do contato criado: %w", entity.ErrChannelRejected)
	}

	id := result.Embedded.Contacts[0].ID
	k.logger.Debug("kommo contact created", zap.Int("contact_id", id))
	return id, nil
}
