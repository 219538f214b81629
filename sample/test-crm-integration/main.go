package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/xavierca1/foreclosure-leads/internal/config"
	"github.com/xavierca1/foreclosure-leads/internal/entity"
	"github.com/xavierca1/foreclosure-leads/internal/infra/integration/crm"
)

// Envia um evento de teste para o CRM configurado em CRM_TYPE.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("aviso: arquivo .env não encontrado, usando variáveis de ambiente do sistema")
	}

	cfg := config.CRMConfig{
		Type:         os.Getenv("CRM_TYPE"),
		HubSpotKey:   os.Getenv("CRM_HUBSPOT_API_KEY"),
		HubSpotOwner: os.Getenv("CRM_HUBSPOT_OWNER_ID"),
		HubSpotURL:   envOr("CRM_HUBSPOT_URL", "https://api.hubapi.com"),
		KommoToken:   os.Getenv("CRM_KOMMO_API_TOKEN"),
		KommoURL:     os.Getenv("CRM_KOMMO_URL"),
		CustomURL:    os.Getenv("CRM_CUSTOM_URL"),
		CustomAPIKey: os.Getenv("CRM_CUSTOM_API_KEY"),
	}
	if cfg.Type == "" {
		log.Fatal("CRM_TYPE deve estar configurado (hubspot, kommo, custom...)")
	}

	logger, _ := zap.NewDevelopment()
	defer logger.Sync()

	lead := entity.NewLead("sample-user", time.Now())
	lead.ContactName = "Joao Teste da Silva"
	lead.ContactPhone = "+15550001111"
	lead.ContactEmail = "joao.teste@example.com"
	lead.Lender = "Sample Bank"
	lead.NOD = "yes"
	lead.MissedPayments = 3

	fmt.Printf("Enviando evento new_submission para o CRM %q\n", cfg.Type)
	fmt.Printf("   Nome: %s\n", lead.ContactName)
	fmt.Printf("   Telefone: %s\n", lead.ContactPhone)
	fmt.Printf("   Urgência: %s\n\n", entity.ClassifyUrgency(lead))

	backend := crm.New(cfg, logger)
	if err := backend.LogEvent(context.Background(), lead, entity.EventNewSubmission, map[string]any{"source": "sample"}); err != nil {
		log.Fatalf("erro ao registrar no CRM: %v", err)
	}

	fmt.Printf("Evento registrado. Submission ID: %s\n", lead.ID)
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
