package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/yungbote/ceustudio-backend/internal/data/repos"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/realtime"
	"github.com/yungbote/ceustudio-backend/internal/services"
)

type Services struct {
	Auth        services.AuthService
	Learner     services.LearnerService
	Studio      services.StudioService
	Advisor     services.AdvisorService
	Waitlist    services.WaitlistService
	Admin       services.AdminService
	Catalog     services.CatalogService
	Ingestion   services.IngestionService
	Certificate services.CertificateService
	Emitter     services.SSEEmitter
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, clients Clients, hub *realtime.SSEHub) (Services, error) {
	log.Info("Wiring services...")

	var emitter services.SSEEmitter = &services.HubEmitter{Hub: hub}
	if clients.Bus != nil {
		emitter = &services.RedisEmitter{Bus: clients.Bus, Log: log.With("component", "RedisEmitter")}
	}

	auth, err := services.NewAuthService(log, services.AuthConfig{
		JWTSecretKey:      cfg.JWTSecretKey,
		AccessTTL:         cfg.AccessTokenTTL,
		AdminEmail:        cfg.AdminEmail,
		AdminPasswordHash: cfg.AdminPasswordHash,
		AdminSessionTTL:   cfg.AdminSessionTTL,
	})
	if err != nil {
		return Services{}, fmt.Errorf("init auth service: %w", err)
	}

	learner := services.NewLearnerService(log, repos.NewLearnerRepo(db, log), auth, emitter)
	studioSvc := services.NewStudioService(log, learner, emitter)
	advisor := services.NewAdvisorService(log, clients.OpenAI, studioSvc, cfg.OpenAIModel)

	catalog, err := services.NewCatalogService(log, cfg.CatalogSeedPath)
	if err != nil {
		studioSvc.Close()
		return Services{}, fmt.Errorf("init catalog service: %w", err)
	}
	certificate, err := services.NewCertificateService(log, learner, clients.Bucket, cfg.CertificateFont)
	if err != nil {
		studioSvc.Close()
		return Services{}, fmt.Errorf("init certificate service: %w", err)
	}

	return Services{
		Auth:        auth,
		Learner:     learner,
		Studio:      studioSvc,
		Advisor:     advisor,
		Waitlist:    services.NewWaitlistService(log, clients.Airtable),
		Admin:       services.NewAdminService(log, auth, clients.Airtable),
		Catalog:     catalog,
		Ingestion:   services.NewIngestionService(log, clients.Bucket, emitter, cfg.IngestionDelay),
		Certificate: certificate,
		Emitter:     emitter,
	}, nil
}

func (s Services) Close() {
	if s.Studio != nil {
		s.Studio.Close()
	}
	if s.Ingestion != nil {
		s.Ingestion.Close()
	}
}
