package app

import (
	"context"
	"errors"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/ceustudio-backend/internal/platform/airtable"
	"github.com/yungbote/ceustudio-backend/internal/platform/gcp"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
	"github.com/yungbote/ceustudio-backend/internal/platform/openai"
	"github.com/yungbote/ceustudio-backend/internal/realtime/bus"
)

// Clients holds the optional outside dependencies. Any of them may be nil;
// the services degrade the way their constructors document.
type Clients struct {
	Redis    goredis.UniversalClient
	Bus      bus.Bus
	Airtable airtable.Client
	OpenAI   openai.Client
	Bucket   gcp.BucketService
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) Clients {
	log.Info("Wiring clients...")
	var out Clients

	if cfg.RedisAddr != "" {
		rdb := goredis.NewClient(&goredis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		b, err := bus.NewRedisBus(ctx, rdb, cfg.RedisChannel, log)
		if err != nil {
			log.Warn("redis unavailable; SSE stays in-process and rate limits stay local", "addr", cfg.RedisAddr, "error", err)
			_ = rdb.Close()
		} else {
			out.Redis, out.Bus = rdb, b
		}
	}

	if cfg.AirtableConfigured() {
		c, err := airtable.NewClient(airtable.Config{
			BaseURL: cfg.AirtableBaseURL,
			BaseID:  cfg.AirtableBaseID,
			Token:   cfg.AirtableToken,
			Table:   cfg.AirtableTable,
		}, log)
		if err != nil {
			log.Warn("airtable client init failed", "error", err)
		} else {
			out.Airtable = c
		}
	} else {
		log.Warn("airtable not configured; waitlist endpoints will answer 500")
	}

	if c, err := openai.NewClient(openai.Config{
		APIKey:  cfg.OpenAIAPIKey,
		BaseURL: cfg.OpenAIBaseURL,
		Model:   cfg.OpenAIModel,
		Timeout: time.Duration(cfg.OpenAITimeoutSeconds) * time.Second,
	}, log); err != nil {
		if !errors.Is(err, openai.ErrNotConfigured) {
			log.Warn("openai client init failed", "error", err)
		}
		log.Info("advisor running on staged fallback answers")
	} else {
		out.OpenAI = c
	}

	if cfg.StorageConfigured() {
		b, err := gcp.NewBucketService(ctx, gcp.BucketConfig{
			CertificateBucket: cfg.CertificateBucket,
			CourseAssetBucket: cfg.CourseAssetBucket,
			EmulatorHost:      cfg.GCSEmulatorHost,
			PublicBaseURL:     cfg.GCSPublicBaseURL,
			Credentials:       cfg.GCPCredentials,
		}, log)
		if err != nil {
			log.Warn("bucket service init failed; uploads disabled", "error", err)
		} else {
			out.Bucket = b
		}
	}
	return out
}

func (c Clients) Close() {
	if c.Bus != nil {
		_ = c.Bus.Close()
	}
}
