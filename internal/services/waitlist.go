package services

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/yungbote/ceustudio-backend/internal/observability"
	"github.com/yungbote/ceustudio-backend/internal/platform/airtable"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

const (
	waitlistSource      = "MR CEU Studio"
	waitlistDefaultRole = "Architect"
)

type WaitlistInput struct {
	FirstName string `json:"firstName" validate:"required"`
	LastName  string `json:"lastName" validate:"required"`
	Company   string `json:"company" validate:"required"`
	Role      string `json:"role"`
	Email     string `json:"email" validate:"required,looseemail"`
}

type WaitlistService interface {
	Join(ctx context.Context, in WaitlistInput) error
}

type waitlistService struct {
	log    *logger.Logger
	client airtable.Client
}

// NewWaitlistService accepts a nil client; every Join then fails with a
// configuration error instead of the process refusing to start.
func NewWaitlistService(log *logger.Logger, client airtable.Client) WaitlistService {
	return &waitlistService{log: log.With("service", "WaitlistService"), client: client}
}

func (ws *waitlistService) Join(ctx context.Context, in WaitlistInput) error {
	if ws.client == nil {
		observability.WaitlistSignup("error")
		return errAirtableNotConfigured()
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Company = strings.TrimSpace(in.Company)
	in.Role = strings.TrimSpace(in.Role)
	in.Email = strings.TrimSpace(in.Email)
	if err := validateInput("invalid_waitlist_entry", in); err != nil {
		observability.WaitlistSignup("invalid")
		return err
	}

	existing, err := ws.client.ListRecords(ctx, airtable.ListOptions{
		FilterByFormula: airtable.EmailFormula(strings.ToLower(in.Email)),
	})
	if err != nil {
		observability.WaitlistSignup("error")
		ws.log.Error("waitlist duplicate check failed", "error", err)
		return upstreamErr(err, "Airtable error")
	}
	if len(existing.Records) > 0 {
		observability.WaitlistSignup("duplicate")
		return apierr.Conflict("already_on_waitlist", "Already on waitlist")
	}

	role := in.Role
	if role == "" {
		role = waitlistDefaultRole
	}
	if _, err := ws.client.CreateRecord(ctx, map[string]any{
		"FirstName": in.FirstName,
		"LastName":  in.LastName,
		"Company":   in.Company,
		"Role":      role,
		"Email":     in.Email,
		"Source":    waitlistSource,
	}); err != nil {
		observability.WaitlistSignup("error")
		ws.log.Error("waitlist create failed", "error", err)
		msg := "Airtable create failed"
		var se *airtable.StatusError
		if errors.As(err, &se) && se.Body != "" {
			msg = se.Body
		}
		return upstreamErr(err, msg)
	}
	observability.WaitlistSignup("joined")
	ws.log.Info("waitlist signup recorded", "email", in.Email)
	return nil
}

func errAirtableNotConfigured() error {
	return &apierr.Error{
		Status:  http.StatusInternalServerError,
		Code:    "airtable_not_configured",
		Message: "Missing AIRTABLE_BASE_ID or AIRTABLE_TOKEN",
		Err:     airtable.ErrNotConfigured,
	}
}

// upstreamErr passes an Airtable HTTP status through; transport failures
// become a 500.
func upstreamErr(err error, msg string) error {
	var se *airtable.StatusError
	if errors.As(err, &se) {
		return apierr.Upstream(se.Status, "airtable_error", msg, err)
	}
	return apierr.New(http.StatusInternalServerError, "airtable_error", err)
}
