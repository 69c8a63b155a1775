package services

import (
	"context"

	"github.com/yungbote/ceustudio-backend/internal/platform/airtable"
	"github.com/yungbote/ceustudio-backend/internal/platform/apierr"
	"github.com/yungbote/ceustudio-backend/internal/platform/logger"
)

const adminWaitlistPageSize = 50

type AdminLoginInput struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type AdminService interface {
	Login(ctx context.Context, in AdminLoginInput) (string, error)
	VerifySession(sessionToken string) error
	ListWaitlist(ctx context.Context) (*airtable.RecordList, error)
}

type adminService struct {
	log    *logger.Logger
	auth   AuthService
	client airtable.Client
}

func NewAdminService(log *logger.Logger, auth AuthService, client airtable.Client) AdminService {
	return &adminService{log: log.With("service", "AdminService"), auth: auth, client: client}
}

// Login returns the admin_session cookie value. Every failure, including a
// malformed body, is a plain 401.
func (as *adminService) Login(ctx context.Context, in AdminLoginInput) (string, error) {
	if err := validate.Struct(in); err != nil {
		return "", apierr.Unauthorized("Unauthorized")
	}
	tok, err := as.auth.AdminLogin(ctx, in.Email, in.Password)
	if err != nil {
		as.log.Warn("admin login rejected")
		return "", err
	}
	as.log.Info("admin signed in")
	return tok, nil
}

func (as *adminService) VerifySession(sessionToken string) error {
	return as.auth.VerifyAdminSession(sessionToken)
}

// ListWaitlist returns the newest signups first.
func (as *adminService) ListWaitlist(ctx context.Context) (*airtable.RecordList, error) {
	if as.client == nil {
		return nil, errAirtableNotConfigured()
	}
	list, err := as.client.ListRecords(ctx, airtable.ListOptions{
		PageSize:  adminWaitlistPageSize,
		SortField: "Created",
		SortDesc:  true,
	})
	if err != nil {
		as.log.Error("list waitlist failed", "error", err)
		return nil, upstreamErr(err, "Airtable error")
	}
	return list, nil
}
