package service

import (
	"context"
	"fmt"
	"strings"

	"cms-backend/internal/model"
)

// EmailConfigStore persists per-company outbound mail settings.
type EmailConfigStore interface {
	Upsert(ctx context.Context, c model.EmailConfig) (model.EmailConfig, error)
	FindByCompany(ctx context.Context, companyID int64) (model.EmailConfig, error)
	Delete(ctx context.Context, companyID int64) error
}

// EmailConfigService manages the mail settings of the caller's active
// company. There is at most one configuration per company.
type EmailConfigService struct {
	store EmailConfigStore
	guard *CompanyScopeGuard
}

func NewEmailConfigService(store EmailConfigStore, guard *CompanyScopeGuard) *EmailConfigService {
	return &EmailConfigService{store: store, guard: guard}
}

func (s *EmailConfigService) Get(ctx context.Context, p model.Principal) (model.EmailConfig, error) {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return model.EmailConfig{}, err
	}
	config, err := s.store.FindByCompany(ctx, active.ID)
	if err != nil {
		return model.EmailConfig{}, err
	}
	if err := s.guard.AssertOwnedBy(config, active); err != nil {
		return model.EmailConfig{}, err
	}
	return config, nil
}

func (s *EmailConfigService) Save(ctx context.Context, p model.Principal, req model.EmailConfigRequest) (model.EmailConfig, error) {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return model.EmailConfig{}, err
	}

	host := strings.TrimSpace(req.SMTPHost)
	from := strings.TrimSpace(req.FromAddress)
	switch {
	case host == "":
		return model.EmailConfig{}, fmt.Errorf("%w: smtp_host is required", model.ErrInvalidInput)
	case req.SMTPPort < 1 || req.SMTPPort > 65535:
		return model.EmailConfig{}, fmt.Errorf("%w: smtp_port is out of range", model.ErrInvalidInput)
	case from == "":
		return model.EmailConfig{}, fmt.Errorf("%w: from_address is required", model.ErrInvalidInput)
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	return s.store.Upsert(ctx, model.EmailConfig{
		CompanyID:   active.ID,
		SMTPHost:    host,
		SMTPPort:    req.SMTPPort,
		Username:    strings.TrimSpace(req.Username),
		Password:    req.Password,
		FromAddress: from,
		Enabled:     enabled,
	})
}

func (s *EmailConfigService) Delete(ctx context.Context, p model.Principal) error {
	active, err := s.guard.ResolveActiveCompany(p.User, p.Claims)
	if err != nil {
		return err
	}
	return s.store.Delete(ctx, active.ID)
}
