package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/internal/invoice"
	pkgauth "github.com/avstore/avpos-backend/pkg/auth"
	"github.com/avstore/avpos-backend/pkg/config"
	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

const invalidCredentialsMessage = "invalid credentials"

// Service is the terminal login gate. This is session gating for a local
// UI, not a real auth system: the admin shares one secret and salesmen log
// in with just their terminal identifier.
type Service interface {
	AdminLogin(ctx context.Context, secret string) (*LoginResponse, error)
	SalesmanLogin(ctx context.Context, salesmanID string) (*LoginResponse, error)
	ChangeAdminSecret(ctx context.Context, current, next string) error
}

// LoginResponse carries the minted session token.
type LoginResponse struct {
	Token      string             `json:"token"`
	Role       enums.TerminalRole `json:"role"`
	SalesmanID string             `json:"salesman_id,omitempty"`
}

// ServiceParams bundles login gate dependencies.
type ServiceParams struct {
	DB       *gorm.DB
	JWT      config.JWTConfig
	Security config.SecurityConfig
}

type service struct {
	db       *gorm.DB
	jwtCfg   config.JWTConfig
	security config.SecurityConfig
	now      func() time.Time
}

// NewService constructs the login gate.
func NewService(params ServiceParams) (Service, error) {
	if params.DB == nil {
		return nil, fmt.Errorf("db connection is required")
	}
	if params.Security.AdminSecret == "" {
		return nil, fmt.Errorf("admin secret is required")
	}
	return &service{
		db:       params.DB,
		jwtCfg:   params.JWT,
		security: params.Security,
		now:      time.Now,
	}, nil
}

// AdminLogin verifies the shared admin secret. A hash stored in settings
// takes precedence over the configured default so the operator can rotate
// the secret without redeploying.
func (s *service) AdminLogin(ctx context.Context, secret string) (*LoginResponse, error) {
	if err := s.verifyAdminSecret(ctx, secret); err != nil {
		return nil, err
	}

	token, err := pkgauth.MintSessionToken(s.jwtCfg, s.now().UTC(), pkgauth.SessionTokenPayload{
		Role: enums.TerminalRoleAdmin,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &LoginResponse{Token: token, Role: enums.TerminalRoleAdmin}, nil
}

// SalesmanLogin normalizes and validates the terminal identifier, then
// mints a salesman session. Identifier rules are enforced here, at the
// boundary, so invoice numbering downstream can assume a mappable id.
func (s *service) SalesmanLogin(ctx context.Context, salesmanID string) (*LoginResponse, error) {
	id := strings.ToUpper(strings.TrimSpace(salesmanID))
	if _, err := invoice.Base(id); err != nil {
		return nil, err
	}

	token, err := pkgauth.MintSessionToken(s.jwtCfg, s.now().UTC(), pkgauth.SessionTokenPayload{
		Role:       enums.TerminalRoleSalesman,
		SalesmanID: id,
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mint jwt")
	}
	return &LoginResponse{Token: token, Role: enums.TerminalRoleSalesman, SalesmanID: id}, nil
}

// ChangeAdminSecret re-verifies the current secret and persists a bcrypt
// hash of the replacement in settings.
func (s *service) ChangeAdminSecret(ctx context.Context, current, next string) error {
	if err := s.verifyAdminSecret(ctx, current); err != nil {
		return err
	}
	next = strings.TrimSpace(next)
	if len(next) < 4 {
		return pkgerrors.New(pkgerrors.CodeValidation, "new secret must be at least 4 characters")
	}

	cost := s.security.BcryptCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(next), cost)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash secret")
	}

	setting := models.Setting{Key: models.SettingAdminSecretHash, Value: string(hash)}
	var existing models.Setting
	err = s.db.WithContext(ctx).First(&existing, "key = ?", models.SettingAdminSecretHash).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := s.db.WithContext(ctx).Create(&setting).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert setting")
		}
	case err != nil:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load setting")
	default:
		existing.Value = setting.Value
		if err := s.db.WithContext(ctx).Save(&existing).Error; err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update setting")
		}
	}
	return nil
}

func (s *service) verifyAdminSecret(ctx context.Context, secret string) error {
	var stored models.Setting
	err := s.db.WithContext(ctx).First(&stored, "key = ?", models.SettingAdminSecretHash).Error
	switch {
	case err == nil:
		if bcrypt.CompareHashAndPassword([]byte(stored.Value), []byte(secret)) != nil {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil
	case errors.Is(err, gorm.ErrRecordNotFound):
		// No override stored yet, compare against the configured default.
		if secret != s.security.AdminSecret {
			return pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil
	default:
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load setting")
	}
}
