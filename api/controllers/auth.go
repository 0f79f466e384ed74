package controllers

import (
	"net/http"
	"strings"

	"github.com/avstore/avpos-backend/api/responses"
	"github.com/avstore/avpos-backend/api/validators"
	authsvc "github.com/avstore/avpos-backend/internal/auth"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
	"github.com/avstore/avpos-backend/pkg/logger"
)

type loginRequest struct {
	Role       string `json:"role" validate:"required,oneof=admin salesman"`
	Secret     string `json:"secret,omitempty"`
	SalesmanID string `json:"salesman_id,omitempty"`
}

// Login mints a session token for either terminal role.
func Login(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload loginRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		role, err := enums.ParseTerminalRole(strings.TrimSpace(payload.Role))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid role"))
			return
		}

		var resp *authsvc.LoginResponse
		switch role {
		case enums.TerminalRoleAdmin:
			resp, err = svc.AdminLogin(r.Context(), payload.Secret)
		case enums.TerminalRoleSalesman:
			resp, err = svc.SalesmanLogin(r.Context(), payload.SalesmanID)
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, resp)
	}
}

type changeAdminSecretRequest struct {
	Current string `json:"current" validate:"required"`
	Next    string `json:"next" validate:"required,min=4"`
}

// ChangeAdminSecret rotates the shared admin secret.
func ChangeAdminSecret(svc authsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "auth service unavailable"))
			return
		}

		var payload changeAdminSecretRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ChangeAdminSecret(r.Context(), payload.Current, payload.Next); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "updated"})
	}
}
