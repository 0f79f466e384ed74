package controllers

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/avstore/avpos-backend/api/responses"
	"github.com/avstore/avpos-backend/api/validators"
	maintenancesvc "github.com/avstore/avpos-backend/internal/maintenance"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
	"github.com/avstore/avpos-backend/pkg/logger"
)

// The maintenance key travels in a header so it never lands in access
// logs as part of the URL.
const maintenanceKeyHeader = "X-Maintenance-Key"

type unlockRequest struct {
	Key string `json:"key" validate:"required"`
}

// MaintenanceUnlock verifies the maintenance key so the UI can reveal the
// danger zone. The key is still required on every gated call.
func MaintenanceUnlock(svc maintenancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "maintenance service unavailable"))
			return
		}

		var payload unlockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Unlock(payload.Key); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		size, err := svc.DatabaseSize(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{
			"status":         "unlocked",
			"database_bytes": size,
			"tables":         enums.Tables(),
		})
	}
}

// MaintenanceInspectTable dumps the raw rows of one table.
func MaintenanceInspectTable(svc maintenancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "maintenance service unavailable"))
			return
		}

		table, err := parseTableParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		dump, err := svc.InspectTable(r.Context(), r.Header.Get(maintenanceKeyHeader), table)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, dump)
	}
}

// MaintenancePurgeTable deletes every row of one table.
func MaintenancePurgeTable(svc maintenancesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "maintenance service unavailable"))
			return
		}

		table, err := parseTableParam(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.PurgeTable(r.Context(), r.Header.Get(maintenanceKeyHeader), table)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func parseTableParam(r *http.Request) (enums.Table, error) {
	table, err := enums.ParseTable(strings.TrimSpace(chi.URLParam(r, "table")))
	if err != nil {
		return "", pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unknown table")
	}
	return table, nil
}
