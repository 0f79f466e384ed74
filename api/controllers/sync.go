package controllers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/avstore/avpos-backend/api/middleware"
	"github.com/avstore/avpos-backend/api/responses"
	syncsvc "github.com/avstore/avpos-backend/internal/sync"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
	"github.com/avstore/avpos-backend/pkg/logger"
)

// Sync payloads can carry a whole master snapshot, so the body cap is
// generous compared to the regular JSON endpoints.
const maxSyncPayloadBytes = 32 << 20

// ExportDelta packages the terminal's unsynced sales as a downloadable
// file and marks them synced.
func ExportDelta(svc syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync service unavailable"))
			return
		}

		salesmanID := middleware.SalesmanIDFromContext(r.Context())
		if salesmanID == "" {
			salesmanID = strings.TrimSpace(r.URL.Query().Get("salesman_id"))
		}
		if salesmanID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "salesman id is required"))
			return
		}

		file, err := svc.ExportDelta(r.Context(), salesmanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeExportFile(w, file)
	}
}

// ExportMaster packages the admin station's full dataset as a clone file
// for provisioning a fresh terminal.
func ExportMaster(svc syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync service unavailable"))
			return
		}

		file, err := svc.ExportMaster(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		writeExportFile(w, file)
	}
}

func writeExportFile(w http.ResponseWriter, file *syncsvc.ExportFile) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", file.FileName))
	w.WriteHeader(http.StatusOK)
	w.Write(file.Body)
}

type importRequest struct {
	Payload   json.RawMessage `json:"payload"`
	Confirmed bool            `json:"confirmed,omitempty"`
	Mode      string          `json:"mode,omitempty"`
}

// Import merges a sync file into the local database. The body is either
// the raw file contents, or an envelope wrapping them with the master
// restore flags.
func Import(svc syncsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sync service unavailable"))
			return
		}

		raw, err := io.ReadAll(io.LimitReader(r.Body, maxSyncPayloadBytes))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "unreadable request body"))
			return
		}

		payload := raw
		opts := syncsvc.ImportOptions{}

		var envelope importRequest
		if err := json.Unmarshal(raw, &envelope); err == nil && len(envelope.Payload) > 0 {
			payload = envelope.Payload
			opts.Confirmed = envelope.Confirmed
			if envelope.Mode != "" {
				opts.Mode = syncsvc.MasterImportMode(envelope.Mode)
			}
		}

		result, err := svc.Import(r.Context(), payload, opts)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
