package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/avstore/avpos-backend/api/middleware"
	"github.com/avstore/avpos-backend/api/responses"
	"github.com/avstore/avpos-backend/api/validators"
	salesvc "github.com/avstore/avpos-backend/internal/sales"
	"github.com/avstore/avpos-backend/pkg/enums"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
	"github.com/avstore/avpos-backend/pkg/logger"
)

type cartItemRequest struct {
	ProductID uint   `json:"product_id" validate:"required"`
	Pack      string `json:"pack" validate:"required,oneof=1kg 0.5kg"`
	Quantity  int    `json:"quantity" validate:"required,min=1"`
}

type finalizeSaleRequest struct {
	CustomerCode string            `json:"customer_code" validate:"required"`
	SalesmanID   string            `json:"salesman_id,omitempty"`
	Items        []cartItemRequest `json:"items" validate:"required,min=1,dive"`
	Discount     decimal.Decimal   `json:"discount"`
}

// FinalizeSale turns a cart into an invoiced, stock-decremented sale. A
// salesman token always bills under its own identifier; the admin station
// must name one explicitly.
func FinalizeSale(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		var payload finalizeSaleRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		salesmanID := middleware.SalesmanIDFromContext(r.Context())
		if salesmanID == "" {
			salesmanID = strings.TrimSpace(payload.SalesmanID)
		}
		if salesmanID == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "salesman id is required"))
			return
		}

		items := make([]salesvc.CartItem, 0, len(payload.Items))
		for _, line := range payload.Items {
			pack, err := enums.ParsePackType(line.Pack)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pack"))
				return
			}
			items = append(items, salesvc.CartItem{
				ProductID: line.ProductID,
				Pack:      pack,
				Quantity:  line.Quantity,
			})
		}

		sale, err := svc.FinalizeSale(r.Context(), salesvc.FinalizeSaleInput{
			CustomerCode: strings.TrimSpace(payload.CustomerCode),
			SalesmanID:   salesmanID,
			Items:        items,
			Discount:     payload.Discount,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, sale)
	}
}

// ListSales returns history, filterable by `?salesman_id=`, `?from=` and
// `?to=` (yyyy-mm-dd, `to` exclusive). A salesman token only ever sees its
// own sales.
func ListSales(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
			return
		}

		filters := salesvc.ListFilters{
			SalesmanID: strings.ToUpper(strings.TrimSpace(r.URL.Query().Get("salesman_id"))),
		}
		if own := middleware.SalesmanIDFromContext(r.Context()); own != "" {
			filters.SalesmanID = own
		}

		from, err := validators.ParseQueryDate(r, "from")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		to, err := validators.ParseQueryDate(r, "to")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filters.From = from
		filters.To = to

		rows, err := svc.ListSales(r.Context(), filters)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

// SalesSummary returns a per-salesman aggregate: total billed, bill count
// and sales still waiting for export.
func SalesSummary(svc salesvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "sales service unavailable"))
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

		summary, err := svc.Summary(r.Context(), salesmanID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, summary)
	}
}
