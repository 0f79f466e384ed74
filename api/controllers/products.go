package controllers

import (
	"net/http"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/avstore/avpos-backend/api/responses"
	"github.com/avstore/avpos-backend/api/validators"
	productsvc "github.com/avstore/avpos-backend/internal/products"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
	"github.com/avstore/avpos-backend/pkg/logger"
)

type createProductRequest struct {
	Name       string          `json:"name" validate:"required"`
	Price1Kg   decimal.Decimal `json:"price_1kg" validate:"required"`
	PriceHalf  decimal.Decimal `json:"price_05kg" validate:"required"`
	StockLevel decimal.Decimal `json:"stock_level"`
}

// CreateProduct registers a new catalog entry.
func CreateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var payload createProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.CreateProduct(r.Context(), productsvc.CreateProductInput{
			Name:       strings.TrimSpace(payload.Name),
			Price1Kg:   payload.Price1Kg,
			PriceHalf:  payload.PriceHalf,
			StockLevel: payload.StockLevel,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, product)
	}
}

type updateProductRequest struct {
	Name      *string          `json:"name,omitempty"`
	Price1Kg  *decimal.Decimal `json:"price_1kg,omitempty"`
	PriceHalf *decimal.Decimal `json:"price_05kg,omitempty"`
}

// UpdateProduct mutates name and prices. Stock changes go through the
// dedicated adjustment endpoint so every movement leaves a log entry.
func UpdateProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload updateProductRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.UpdateProduct(r.Context(), productID, productsvc.UpdateProductInput{
			Name:      payload.Name,
			Price1Kg:  payload.Price1Kg,
			PriceHalf: payload.PriceHalf,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// DeleteProduct soft-deletes a catalog entry. Historical sales keep
// resolving the product by id.
func DeleteProduct(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.DeleteProduct(r.Context(), productID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// ListProducts returns the catalog. `?all=true` includes soft-deleted
// entries, `?low_stock=true` filters to entries under the reorder line.
func ListProducts(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		var (
			rows []productsvc.ProductDTO
			err  error
		)
		switch {
		case r.URL.Query().Get("low_stock") == "true":
			rows, err = svc.ListLowStock(r.Context())
		case r.URL.Query().Get("all") == "true":
			rows, err = svc.ListAll(r.Context())
		default:
			rows, err = svc.ListCatalog(r.Context())
		}
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}

type adjustStockRequest struct {
	Delta  decimal.Decimal `json:"delta" validate:"required"`
	Reason string          `json:"reason,omitempty"`
}

// AdjustStock applies a signed stock correction and logs it.
func AdjustStock(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := parseIDParam(r, "productId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload adjustStockRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		product, err := svc.AdjustStock(r.Context(), productID, productsvc.AdjustStockInput{
			Delta:  payload.Delta,
			Reason: strings.TrimSpace(payload.Reason),
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, product)
	}
}

// ListStockLogs returns the movement ledger, optionally scoped to one
// product via `?product_id=`.
func ListStockLogs(svc productsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "product service unavailable"))
			return
		}

		productID, err := validators.ParseQueryUint(r, "product_id")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rows, err := svc.ListStockLogs(r.Context(), productID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, rows)
	}
}
