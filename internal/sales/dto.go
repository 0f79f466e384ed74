package sales

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstore/avpos-backend/pkg/db/models"
)

// SaleDTO represents a finalized sale returned to clients.
type SaleDTO struct {
	ID            uint            `json:"id"`
	InvoiceNumber string          `json:"invoice_number"`
	CustomerCode  string          `json:"customer_code"`
	CustomerName  string          `json:"customer_name"`
	SalesmanID    string          `json:"salesman_id"`
	Date          time.Time       `json:"date"`
	Items         []SaleItemDTO   `json:"items"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	Discount      decimal.Decimal `json:"discount"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	Synced        bool            `json:"synced"`
	SyncID        string          `json:"sync_id"`
}

// SaleItemDTO is one line of a sale.
type SaleItemDTO struct {
	ProductID   uint            `json:"product_id"`
	ProductName string          `json:"product_name"`
	Pack        string          `json:"pack"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// SummaryDTO is the salesman dashboard aggregate.
type SummaryDTO struct {
	SalesmanID  string          `json:"salesman_id"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	BillCount   int64           `json:"bill_count"`
	PendingSync int64           `json:"pending_sync"`
}

// NewSaleDTO builds a DTO from the persisted model.
func NewSaleDTO(sale *models.Sale) *SaleDTO {
	items := make([]SaleItemDTO, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, SaleItemDTO{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Pack:        item.Pack.String(),
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Total,
		})
	}
	return &SaleDTO{
		ID:            sale.ID,
		InvoiceNumber: sale.InvoiceNumber,
		CustomerCode:  sale.CustomerCode,
		CustomerName:  sale.CustomerName,
		SalesmanID:    sale.SalesmanID,
		Date:          sale.Date,
		Items:         items,
		Subtotal:      sale.Subtotal,
		Discount:      sale.Discount,
		TotalAmount:   sale.TotalAmount,
		Synced:        sale.Synced,
		SyncID:        sale.SyncID,
	}
}

// NewSaleDTOs maps a slice of models.
func NewSaleDTOs(rows []models.Sale) []SaleDTO {
	out := make([]SaleDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *NewSaleDTO(&rows[i]))
	}
	return out
}
