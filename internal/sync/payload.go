package sync

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/avstore/avpos-backend/pkg/db/models"
	"github.com/avstore/avpos-backend/pkg/enums"
)

// MasterVersion tags full snapshot files. Import dispatch keys on it.
const MasterVersion = "2.0-AV"

// Sync files use camelCase keys so snapshots and deltas stay readable and
// interchangeable with files produced by earlier releases of the system.

// DeltaPayload is a salesman terminal's not-yet-synced sales.
type DeltaPayload struct {
	SalesmanID string        `json:"salesmanId"`
	Sales      []SalePayload `json:"sales"`
	Timestamp  time.Time     `json:"timestamp"`
}

// MasterPayload is a full-database snapshot.
type MasterPayload struct {
	Products  []ProductPayload  `json:"products"`
	Customers []CustomerPayload `json:"customers"`
	Sales     []SalePayload     `json:"sales"`
	StockLogs []StockLogPayload `json:"stockLogs"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
}

// SalePayload mirrors a Sale row on the wire. The id is device-local and
// carries no meaning on the receiving side.
type SalePayload struct {
	ID            uint              `json:"id,omitempty"`
	InvoiceNumber string            `json:"invoiceNumber"`
	CustomerCode  string            `json:"customerCode"`
	CustomerName  string            `json:"customerName"`
	SalesmanID    string            `json:"salesmanId"`
	Date          time.Time         `json:"date"`
	Items         []SaleItemPayload `json:"items"`
	Subtotal      decimal.Decimal   `json:"subtotal"`
	Discount      decimal.Decimal   `json:"discount"`
	TotalAmount   decimal.Decimal   `json:"totalAmount"`
	Synced        bool              `json:"synced"`
	SyncID        string            `json:"syncId,omitempty"`
}

// SaleItemPayload is one line of a sale on the wire.
type SaleItemPayload struct {
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Pack        string          `json:"pack"`
	Quantity    int             `json:"quantity"`
	Price       decimal.Decimal `json:"price"`
	Total       decimal.Decimal `json:"total"`
}

// ProductPayload mirrors a Product row on the wire.
type ProductPayload struct {
	ID         uint            `json:"id"`
	Name       string          `json:"name"`
	Price1Kg   decimal.Decimal `json:"price1kg"`
	PriceHalf  decimal.Decimal `json:"price05kg"`
	StockLevel decimal.Decimal `json:"stockLevel"`
	IsDeleted  int             `json:"isDeleted"`
}

// CustomerPayload mirrors a Customer row on the wire.
type CustomerPayload struct {
	ID      uint   `json:"id"`
	Code    string `json:"code"`
	Name    string `json:"name"`
	Address string `json:"address"`
	Mobile  string `json:"mobile"`
}

// StockLogPayload mirrors a StockLog row on the wire.
type StockLogPayload struct {
	ID          uint            `json:"id"`
	ProductID   uint            `json:"productId"`
	ProductName string          `json:"productName"`
	Change      decimal.Decimal `json:"change"`
	Date        time.Time       `json:"date"`
	Reason      string          `json:"reason"`
}

func newSalePayload(sale *models.Sale) SalePayload {
	items := make([]SaleItemPayload, 0, len(sale.Items))
	for _, item := range sale.Items {
		items = append(items, SaleItemPayload{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Pack:        item.Pack.String(),
			Quantity:    item.Quantity,
			Price:       item.Price,
			Total:       item.Total,
		})
	}
	return SalePayload{
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

func newProductPayload(product *models.Product) ProductPayload {
	isDeleted := 0
	if product.IsDeleted() {
		isDeleted = 1
	}
	return ProductPayload{
		ID:         product.ID,
		Name:       product.Name,
		Price1Kg:   product.Price1Kg,
		PriceHalf:  product.PriceHalf,
		StockLevel: product.StockLevel,
		IsDeleted:  isDeleted,
	}
}

func (p ProductPayload) toModel() models.Product {
	status := enums.ProductStatusActive
	if p.IsDeleted != 0 {
		status = enums.ProductStatusDeleted
	}
	return models.Product{
		ID:         p.ID,
		Name:       p.Name,
		Price1Kg:   p.Price1Kg,
		PriceHalf:  p.PriceHalf,
		StockLevel: p.StockLevel,
		Status:     status,
	}
}

func newCustomerPayload(customer *models.Customer) CustomerPayload {
	return CustomerPayload{
		ID:      customer.ID,
		Code:    customer.Code,
		Name:    customer.Name,
		Address: customer.Address,
		Mobile:  customer.Mobile,
	}
}

func newStockLogPayload(entry *models.StockLog) StockLogPayload {
	return StockLogPayload{
		ID:          entry.ID,
		ProductID:   entry.ProductID,
		ProductName: entry.ProductName,
		Change:      entry.Change,
		Date:        entry.Date,
		Reason:      entry.Reason,
	}
}
