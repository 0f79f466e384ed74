package customers

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/avstore/avpos-backend/pkg/db"
	"github.com/avstore/avpos-backend/pkg/db/models"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

// Service exposes customer registration and lookup operations.
type Service interface {
	CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error)
	UpdateCustomer(ctx context.Context, customerID uint, input UpdateCustomerInput) (*CustomerDTO, error)
	DeleteCustomer(ctx context.Context, customerID uint) error
	ListCustomers(ctx context.Context, search string) ([]CustomerDTO, error)
	GetByCode(ctx context.Context, code string) (*CustomerDTO, error)
}

// CreateCustomerInput holds the validated registration payload. Code is
// derived from the identity fields when the caller leaves it empty.
type CreateCustomerInput struct {
	Code    string
	Name    string
	Address string
	Mobile  string
}

// UpdateCustomerInput holds optional mutation values. The code never
// changes after registration: it is the cross-device identity.
type UpdateCustomerInput struct {
	Name    *string
	Address *string
	Mobile  *string
}

// CustomerDTO represents the customer payload returned to clients.
type CustomerDTO struct {
	ID        uint      `json:"id"`
	Code      string    `json:"code"`
	Name      string    `json:"name"`
	Address   string    `json:"address"`
	Mobile    string    `json:"mobile"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type service struct {
	repo     *Repository
	dbClient *db.Client
}

// NewService constructs a customer service instance.
func NewService(repo *Repository, dbClient *db.Client) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("customer repository required")
	}
	if dbClient == nil {
		return nil, fmt.Errorf("db client required")
	}
	return &service{repo: repo, dbClient: dbClient}, nil
}

func (s *service) CreateCustomer(ctx context.Context, input CreateCustomerInput) (*CustomerDTO, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
	}

	code := strings.TrimSpace(input.Code)
	if code == "" {
		code = DeriveCode(name, input.Address, input.Mobile)
	}
	if code == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer code could not be derived")
	}

	customer := &models.Customer{
		Code:    code,
		Name:    name,
		Address: strings.TrimSpace(input.Address),
		Mobile:  strings.TrimSpace(input.Mobile),
	}
	created, err := s.repo.Create(ctx, customer)
	if err != nil {
		if db.IsUniqueViolation(err, "code") {
			return nil, pkgerrors.New(pkgerrors.CodeConflict,
				fmt.Sprintf("customer with code %q already exists", code))
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: insert customer")
	}
	return newCustomerDTO(created), nil
}

func (s *service) UpdateCustomer(ctx context.Context, customerID uint, input UpdateCustomerInput) (*CustomerDTO, error) {
	customer, err := s.loadCustomer(ctx, customerID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "customer name is required")
		}
		customer.Name = name
	}
	if input.Address != nil {
		customer.Address = strings.TrimSpace(*input.Address)
	}
	if input.Mobile != nil {
		customer.Mobile = strings.TrimSpace(*input.Mobile)
	}

	updated, err := s.repo.Update(ctx, customer)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: update customer")
	}
	return newCustomerDTO(updated), nil
}

func (s *service) DeleteCustomer(ctx context.Context, customerID uint) error {
	if _, err := s.loadCustomer(ctx, customerID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, customerID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: delete customer")
	}
	return nil
}

func (s *service) ListCustomers(ctx context.Context, search string) ([]CustomerDTO, error) {
	rows, err := s.repo.List(ctx, search)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: list customers")
	}
	out := make([]CustomerDTO, 0, len(rows))
	for i := range rows {
		out = append(out, *newCustomerDTO(&rows[i]))
	}
	return out, nil
}

func (s *service) GetByCode(ctx context.Context, code string) (*CustomerDTO, error) {
	customer, err := s.repo.FindByCode(ctx, code)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load customer")
	}
	return newCustomerDTO(customer), nil
}

func (s *service) loadCustomer(ctx context.Context, customerID uint) (*models.Customer, error) {
	customer, err := s.repo.FindByID(ctx, customerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "customer not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "db: load customer")
	}
	return customer, nil
}

func newCustomerDTO(customer *models.Customer) *CustomerDTO {
	return &CustomerDTO{
		ID:        customer.ID,
		Code:      customer.Code,
		Name:      customer.Name,
		Address:   customer.Address,
		Mobile:    customer.Mobile,
		CreatedAt: customer.CreatedAt,
		UpdatedAt: customer.UpdatedAt,
	}
}
