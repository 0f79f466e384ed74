package customers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avstore/avpos-backend/pkg/db"
	pkgerrors "github.com/avstore/avpos-backend/pkg/errors"
)

func newTestService(t *testing.T) Service {
	t.Helper()
	conn := setupCustomersTestDB(t)
	svc, err := NewService(NewRepository(conn), db.NewWithConn(conn))
	require.NoError(t, err)
	return svc
}

func TestCreateCustomerDerivesCode(t *testing.T) {
	svc := newTestService(t)

	created, err := svc.CreateCustomer(context.Background(), CreateCustomerInput{
		Name:    "Ravi Kumar",
		Address: "12 Main Road",
		Mobile:  "9876543210",
	})
	require.NoError(t, err)
	assert.Equal(t, "ravikumar_12mainroad_9876543210", created.Code)
	assert.Equal(t, "Ravi Kumar", created.Name)
}

func TestCreateCustomerDuplicateCodeConflicts(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	input := CreateCustomerInput{Name: "Ravi Kumar", Mobile: "9876543210"}
	_, err := svc.CreateCustomer(ctx, input)
	require.NoError(t, err)

	_, err = svc.CreateCustomer(ctx, input)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeConflict, typed.Code())
}

func TestListCustomersSearchMatchesNameAndMobile(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	_, err := svc.CreateCustomer(ctx, CreateCustomerInput{Name: "Ravi Kumar", Mobile: "9876543210"})
	require.NoError(t, err)
	_, err = svc.CreateCustomer(ctx, CreateCustomerInput{Name: "Anita Shah", Mobile: "9123456789"})
	require.NoError(t, err)

	byName, err := svc.ListCustomers(ctx, "ravi")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Ravi Kumar", byName[0].Name)

	byMobile, err := svc.ListCustomers(ctx, "9123")
	require.NoError(t, err)
	require.Len(t, byMobile, 1)
	assert.Equal(t, "Anita Shah", byMobile[0].Name)

	all, err := svc.ListCustomers(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestUpdateCustomerKeepsCode(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	created, err := svc.CreateCustomer(ctx, CreateCustomerInput{Name: "Ravi Kumar", Mobile: "9876543210"})
	require.NoError(t, err)

	newName := "Ravi K"
	updated, err := svc.UpdateCustomer(ctx, created.ID, UpdateCustomerInput{Name: &newName})
	require.NoError(t, err)
	assert.Equal(t, "Ravi K", updated.Name)
	assert.Equal(t, created.Code, updated.Code)
}

func TestDeleteCustomerNotFound(t *testing.T) {
	svc := newTestService(t)

	err := svc.DeleteCustomer(context.Background(), 404)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeNotFound, typed.Code())
}
