package repository

import (
	"context"
	"testing"

	"github.com/smallbiznis/solarflow/internal/project/domain"
	"github.com/smallbiznis/solarflow/pkg/db/dbtest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeleteCustomerCascadesSections(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t, domain.Models()...)
	r := Provide()

	require.NoError(t, r.InsertCustomer(ctx, db, &domain.Customer{ID: 1, Name: "Acme", ConsumerNumber: "C1"}))
	require.NoError(t, r.InsertCustomer(ctx, db, &domain.Customer{ID: 2, Name: "Other", ConsumerNumber: "C2"}))
	require.NoError(t, r.InsertDocuments(ctx, db, []*domain.Document{
		{ID: 10, CustomerID: 1, Name: "Aadhaar Card"},
		{ID: 11, CustomerID: 2, Name: "Aadhaar Card"},
	}))
	require.NoError(t, r.InsertWiring(ctx, db, &domain.Wiring{CustomerID: 1}))
	require.NoError(t, r.InsertCommissioning(ctx, db, &domain.Commissioning{CustomerID: 1}))

	require.NoError(t, r.DeleteCustomer(ctx, db, 1))

	customer, err := r.FindCustomer(ctx, db, 1)
	require.NoError(t, err)
	assert.Nil(t, customer)

	docs, err := r.ListDocuments(ctx, db, 1)
	require.NoError(t, err)
	assert.Empty(t, docs)

	wiring, err := r.FindWiring(ctx, db, 1)
	require.NoError(t, err)
	assert.Nil(t, wiring)

	others, err := r.ListDocuments(ctx, db, 2)
	require.NoError(t, err)
	assert.Len(t, others, 1)
}

func TestFindCustomerByConsumerNumber(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t, domain.Models()...)
	r := Provide()

	require.NoError(t, r.InsertCustomer(ctx, db, &domain.Customer{ID: 1, Name: "Acme", ConsumerNumber: "C1"}))

	found, err := r.FindCustomerByConsumerNumber(ctx, db, "C1")
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, "Acme", found.Name)
	assert.Equal(t, domain.CustomerApprovalPending, found.ApprovalStatus)

	missing, err := r.FindCustomerByConsumerNumber(ctx, db, "C9")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListTasksFilters(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t, domain.Models()...)
	r := Provide()

	require.NoError(t, r.InsertTask(ctx, db, &domain.Task{ID: 1, CustomerID: 1, AssignedTo: 7, Title: "a", Role: domain.RoleTechnician}))
	require.NoError(t, r.InsertTask(ctx, db, &domain.Task{ID: 2, CustomerID: 1, AssignedTo: 8, Title: "b", Role: domain.RoleInspector}))
	require.NoError(t, r.InsertTask(ctx, db, &domain.Task{ID: 3, CustomerID: 2, AssignedTo: 7, Title: "c", Role: domain.RoleTechnician}))

	all, err := r.ListTasks(ctx, db, domain.TaskFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byEmployee, err := r.ListTasks(ctx, db, domain.TaskFilter{AssignedTo: 7})
	require.NoError(t, err)
	assert.Len(t, byEmployee, 2)

	technician, err := r.ListTasks(ctx, db, domain.TaskFilter{CustomerID: 1, Role: domain.RoleTechnician})
	require.NoError(t, err)
	require.Len(t, technician, 1)
	assert.Equal(t, "a", technician[0].Title)
	assert.Equal(t, domain.TaskPending, technician[0].Status)
}

func TestEmployeeAssignedCustomersRoundTrip(t *testing.T) {
	ctx := context.Background()
	db := dbtest.Open(t, domain.Models()...)
	r := Provide()

	require.NoError(t, r.InsertEmployee(ctx, db, &domain.Employee{ID: 5, Name: "Ravi", Status: domain.EmployeeActive}))
	emp, err := r.FindEmployee(ctx, db, 5)
	require.NoError(t, err)
	require.NotNil(t, emp)

	emp.AssignedCustomers = append(emp.AssignedCustomers, 1, 2)
	require.NoError(t, r.SaveEmployee(ctx, db, emp))

	reloaded, err := r.FindEmployee(ctx, db, 5)
	require.NoError(t, err)
	assert.True(t, reloaded.HasCustomer(2))
	assert.False(t, reloaded.HasCustomer(3))
}
