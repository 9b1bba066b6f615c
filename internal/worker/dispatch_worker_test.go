package worker_test

import (
	"context"
	"testing"
	"time"

	"kirim/internal/models"
	"kirim/internal/repositories"
	"kirim/internal/services"
	"kirim/internal/worker"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

// MockCourierClient is a mock implementation of services.CourierClient
type MockCourierClient struct {
	mock.Mock
}

func (m *MockCourierClient) CreateConsignment(order *models.Order) (string, string) {
	args := m.Called(order)
	return args.String(0), args.String(1)
}

func seedOrder(t *testing.T, repo *repositories.MockOrderRepository, number, status, consignmentID string) *models.Order {
	t.Helper()
	order := &models.Order{
		OrderNumber:     number,
		CustomerName:    "Asep Sunandar",
		CustomerPhone:   "08120000001",
		ShippingAddress: "Jl. Merdeka 1, Bandung",
		Status:          status,
		ConsignmentID:   consignmentID,
		Total:           100,
	}
	assert.NoError(t, repo.Create(order))
	return order
}

func TestDispatchWorker_TickDispatchesAwaitingOrders(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	courier := new(MockCourierClient)
	w := worker.NewDispatchWorker(orders, courier, nil, time.Minute)

	confirmed := seedOrder(t, orders, "ORD-1", models.StatusConfirmed, "")
	seedOrder(t, orders, "ORD-2", models.StatusPending, "")            // not confirmed: ignored
	seedOrder(t, orders, "ORD-3", models.StatusConfirmed, "existing")  // already dispatched: ignored

	courier.On("CreateConsignment", mock.MatchedBy(func(o *models.Order) bool {
		return o.ID == confirmed.ID
	})).Return("900123", "TRK-900123").Once()

	w.Tick()

	courier.AssertExpectations(t)
	updated, err := orders.GetByID(confirmed.ID)
	assert.NoError(t, err)
	assert.Equal(t, "900123", updated.ConsignmentID)
	assert.Equal(t, "TRK-900123", updated.TrackingCode)
	assert.Equal(t, services.CourierStatusSent, updated.CourierStatus)
	assert.Equal(t, models.StatusConfirmed, updated.Status) // status untouched
}

func TestDispatchWorker_FailedDispatchRetriedNextTick(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	courier := new(MockCourierClient)
	w := worker.NewDispatchWorker(orders, courier, nil, time.Minute)

	order := seedOrder(t, orders, "ORD-1", models.StatusConfirmed, "")

	// First tick: gateway down
	courier.On("CreateConsignment", mock.Anything).Return("", "").Once()
	w.Tick()

	untouched, err := orders.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Empty(t, untouched.ConsignmentID)

	// Second tick: gateway recovered
	courier.On("CreateConsignment", mock.Anything).Return("900456", "TRK-900456").Once()
	w.Tick()

	updated, err := orders.GetByID(order.ID)
	assert.NoError(t, err)
	assert.Equal(t, "900456", updated.ConsignmentID)
	courier.AssertNumberOfCalls(t, "CreateConsignment", 2)
}

func TestDispatchWorker_OneFailureDoesNotBlockOthers(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	courier := new(MockCourierClient)
	w := worker.NewDispatchWorker(orders, courier, nil, time.Minute)

	failing := seedOrder(t, orders, "ORD-1", models.StatusConfirmed, "")
	succeeding := seedOrder(t, orders, "ORD-2", models.StatusConfirmed, "")

	courier.On("CreateConsignment", mock.MatchedBy(func(o *models.Order) bool {
		return o.ID == failing.ID
	})).Return("", "").Once()
	courier.On("CreateConsignment", mock.MatchedBy(func(o *models.Order) bool {
		return o.ID == succeeding.ID
	})).Return("900789", "TRK-900789").Once()

	w.Tick()

	dispatched, err := orders.GetByID(succeeding.ID)
	assert.NoError(t, err)
	assert.Equal(t, "900789", dispatched.ConsignmentID)

	deferred, err := orders.GetByID(failing.ID)
	assert.NoError(t, err)
	assert.Empty(t, deferred.ConsignmentID)
}

func TestDispatchWorker_NeverDoubleDispatches(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	courier := new(MockCourierClient)
	w := worker.NewDispatchWorker(orders, courier, nil, time.Minute)

	seedOrder(t, orders, "ORD-1", models.StatusConfirmed, "")
	courier.On("CreateConsignment", mock.Anything).Return("900123", "TRK-900123").Once()

	w.Tick()
	w.Tick() // the order now carries a consignment id, so the sweep skips it
	w.Tick()

	courier.AssertNumberOfCalls(t, "CreateConsignment", 1)
}

func TestDispatchWorker_RunStopsOnCancel(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	courier := new(MockCourierClient)
	w := worker.NewDispatchWorker(orders, courier, nil, 5*time.Millisecond)

	seedOrder(t, orders, "ORD-1", models.StatusConfirmed, "")
	courier.On("CreateConsignment", mock.Anything).Return("900123", "TRK-900123")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(done)
	}()

	// Let at least one tick fire, then request shutdown
	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

func TestDispatchWorker_RefusesSecondLoop(t *testing.T) {
	orders := repositories.NewMockOrderRepository()
	courier := new(MockCourierClient)
	w := worker.NewDispatchWorker(orders, courier, nil, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	running := make(chan struct{})
	go func() {
		close(running)
		w.Run(ctx)
	}()
	<-running
	time.Sleep(10 * time.Millisecond)

	// A second call returns immediately instead of starting another loop
	finished := make(chan struct{})
	go func() {
		w.Run(ctx)
		close(finished)
	}()

	select {
	case <-finished:
	case <-time.After(time.Second):
		t.Fatal("second Run call did not return immediately")
	}
}
