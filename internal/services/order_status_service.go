package services

import (
	"errors"
	"fmt"
	"log"

	"kirim/internal/models"
	"kirim/internal/repositories"
	"kirim/pkg/rabbitmq"
)

// CourierStatusSent marks an order as handed to the courier provider.
const CourierStatusSent = "Sent"

// CourierClient submits an order to the courier provider. Implementations
// never return an error: any failure is logged at the client boundary and
// surfaces here as empty strings, which leaves the retry to the dispatch
// worker.
type CourierClient interface {
	CreateConsignment(order *models.Order) (consignmentID, trackingCode string)
}

// OrderStatusService applies status transitions to orders and runs their
// side effects: restocking on cancellation and courier dispatch on
// confirmation.
type OrderStatusService struct {
	orderRepo   repositories.OrderRepository
	productRepo repositories.ProductRepository
	courier     CourierClient
	mqClient    *rabbitmq.Client
}

// NewOrderStatusService creates a new OrderStatusService.
func NewOrderStatusService(
	orderRepo repositories.OrderRepository,
	productRepo repositories.ProductRepository,
	courier CourierClient,
	mqClient *rabbitmq.Client,
) *OrderStatusService {
	return &OrderStatusService{
		orderRepo:   orderRepo,
		productRepo: productRepo,
		courier:     courier,
		mqClient:    mqClient,
	}
}

// TransitionStatus moves an order to targetStatus. Any recognized status is
// accepted and written unconditionally; admins may override the usual
// forward order. Only two entries carry side effects, and each fires once
// per distinct entry into that status:
//
//   - entering Cancelled restocks every line's counters (best-effort per
//     line, idempotent against repeated cancellation);
//   - entering Confirmed attempts a synchronous courier dispatch when the
//     order has no consignment yet; a dispatch failure never fails the
//     status change.
func (s *OrderStatusService) TransitionStatus(orderID, targetStatus string) (*models.Order, error) {
	if !models.IsValidStatus(targetStatus) {
		return nil, &InvalidTransitionError{Status: targetStatus}
	}

	order, err := s.orderRepo.GetByID(orderID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: orderID}
		}
		return nil, fmt.Errorf("failed to load order %s: %w", orderID, err)
	}

	if targetStatus == models.StatusCancelled && order.Status != models.StatusCancelled {
		s.restockLines(order)
	}

	if targetStatus == models.StatusConfirmed && order.Status != models.StatusConfirmed && !order.Dispatched() {
		consignmentID, trackingCode := s.courier.CreateConsignment(order)
		if consignmentID != "" {
			order.ConsignmentID = consignmentID
			order.TrackingCode = trackingCode
			order.CourierStatus = CourierStatusSent
		}
		// Empty consignment means the gateway failed softly; the dispatch
		// worker picks the order up on its next tick.
	}

	previous := order.Status
	order.Status = targetStatus
	if err := s.orderRepo.Save(order); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: orderID}
		}
		return nil, fmt.Errorf("failed to save order %s: %w", orderID, err)
	}

	s.publishEvent("order.status_changed", map[string]interface{}{
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"from":        previous,
		"to":          targetStatus,
	})

	return order, nil
}

// restockLines returns every line's quantity to the product's aggregate
// counter and, where the line has a size, to the variant counter. Failures
// are logged and skipped per line: a discontinued product must not block
// cancelling the order.
func (s *OrderStatusService) restockLines(order *models.Order) {
	for _, line := range order.Lines {
		if err := s.productRepo.RestoreStock(line.ProductID, line.Quantity); err != nil {
			log.Printf("Warning: failed to restock product %s for cancelled order %s: %v",
				line.ProductID, order.OrderNumber, err)
		}
		if line.Size == "" {
			continue
		}
		if err := s.productRepo.RestoreVariantStock(line.ProductID, line.Size, line.Quantity); err != nil {
			log.Printf("Warning: failed to restock variant %s/%s for cancelled order %s: %v",
				line.ProductID, line.Size, order.OrderNumber, err)
		}
	}
}

// publishEvent publishes an order lifecycle event, tolerating a missing
// client and publish failures.
func (s *OrderStatusService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishOrderEvent(routingKey, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}
