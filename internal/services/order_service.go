package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"kirim/internal/models"
	"kirim/internal/repositories"
	"kirim/pkg/rabbitmq"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

// PricingConfig carries the global pricing settings. It is injected
// explicitly so services never read shared mutable configuration.
type PricingConfig struct {
	TaxRate               float64 // e.g. 0.05 for 5%; may be zero
	FreeShippingThreshold float64 // subtotal at or above this ships free
}

// CartItem is one requested product/variant/quantity entry in a checkout.
type CartItem struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,gt=0"`
	Color     string `json:"color,omitempty"`
	Size      string `json:"size,omitempty"`
}

// CreateOrderRequest is a checkout cart.
type CreateOrderRequest struct {
	Name             string     `json:"name" validate:"required"`
	Phone            string     `json:"phone" validate:"required"`
	Address          string     `json:"address" validate:"required"`
	DeliveryDetails  string     `json:"delivery_details,omitempty"`
	DeliveryMethodID string     `json:"delivery_method_id,omitempty"`
	Items            []CartItem `json:"items" validate:"required,min=1,dive"`
}

// OrderSummary is the externally-shaped result of a successful checkout.
type OrderSummary struct {
	OrderID         string    `json:"orderId"`
	OrderNumber     string    `json:"orderNumber"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	Address         string    `json:"address"`
	DeliveryDetails string    `json:"deliveryDetails,omitempty"`
	ItemsCount      int       `json:"itemsCount"`
	Total           float64   `json:"total"`
	CreatedAt       time.Time `json:"createdAt"`
}

// OrderService handles order creation and order queries.
type OrderService struct {
	txRunner        repositories.TxRunner
	orderRepo       repositories.OrderRepository
	customerRepo    repositories.CustomerRepository
	deliveryMethods repositories.DeliveryMethodRepository
	mqClient        *rabbitmq.Client
	pricing         PricingConfig
	validate        *validator.Validate
}

// NewOrderService creates a new OrderService.
func NewOrderService(
	txRunner repositories.TxRunner,
	orderRepo repositories.OrderRepository,
	customerRepo repositories.CustomerRepository,
	deliveryMethods repositories.DeliveryMethodRepository,
	mqClient *rabbitmq.Client,
	pricing PricingConfig,
) *OrderService {
	return &OrderService{
		txRunner:        txRunner,
		orderRepo:       orderRepo,
		customerRepo:    customerRepo,
		deliveryMethods: deliveryMethods,
		mqClient:        mqClient,
		pricing:         pricing,
		validate:        validator.New(),
	}
}

// CreateOrder validates the cart, reserves inventory, computes pricing and
// persists a Pending order. Stock decrements and the order insert run in one
// transaction; any failure leaves every counter untouched. The customer
// upsert afterwards is best-effort and never rolls the order back.
func (s *OrderService) CreateOrder(req CreateOrderRequest) (*OrderSummary, error) {
	if err := s.validate.Struct(req); err != nil {
		return nil, &ValidationError{Message: validationMessage(err)}
	}

	// Resolve the delivery method up front; its cost feeds the pricing step.
	var method *models.DeliveryMethod
	if req.DeliveryMethodID != "" {
		var err error
		method, err = s.deliveryMethods.GetByID(req.DeliveryMethodID)
		if err != nil {
			if errors.Is(err, repositories.ErrNotFound) {
				return nil, &NotFoundError{Resource: "delivery method", ID: req.DeliveryMethodID}
			}
			return nil, fmt.Errorf("failed to resolve delivery method: %w", err)
		}
	}

	order := &models.Order{
		ID:               uuid.New().String(),
		OrderNumber:      newOrderNumber(),
		CustomerName:     req.Name,
		CustomerPhone:    req.Phone,
		ShippingAddress:  req.Address,
		DeliveryDetails:  req.DeliveryDetails,
		DeliveryMethodID: req.DeliveryMethodID,
		Status:           models.StatusPending,
	}

	err := s.txRunner.InTransaction(func(repos repositories.TxRepos) error {
		var subtotal float64
		for _, item := range req.Items {
			product, err := repos.Products.GetByID(item.ProductID)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					return &NotFoundError{Resource: "product", ID: item.ProductID}
				}
				return fmt.Errorf("failed to look up product %s: %w", item.ProductID, err)
			}

			if err := repos.Products.ReserveStock(item.ProductID, item.Quantity); err != nil {
				if errors.Is(err, repositories.ErrInsufficientStock) {
					return &InsufficientStockError{
						Product:   product.Name,
						Requested: item.Quantity,
						Available: product.Stock,
					}
				}
				return fmt.Errorf("failed to reserve stock: %w", err)
			}

			// The variant counter is authoritative on its own: a size can
			// be sold out even while the aggregate still covers the cart.
			if item.Size != "" {
				variant, err := repos.Products.GetVariant(item.ProductID, item.Size)
				if err != nil {
					if errors.Is(err, repositories.ErrNotFound) {
						return &NotFoundError{Resource: "variant", ID: item.ProductID + "/" + item.Size}
					}
					return fmt.Errorf("failed to look up variant: %w", err)
				}
				if err := repos.Products.ReserveVariantStock(item.ProductID, item.Size, item.Quantity); err != nil {
					if errors.Is(err, repositories.ErrInsufficientStock) {
						return &InsufficientStockError{
							Product:   product.Name,
							Size:      item.Size,
							Requested: item.Quantity,
							Available: variant.Stock,
						}
					}
					return fmt.Errorf("failed to reserve variant stock: %w", err)
				}
			}

			line := models.OrderLine{
				ProductID:   product.ID,
				ProductName: product.Name,
				Image:       product.Image,
				Color:       item.Color,
				Size:        item.Size,
				UnitPrice:   product.Price,
				Quantity:    item.Quantity,
			}
			order.Lines = append(order.Lines, line)
			subtotal += line.LineTotal()
		}

		order.Subtotal = subtotal
		order.Tax = subtotal * s.pricing.TaxRate
		order.ShippingCost = s.shippingCost(subtotal, method)
		order.Total = order.Subtotal + order.Tax + order.ShippingCost

		return repos.Orders.Create(order)
	})
	if err != nil {
		return nil, err
	}

	// Best-effort customer upsert keyed by phone. A failure here must not
	// undo the already-committed order.
	customer := &models.Customer{
		Name:            req.Name,
		Phone:           req.Phone,
		Address:         req.Address,
		DeliveryDetails: req.DeliveryDetails,
	}
	if err := s.customerRepo.UpsertByPhone(customer); err != nil {
		log.Printf("Warning: failed to upsert customer %s for order %s: %v", req.Phone, order.OrderNumber, err)
	}

	s.publishEvent("order.created", map[string]interface{}{
		"orderID":     order.ID,
		"orderNumber": order.OrderNumber,
		"status":      order.Status,
		"total":       order.Total,
	})

	persisted, err := s.orderRepo.GetByID(order.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload created order %s: %w", order.ID, err)
	}

	return &OrderSummary{
		OrderID:         persisted.ID,
		OrderNumber:     persisted.OrderNumber,
		Name:            persisted.CustomerName,
		Phone:           persisted.CustomerPhone,
		Address:         persisted.ShippingAddress,
		DeliveryDetails: persisted.DeliveryDetails,
		ItemsCount:      len(persisted.Lines),
		Total:           persisted.Total,
		CreatedAt:       persisted.CreatedAt,
	}, nil
}

// shippingCost resolves the shipping portion of the total. No delivery
// method means zero cost; a method's cost is waived once the subtotal
// reaches the free-shipping threshold.
func (s *OrderService) shippingCost(subtotal float64, method *models.DeliveryMethod) float64 {
	if method == nil {
		return 0
	}
	if s.pricing.FreeShippingThreshold > 0 && subtotal >= s.pricing.FreeShippingThreshold {
		return 0
	}
	return method.Cost
}

// GetOrderByID retrieves a single order with its lines.
func (s *OrderService) GetOrderByID(id string) (*models.Order, error) {
	order, err := s.orderRepo.GetByID(id)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, &NotFoundError{Resource: "order", ID: id}
		}
		return nil, err
	}
	return order, nil
}

// ListOrders returns a filtered, paginated page of orders and the total
// match count.
func (s *OrderService) ListOrders(filter repositories.OrderFilter) ([]models.Order, int64, error) {
	return s.orderRepo.List(filter)
}

// publishEvent publishes an order lifecycle event, tolerating a missing
// client and publish failures.
func (s *OrderService) publishEvent(routingKey string, payload map[string]interface{}) {
	if s.mqClient == nil {
		return
	}
	if err := s.mqClient.PublishOrderEvent(routingKey, payload); err != nil {
		log.Printf("Warning: failed to publish %s event: %v", routingKey, err)
	}
}

// newOrderNumber builds a date-prefixed, human-sortable order number with a
// random suffix so concurrent creations cannot collide.
func newOrderNumber() string {
	suffix := strings.ToUpper(strings.ReplaceAll(uuid.New().String(), "-", "")[:8])
	return fmt.Sprintf("ORD-%s-%s", time.Now().Format("20060102"), suffix)
}

// validationMessage flattens a validator error into one readable message.
func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) && len(verrs) > 0 {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fe.Field())
		}
		return fmt.Sprintf("missing or invalid fields: %s", strings.Join(fields, ", "))
	}
	return err.Error()
}
