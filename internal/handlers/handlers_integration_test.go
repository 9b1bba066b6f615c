package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"sync/atomic"
	"testing"

	"kirim/internal/courier"
	"kirim/internal/handlers"
	"kirim/internal/middleware"
	"kirim/internal/models"
	"kirim/internal/repositories"
	"kirim/internal/services"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const testAdminPassword = "letmein-admin"

var integrationDBCounter int64

// stubCourier is a canned courier gateway for tests that do not care about
// the HTTP shape of the dispatch call.
type stubCourier struct {
	consignmentID string
	trackingCode  string
	calls         int
}

func (s *stubCourier) CreateConsignment(order *models.Order) (string, string) {
	s.calls++
	return s.consignmentID, s.trackingCode
}

// setupApp wires an in-memory SQLite database through the real repositories,
// services and handlers into a Fiber app, mirroring the production wiring.
func setupApp(courierClient services.CourierClient) (*fiber.App, *services.AuthService, error) {
	n := atomic.AddInt64(&integrationDBCounter, 1)
	dsn := fmt.Sprintf("file:handlertest%d?mode=memory&cache=shared", n)
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to in-memory database: %w", err)
	}

	err = db.AutoMigrate(
		&models.Product{},
		&models.ProductVariant{},
		&models.Order{},
		&models.OrderLine{},
		&models.Customer{},
		&models.DeliveryMethod{},
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to auto-migrate database: %w", err)
	}

	productRepo := repositories.NewGORMProductRepository(db)
	orderRepo := repositories.NewGORMOrderRepository(db)
	customerRepo := repositories.NewGORMCustomerRepository(db)
	deliveryRepo := repositories.NewGORMDeliveryMethodRepository(db)
	txRunner := repositories.NewGORMTxRunner(db)

	pricing := services.PricingConfig{TaxRate: 0, FreeShippingThreshold: 1000}
	orderService := services.NewOrderService(txRunner, orderRepo, customerRepo, deliveryRepo, nil, pricing)
	statusService := services.NewOrderStatusService(orderRepo, productRepo, courierClient, nil)

	adminHash, err := services.HashAdminPassword(testAdminPassword)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash admin password: %w", err)
	}
	authService := services.NewAuthService(adminHash, "test_jwt_secret")

	orderHandler := handlers.NewOrderHandler(orderService, statusService)
	authHandler := handlers.NewAuthHandler(authService)

	app := fiber.New()
	apiV1 := app.Group("/api/v1")
	authHandler.RegisterRoutes(apiV1)
	orderHandler.RegisterPublicRoutes(apiV1)
	adminRoutes := apiV1.Group("", middleware.AuthRequired(authService))
	orderHandler.RegisterAdminRoutes(adminRoutes)

	if err := seedCatalogForTest(productRepo, deliveryRepo); err != nil {
		return nil, nil, err
	}

	return app, authService, nil
}

// seedCatalogForTest populates the catalog the checkout tests order from.
func seedCatalogForTest(products repositories.ProductRepository, methods repositories.DeliveryMethodRepository) error {
	catalog := []models.Product{
		{ID: "prod-kemeja", Name: "Kemeja Batik", Description: "Batik lengan panjang", Price: 100, Stock: 5},
		{ID: "prod-celana", Name: "Celana Chino", Description: "Chino slim fit", Price: 150, Stock: 1},
	}
	for i := range catalog {
		if err := products.Create(&catalog[i]); err != nil {
			return fmt.Errorf("failed to seed product %s: %w", catalog[i].Name, err)
		}
	}
	return methods.Create(&models.DeliveryMethod{
		ID:     "dm-reguler",
		Name:   "Reguler",
		Cost:   50,
		Active: true,
	})
}

// loginForTest obtains an admin token through the login endpoint.
func loginForTest(t *testing.T, app *fiber.App) string {
	t.Helper()
	jsonBody, _ := json.Marshal(map[string]string{"password": testAdminPassword})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var loginResp map[string]string
	err = json.NewDecoder(resp.Body).Decode(&loginResp)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.NotEmpty(t, loginResp["token"])
	return loginResp["token"]
}

// createOrderForTest submits a checkout request and returns the decoded
// summary.
func createOrderForTest(t *testing.T, app *fiber.App, body map[string]interface{}) map[string]interface{} {
	t.Helper()
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	var summary map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&summary)
	assert.NoError(t, err)
	resp.Body.Close()
	return summary
}

func checkoutBody() map[string]interface{} {
	return map[string]interface{}{
		"name":               "Asep Sunandar",
		"phone":              "08120000001",
		"address":            "Jl. Merdeka 1, Bandung",
		"delivery_method_id": "dm-reguler",
		"items": []map[string]interface{}{
			{"product_id": "prod-kemeja", "quantity": 2},
		},
	}
}

// TestMain suppresses logging during tests for cleaner output.
func TestMain(m *testing.M) {
	log.SetOutput(io.Discard)
	os.Exit(m.Run())
}

func TestAdminLogin(t *testing.T) {
	app, authService, err := setupApp(&stubCourier{})
	assert.NoError(t, err)

	token := loginForTest(t, app)
	claims, err := authService.ValidateToken(token)
	assert.NoError(t, err)
	assert.Equal(t, "admin", claims["role"])

	// Wrong password is rejected
	jsonBody, _ := json.Marshal(map[string]string{"password": "wrong"})
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateOrderEndpoint(t *testing.T) {
	app, _, err := setupApp(&stubCourier{})
	assert.NoError(t, err)

	summary := createOrderForTest(t, app, checkoutBody())
	assert.NotEmpty(t, summary["orderId"])
	assert.Contains(t, summary["orderNumber"], "ORD-")
	assert.Equal(t, "Asep Sunandar", summary["name"])
	assert.EqualValues(t, 1, summary["itemsCount"])
	// 2 x 100 subtotal plus 50 delivery, below the free shipping threshold
	assert.EqualValues(t, 250, summary["total"])
}

func TestCreateOrderInsufficientStock(t *testing.T) {
	app, _, err := setupApp(&stubCourier{})
	assert.NoError(t, err)

	body := checkoutBody()
	body["items"] = []map[string]interface{}{
		{"product_id": "prod-celana", "quantity": 2},
	}
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var errResp map[string]interface{}
	err = json.NewDecoder(resp.Body).Decode(&errResp)
	assert.NoError(t, err)
	assert.Contains(t, errResp["error"], "Celana Chino")
	resp.Body.Close()
}

func TestCreateOrderValidation(t *testing.T) {
	app, _, err := setupApp(&stubCourier{})
	assert.NoError(t, err)

	body := checkoutBody()
	body["phone"] = ""
	jsonBody, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestAdminRoutesRequireToken(t *testing.T) {
	app, _, err := setupApp(&stubCourier{})
	assert.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders", nil)
	req.Header.Set("Authorization", "Bearer not-a-token")
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()
}

func TestListOrdersWithFilters(t *testing.T) {
	app, _, err := setupApp(&stubCourier{})
	assert.NoError(t, err)
	token := loginForTest(t, app)

	createOrderForTest(t, app, checkoutBody())
	second := checkoutBody()
	second["name"] = "Budi Santoso"
	second["phone"] = "08120000002"
	createOrderForTest(t, app, second)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders?search=Budi", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var listResp struct {
		Orders []models.Order `json:"orders"`
		Total  int64          `json:"total"`
		Page   int            `json:"page"`
		Limit  int            `json:"limit"`
	}
	err = json.NewDecoder(resp.Body).Decode(&listResp)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.EqualValues(t, 1, listResp.Total)
	assert.Len(t, listResp.Orders, 1)
	assert.Equal(t, "Budi Santoso", listResp.Orders[0].CustomerName)
	assert.Equal(t, 1, listResp.Page)

	// Status filter: everything is still Pending
	req = httptest.NewRequest(http.MethodGet, "/api/v1/orders?status=Confirmed", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err = app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	err = json.NewDecoder(resp.Body).Decode(&listResp)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.EqualValues(t, 0, listResp.Total)
}

func TestGetOrderByIDNotFound(t *testing.T) {
	app, _, err := setupApp(&stubCourier{})
	assert.NoError(t, err)
	token := loginForTest(t, app)

	req := httptest.NewRequest(http.MethodGet, "/api/v1/orders/nope", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestUpdateOrderStatusThroughGateway(t *testing.T) {
	// Confirming an order drives the real courier client against a fake
	// gateway, so the consignment fields come back through the full stack.
	gateway := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"consignment":{"consignment_id":900123,"tracking_code":"TRK-900123"}}`)
	}))
	defer gateway.Close()

	courierClient := courier.NewClient(courier.Config{
		BaseURL:   gateway.URL,
		APIKey:    "test-api-key",
		SecretKey: "test-secret-key",
	})
	app, _, err := setupApp(courierClient)
	assert.NoError(t, err)
	token := loginForTest(t, app)

	summary := createOrderForTest(t, app, checkoutBody())
	orderID := summary["orderId"].(string)

	resp := patchStatus(t, app, token, orderID, "Confirmed")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var updateResp struct {
		Order models.Order `json:"order"`
	}
	err = json.NewDecoder(resp.Body).Decode(&updateResp)
	assert.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, models.StatusConfirmed, updateResp.Order.Status)
	assert.Equal(t, "900123", updateResp.Order.ConsignmentID)
	assert.Equal(t, "TRK-900123", updateResp.Order.TrackingCode)
}

func TestUpdateOrderStatusUnrecognized(t *testing.T) {
	app, _, err := setupApp(&stubCourier{})
	assert.NoError(t, err)
	token := loginForTest(t, app)

	summary := createOrderForTest(t, app, checkoutBody())
	orderID := summary["orderId"].(string)

	resp := patchStatus(t, app, token, orderID, "Teleported")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestCancelRestoresStockEndToEnd(t *testing.T) {
	app, _, err := setupApp(&stubCourier{})
	assert.NoError(t, err)
	token := loginForTest(t, app)

	summary := createOrderForTest(t, app, checkoutBody())
	orderID := summary["orderId"].(string)

	resp := patchStatus(t, app, token, orderID, "Cancelled")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	// The reserved units are back, so the full stock can be ordered again
	body := checkoutBody()
	body["items"] = []map[string]interface{}{
		{"product_id": "prod-kemeja", "quantity": 5},
	}
	createOrderForTest(t, app, body)
}

func patchStatus(t *testing.T, app *fiber.App, token, orderID, status string) *http.Response {
	t.Helper()
	jsonBody, _ := json.Marshal(map[string]string{"status": status})
	req := httptest.NewRequest(http.MethodPatch, "/api/v1/orders/"+orderID+"/status", bytes.NewReader(jsonBody))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := app.Test(req, -1)
	assert.NoError(t, err)
	return resp
}
