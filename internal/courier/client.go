package courier

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"kirim/internal/models"
)

const defaultTimeout = 5 * time.Second

// Config holds the courier provider connection details.
type Config struct {
	BaseURL   string
	APIKey    string
	SecretKey string
	Timeout   time.Duration // zero means the default of 5s
}

// Client is a thin HTTP wrapper around the courier provider's
// "create consignment" call. It never returns errors to callers: any
// transport problem, non-success response or unexpected body is logged and
// reported as empty values, leaving the retry entirely to the dispatch
// worker.
type Client struct {
	baseURL    string
	apiKey     string
	secretKey  string
	httpClient *http.Client
}

// NewClient creates a new courier Client.
func NewClient(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:   strings.TrimRight(cfg.BaseURL, "/"),
		apiKey:    cfg.APIKey,
		secretKey: cfg.SecretKey,
		httpClient: &http.Client{
			// A bounded timeout so a hung courier API cannot stall a
			// worker tick or block a confirming request.
			Timeout: timeout,
		},
	}
}

// consignmentRequest is the provider's create-consignment payload.
type consignmentRequest struct {
	Invoice          string  `json:"invoice"`
	RecipientName    string  `json:"recipient_name"`
	RecipientPhone   string  `json:"recipient_phone"`
	RecipientAddress string  `json:"recipient_address"`
	CODAmount        float64 `json:"cod_amount"`
	Note             string  `json:"note"`
	ItemDescription  string  `json:"item_description"`
}

// consignmentResponse is the provider's response envelope.
type consignmentResponse struct {
	Consignment struct {
		ConsignmentID json.Number `json:"consignment_id"`
		TrackingCode  string      `json:"tracking_code"`
	} `json:"consignment"`
}

// CreateConsignment submits the order to the courier provider and returns
// the provider-issued consignment id and tracking code, or empty strings on
// any failure. It sends exactly one request and never retries internally.
func (c *Client) CreateConsignment(order *models.Order) (string, string) {
	payload := consignmentRequest{
		Invoice:          order.OrderNumber,
		RecipientName:    order.CustomerName,
		RecipientPhone:   order.CustomerPhone,
		RecipientAddress: order.ShippingAddress,
		CODAmount:        order.Total,
		Note:             order.DeliveryDetails,
		ItemDescription:  itemDescription(order),
	}

	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Courier dispatch failed for order %s: marshal payload: %v", order.OrderNumber, err)
		return "", ""
	}

	req, err := http.NewRequest(http.MethodPost, c.baseURL+"/create_order", bytes.NewReader(body))
	if err != nil {
		log.Printf("Courier dispatch failed for order %s: build request: %v", order.OrderNumber, err)
		return "", ""
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Api-Key", c.apiKey)
	req.Header.Set("Secret-Key", c.secretKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		log.Printf("Courier dispatch failed for order %s: %v", order.OrderNumber, err)
		return "", ""
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		log.Printf("Courier dispatch failed for order %s: provider returned %s", order.OrderNumber, resp.Status)
		return "", ""
	}

	var parsed consignmentResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		log.Printf("Courier dispatch failed for order %s: decode response: %v", order.OrderNumber, err)
		return "", ""
	}

	// A transport-level success without the expected fields is still a
	// failed dispatch.
	consignmentID := parsed.Consignment.ConsignmentID.String()
	if consignmentID == "" {
		log.Printf("Courier dispatch failed for order %s: response missing consignment_id", order.OrderNumber)
		return "", ""
	}

	log.Printf("Courier consignment %s created for order %s", consignmentID, order.OrderNumber)
	return consignmentID, parsed.Consignment.TrackingCode
}

// itemDescription flattens the order lines into a single provider-facing
// description.
func itemDescription(order *models.Order) string {
	parts := make([]string, 0, len(order.Lines))
	for _, line := range order.Lines {
		parts = append(parts, fmt.Sprintf("%s x%d", line.ProductName, line.Quantity))
	}
	return strings.Join(parts, ", ")
}
