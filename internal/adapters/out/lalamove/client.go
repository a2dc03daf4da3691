// Package lalamove implements the CourierClient port against the Lalamove
// v3 REST API: HMAC-signed requests, quotation/order lifecycle, driver
// lookups and webhook registration, plus translation of the vendor's status
// vocabulary into the internal CourierStatus.
package lalamove

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"fulfillment/internal/core/ports"
	"fulfillment/internal/pkg/errs"
)

const (
	serviceName    = "lalamove"
	requestTimeout = 15 * time.Second
)

// Config carries the credentials and market for one Lalamove account.
type Config struct {
	BaseURL   string
	APIKey    string
	APISecret string
	// Market is the ISO country code header value, e.g. "PH".
	Market string
}

// Client talks to the Lalamove v3 API. Pure I/O boundary: no idempotency
// checks, no retries; both belong to the layers above.
type Client struct {
	cfg    Config
	client *http.Client
	logger *slog.Logger
	now    func() time.Time
}

// NewClient creates a Lalamove API client.
func NewClient(cfg Config, logger *slog.Logger) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, errs.NewValueIsRequiredError("base URL")
	}
	if cfg.APIKey == "" || cfg.APISecret == "" {
		return nil, errs.NewValueIsRequiredError("API credentials")
	}

	return &Client{
		cfg:    cfg,
		client: &http.Client{Timeout: requestTimeout},
		logger: logger.With("component", "lalamove"),
		now:    time.Now,
	}, nil
}

type coordinatesPayload struct {
	Lat string `json:"lat"`
	Lng string `json:"lng"`
}

type stopPayload struct {
	Coordinates coordinatesPayload `json:"coordinates"`
	Address     string             `json:"address"`
}

type itemPayload struct {
	Quantity   string   `json:"quantity,omitempty"`
	Weight     string   `json:"weight,omitempty"`
	Categories []string `json:"categories,omitempty"`
}

type quotationPayload struct {
	Data struct {
		ServiceType     string        `json:"serviceType"`
		Language        string        `json:"language"`
		Stops           []stopPayload `json:"stops"`
		SpecialRequests []string      `json:"specialRequests,omitempty"`
		Item            *itemPayload  `json:"item,omitempty"`
	} `json:"data"`
}

type quotationResponse struct {
	Data struct {
		QuotationID string `json:"quotationId"`
		ExpiresAt   string `json:"expiresAt"`
		Stops       []struct {
			StopID string `json:"stopId"`
		} `json:"stops"`
		PriceBreakdown struct {
			Total    string `json:"total"`
			Currency string `json:"currency"`
		} `json:"priceBreakdown"`
	} `json:"data"`
}

// GetQuotation prices a route with the courier.
func (c *Client) GetQuotation(ctx context.Context, req ports.QuotationRequest) (ports.Quotation, error) {
	if len(req.Stops) < 2 {
		return ports.Quotation{}, errs.NewValueIsInvalidError("stops")
	}

	payload := quotationPayload{}
	payload.Data.ServiceType = req.ServiceType
	payload.Data.Language = req.Language
	payload.Data.SpecialRequests = req.SpecialRequests
	if req.Item.Quantity != "" || req.Item.Weight != "" || len(req.Item.Categories) > 0 {
		payload.Data.Item = &itemPayload{
			Quantity:   req.Item.Quantity,
			Weight:     req.Item.Weight,
			Categories: req.Item.Categories,
		}
	}
	for _, stop := range req.Stops {
		payload.Data.Stops = append(payload.Data.Stops, stopPayload{
			Coordinates: coordinatesPayload{
				Lat: strconv.FormatFloat(stop.Point.Lat(), 'f', -1, 64),
				Lng: strconv.FormatFloat(stop.Point.Lon(), 'f', -1, 64),
			},
			Address: stop.Address,
		})
	}

	var resp quotationResponse
	if err := c.do(ctx, http.MethodPost, "/v3/quotations", payload, &resp); err != nil {
		return ports.Quotation{}, err
	}

	total, err := strconv.ParseFloat(resp.Data.PriceBreakdown.Total, 64)
	if err != nil {
		return ports.Quotation{}, errs.NewUpstreamError(serviceName, false,
			fmt.Errorf("malformed price total %q", resp.Data.PriceBreakdown.Total))
	}

	expiresAt, err := time.Parse(time.RFC3339, resp.Data.ExpiresAt)
	if err != nil {
		return ports.Quotation{}, errs.NewUpstreamError(serviceName, false,
			fmt.Errorf("malformed expiry %q", resp.Data.ExpiresAt))
	}

	quotation := ports.Quotation{
		ID:         resp.Data.QuotationID,
		PriceTotal: total,
		Currency:   resp.Data.PriceBreakdown.Currency,
		ExpiresAt:  expiresAt,
	}
	for _, stop := range resp.Data.Stops {
		quotation.StopIDs = append(quotation.StopIDs, stop.StopID)
	}

	return quotation, nil
}

type placeOrderPayload struct {
	Data struct {
		QuotationID string `json:"quotationId"`
		Sender      struct {
			StopID string `json:"stopId"`
			Name   string `json:"name"`
			Phone  string `json:"phone"`
		} `json:"sender"`
		Recipients []struct {
			StopID  string `json:"stopId"`
			Name    string `json:"name"`
			Phone   string `json:"phone"`
			Remarks string `json:"remarks,omitempty"`
		} `json:"recipients"`
		Metadata map[string]string `json:"metadata,omitempty"`
	} `json:"data"`
}

type placeOrderResponse struct {
	Data struct {
		OrderID   string `json:"orderId"`
		Status    string `json:"status"`
		DriverID  string `json:"driverId"`
		ShareLink string `json:"shareLink"`
	} `json:"data"`
}

// PlaceOrder dispatches an order against an unexpired quotation.
func (c *Client) PlaceOrder(ctx context.Context, req ports.PlaceOrderRequest) (ports.PlacedOrder, error) {
	if req.QuotationID == "" {
		return ports.PlacedOrder{}, errs.NewValueIsRequiredError("quotation id")
	}

	payload := placeOrderPayload{}
	payload.Data.QuotationID = req.QuotationID
	payload.Data.Sender.StopID = req.SenderStop
	payload.Data.Sender.Name = req.Sender.Name
	payload.Data.Sender.Phone = req.Sender.Phone
	payload.Data.Recipients = append(payload.Data.Recipients, struct {
		StopID  string `json:"stopId"`
		Name    string `json:"name"`
		Phone   string `json:"phone"`
		Remarks string `json:"remarks,omitempty"`
	}{
		StopID:  req.RecipientStop,
		Name:    req.Recipient.Name,
		Phone:   req.Recipient.Phone,
		Remarks: req.Remarks,
	})
	payload.Data.Metadata = req.Metadata

	var resp placeOrderResponse
	if err := c.do(ctx, http.MethodPost, "/v3/orders", payload, &resp); err != nil {
		return ports.PlacedOrder{}, err
	}

	return ports.PlacedOrder{
		OrderID:  resp.Data.OrderID,
		Status:   resp.Data.Status,
		DriverID: resp.Data.DriverID,
		ShareURL: resp.Data.ShareLink,
	}, nil
}

type editOrderPayload struct {
	Data struct {
		Stops []stopPayload `json:"stops"`
	} `json:"data"`
}

// EditOrder updates the stops of a not-yet-picked-up order.
func (c *Client) EditOrder(ctx context.Context, orderID string, req ports.EditOrderRequest) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("order id")
	}

	payload := editOrderPayload{}
	for _, stop := range req.Stops {
		payload.Data.Stops = append(payload.Data.Stops, stopPayload{
			Coordinates: coordinatesPayload{
				Lat: strconv.FormatFloat(stop.Point.Lat(), 'f', -1, 64),
				Lng: strconv.FormatFloat(stop.Point.Lon(), 'f', -1, 64),
			},
			Address: stop.Address,
		})
	}

	return c.do(ctx, http.MethodPatch, "/v3/orders/"+orderID, payload, nil)
}

// CancelOrder cancels a courier order.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	if orderID == "" {
		return errs.NewValueIsRequiredError("order id")
	}

	return c.do(ctx, http.MethodDelete, "/v3/orders/"+orderID, nil, nil)
}

type orderDetailsResponse struct {
	Data struct {
		OrderID        string `json:"orderId"`
		Status         string `json:"status"`
		DriverID       string `json:"driverId"`
		ShareLink      string `json:"shareLink"`
		PriceBreakdown struct {
			Total string `json:"total"`
		} `json:"priceBreakdown"`
	} `json:"data"`
}

// GetOrderDetails fetches the courier's current view of an order. The vendor
// status is translated; untranslatable statuses come back as
// CourierStatusUnknown with the raw string preserved.
func (c *Client) GetOrderDetails(ctx context.Context, orderID string) (ports.CourierOrderDetails, error) {
	if orderID == "" {
		return ports.CourierOrderDetails{}, errs.NewValueIsRequiredError("order id")
	}

	var resp orderDetailsResponse
	if err := c.do(ctx, http.MethodGet, "/v3/orders/"+orderID, nil, &resp); err != nil {
		return ports.CourierOrderDetails{}, err
	}

	status, ok := TranslateStatus(resp.Data.Status)
	if !ok {
		c.logger.Warn("unrecognized vendor status", "order_id", orderID, "status", resp.Data.Status)
	}

	total, _ := strconv.ParseFloat(resp.Data.PriceBreakdown.Total, 64)

	return ports.CourierOrderDetails{
		OrderID:    resp.Data.OrderID,
		Status:     status,
		RawStatus:  resp.Data.Status,
		DriverID:   resp.Data.DriverID,
		ShareURL:   resp.Data.ShareLink,
		PriceTotal: total,
	}, nil
}

type driverDetailsResponse struct {
	Data struct {
		Name        string `json:"name"`
		Phone       string `json:"phone"`
		PlateNumber string `json:"plateNumber"`
	} `json:"data"`
}

// GetDriverDetails fetches the driver working an order.
func (c *Client) GetDriverDetails(ctx context.Context, orderID, driverID string) (ports.DriverDetails, error) {
	if orderID == "" || driverID == "" {
		return ports.DriverDetails{}, errs.NewValueIsRequiredError("order and driver id")
	}

	var resp driverDetailsResponse
	if err := c.do(ctx, http.MethodGet, "/v3/orders/"+orderID+"/drivers/"+driverID, nil, &resp); err != nil {
		return ports.DriverDetails{}, err
	}

	return ports.DriverDetails{
		Name:        resp.Data.Name,
		Phone:       resp.Data.Phone,
		PlateNumber: resp.Data.PlateNumber,
	}, nil
}

type webhookPayload struct {
	Data struct {
		URL string `json:"url"`
	} `json:"data"`
}

// SetWebhookURL registers the status push endpoint with the courier.
func (c *Client) SetWebhookURL(ctx context.Context, url string) error {
	if url == "" {
		return errs.NewValueIsRequiredError("webhook URL")
	}

	payload := webhookPayload{}
	payload.Data.URL = url

	return c.do(ctx, http.MethodPatch, "/v3/webhook", payload, nil)
}

type apiError struct {
	Errors []struct {
		ID      string `json:"id"`
		Message string `json:"message"`
	} `json:"errors"`
}

// do signs and issues one API request, decoding the JSON response into out
// when out is non-nil. The v3 signature is an HMAC-SHA256 over
// "{timestamp}\r\n{method}\r\n{path}\r\n\r\n{body}" with the API secret.
func (c *Client) do(ctx context.Context, method, path string, payload, out any) error {
	var body []byte
	if payload != nil {
		var err error
		body, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
	}

	timestamp := strconv.FormatInt(c.now().UnixMilli(), 10)
	req, err := http.NewRequestWithContext(ctx, method, c.cfg.BaseURL+path, bytes.NewReader(body))
	if err != nil {
		return errs.NewUpstreamError(serviceName, false, err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Market", c.cfg.Market)
	req.Header.Set("Authorization",
		fmt.Sprintf("hmac %s:%s:%s", c.cfg.APIKey, timestamp, c.sign(timestamp, method, path, body)))

	resp, err := c.client.Do(req)
	if err != nil {
		return errs.NewUpstreamError(serviceName, true, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return errs.NewUpstreamError(serviceName, true, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.translateError(resp.StatusCode, respBody, method, path)
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return errs.NewUpstreamError(serviceName, false, fmt.Errorf("decode response: %w", err))
		}
	}

	return nil
}

func (c *Client) sign(timestamp, method, path string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(c.cfg.APISecret))
	fmt.Fprintf(mac, "%s\r\n%s\r\n%s\r\n\r\n%s", timestamp, method, path, body)
	return hex.EncodeToString(mac.Sum(nil))
}

func (c *Client) translateError(status int, body []byte, method, path string) error {
	var parsed apiError
	_ = json.Unmarshal(body, &parsed)

	reason := fmt.Sprintf("%s %s: status %d", method, path, status)
	for _, e := range parsed.Errors {
		reason += fmt.Sprintf("; %s: %s", e.ID, e.Message)

		if strings.Contains(strings.ToUpper(e.ID), "QUOTATION") &&
			strings.Contains(strings.ToUpper(e.ID), "EXPIRED") {
			return errs.NewQuotationExpiredError(e.ID, fmt.Errorf("%s", reason))
		}
	}

	switch {
	case status == http.StatusNotFound:
		return errs.NewObjectNotFoundErrorWithCause("courier order", path, fmt.Errorf("%s", reason))
	case status == http.StatusUnprocessableEntity || status == http.StatusBadRequest:
		return errs.NewValueIsInvalidErrorWithCause("courier request", fmt.Errorf("%s", reason))
	default:
		retryable := status >= 500 || status == http.StatusTooManyRequests
		return errs.NewUpstreamError(serviceName, retryable, fmt.Errorf("%s", reason))
	}
}
