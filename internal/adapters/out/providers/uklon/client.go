// Package uklon integrates the Uklon courier API.
//
//	POST {base}       {"addresses":["..."],"comments":["..."]}
//	                  -> {"order_id":"...","status":"not started","location":[lat,lon],...}
//	GET  {base}/{id}  -> {"order_id":"...","status":"delivery","location":[lat,lon]}
//
// Uklon also pushes webhooks with the same body on every status or location change.
package uklon

import (
	"context"
	"time"

	"catering/internal/adapters/out/providers/httpx"
	"catering/internal/core/domain/model/kernel"
	"catering/internal/core/domain/model/order"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// Name is the delivery provider name Uklon is registered under.
const Name = "uklon"

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://uklon-mock:8003/drivers/orders"

// Status is the Uklon delivery status vocabulary.
type Status string

const (
	// StatusNotStarted means Uklon is still looking for a courier.
	StatusNotStarted Status = "not started"
	StatusDelivery   Status = "delivery"
	StatusDelivered  Status = "delivered"
)

// Statuses lists every status Uklon may report.
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusDelivery, StatusDelivered}
}

// Canonical maps the status onto the canonical lifecycle.
func (s Status) Canonical() (order.Status, error) {
	switch s {
	case StatusNotStarted:
		return order.DeliveryLookup, nil
	case StatusDelivery:
		return order.Delivery, nil
	case StatusDelivered:
		return order.Delivered, nil
	default:
		return order.Unknown, errs.NewUnmappedStatusError(Name, string(s))
	}
}

type createOrderRequest struct {
	Addresses []string `json:"addresses"`
	Comments  []string `json:"comments"`
}

type orderResponse struct {
	OrderID  string           `json:"order_id"`
	Status   string           `json:"status"`
	Location *kernel.Location `json:"location"`
}

var _ ports.DeliveryProvider = (*Client)(nil)

// Client is the Uklon delivery provider.
type Client struct {
	http *httpx.Client
}

// NewClient creates a client for the Uklon API at baseURL.
func NewClient(baseURL string, timeout time.Duration) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c, err := httpx.NewClient(Name, baseURL, timeout)
	if err != nil {
		return nil, err
	}
	return &Client{http: c}, nil
}

func (c *Client) Name() string {
	return Name
}

func (c *Client) MapStatus(raw string) (order.Status, error) {
	return Status(raw).Canonical()
}

// CreateOrder requests a courier for the given pickup stops.
func (c *Client) CreateOrder(ctx context.Context, req ports.DeliveryRequest) (ports.DeliveryOrder, error) {
	if len(req.Addresses) == 0 {
		return ports.DeliveryOrder{}, errs.NewValueIsRequiredError("addresses")
	}

	body := createOrderRequest{Addresses: req.Addresses, Comments: req.Comments}
	if body.Comments == nil {
		body.Comments = []string{}
	}

	var resp orderResponse
	if err := c.http.Post(ctx, "create order", "", body, &resp); err != nil {
		return ports.DeliveryOrder{}, err
	}
	return toDeliveryOrder("create order", resp)
}

// GetOrder fetches the delivery status and the courier location.
func (c *Client) GetOrder(ctx context.Context, externalID string) (ports.DeliveryOrder, error) {
	var resp orderResponse
	if err := c.http.Get(ctx, "get order", externalID, nil, &resp); err != nil {
		return ports.DeliveryOrder{}, err
	}
	return toDeliveryOrder("get order", resp)
}

func toDeliveryOrder(op string, resp orderResponse) (ports.DeliveryOrder, error) {
	if resp.OrderID == "" || resp.Status == "" {
		return ports.DeliveryOrder{}, errs.NewProviderProtocolError(Name, op,
			errs.NewValueIsRequiredError("order_id and status"))
	}
	return ports.DeliveryOrder{ExternalID: resp.OrderID, Status: resp.Status, Location: resp.Location}, nil
}
