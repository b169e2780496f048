// Package kfc integrates the KFC restaurant API.
//
//	POST {base}        {"order":[{"dish":"...","quantity":1}]} -> {"id":"...","status":"not started"}
//	GET  {base}/{id}   -> {"id":"...","status":"cooking"}
//
// KFC also pushes {"id","status"} webhooks for every status change.
package kfc

import (
	"context"
	"time"

	"catering/internal/adapters/out/providers/httpx"
	"catering/internal/core/domain/model/order"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// Name is the provider and restaurant name KFC is registered under.
const Name = "kfc"

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://kfc-mock:8001/api/orders"

// Status is the KFC order status vocabulary.
type Status string

const (
	StatusNotStarted Status = "not started"
	StatusCooking    Status = "cooking"
	StatusCooked     Status = "cooked"
	StatusFinished   Status = "finished"
)

// Statuses lists every status KFC may report.
func Statuses() []Status {
	return []Status{StatusNotStarted, StatusCooking, StatusCooked, StatusFinished}
}

// Canonical maps the status onto the canonical lifecycle.
func (s Status) Canonical() (order.Status, error) {
	switch s {
	case StatusNotStarted:
		return order.NotStarted, nil
	case StatusCooking:
		return order.Cooking, nil
	case StatusCooked, StatusFinished:
		return order.Cooked, nil
	default:
		return order.Unknown, errs.NewUnmappedStatusError(Name, string(s))
	}
}

type orderItem struct {
	Dish     string `json:"dish"`
	Quantity int    `json:"quantity"`
}

type createOrderRequest struct {
	Order []orderItem `json:"order"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

var _ ports.RestaurantProvider = (*Client)(nil)

// Client is the KFC restaurant provider.
type Client struct {
	http *httpx.Client
}

// NewClient creates a client for the KFC API at baseURL.
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

// Name returns the provider name.
func (c *Client) Name() string {
	return Name
}

// MapStatus maps a raw KFC status.
func (c *Client) MapStatus(raw string) (order.Status, error) {
	return Status(raw).Canonical()
}

// CreateOrder places the sub-order.
func (c *Client) CreateOrder(ctx context.Context, lines []ports.OrderLine) (ports.ProviderOrder, error) {
	req := createOrderRequest{Order: make([]orderItem, 0, len(lines))}
	for _, line := range lines {
		req.Order = append(req.Order, orderItem{Dish: line.Dish, Quantity: line.Quantity})
	}

	var resp orderResponse
	if err := c.http.Post(ctx, "create order", "", req, &resp); err != nil {
		return ports.ProviderOrder{}, err
	}
	return toProviderOrder("create order", resp)
}

// GetOrder fetches the current state of a sub-order.
func (c *Client) GetOrder(ctx context.Context, externalID string) (ports.ProviderOrder, error) {
	var resp orderResponse
	if err := c.http.Get(ctx, "get order", externalID, nil, &resp); err != nil {
		return ports.ProviderOrder{}, err
	}
	return toProviderOrder("get order", resp)
}

func toProviderOrder(op string, resp orderResponse) (ports.ProviderOrder, error) {
	if resp.ID == "" || resp.Status == "" {
		return ports.ProviderOrder{}, errs.NewProviderProtocolError(Name, op,
			errs.NewValueIsRequiredError("id and status"))
	}
	return ports.ProviderOrder{ExternalID: resp.ID, Status: resp.Status}, nil
}
