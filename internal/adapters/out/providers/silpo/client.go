// Package silpo integrates the Silpo kitchen API.
//
//	POST {base}        {"items":[{"title":"...","qty":1}]} -> {"order":{"id":"...","status":"not started"}}
//	GET  {base}?id={id} -> {"order":{"id":"...","status":"cooking"}}
package silpo

import (
	"context"
	"net/url"
	"time"

	"catering/internal/adapters/out/providers/httpx"
	"catering/internal/core/domain/model/order"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

// Name is the provider and restaurant name Silpo is registered under.
const Name = "silpo"

// DefaultBaseURL is used when no base URL is configured.
const DefaultBaseURL = "http://silpo-mock:8002/api/order"

// Status is the Silpo order status vocabulary.
type Status string

const (
	StatusNotStarted Status = "not started"
	StatusCooking    Status = "cooking"
	StatusCooked     Status = "cooked"
	StatusFinished   Status = "finished"
)

// Statuses lists every status Silpo may report.
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

type item struct {
	Title string `json:"title"`
	Qty   int    `json:"qty"`
}

type createOrderRequest struct {
	Items []item `json:"items"`
}

type orderEnvelope struct {
	Order *struct {
		ID     string `json:"id"`
		Status string `json:"status"`
	} `json:"order"`
}

var _ ports.RestaurantProvider = (*Client)(nil)

// Client is the Silpo restaurant provider.
type Client struct {
	http *httpx.Client
}

// NewClient creates a client for the Silpo API at baseURL.
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

// CreateOrder places the sub-order.
func (c *Client) CreateOrder(ctx context.Context, lines []ports.OrderLine) (ports.ProviderOrder, error) {
	req := createOrderRequest{Items: make([]item, 0, len(lines))}
	for _, line := range lines {
		req.Items = append(req.Items, item{Title: line.Dish, Qty: line.Quantity})
	}

	var resp orderEnvelope
	if err := c.http.Post(ctx, "create order", "", req, &resp); err != nil {
		return ports.ProviderOrder{}, err
	}
	return unwrap("create order", resp)
}

// GetOrder fetches the current state of a sub-order.
func (c *Client) GetOrder(ctx context.Context, externalID string) (ports.ProviderOrder, error) {
	var resp orderEnvelope
	if err := c.http.Get(ctx, "get order", "", url.Values{"id": {externalID}}, &resp); err != nil {
		return ports.ProviderOrder{}, err
	}
	return unwrap("get order", resp)
}

func unwrap(op string, resp orderEnvelope) (ports.ProviderOrder, error) {
	if resp.Order == nil || resp.Order.ID == "" || resp.Order.Status == "" {
		return ports.ProviderOrder{}, errs.NewProviderProtocolError(Name, op,
			errs.NewValueIsRequiredError("order.id and order.status"))
	}
	return ports.ProviderOrder{ExternalID: resp.Order.ID, Status: resp.Order.Status}, nil
}
