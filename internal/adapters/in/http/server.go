package http

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"net/http"

	"catering/internal/core/application/usecases/commands"
	"catering/internal/core/application/usecases/queries"
	"catering/internal/core/domain/model/kernel"
	"catering/internal/pkg/errs"

	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

// Error is the body of every non-2xx response.
type Error struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Message is the body of a successful webhook response.
type Message struct {
	Message string `json:"message"`
}

// WebhookRequest is a provider status push. Restaurant providers send id,
// delivery providers send order_id and the courier location.
type WebhookRequest struct {
	ID       string           `json:"id"`
	OrderID  string           `json:"order_id"`
	Status   string           `json:"status"`
	Location *kernel.Location `json:"location"`
}

// ExternalID returns whichever order id the provider sent.
func (r WebhookRequest) ExternalID() string {
	if r.ID != "" {
		return r.ID
	}
	return r.OrderID
}

type InFlightOrdersLister interface {
	Handle(ctx context.Context, query queries.GetInFlightOrdersQuery) ([]queries.GetInFlightOrdersQueryResponse, error)
}

type OrderTrackingReader interface {
	Handle(ctx context.Context, query queries.GetOrderTrackingQuery) (queries.GetOrderTrackingQueryResponse, error)
}

// Server handles provider webhooks and the read-only order endpoints.
type Server struct {
	ingest   commands.WebhookIngester
	inFlight InFlightOrdersLister
	tracking OrderTrackingReader
	secret   string
	logger   *slog.Logger
}

// Option configures optional Server routes.
type Option func(*Server)

// WithOrderQueries mounts GET /orders/in-flight and GET /orders/:id/tracking.
func WithOrderQueries(inFlight InFlightOrdersLister, tracking OrderTrackingReader) Option {
	return func(s *Server) {
		s.inFlight = inFlight
		s.tracking = tracking
	}
}

// NewServer creates the webhook server. When secret is not empty webhooks are
// only accepted on /webhooks/:provider/:secret.
func NewServer(ingest commands.WebhookIngester, secret string, logger *slog.Logger, opts ...Option) (*Server, error) {
	if ingest == nil {
		return nil, errs.NewValueIsRequiredError("ingest")
	}
	if logger == nil {
		return nil, errs.NewValueIsRequiredError("logger")
	}
	s := &Server{ingest: ingest, secret: secret, logger: logger.With("component", "http_server")}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Register mounts the routes on e.
func (s *Server) Register(e *echo.Echo) {
	e.GET("/health", s.Health)
	e.POST("/webhooks/:provider", s.Webhook)
	e.POST("/webhooks/:provider/:secret", s.Webhook)
	e.POST("/webhooks/:provider/:secret/", s.Webhook)

	if s.inFlight != nil {
		e.GET("/orders/in-flight", s.InFlightOrders)
	}
	if s.tracking != nil {
		e.GET("/orders/:id/tracking", s.OrderTracking)
	}
}

// Health handles GET /health.
func (s *Server) Health(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Healthy")
}

// Webhook handles POST /webhooks/:provider[/:secret] - applies a provider status push.
func (s *Server) Webhook(ctx echo.Context) error {
	if !s.authorized(ctx.Param("secret")) {
		return ctx.JSON(http.StatusNotFound, Error{Code: http.StatusNotFound, Message: "Not found"})
	}

	var req WebhookRequest
	if err := ctx.Bind(&req); err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid request body",
		})
	}

	cmd, err := commands.NewIngestWebhookCommand(ctx.Param("provider"), req.ExternalID(), req.Status, req.Location)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{
			Code:    http.StatusBadRequest,
			Message: "Invalid webhook: " + err.Error(),
		})
	}

	if _, err := s.ingest.Handle(ctx.Request().Context(), cmd); err != nil {
		code := StatusCode(err)
		log := s.logger.With("provider", cmd.Provider(), "external_id", cmd.ExternalID(), "error", err)
		switch {
		case errs.IsAlarm(err):
			log.Error("webhook rejected", "alarm", true)
		case code >= http.StatusInternalServerError:
			log.Error("webhook failed")
		default:
			log.Warn("webhook rejected")
		}
		return ctx.JSON(code, Error{Code: code, Message: err.Error()})
	}

	return ctx.JSON(http.StatusOK, Message{Message: "ok"})
}

// InFlightOrders handles GET /orders/in-flight.
func (s *Server) InFlightOrders(ctx echo.Context) error {
	orders, err := s.inFlight.Handle(ctx.Request().Context(), queries.NewGetInFlightOrdersQuery())
	if err != nil {
		s.logger.Error("failed to list in-flight orders", "error", err)
		return ctx.JSON(http.StatusInternalServerError, Error{
			Code:    http.StatusInternalServerError,
			Message: "Failed to list orders",
		})
	}
	return ctx.JSON(http.StatusOK, orders)
}

// OrderTracking handles GET /orders/:id/tracking.
func (s *Server) OrderTracking(ctx echo.Context) error {
	var id int64
	err := runtime.BindStyledParameterWithOptions("simple", "id", ctx.Param("id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: "Invalid order id"})
	}
	query, err := queries.NewGetOrderTrackingQuery(id)
	if err != nil {
		return ctx.JSON(http.StatusBadRequest, Error{Code: http.StatusBadRequest, Message: err.Error()})
	}

	view, err := s.tracking.Handle(ctx.Request().Context(), query)
	if err != nil {
		code := StatusCode(err)
		if code >= http.StatusInternalServerError {
			s.logger.Error("failed to read order tracking", "order_id", id, "error", err)
		}
		return ctx.JSON(code, Error{Code: code, Message: err.Error()})
	}
	return ctx.JSON(http.StatusOK, view)
}

func (s *Server) authorized(secret string) bool {
	if s.secret == "" {
		return secret == ""
	}
	return subtle.ConstantTimeCompare([]byte(secret), []byte(s.secret)) == 1
}

// StatusCode maps an application error onto an HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, errs.ErrObjectNotFound):
		return http.StatusNotFound
	case errors.Is(err, errs.ErrUnmappedStatus),
		errors.Is(err, errs.ErrValueIsInvalid),
		errors.Is(err, errs.ErrValueIsRequired),
		errors.Is(err, errs.ErrValueIsOutOfRange):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
