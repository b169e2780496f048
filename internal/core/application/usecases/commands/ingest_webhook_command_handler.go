package commands

import (
	"context"
	"log/slog"

	"catering/internal/core/ports"
)

// WebhookIngester is implemented by IngestWebhookCommandHandler.
type WebhookIngester interface {
	Handle(ctx context.Context, cmd IngestWebhookCommand) (ApplyResult, error)
}

// IngestWebhookCommandHandler resolves a provider push to its internal order and
// feeds it into the same update path polling uses.
//
// Errors:
//   - errs.ObjectNotFoundError: unknown provider or external id
//   - errs.UnmappedStatusError: status outside the provider vocabulary
//   - errs.ValueIsOutOfRangeError: status not valid for the referenced entry
type IngestWebhookCommandHandler struct {
	store       ports.TrackingStore
	registry    ports.ProviderRegistry
	restaurants RestaurantStatusApplier
	delivery    DeliveryStatusApplier
	logger      *slog.Logger
}

// NewIngestWebhookCommandHandler creates the handler.
func NewIngestWebhookCommandHandler(
	store ports.TrackingStore,
	registry ports.ProviderRegistry,
	restaurants RestaurantStatusApplier,
	delivery DeliveryStatusApplier,
	logger *slog.Logger,
) *IngestWebhookCommandHandler {
	return &IngestWebhookCommandHandler{
		store:       store,
		registry:    registry,
		restaurants: restaurants,
		delivery:    delivery,
		logger:      logger.With("component", "webhook"),
	}
}

// Handle ingests one push. Duplicate and stale pushes succeed without effect.
func (h *IngestWebhookCommandHandler) Handle(ctx context.Context, cmd IngestWebhookCommand) (ApplyResult, error) {
	if err := cmd.Validate(); err != nil {
		return ApplyResult{}, err
	}

	mapper, err := h.registry.Mapper(cmd.Provider())
	if err != nil {
		return ApplyResult{}, err
	}

	ref, err := h.store.GetExternalRef(ctx, mapper.Name(), cmd.ExternalID())
	if err != nil {
		return ApplyResult{}, err
	}

	status, err := mapper.MapStatus(cmd.Status())
	if err != nil {
		return ApplyResult{}, err
	}

	log := h.logger.With("provider", mapper.Name(), "external_id", cmd.ExternalID(),
		"order_id", ref.OrderID, "status", status.String())

	var result ApplyResult
	if ref.IsDelivery() {
		apply, cmdErr := NewApplyDeliveryStatusCommand(ref.OrderID, status, cmd.Location())
		if cmdErr != nil {
			return ApplyResult{}, cmdErr
		}
		result, err = h.delivery.Handle(ctx, apply)
	} else {
		apply, cmdErr := NewApplyRestaurantStatusCommand(ref.OrderID, ref.RestaurantKey, status)
		if cmdErr != nil {
			return ApplyResult{}, cmdErr
		}
		result, err = h.restaurants.Handle(ctx, apply.FromWebhook())
	}
	if err != nil {
		return result, err
	}

	log.InfoContext(ctx, "webhook ingested", "changed", result.Changed)
	return result, nil
}
