package orderrepo

import (
	"context"
	"errors"
	"time"

	"catering/internal/core/domain/model/order"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// withItems preloads order lines in insertion order with their dish and restaurant.
func withItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(db *gorm.DB) *gorm.DB { return db.Order("order_items.id") }).
		Preload("Items.Dish.Restaurant")
}

var _ ports.OrderRepository = (*GormOrderRepository)(nil)

// GormOrderRepository implements OrderRepository using GORM.
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GORM order repository.
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

// Add saves a new order and its items.
func (r *GormOrderRepository) Add(ctx context.Context, aggregate *order.Order) error {
	if err := aggregate.Validate(); err != nil {
		return err
	}

	dto := fromDomain(aggregate)
	items := dto.Items
	dto.Items = nil

	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&dto).Error; err != nil {
			return err
		}
		if len(items) == 0 {
			return nil
		}
		return tx.Omit(clause.Associations).Create(&items).Error
	})
}

// Get retrieves an order with its items by ID.
func (r *GormOrderRepository) Get(ctx context.Context, id int64) (*order.Order, error) {
	var dto OrderDTO
	err := r.db.WithContext(ctx).
		Scopes(withItems).
		First(&dto, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.NewObjectNotFoundError("order", id)
		}
		return nil, err
	}

	return toDomain(dto)
}

// ConditionalUpdateStatus moves the order to `to` if its status is within [from, to).
// Concurrent callers serialise on the row lock and re-evaluate the predicate,
// so exactly one of them sees a changed row.
func (r *GormOrderRepository) ConditionalUpdateStatus(
	ctx context.Context,
	id int64,
	from, to order.Status,
) (bool, error) {
	if err := to.Validate(); err != nil {
		return false, err
	}

	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND status >= ? AND status < ?", id, int(from), int(to)).
		Update("status", int(to))
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// ItemsGroupedByRestaurant returns the order lines keyed by restaurant key.
func (r *GormOrderRepository) ItemsGroupedByRestaurant(
	ctx context.Context,
	id int64,
) (map[string]order.RestaurantItems, error) {
	o, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return o.ItemsByRestaurant(), nil
}

// MarkScheduled stamps scheduled_at unless it is already set.
func (r *GormOrderRepository) MarkScheduled(ctx context.Context, id int64, at time.Time) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&OrderDTO{}).
		Where("id = ? AND scheduled_at IS NULL", id).
		Update("scheduled_at", at)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected == 1, nil
}

// GetUnscheduled returns accepted orders that still wait for scheduling, oldest first.
func (r *GormOrderRepository) GetUnscheduled(ctx context.Context, limit int) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Scopes(withItems).
		Where("scheduled_at IS NULL AND status < ?", int(order.Delivered)).
		Order("id").
		Limit(limit).
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

// GetAllInFlight returns every scheduled order that is not delivered yet.
func (r *GormOrderRepository) GetAllInFlight(ctx context.Context) ([]*order.Order, error) {
	var dtos []OrderDTO
	err := r.db.WithContext(ctx).
		Scopes(withItems).
		Where("scheduled_at IS NOT NULL AND status < ?", int(order.Delivered)).
		Order("id").
		Find(&dtos).Error
	if err != nil {
		return nil, err
	}
	return toDomainList(dtos)
}

func toDomainList(dtos []OrderDTO) ([]*order.Order, error) {
	orders := make([]*order.Order, 0, len(dtos))
	for _, dto := range dtos {
		o, err := toDomain(dto)
		if err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, nil
}
