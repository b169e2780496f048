// Package orderrepo provides data transfer objects and mapping functions for order persistence.
// This package implements the repository pattern for the order read model, handling
// the conversion between domain entities and database representations.
package orderrepo

import (
	"time"

	"catering/internal/core/domain/model/order"
)

// RestaurantDTO is a restaurant row. Name selects the provider integration.
type RestaurantDTO struct {
	ID      int64  `gorm:"primaryKey"`
	Name    string `gorm:"not null;uniqueIndex"`
	Address string `gorm:"not null;default:''"`
}

// TableName overrides GORM's default naming convention.
func (RestaurantDTO) TableName() string {
	return "restaurants"
}

// DishDTO is a dish served by one restaurant.
type DishDTO struct {
	ID           int64         `gorm:"primaryKey"`
	Name         string        `gorm:"not null"`
	RestaurantID int64         `gorm:"not null;index"`
	Restaurant   RestaurantDTO `gorm:"foreignKey:RestaurantID"`
}

// TableName overrides GORM's default naming convention.
func (DishDTO) TableName() string {
	return "dishes"
}

// OrderItemDTO is one order line.
type OrderItemDTO struct {
	ID       int64   `gorm:"primaryKey"`
	OrderID  int64   `gorm:"not null;index"`
	DishID   int64   `gorm:"not null"`
	Dish     DishDTO `gorm:"foreignKey:DishID"`
	Quantity int     `gorm:"not null"`
}

// TableName overrides GORM's default naming convention.
func (OrderItemDTO) TableName() string {
	return "order_items"
}

// OrderDTO represents the database structure of an order. Status is stored as
// the lifecycle rank so that conditional updates can compare it with < and >=.
type OrderDTO struct {
	ID               int64          `gorm:"primaryKey"`
	Status           int            `gorm:"not null;index"`
	ETA              time.Time      `gorm:"column:eta"`
	Total            int            `gorm:"not null;default:0"`
	DeliveryProvider string         `gorm:"not null"`
	ScheduledAt      *time.Time     `gorm:"index"`
	Items            []OrderItemDTO `gorm:"foreignKey:OrderID"`
}

// TableName overrides GORM's default naming convention.
func (OrderDTO) TableName() string {
	return "orders"
}

// Models lists every table of the order schema in dependency order.
func Models() []any {
	return []any{&RestaurantDTO{}, &DishDTO{}, &OrderDTO{}, &OrderItemDTO{}}
}

// fromDomain converts an order to its row and item rows. Only references to
// dishes are written; dishes and restaurants are reference data.
func fromDomain(o *order.Order) OrderDTO {
	items := make([]OrderItemDTO, 0, len(o.Items()))
	for _, item := range o.Items() {
		items = append(items, OrderItemDTO{
			OrderID:  o.ID(),
			DishID:   item.DishID(),
			Quantity: item.Quantity(),
		})
	}

	return OrderDTO{
		ID:               o.ID(),
		Status:           int(o.Status()),
		ETA:              o.ETA(),
		Total:            o.Total(),
		DeliveryProvider: o.DeliveryProvider(),
		ScheduledAt:      o.ScheduledAt(),
		Items:            items,
	}
}

// toDomain rebuilds an order. Items must be preloaded with dish and restaurant.
func toDomain(dto OrderDTO) (*order.Order, error) {
	items := make([]order.Item, 0, len(dto.Items))
	for _, itemDTO := range dto.Items {
		item, err := itemToDomain(itemDTO)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}

	return order.RestoreOrder(
		dto.ID,
		order.Status(dto.Status),
		dto.ETA,
		dto.Total,
		dto.DeliveryProvider,
		dto.ScheduledAt,
		items,
	)
}

func itemToDomain(dto OrderItemDTO) (order.Item, error) {
	restaurant, err := order.NewRestaurant(
		dto.Dish.Restaurant.ID,
		dto.Dish.Restaurant.Name,
		dto.Dish.Restaurant.Address,
	)
	if err != nil {
		return order.Item{}, err
	}
	return order.NewItem(dto.Dish.ID, dto.Dish.Name, dto.Quantity, restaurant)
}
