// Package registry resolves provider integrations by name.
package registry

import (
	"fmt"
	"strings"
	"time"

	"catering/internal/adapters/out/providers/kfc"
	"catering/internal/adapters/out/providers/silpo"
	"catering/internal/adapters/out/providers/uklon"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"
)

type (
	restaurantFactory func(baseURL string, timeout time.Duration) (ports.RestaurantProvider, error)
	deliveryFactory   func(baseURL string, timeout time.Duration) (ports.DeliveryProvider, error)
)

var restaurantFactories = map[string]restaurantFactory{
	kfc.Name: func(baseURL string, timeout time.Duration) (ports.RestaurantProvider, error) {
		return kfc.NewClient(baseURL, timeout)
	},
	silpo.Name: func(baseURL string, timeout time.Duration) (ports.RestaurantProvider, error) {
		return silpo.NewClient(baseURL, timeout)
	},
}

var deliveryFactories = map[string]deliveryFactory{
	uklon.Name: func(baseURL string, timeout time.Duration) (ports.DeliveryProvider, error) {
		return uklon.NewClient(baseURL, timeout)
	},
}

var _ ports.ProviderRegistry = (*Registry)(nil)

// Registry holds the configured providers keyed by lower case name.
type Registry struct {
	restaurants map[string]ports.RestaurantProvider
	deliveries  map[string]ports.DeliveryProvider
}

// New builds a client for every configured provider.
func New(cfg Config) (*Registry, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := &Registry{
		restaurants: make(map[string]ports.RestaurantProvider),
		deliveries:  make(map[string]ports.DeliveryProvider),
	}
	for _, p := range cfg.Providers {
		name := strings.ToLower(p.Name)
		switch p.Kind {
		case KindRestaurant:
			factory, ok := restaurantFactories[name]
			if !ok {
				return nil, errs.NewValueIsInvalidErrorWithCause("provider", fmt.Errorf("no restaurant integration named %q", p.Name))
			}
			client, err := factory(p.BaseURL, p.Timeout)
			if err != nil {
				return nil, fmt.Errorf("provider %s: %w", p.Name, err)
			}
			r.restaurants[name] = client
		case KindDelivery:
			factory, ok := deliveryFactories[name]
			if !ok {
				return nil, errs.NewValueIsInvalidErrorWithCause("provider", fmt.Errorf("no delivery integration named %q", p.Name))
			}
			client, err := factory(p.BaseURL, p.Timeout)
			if err != nil {
				return nil, fmt.Errorf("provider %s: %w", p.Name, err)
			}
			r.deliveries[name] = client
		}
	}
	return r, nil
}

func (r *Registry) Restaurant(name string) (ports.RestaurantProvider, error) {
	p, ok := r.restaurants[strings.ToLower(name)]
	if !ok {
		return nil, errs.NewObjectNotFoundError("restaurant provider", name)
	}
	return p, nil
}

func (r *Registry) Delivery(name string) (ports.DeliveryProvider, error) {
	p, ok := r.deliveries[strings.ToLower(name)]
	if !ok {
		return nil, errs.NewObjectNotFoundError("delivery provider", name)
	}
	return p, nil
}

// Mapper returns the status mapper of a restaurant or delivery provider.
func (r *Registry) Mapper(name string) (ports.StatusMapper, error) {
	key := strings.ToLower(name)
	if p, ok := r.restaurants[key]; ok {
		return p, nil
	}
	if p, ok := r.deliveries[key]; ok {
		return p, nil
	}
	return nil, errs.NewObjectNotFoundError("provider", name)
}

// Names lists the registered provider names.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.restaurants)+len(r.deliveries))
	for name := range r.restaurants {
		names = append(names, name)
	}
	for name := range r.deliveries {
		names = append(names, name)
	}
	return names
}
