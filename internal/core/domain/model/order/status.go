package order

import (
	"fmt"

	"catering/internal/pkg/errs"
)

// Status is the canonical, provider independent lifecycle state of an order.
// Values are ordered and transitions only ever move forward:
//
//	NotStarted ──> Cooking ──> Cooked ──> DeliveryLookup ──> Delivery ──> Delivered
//
// The integer value is the rank used for comparisons and for the conditional
// updates in the order repository, so the constants must keep their order.
type Status int

const (
	// Unknown represents an invalid or undefined status.
	// This value (0) helps catch uninitialized Status values.
	Unknown Status = iota

	// NotStarted is the initial status of an accepted order.
	NotStarted

	// Cooking indicates at least one restaurant started preparing its part.
	Cooking

	// Cooked indicates every restaurant finished its part of the order.
	Cooked

	// DeliveryLookup indicates the delivery request is being placed.
	DeliveryLookup

	// Delivery indicates a courier is on the way.
	Delivery

	// Delivered is the terminal status of an order.
	Delivered
)

func getStatusStrings() map[Status]string {
	return map[Status]string{
		Unknown:        "UNKNOWN",
		NotStarted:     "NOT_STARTED",
		Cooking:        "COOKING",
		Cooked:         "COOKED",
		DeliveryLookup: "DELIVERY_LOOKUP",
		Delivery:       "DELIVERY",
		Delivered:      "DELIVERED",
	}
}

// Statuses returns every valid status in lifecycle order.
func Statuses() []Status {
	return []Status{NotStarted, Cooking, Cooked, DeliveryLookup, Delivery, Delivered}
}

// ParseStatus converts the canonical string representation back to a Status.
//
// Example:
//
//	s, err := order.ParseStatus("COOKED")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(s.IsAtLeast(order.Cooking)) // true
func ParseStatus(s string) (Status, error) {
	for _, status := range Statuses() {
		if getStatusStrings()[status] == s {
			return status, nil
		}
	}
	return Unknown, errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%q is not a canonical status", s))
}

// Validate checks that the status is one of the canonical lifecycle values.
func (s Status) Validate() error {
	if s < NotStarted || s > Delivered {
		return errs.NewValueIsInvalidErrorWithCause("status", fmt.Errorf("%d is not a valid status", s))
	}
	return nil
}

// String returns the canonical name of the status, "UNKNOWN" for invalid values.
func (s Status) String() string {
	if str, ok := getStatusStrings()[s]; ok {
		return str
	}
	return "UNKNOWN"
}

// IsBefore reports whether s comes strictly earlier in the lifecycle than other.
func (s Status) IsBefore(other Status) bool {
	return s < other
}

// IsAtLeast reports whether s is equal to or later than other.
func (s Status) IsAtLeast(other Status) bool {
	return s >= other
}

// Advance returns the later of s and next. Moving backwards or sideways is a
// no-op, never an error, so replayed or reordered signals are harmless.
//
// Returns:
//   - the resulting status
//   - true if the status actually moved forward
func (s Status) Advance(next Status) (Status, bool) {
	if next.Validate() != nil || next <= s {
		return s, false
	}
	return next, true
}

// MarshalText encodes the status by its canonical name for JSON documents.
func (s Status) MarshalText() ([]byte, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a canonical status name.
func (s *Status) UnmarshalText(text []byte) error {
	parsed, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
