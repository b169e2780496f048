package kernel

import (
	"encoding/json"
	"fmt"

	"catering/internal/pkg/errs"
	"catering/internal/pkg/guard"
)

const (
	MinLatitude  = -90.0
	MaxLatitude  = 90.0
	MinLongitude = -180.0
	MaxLongitude = 180.0
)

// ErrLocationIsNotConstructed is returned when attempting to use an improperly initialized Location.
var ErrLocationIsNotConstructed = errs.NewValueIsRequiredError("location must be created via NewLocation")

// Location is a geographic point reported by the delivery provider for the courier.
// It is an immutable value object; the zero value is invalid.
//
// On the wire a Location is a two element JSON array [lat, lon], matching the
// delivery provider payloads and the tracking record document.
//
// Example:
//
//	loc, err := kernel.NewLocation(50.4501, 30.5234)
//	if err != nil {
//	    // Handle validation error
//	}
//	fmt.Printf("Location: %s", loc) // Output: Location(50.450100,30.523400)
type Location struct { //nolint:recvcheck //using for validation
	lat   float64
	lon   float64
	guard guard.ConstructorGuard
}

// NewLocation creates a Location after checking both coordinates are within
// the valid latitude and longitude ranges.
//
// Returns:
//   - Location: A valid location instance
//   - error: ValueIsOutOfRangeError if a coordinate is out of bounds
func NewLocation(lat, lon float64) (Location, error) {
	if lat < MinLatitude || lat > MaxLatitude {
		return Location{}, errs.NewValueIsOutOfRangeError("latitude", lat, MinLatitude, MaxLatitude)
	}
	if lon < MinLongitude || lon > MaxLongitude {
		return Location{}, errs.NewValueIsOutOfRangeError("longitude", lon, MinLongitude, MaxLongitude)
	}
	return Location{lat: lat, lon: lon, guard: guard.NewConstructorGuard()}, nil
}

// Validate ensures the location was created through NewLocation.
func (l Location) Validate() error {
	return l.guard.Validate(ErrLocationIsNotConstructed)
}

// Lat returns the latitude.
func (l Location) Lat() float64 {
	return l.lat
}

// Lon returns the longitude.
func (l Location) Lon() float64 {
	return l.lon
}

// IsEqual compares two locations by coordinates.
func (l Location) IsEqual(other Location) bool {
	return l.lat == other.lat && l.lon == other.lon
}

// String returns a human readable representation.
func (l Location) String() string {
	return fmt.Sprintf("Location(%f,%f)", l.lat, l.lon)
}

// MarshalJSON encodes the location as [lat, lon].
func (l Location) MarshalJSON() ([]byte, error) {
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return json.Marshal([2]float64{l.lat, l.lon})
}

// UnmarshalJSON decodes a [lat, lon] pair and validates it.
func (l *Location) UnmarshalJSON(data []byte) error {
	var pair []float64
	if err := json.Unmarshal(data, &pair); err != nil {
		return errs.NewValueIsInvalidErrorWithCause("location", err)
	}
	if len(pair) != 2 {
		return errs.NewValueIsInvalidErrorWithCause("location", fmt.Errorf("expected 2 coordinates, got %d", len(pair)))
	}
	loc, err := NewLocation(pair[0], pair[1])
	if err != nil {
		return err
	}
	*l = loc
	return nil
}
