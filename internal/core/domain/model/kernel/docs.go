// Package kernel provides shared value objects for the catering domain.
//
// The package includes:
//   - Location: a validated geographic point, serialized as a [lat, lon] JSON array
//
// Value objects are immutable and validated on construction; zero values fail
// Validate so that uninitialized values cannot leak into tracking records.
package kernel
