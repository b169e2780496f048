// Package errs provides standardized error types for the catering orchestrator.
// It implements a consistent pattern for error creation, formatting, and unwrapping
// that is used throughout the application.
//
// Validation errors:
//   - ValueIsRequiredError: a required value is missing
//   - ValueIsInvalidError: a value is invalid
//   - ValueIsOutOfRangeError: a value is outside its allowed bounds
//   - ObjectNotFoundError: an object cannot be found
//   - VersionIsInvalidError: a compare-and-swap lost against a concurrent writer
//
// Orchestration errors:
//   - TransientNetworkError: provider unreachable or timed out, retried with backoff
//   - ProviderProtocolError: provider answered with something unexpected, fatal for the attempt
//   - UnmappedStatusError: provider status without a canonical mapping, never defaulted
//   - TrackingRecordMissingError: tracking record gone while the order is in flight
//   - ContentionError: compare-and-swap retries exhausted
//
// Each error type follows the same pattern:
//   - A sentinel error variable (e.g., ErrValueIsRequired)
//   - A struct type with fields for error details
//   - Constructor functions with and without cause
//   - Error() method for formatting the error message
//   - Unwrap() method returning the sentinel so errors.Is works
package errs
