package errs

import (
	"errors"
	"fmt"
)

var (
	ErrTransientNetwork      = errors.New("transient network error")
	ErrProviderProtocol      = errors.New("provider protocol error")
	ErrUnmappedStatus        = errors.New("unmapped provider status")
	ErrTrackingRecordMissing = errors.New("tracking record missing")
	ErrTrackingRecordExists  = errors.New("tracking record already exists")
	ErrContention            = errors.New("tracking record contention")
	ErrPollingExhausted      = errors.New("polling attempts exhausted")
)

// TransientNetworkError wraps a connectivity or timeout failure talking to a
// provider. These are retried with backoff.
type TransientNetworkError struct {
	Provider  string
	Operation string
	Cause     error
}

func NewTransientNetworkError(provider, operation string, cause error) *TransientNetworkError {
	return &TransientNetworkError{Provider: provider, Operation: operation, Cause: cause}
}

func (e *TransientNetworkError) Error() string {
	return withCause(fmt.Sprintf("%s: %s %s", ErrTransientNetwork, e.Provider, e.Operation), e.Cause)
}

func (e *TransientNetworkError) Unwrap() error {
	return ErrTransientNetwork
}

// ProviderProtocolError reports a malformed or unexpected provider response.
// It is fatal for the current worker attempt.
type ProviderProtocolError struct {
	Provider  string
	Operation string
	Cause     error
}

func NewProviderProtocolError(provider, operation string, cause error) *ProviderProtocolError {
	return &ProviderProtocolError{Provider: provider, Operation: operation, Cause: cause}
}

func (e *ProviderProtocolError) Error() string {
	return withCause(fmt.Sprintf("%s: %s %s", ErrProviderProtocol, e.Provider, e.Operation), e.Cause)
}

func (e *ProviderProtocolError) Unwrap() error {
	return ErrProviderProtocol
}

// UnmappedStatusError reports a provider status that has no canonical mapping.
type UnmappedStatusError struct {
	Provider string
	Status   string
}

func NewUnmappedStatusError(provider, status string) *UnmappedStatusError {
	return &UnmappedStatusError{Provider: provider, Status: status}
}

func (e *UnmappedStatusError) Error() string {
	return fmt.Sprintf("%s: %s reported %q", ErrUnmappedStatus, e.Provider, sanitize(e.Status))
}

func (e *UnmappedStatusError) Unwrap() error {
	return ErrUnmappedStatus
}

// TrackingRecordMissingError reports that the tracking record of an order still
// in flight is gone. The record is never re-initialised automatically since that
// would erase the external order ids already placed.
type TrackingRecordMissingError struct {
	OrderID int64
}

func NewTrackingRecordMissingError(orderID int64) *TrackingRecordMissingError {
	return &TrackingRecordMissingError{OrderID: orderID}
}

func (e *TrackingRecordMissingError) Error() string {
	return fmt.Sprintf("%s: order %d", ErrTrackingRecordMissing, e.OrderID)
}

func (e *TrackingRecordMissingError) Unwrap() error {
	return ErrTrackingRecordMissing
}

// ContentionError is raised once the compare-and-swap retry budget is spent.
type ContentionError struct {
	OrderID  int64
	Attempts int
	Cause    error
}

func NewContentionError(orderID int64, attempts int, cause error) *ContentionError {
	return &ContentionError{OrderID: orderID, Attempts: attempts, Cause: cause}
}

func (e *ContentionError) Error() string {
	return withCause(fmt.Sprintf("%s: order %d after %d attempts", ErrContention, e.OrderID, e.Attempts), e.Cause)
}

func (e *ContentionError) Unwrap() error {
	return ErrContention
}

// IsRetryable reports whether err may succeed when the same call is repeated.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientNetwork) || errors.Is(err, ErrVersionIsInvalid)
}

// IsAlarm reports whether err must be surfaced to operators rather than just logged.
func IsAlarm(err error) bool {
	return errors.Is(err, ErrTrackingRecordMissing) ||
		errors.Is(err, ErrProviderProtocol) ||
		errors.Is(err, ErrUnmappedStatus) ||
		errors.Is(err, ErrContention) ||
		errors.Is(err, ErrPollingExhausted)
}

// IsRedeliverable reports whether a failed task is worth running again later.
// CAS contention is. Other alarms never are, even when a retryable error is
// joined in. Invalid input is not.
func IsRedeliverable(err error) bool {
	if errors.Is(err, ErrContention) {
		return true
	}
	if IsAlarm(err) {
		return false
	}
	if IsRetryable(err) {
		return true
	}
	return !errors.Is(err, ErrValueIsInvalid) &&
		!errors.Is(err, ErrValueIsRequired) &&
		!errors.Is(err, ErrValueIsOutOfRange) &&
		!errors.Is(err, ErrObjectNotFound)
}
