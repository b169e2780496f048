package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"catering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectNotFoundError(t *testing.T) {
	t.Run("NewObjectNotFoundError", func(t *testing.T) {
		err := errs.NewObjectNotFoundError("orderId", "42")

		assert.Equal(t, "orderId", err.ParamName)
		assert.Equal(t, "42", err.ID)
		require.NoError(t, err.Cause)
		assert.Equal(t, "object not found: 42", err.Error())
		assert.Equal(t, errs.ErrObjectNotFound, err.Unwrap())
	})

	t.Run("NewObjectNotFoundErrorWithCause", func(t *testing.T) {
		cause := errors.New("redis: nil")
		err := errs.NewObjectNotFoundErrorWithCause("externalId", "ext-1", cause)

		assert.Equal(t, cause, err.Cause)
		assert.Equal(t,
			"object not found: param is: externalId, ID is: ext-1 (cause: redis: nil)",
			err.Error())
	})
}

func TestValidationErrors(t *testing.T) {
	t.Run("ValueIsInvalid", func(t *testing.T) {
		err := errs.NewValueIsInvalidErrorWithCause("status", errors.New("bad"))
		assert.Equal(t, "value is invalid: status (cause: bad)", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	})

	t.Run("ValueIsOutOfRange", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("quantity", 25, 1, 20)
		assert.Equal(t, "value is invalid: 25 is quantity, min value is 1, max value is 20", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("sanitize function with newlines", func(t *testing.T) {
		err := errs.NewValueIsOutOfRangeError("text", "hello\nworld", 0, 10)
		assert.Contains(t, err.Error(), "hello world")
		assert.NotContains(t, err.Error(), "\n")
	})

	t.Run("ValueIsRequired", func(t *testing.T) {
		err := errs.NewValueIsRequiredError("restaurantId")
		assert.Equal(t, "value is required: restaurantId", err.Error())
		require.ErrorIs(t, err, errs.ErrValueIsRequired)
	})

	t.Run("VersionIsInvalid", func(t *testing.T) {
		err := errs.NewVersionIsInvalidErrorWithCause("orders:42", errors.New("expected 3, found 4"))
		assert.Equal(t, "version is invalid: orders:42 (cause: expected 3, found 4)", err.Error())
		require.ErrorIs(t, err, errs.ErrVersionIsInvalid)
	})
}

func TestOrchestrationErrors(t *testing.T) {
	t.Run("transient errors are retryable", func(t *testing.T) {
		err := fmt.Errorf("create order: %w",
			errs.NewTransientNetworkError("kfc", "create order", errors.New("timeout")))

		require.ErrorIs(t, err, errs.ErrTransientNetwork)
		assert.True(t, errs.IsRetryable(err))
		assert.False(t, errs.IsAlarm(err))
	})

	t.Run("version conflicts are retryable", func(t *testing.T) {
		assert.True(t, errs.IsRetryable(errs.NewVersionIsInvalidError("orders:1")))
	})

	t.Run("protocol errors raise an alarm", func(t *testing.T) {
		err := errs.NewProviderProtocolError("uklon", "get order", errors.New("unexpected EOF"))

		assert.Equal(t, "provider protocol error: uklon get order (cause: unexpected EOF)", err.Error())
		assert.False(t, errs.IsRetryable(err))
		assert.True(t, errs.IsAlarm(err))
	})

	t.Run("unmapped status", func(t *testing.T) {
		err := errs.NewUnmappedStatusError("silpo", "burnt")

		assert.Equal(t, `unmapped provider status: silpo reported "burnt"`, err.Error())
		require.ErrorIs(t, err, errs.ErrUnmappedStatus)
		assert.True(t, errs.IsAlarm(err))
	})

	t.Run("tracking record missing", func(t *testing.T) {
		err := errs.NewTrackingRecordMissingError(42)

		assert.Equal(t, "tracking record missing: order 42", err.Error())
		assert.True(t, errs.IsAlarm(err))

		var missing *errs.TrackingRecordMissingError
		require.ErrorAs(t, fmt.Errorf("wrapped: %w", err), &missing)
		assert.Equal(t, int64(42), missing.OrderID)
	})

	t.Run("contention", func(t *testing.T) {
		err := errs.NewContentionError(7, 5, errs.NewVersionIsInvalidError("orders:7"))

		assert.Contains(t, err.Error(), "order 7 after 5 attempts")
		require.ErrorIs(t, err, errs.ErrContention)
		assert.False(t, errs.IsRetryable(err))
	})
}

func TestIsRedeliverable(t *testing.T) {
	testCases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "store outage", err: errors.New("dial tcp 10.0.0.5:6379: connection refused"), want: true},
		{name: "version conflict", err: errs.NewVersionIsInvalidError("orders:1"), want: true},
		{name: "transient provider", err: errs.NewTransientNetworkError("kfc", "get order", errors.New("timeout")), want: true},
		{name: "transient joined with alarm", err: errors.Join(
			errs.NewTransientNetworkError("kfc", "get order", errors.New("timeout")),
			errs.NewTrackingRecordMissingError(1)), want: false},
		{name: "polling exhausted", err: fmt.Errorf("%w: 600 attempts", errs.ErrPollingExhausted), want: false},
		{name: "polling exhausted on transient errors", err: fmt.Errorf("%w: %w", errs.ErrPollingExhausted,
			errs.NewTransientNetworkError("uklon", "get order", errors.New("timeout"))), want: false},
		{name: "contention", err: errs.NewContentionError(1, 5, nil), want: true},
		{name: "invalid task", err: errs.NewValueIsRequiredError("status"), want: false},
		{name: "unknown provider", err: errs.NewObjectNotFoundError("provider", "glovo"), want: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, errs.IsRedeliverable(tc.err))
		})
	}
}

func TestSentinelErrors(t *testing.T) {
	assert.Equal(t, "object not found", errs.ErrObjectNotFound.Error())
	assert.Equal(t, "value is invalid", errs.ErrValueIsInvalid.Error())
	assert.Equal(t, "value is out of range", errs.ErrValueIsOutOfRange.Error())
	assert.Equal(t, "value is required", errs.ErrValueIsRequired.Error())
	assert.Equal(t, "version is invalid", errs.ErrVersionIsInvalid.Error())
	assert.Equal(t, "tracking record missing", errs.ErrTrackingRecordMissing.Error())
}
