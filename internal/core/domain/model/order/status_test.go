package order_test

import (
	"encoding/json"
	"fmt"
	"testing"

	"catering/internal/core/domain/model/order"
	"catering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatus_Constants(t *testing.T) {
	t.Run("should keep lifecycle ranks", func(t *testing.T) {
		assert.Equal(t, 0, int(order.Unknown))
		assert.Equal(t, 1, int(order.NotStarted))
		assert.Equal(t, 2, int(order.Cooking))
		assert.Equal(t, 3, int(order.Cooked))
		assert.Equal(t, 4, int(order.DeliveryLookup))
		assert.Equal(t, 5, int(order.Delivery))
		assert.Equal(t, 6, int(order.Delivered))
	})

	t.Run("Statuses is ordered", func(t *testing.T) {
		statuses := order.Statuses()
		for i := 1; i < len(statuses); i++ {
			assert.True(t, statuses[i-1].IsBefore(statuses[i]))
		}
	})
}

func TestStatus_Validate(t *testing.T) {
	for _, status := range order.Statuses() {
		t.Run(fmt.Sprintf("should validate %s", status), func(t *testing.T) {
			require.NoError(t, status.Validate())
		})
	}

	t.Run("should reject Unknown and out of range values", func(t *testing.T) {
		require.ErrorIs(t, order.Unknown.Validate(), errs.ErrValueIsInvalid)
		require.ErrorIs(t, order.Status(99).Validate(), errs.ErrValueIsInvalid)
		assert.Equal(t, "UNKNOWN", order.Status(99).String())
	})
}

func TestParseStatus(t *testing.T) {
	for _, status := range order.Statuses() {
		parsed, err := order.ParseStatus(status.String())
		require.NoError(t, err)
		assert.Equal(t, status, parsed)
	}

	_, err := order.ParseStatus("cooked")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
	_, err = order.ParseStatus("UNKNOWN")
	require.ErrorIs(t, err, errs.ErrValueIsInvalid)
}

func TestStatus_Advance(t *testing.T) {
	testCases := []struct {
		name     string
		from     order.Status
		to       order.Status
		expected order.Status
		changed  bool
	}{
		{name: "forward", from: order.NotStarted, to: order.Cooking, expected: order.Cooking, changed: true},
		{name: "skip ahead", from: order.NotStarted, to: order.Cooked, expected: order.Cooked, changed: true},
		{name: "same", from: order.Cooked, to: order.Cooked, expected: order.Cooked, changed: false},
		{name: "backwards", from: order.Cooked, to: order.Cooking, expected: order.Cooked, changed: false},
		{name: "invalid target", from: order.Cooking, to: order.Status(42), expected: order.Cooking, changed: false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			got, changed := tc.from.Advance(tc.to)
			assert.Equal(t, tc.expected, got)
			assert.Equal(t, tc.changed, changed)
		})
	}
}

func TestStatus_JSON(t *testing.T) {
	data, err := json.Marshal(map[string]order.Status{"status": order.DeliveryLookup})
	require.NoError(t, err)
	assert.JSONEq(t, `{"status":"DELIVERY_LOOKUP"}`, string(data))

	var decoded struct {
		Status order.Status `json:"status"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"status":"COOKING"}`), &decoded))
	assert.Equal(t, order.Cooking, decoded.Status)

	require.Error(t, json.Unmarshal([]byte(`{"status":"burnt"}`), &decoded))

	_, err = json.Marshal(map[string]order.Status{"status": order.Unknown})
	require.Error(t, err)
}
