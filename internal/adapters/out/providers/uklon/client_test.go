package uklon_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"catering/internal/adapters/out/providers/uklon"
	"catering/internal/core/domain/model/order"
	"catering/internal/core/ports"
	"catering/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusMapping(t *testing.T) {
	expected := map[uklon.Status]order.Status{
		uklon.StatusNotStarted: order.DeliveryLookup,
		uklon.StatusDelivery:   order.Delivery,
		uklon.StatusDelivered:  order.Delivered,
	}
	require.Len(t, uklon.Statuses(), len(expected))
	for _, raw := range uklon.Statuses() {
		got, err := raw.Canonical()
		require.NoError(t, err, raw)
		assert.Equal(t, expected[raw], got, raw)
	}

	_, err := uklon.Status("lost").Canonical()
	require.ErrorIs(t, err, errs.ErrUnmappedStatus)
}

func TestClient_CreateAndGetOrder(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /drivers/orders", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Addresses []string `json:"addresses"`
			Comments  []string `json:"comments"`
		}
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, []string{"Khreshchatyk 1", "Lva Tolstoho 5"}, body.Addresses)
		assert.Equal(t, []string{"order 42", "order 42"}, body.Comments)
		_, _ = w.Write([]byte(`{"order_id":"u-1","status":"not started","location":[50.45,30.52],` +
			`"addresses":["Khreshchatyk 1","Lva Tolstoho 5"],"comments":["order 42","order 42"]}`))
	})
	mux.HandleFunc("GET /drivers/orders/u-1", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"order_id":"u-1","status":"delivery","location":[50.46,30.53]}`))
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c, err := uklon.NewClient(srv.URL+"/drivers/orders/", time.Second)
	require.NoError(t, err)

	created, err := c.CreateOrder(t.Context(), ports.DeliveryRequest{
		Addresses: []string{"Khreshchatyk 1", "Lva Tolstoho 5"},
		Comments:  []string{"order 42", "order 42"},
	})
	require.NoError(t, err)
	assert.Equal(t, "u-1", created.ExternalID)
	require.NotNil(t, created.Location)
	assert.InDelta(t, 50.45, created.Location.Lat(), 1e-9)

	got, err := c.GetOrder(t.Context(), "u-1")
	require.NoError(t, err)
	status, err := c.MapStatus(got.Status)
	require.NoError(t, err)
	assert.Equal(t, order.Delivery, status)
	assert.InDelta(t, 30.53, got.Location.Lon(), 1e-9)
}

func TestClient_CreateOrderRequiresAddresses(t *testing.T) {
	c, err := uklon.NewClient("", time.Second)
	require.NoError(t, err)

	_, err = c.CreateOrder(t.Context(), ports.DeliveryRequest{})
	require.ErrorIs(t, err, errs.ErrValueIsRequired)
}

func TestClient_InvalidLocationIsProtocolError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"order_id":"u-1","status":"delivery","location":[91,0]}`))
	}))
	defer srv.Close()

	c, err := uklon.NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	_, err = c.GetOrder(t.Context(), "u-1")
	require.ErrorIs(t, err, errs.ErrProviderProtocol)
}

func TestClient_MissingLocationIsAllowed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"order_id":"u-1","status":"not started","location":null}`))
	}))
	defer srv.Close()

	c, err := uklon.NewClient(srv.URL, time.Second)
	require.NoError(t, err)

	got, err := c.GetOrder(t.Context(), "u-1")
	require.NoError(t, err)
	assert.Nil(t, got.Location)
}
