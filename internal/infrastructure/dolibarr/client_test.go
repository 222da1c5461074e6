package dolibarr

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/storebridge/backend/internal/domain/integration"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(Config{
		BaseURL:   server.URL,
		APIKey:    "test-key",
		VerifyTLS: true,
	}, zap.NewNop())
}

func TestClientRequest(t *testing.T) {
	t.Run("Not configured", func(t *testing.T) {
		c := NewClient(Config{}, zap.NewNop())
		_, err := c.Status(context.Background())
		assert.ErrorIs(t, err, integration.ErrNotConfigured)
	})

	t.Run("Sends auth header and API path", func(t *testing.T) {
		var gotPath, gotKey string
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			gotPath = r.URL.Path
			gotKey = r.Header.Get("DOLAPIKEY")
			_, _ = w.Write([]byte(`{"success":{"code":200,"dolibarr_version":"18.0.2"}}`))
		})

		status, err := c.Status(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "/api/index.php/status", gotPath)
		assert.Equal(t, "test-key", gotKey)
		assert.Equal(t, "18.0.2", status.Version)
	})

	t.Run("Unreachable host", func(t *testing.T) {
		c := NewClient(Config{BaseURL: "http://127.0.0.1:1", APIKey: "k"}, zap.NewNop())
		_, err := c.Status(context.Background())
		assert.ErrorIs(t, err, integration.ErrRemoteUnavailable)
	})

	t.Run("Error envelope message wins", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"code":400,"message":"Bad ref"}}`))
		})

		_, err := c.CreateProduct(context.Background(), integration.ProductPayload{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Equal(t, "Bad ref", apiErr.Message)
	})

	t.Run("Canned message for 401", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		})

		_, err := c.CreateThirdParty(context.Background(), integration.ThirdPartyPayload{})
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "Invalid API key")
	})

	t.Run("Garbage body on success status", func(t *testing.T) {
		c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>not json</html>`))
		})

		_, err := c.Status(context.Background())
		assert.ErrorIs(t, err, integration.ErrInvalidResponse)
	})
}

func TestCreatedID(t *testing.T) {
	t.Run("Bare number", func(t *testing.T) {
		id, err := createdID([]byte(`123`))
		require.NoError(t, err)
		assert.Equal(t, int64(123), id)
	})

	t.Run("Quoted number", func(t *testing.T) {
		id, err := createdID([]byte(`"456"`))
		require.NoError(t, err)
		assert.Equal(t, int64(456), id)
	})

	t.Run("Object with id", func(t *testing.T) {
		id, err := createdID([]byte(`{"id":789}`))
		require.NoError(t, err)
		assert.Equal(t, int64(789), id)
	})

	t.Run("Unrecognized", func(t *testing.T) {
		_, err := createdID([]byte(`{"ref":"x"}`))
		assert.ErrorIs(t, err, integration.ErrInvalidResponse)
	})
}

func TestFindThirdPartyByEmail(t *testing.T) {
	parties := []integration.RemoteThirdParty{
		{ID: 1, Name: "Alpha", Email: "alpha@example.com"},
		{ID: 2, Name: "Beta", Email: "Beta@Example.COM"},
	}

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(parties)
	})

	t.Run("Case-insensitive match", func(t *testing.T) {
		tp, err := c.FindThirdPartyByEmail(context.Background(), "beta@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(2), tp.ID)
	})

	t.Run("No match", func(t *testing.T) {
		_, err := c.FindThirdPartyByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, integration.ErrRemoteNotFound)
	})

	t.Run("Empty email", func(t *testing.T) {
		_, err := c.FindThirdPartyByEmail(context.Background(), "")
		assert.ErrorIs(t, err, integration.ErrRemoteNotFound)
	})

	t.Run("Empty installation", func(t *testing.T) {
		empty := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusNotFound)
		})
		_, err := empty.FindThirdPartyByEmail(context.Background(), "alpha@example.com")
		assert.ErrorIs(t, err, integration.ErrRemoteNotFound)
	})

	t.Run("Match beyond the first page", func(t *testing.T) {
		firstPage := make([]integration.RemoteThirdParty, thirdPartyPageSize)
		for i := range firstPage {
			firstPage[i] = integration.RemoteThirdParty{
				ID:    int64(i + 1),
				Email: fmt.Sprintf("filler%d@example.com", i+1),
			}
		}
		var pagesServed []string
		paged := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			page := r.URL.Query().Get("page")
			pagesServed = append(pagesServed, page)
			if page == "0" {
				_ = json.NewEncoder(w).Encode(firstPage)
				return
			}
			_ = json.NewEncoder(w).Encode([]integration.RemoteThirdParty{
				{ID: 999, Email: "deep@example.com"},
			})
		})

		tp, err := paged.FindThirdPartyByEmail(context.Background(), "deep@example.com")
		require.NoError(t, err)
		assert.Equal(t, int64(999), tp.ID)
		assert.Equal(t, []string{"0", "1"}, pagesServed)
	})

	t.Run("Exhausted pages answer 404", func(t *testing.T) {
		full := make([]integration.RemoteThirdParty, thirdPartyPageSize)
		for i := range full {
			full[i] = integration.RemoteThirdParty{ID: int64(i + 1)}
		}
		paged := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("page") == "0" {
				_ = json.NewEncoder(w).Encode(full)
				return
			}
			w.WriteHeader(http.StatusNotFound)
		})

		_, err := paged.FindThirdPartyByEmail(context.Background(), "nobody@example.com")
		assert.ErrorIs(t, err, integration.ErrRemoteNotFound)
	})
}

func TestRequestExtraHeaders(t *testing.T) {
	var gotLang, gotKey string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotLang = r.Header.Get("Accept-Language")
		gotKey = r.Header.Get("DOLAPIKEY")
		_, _ = w.Write([]byte(`[]`))
	})

	extra := http.Header{}
	extra.Set("Accept-Language", "fr_FR")
	extra.Set("DOLAPIKEY", "forged")
	_, err := c.request(context.Background(), http.MethodGet, "/thirdparties", nil, extra)

	require.NoError(t, err)
	assert.Equal(t, "fr_FR", gotLang)
	assert.Equal(t, "test-key", gotKey)
}

func TestGetThirdPartyNotFound(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"code":404,"message":"Not found"}}`))
	})

	_, err := c.GetThirdParty(context.Background(), 99)
	assert.ErrorIs(t, err, integration.ErrRemoteNotFound)
	assert.False(t, errors.Is(err, integration.ErrRemoteUnavailable))
}

func TestListWarehousesLabelFallback(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`[{"id":1,"ref":"WH-MAIN","label":""}]`))
	})

	warehouses, err := c.ListWarehouses(context.Background())
	require.NoError(t, err)
	require.Len(t, warehouses, 1)
	assert.Equal(t, "WH-MAIN", warehouses[0].Label)
}
