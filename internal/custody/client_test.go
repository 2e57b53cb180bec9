package custody

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestClientCallSendsJSON(t *testing.T) {
	var gotMethod, gotPath, gotAuth, gotType string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotType = r.Header.Get("Content-Type")
		payload, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(payload, &gotBody)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"address":"bc1qxyz","memo":"m-1","balance":12.5}`))
	}))
	defer server.Close()

	client := NewClient(server.URL+"/", WithAuthToken("secret"))
	resp, err := client.Call(context.Background(), http.MethodPost, "/address/new", map[string]any{"currency_id": "btc"})
	require.NoError(t, err)

	require.Equal(t, http.MethodPost, gotMethod)
	require.Equal(t, "/address/new", gotPath)
	require.Equal(t, "Bearer secret", gotAuth)
	require.Equal(t, "application/json", gotType)
	require.Equal(t, "btc", gotBody["currency_id"])

	require.Equal(t, "bc1qxyz", resp.Fields()["address"])
	require.Equal(t, json.Number("12.5"), resp.Fields()["balance"])
	require.Equal(t, "12.5", resp.Get("balance").String())
	require.False(t, resp.Get("missing").Exists())
}

func TestClientCallNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		w.Write([]byte(`{"errors":["currency.unavailable"]}`))
	}))
	defer server.Close()

	_, err := NewClient(server.URL).Call(context.Background(), http.MethodPost, "/tx/send", map[string]any{})
	require.Error(t, err)

	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, http.StatusUnprocessableEntity, cerr.StatusCode)
	require.Equal(t, "/tx/send", cerr.Path)
	require.Contains(t, cerr.Error(), "currency.unavailable")
}

func TestClientCallMalformedBody(t *testing.T) {
	cases := map[string]string{
		"not json":   `<html>bad gateway</html>`,
		"array":      `[1,2,3]`,
		"bare value": `"ok"`,
		"empty":      ``,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(body))
			}))
			defer server.Close()

			_, err := NewClient(server.URL).Call(context.Background(), http.MethodPost, "/address/balance", nil)
			var cerr *Error
			require.True(t, errors.As(err, &cerr), "expected *Error, got %T", err)
			require.Equal(t, http.StatusOK, cerr.StatusCode)
		})
	}
}

func TestClientCallTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := NewClient(url).Call(context.Background(), http.MethodPost, "/address/new", map[string]any{})
	var cerr *Error
	require.True(t, errors.As(err, &cerr))
	require.Zero(t, cerr.StatusCode)
}

func TestClientUsesShortIdleTimeout(t *testing.T) {
	client := NewClient("http://custody.local")
	transport, ok := client.httpClient.Transport.(*http.Transport)
	require.True(t, ok)
	require.Equal(t, DefaultIdleTimeout, transport.IdleConnTimeout)
	require.Equal(t, "http://custody.local", client.baseURL)
}
