package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/congo-pay/custody_gateway/internal/logging"
)

func setupTestApp(t *testing.T, status int) (*fiber.App, *int) {
	t.Helper()
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	calls := 0
	app := fiber.New()
	app.Use(Idempotency(cache, time.Minute, logging.Discard()))
	app.Post("/transactions", func(c *fiber.Ctx) error {
		calls++
		return c.Status(status).JSON(fiber.Map{"call": calls})
	})

	return app, &calls
}

func postTransaction(t *testing.T, app *fiber.App, key string) (int, string, string) {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/transactions", strings.NewReader("{}"))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	if key != "" {
		req.Header.Set(idempotencyKeyHeader, key)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, string(body), resp.Header.Get("Idempotent-Replayed")
}

func TestIdempotencyRequiresHeader(t *testing.T) {
	app, _ := setupTestApp(t, fiber.StatusCreated)

	status, _, _ := postTransaction(t, app, "")
	require.Equal(t, fiber.StatusBadRequest, status)
}

func TestIdempotencyReturnsCachedResponse(t *testing.T) {
	app, calls := setupTestApp(t, fiber.StatusCreated)

	status, body, replayed := postTransaction(t, app, "abc123")
	require.Equal(t, fiber.StatusCreated, status)
	require.Empty(t, replayed)

	status2, body2, replayed2 := postTransaction(t, app, "abc123")
	require.Equal(t, fiber.StatusCreated, status2)
	require.Equal(t, "true", replayed2)
	require.Equal(t, body, body2)
	require.Equal(t, 1, *calls, "handler should run once")

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(body2), &decoded))
}

func TestIdempotencyDoesNotStoreServerErrors(t *testing.T) {
	app, calls := setupTestApp(t, fiber.StatusBadGateway)

	postTransaction(t, app, "retry-me")
	status, _, replayed := postTransaction(t, app, "retry-me")
	require.Equal(t, fiber.StatusBadGateway, status)
	require.Empty(t, replayed)
	require.Equal(t, 2, *calls)
}
