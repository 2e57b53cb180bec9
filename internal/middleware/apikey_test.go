package middleware

import (
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestAPIKey(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("operator-key"), bcrypt.MinCost)
	require.NoError(t, err)

	app := fiber.New()
	app.Use(APIKey(string(hash)))
	app.Get("/balance", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	cases := map[string]int{
		"":             fiber.StatusUnauthorized,
		"wrong":        fiber.StatusUnauthorized,
		"operator-key": fiber.StatusOK,
	}
	for key, want := range cases {
		req := httptest.NewRequest(fiber.MethodGet, "/balance", nil)
		if key != "" {
			req.Header.Set(APIKeyHeader, key)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		require.Equalf(t, want, resp.StatusCode, "key %q", key)
	}
}

func TestAPIKeyDisabledWithoutHash(t *testing.T) {
	app := fiber.New()
	app.Use(APIKey(""))
	app.Get("/balance", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })

	resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/balance", nil))
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
}
