package http_test

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apphttp "github.com/mvinueza/contaec/internal/interfaces/http"
	"github.com/mvinueza/contaec/pkg/security"
)

func buildRateLimitedApp(max int) *fiber.App {
	app := fiber.New()
	app.Post("/login",
		apphttp.RateLimit(security.NewGuard(), max, time.Minute),
		func(c *fiber.Ctx) error {
			return c.SendStatus(fiber.StatusOK)
		},
	)
	return app
}

func doLogin(t *testing.T, app *fiber.App) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/login", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

// Dentro del máximo las peticiones pasan y se informa cuántas quedan.
func TestRateLimit_DentroDelMaximo(t *testing.T) {
	app := buildRateLimitedApp(3)

	for i := 0; i < 3; i++ {
		resp := doLogin(t, app)
		resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode, "petición %d", i+1)
		assert.Equal(t, strconv.Itoa(2-i), resp.Header.Get("X-RateLimit-Remaining"))
	}
}

// Superado el máximo responde 429 con Retry-After apuntando al fin de la ventana.
func TestRateLimit_SuperadoRetorna429ConRetryAfter(t *testing.T) {
	app := buildRateLimitedApp(2)

	for i := 0; i < 2; i++ {
		resp := doLogin(t, app)
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := doLogin(t, app)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
	assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))

	retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
	require.NoError(t, err, "Retry-After debe ser un entero en segundos")
	assert.GreaterOrEqual(t, retryAfter, 1)
	assert.LessOrEqual(t, retryAfter, 60)

	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "RATE_LIMITED")
}
