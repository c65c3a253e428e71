package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docviewer/internal/config"
	"docviewer/internal/session"
)

func readBody(t *testing.T, resp *http.Response) string {
	t.Helper()
	b, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(b)
}

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFromCtx(c))
	})

	t.Run("generates a new request id when absent", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test", nil))
		require.NoError(t, err)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)
		assert.Equal(t, ridHeader, readBody(t, resp))
	})

	t.Run("preserves an existing request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, "test-id-123")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, "test-id-123", resp.Header.Get(RequestIDHeader))
		assert.Equal(t, "test-id-123", readBody(t, resp))
	})

	t.Run("replaces an oversized request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/test", nil)
		req.Header.Set(RequestIDHeader, strings.Repeat("x", 200))

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Len(t, resp.Header.Get(RequestIDHeader), 36)
	})
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	app := fiber.New()

	app.Use(RequestID())
	app.Use(LoggerWithWriter(&buf, time.UTC))

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Get("/fail", func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusBadGateway, "upstream")
	})

	t.Run("access line", func(t *testing.T) {
		buf.Reset()
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/test?x=1", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		var logData map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
		assert.NotEmpty(t, logData["request_id"])
		assert.Equal(t, "GET", logData["method"])
		assert.Equal(t, "/test", logData["path"])
		assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
		assert.NotNil(t, logData["latency"])
		assert.NotEmpty(t, logData["ts"])
		assert.Equal(t, "INFO", logData["level"])
	})

	t.Run("handler error status", func(t *testing.T) {
		buf.Reset()
		_, err := app.Test(httptest.NewRequest(http.MethodGet, "/fail", nil))
		require.NoError(t, err)

		var logData map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
		assert.Equal(t, float64(fiber.StatusBadGateway), logData["status"])
		assert.Equal(t, "ERROR", logData["level"])
	})
}

func TestCORS(t *testing.T) {
	app := fiber.New()
	app.Use(CORS("*"))
	app.Get("/api/files", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"success": true})
	})

	t.Run("preflight answered with 200 and empty body", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/api/files", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://viewer.example.com")
		req.Header.Set(fiber.HeaderAccessControlRequestMethod, http.MethodPost)

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, readBody(t, resp))
		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
		assert.Equal(t, "86400", resp.Header.Get(fiber.HeaderAccessControlMaxAge))
		assert.Contains(t, resp.Header.Get(fiber.HeaderAccessControlAllowMethods), "DELETE")
	})

	t.Run("bare options on any path", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodOptions, "/api/extract-text/a.pdf", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Empty(t, readBody(t, resp))
		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("simple request", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/files", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://viewer.example.com")

		resp, err := app.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("restricted origins", func(t *testing.T) {
		strict := fiber.New()
		strict.Use(CORS("https://a.example.com, https://b.example.com"))

		req := httptest.NewRequest(http.MethodOptions, "/api/files", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://b.example.com")
		resp, err := strict.Test(req)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "https://b.example.com", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))

		req = httptest.NewRequest(http.MethodOptions, "/api/files", nil)
		req.Header.Set(fiber.HeaderOrigin, "https://evil.example.com")
		resp, err = strict.Test(req)
		require.NoError(t, err)
		assert.Empty(t, resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})

	t.Run("error responses carry headers", func(t *testing.T) {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/missing", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "*", resp.Header.Get(fiber.HeaderAccessControlAllowOrigin))
	})
}

func TestRequireSession(t *testing.T) {
	m, err := session.NewManager(config.SessionConfig{Secret: "s3cret", TTLMinutes: 5, MaxEntries: 8})
	require.NoError(t, err)
	_, token, err := m.Create("sp-token", session.User{LoginName: "dana"})
	require.NoError(t, err)

	app := fiber.New()
	app.Use(RequireSession(m))
	app.Get("/who", func(c *fiber.Ctx) error {
		s, ok := session.FromContext(c.UserContext())
		if !ok {
			return c.SendStatus(fiber.StatusTeapot)
		}
		local, _ := SessionFromCtx(c)
		assert.Same(t, s, local)
		return c.SendString(s.User.LoginName + ":" + s.AccessToken)
	})
	app.Options("/who", func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) })

	tests := []struct {
		name       string
		method     string
		setup      func(r *http.Request)
		wantStatus int
		wantBody   string
	}{
		{
			name:       "bearer token",
			method:     http.MethodGet,
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer "+token) },
			wantStatus: http.StatusOK,
			wantBody:   "dana:sp-token",
		},
		{
			name:       "cookie",
			method:     http.MethodGet,
			setup:      func(r *http.Request) { r.AddCookie(&http.Cookie{Name: SessionCookie, Value: token}) },
			wantStatus: http.StatusOK,
			wantBody:   "dana:sp-token",
		},
		{
			name:       "missing",
			method:     http.MethodGet,
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "garbage",
			method:     http.MethodGet,
			setup:      func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") },
			wantStatus: http.StatusUnauthorized,
		},
		{
			name:       "options passes through",
			method:     http.MethodOptions,
			setup:      func(r *http.Request) {},
			wantStatus: http.StatusNoContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(tt.method, "/who", nil)
			tt.setup(req)

			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantBody != "" {
				assert.Equal(t, tt.wantBody, readBody(t, resp))
			}
		})
	}
}

func TestSessionToken(t *testing.T) {
	app := fiber.New()
	app.Get("/", func(c *fiber.Ctx) error { return c.SendString(SessionToken(c)) })

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "bearer  abc ")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, "abc", readBody(t, resp))

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Basic Zm9vOmJhcg==")
	resp, err = app.Test(req)
	require.NoError(t, err)
	assert.Empty(t, readBody(t, resp))
}
