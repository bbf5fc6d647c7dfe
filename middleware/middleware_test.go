package middleware

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"capacitaciones/config"
	"capacitaciones/models"
)

func testApp(t *testing.T) *fiber.App {
	t.Helper()
	config.AppConfig = &config.Config{JWTKey: "middleware-secret"}
	app := fiber.New()
	app.Get("/admin", JWTMiddleware, RequireAdmin(), func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user": c.Locals("userId"), "role": c.Locals("role")})
	})
	app.Get("/open", RequireAdmin(), func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) })
	return app
}

func call(t *testing.T, app *fiber.App, path, auth string) (int, map[string]interface{}) {
	t.Helper()
	req := httptest.NewRequest("GET", path, nil)
	if auth != "" {
		req.Header.Set("Authorization", auth)
	}
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &body))
	return resp.StatusCode, body
}

func TestAdminToken(t *testing.T) {
	app := testApp(t)
	tok, err := GenerateJWT(7, "a@x.co", models.RoleSuperAdmin)
	require.NoError(t, err)

	status, body := call(t, app, "/admin", "Bearer "+tok)
	assert.Equal(t, fiber.StatusOK, status)
	assert.EqualValues(t, 7, body["user"])
	assert.EqualValues(t, models.RoleSuperAdmin, body["role"])
}

func TestRejectedTokens(t *testing.T) {
	app := testApp(t)
	staff, err := GenerateJWT(3, "s@x.co", models.RoleStaff)
	require.NoError(t, err)

	expired := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id": 1, "is_admin": models.RoleAdmin, "exp": time.Now().Add(-time.Hour).Unix(),
	})
	expiredTok, err := expired.SignedString([]byte("middleware-secret"))
	require.NoError(t, err)

	foreign := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"user_id": 1, "is_admin": models.RoleAdmin})
	foreignTok, err := foreign.SignedString([]byte("otra-clave"))
	require.NoError(t, err)

	tests := []struct {
		name   string
		path   string
		auth   string
		status int
		msg    string
	}{
		{"missing header", "/admin", "", 401, "Falta el encabezado Authorization"},
		{"not bearer", "/admin", "Token abc", 401, "Formato de Authorization inválido"},
		{"expired", "/admin", "Bearer " + expiredTok, 401, "Token inválido o expirado"},
		{"wrong key", "/admin", "Bearer " + foreignTok, 401, "Token inválido o expirado"},
		{"staff", "/admin", "Bearer " + staff, 403, "Acceso solo para administradores"},
		{"no jwt middleware", "/open", "", 401, "No autenticado"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, app, tt.path, tt.auth)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, false, body["status"])
			assert.Equal(t, tt.msg, body["error"])
		})
	}
}
