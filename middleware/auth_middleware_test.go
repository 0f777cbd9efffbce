package middleware

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "test-secret-key-for-testing-only"

func signTestToken(t *testing.T, userID uuid.UUID, role string) string {
	t.Helper()
	claims := jwt.MapClaims{
		"user_id": userID.String(),
		"role":    role,
		"exp":     time.Now().Add(time.Hour).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	require.NoError(t, err)
	return token
}

func newProtectedApp(extra ...fiber.Handler) *fiber.App {
	app := fiber.New()
	handlers := append([]fiber.Handler{Protected()}, extra...)
	handlers = append(handlers, func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"user_id": CurrentUserID(c).String(), "role": CurrentRole(c)})
	})
	app.Get("/test", handlers...)
	return app
}

func TestProtectedRejectsMissingToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := newProtectedApp()

	resp, err := app.Test(httptest.NewRequest("GET", "/test", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
}

func TestProtectedRejectsInvalidToken(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	app := newProtectedApp()

	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer invalid_token_xyz")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusUnauthorized, resp.StatusCode)
}

func TestRoleGates(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	studentToken := signTestToken(t, uuid.New(), "student")
	cookToken := signTestToken(t, uuid.New(), "cook")
	adminToken := signTestToken(t, uuid.New(), "admin")

	cases := []struct {
		name  string
		gate  fiber.Handler
		token string
		want  int
	}{
		{"student blocked by cook gate", CookRequired(), studentToken, fiber.StatusForbidden},
		{"cook passes cook gate", CookRequired(), cookToken, fiber.StatusOK},
		{"cook blocked by admin gate", AdminRequired(), cookToken, fiber.StatusForbidden},
		{"admin passes admin gate", AdminRequired(), adminToken, fiber.StatusOK},
		{"cook passes staff gate", StaffRequired(), cookToken, fiber.StatusOK},
		{"admin passes staff gate", StaffRequired(), adminToken, fiber.StatusOK},
		{"student blocked by staff gate", StaffRequired(), studentToken, fiber.StatusForbidden},
		{"student passes student gate", StudentRequired(), studentToken, fiber.StatusOK},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newProtectedApp(tc.gate)
			req := httptest.NewRequest("GET", "/test", nil)
			req.Header.Set("Authorization", "Bearer "+tc.token)
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestCurrentUserIDRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)

	userID := uuid.New()
	app := newProtectedApp()
	req := httptest.NewRequest("GET", "/test", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, userID, "student"))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}
