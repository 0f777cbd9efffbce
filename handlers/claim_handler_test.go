package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avdonin/school_canteen/settlement"
)

func mappingApp(err error) *fiber.App {
	app := fiber.New()
	app.Get("/claim", func(c *fiber.Ctx) error {
		return settlementError(c, err)
	})
	return app
}

func TestSettlementErrorMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"invalid meal type", settlement.ErrInvalidMealType, fiber.StatusBadRequest},
		{"invalid dish", settlement.ErrInvalidDish, fiber.StatusBadRequest},
		{"already claimed", settlement.ErrAlreadyClaimed, fiber.StatusConflict},
		{"already confirmed", settlement.ErrAlreadyConfirmed, fiber.StatusConflict},
		{"not found", settlement.ErrNotFound, fiber.StatusNotFound},
		{"forbidden", settlement.ErrForbidden, fiber.StatusForbidden},
		{"insufficient funds", &settlement.InsufficientFundsError{
			Required: decimal.RequireFromString("90"),
			Balance:  decimal.RequireFromString("50"),
		}, fiber.StatusPaymentRequired},
		{"insufficient stock", &settlement.InsufficientStockError{
			Shortages: []settlement.Shortage{{Name: "Eggs", Unit: "pcs"}},
		}, fiber.StatusConflict},
		{"storage fault", &settlement.DataError{Err: errors.New("connection reset")}, fiber.StatusInternalServerError},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			resp, err := mappingApp(tc.err).Test(httptest.NewRequest("GET", "/claim", nil))
			require.NoError(t, err)
			assert.Equal(t, tc.want, resp.StatusCode)
		})
	}
}

func TestInsufficientFundsResponseCarriesAmounts(t *testing.T) {
	fundsErr := &settlement.InsufficientFundsError{
		Required: decimal.RequireFromString("90"),
		Balance:  decimal.RequireFromString("50"),
	}
	resp, err := mappingApp(fundsErr).Test(httptest.NewRequest("GET", "/claim", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(body, &payload))
	assert.Equal(t, "90", payload["required"])
	assert.Equal(t, "50", payload["balance"])
}

func TestInsufficientStockResponseListsShortages(t *testing.T) {
	stockErr := &settlement.InsufficientStockError{
		Shortages: []settlement.Shortage{
			{Name: "Eggs", Unit: "pcs", Available: decimal.RequireFromString("1"), Needed: decimal.RequireFromString("2")},
		},
	}
	resp, err := mappingApp(stockErr).Test(httptest.NewRequest("GET", "/claim", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var payload struct {
		Error     string `json:"error"`
		Shortages []struct {
			Name string `json:"name"`
		} `json:"shortages"`
	}
	require.NoError(t, json.Unmarshal(body, &payload))
	require.Len(t, payload.Shortages, 1)
	assert.Equal(t, "Eggs", payload.Shortages[0].Name)
	assert.Contains(t, payload.Error, "Eggs")
}

func TestStorageFaultResponseStaysGeneric(t *testing.T) {
	dataErr := &settlement.DataError{Err: errors.New("pq: deadlock detected")}
	resp, err := mappingApp(dataErr).Test(httptest.NewRequest("GET", "/claim", nil))
	require.NoError(t, err)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.NotContains(t, string(body), "deadlock")
}
