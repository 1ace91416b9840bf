package integration

import (
	"net/http"
	"testing"

	"github.com/iyhunko/inventory-dashboard/internal/http/controller"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createProduct(t *testing.T, app *App, token string, req controller.ProductRequest) controller.ProductResponse {
	t.Helper()
	w := app.Do(t, token, http.MethodPost, "/products", req)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decodeJSON[controller.ProductResponse](t, w)
}

func TestProductAPI_Integration(t *testing.T) {
	testDB := SetupTestDB(t)
	defer testDB.Cleanup(t)

	app := NewApp(testDB.DB, 5)

	t.Run("create, list, update and delete a product", func(t *testing.T) {
		testDB.TruncateTables(t)
		token := app.Login(t, "alice@example.com")

		// create
		created := createProduct(t, app, token, controller.ProductRequest{
			Description:       "Notebook Dell Inspiron",
			Quantity:          10,
			SuggestedQuantity: 4,
			Price:             4500,
			Categories:        []string{" Eletrônicos ", "Informática", ""},
		})
		assert.Equal(t, "alice@example.com", created.Owner)
		assert.Equal(t, 900.0, created.PriceUSD)
		assert.Equal(t, "green", created.Status)
		assert.Equal(t, []string{"Eletrônicos", "Informática"}, created.Categories)

		// list with filters
		w := app.Do(t, token, http.MethodGet, "/products?description=dell&categories=Informática", nil)
		require.Equal(t, http.StatusOK, w.Code)
		listed := decodeJSON[[]controller.ProductResponse](t, w)
		require.Len(t, listed, 1)
		assert.Equal(t, created.ID, listed[0].ID)

		w = app.Do(t, token, http.MethodGet, "/products?categories=Casa", nil)
		assert.JSONEq(t, `[]`, w.Body.String())

		// categories
		w = app.Do(t, token, http.MethodGet, "/categories", nil)
		assert.JSONEq(t, `["Eletrônicos","Informática"]`, w.Body.String())

		// update
		w = app.Do(t, token, http.MethodPut, "/products/"+created.ID, controller.ProductRequest{
			Description:       "Notebook Dell Inspiron 15",
			Quantity:          5,
			SuggestedQuantity: 4,
			Price:             5000,
			Categories:        []string{"Informática"},
		})
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		updated := decodeJSON[controller.ProductResponse](t, w)
		assert.Equal(t, 1000.0, updated.PriceUSD)
		assert.Equal(t, "yellow", updated.Status)

		// delete
		w = app.Do(t, token, http.MethodDelete, "/products/"+created.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		w = app.Do(t, token, http.MethodDelete, "/products/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		// history keeps every step
		w = app.Do(t, token, http.MethodGet, "/products/history?product_id="+created.ID, nil)
		require.Equal(t, http.StatusOK, w.Code)
		history := decodeJSON[[]controller.HistoryEntryResponse](t, w)
		require.Len(t, history, 3)
		assert.Equal(t, "removed", history[0].Action)
		assert.Equal(t, "updated", history[1].Action)
		assert.Equal(t, "created", history[2].Action)
	})

	t.Run("products are invisible to other owners", func(t *testing.T) {
		testDB.TruncateTables(t)
		alice := app.Login(t, "alice@example.com")
		bob := app.Login(t, "bob@example.com")

		created := createProduct(t, app, alice, controller.ProductRequest{Description: "Cadeira", Quantity: 2, Price: 300})

		w := app.Do(t, bob, http.MethodGet, "/products", nil)
		assert.JSONEq(t, `[]`, w.Body.String())

		w = app.Do(t, bob, http.MethodDelete, "/products/"+created.ID, nil)
		assert.Equal(t, http.StatusNotFound, w.Code)

		w = app.Do(t, bob, http.MethodPost, "/products/purchase", controller.PurchaseRequest{ProductID: created.ID, Quantity: 1})
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("authentication", func(t *testing.T) {
		testDB.TruncateTables(t)

		w := app.Do(t, "", http.MethodGet, "/products", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = app.Do(t, "", http.MethodPost, "/auth/register", controller.CredentialsRequest{Username: "carol", Password: "password123"})
		require.Equal(t, http.StatusCreated, w.Code)
		w = app.Do(t, "", http.MethodPost, "/auth/register", controller.CredentialsRequest{Username: "carol", Password: "password123"})
		assert.Equal(t, http.StatusConflict, w.Code)

		w = app.Do(t, "", http.MethodPost, "/auth/login", controller.CredentialsRequest{Username: "carol", Password: "wrong-password"})
		assert.Equal(t, http.StatusUnauthorized, w.Code)

		w = app.Do(t, "", http.MethodPost, "/auth/login", controller.CredentialsRequest{Username: "carol", Password: "password123"})
		require.Equal(t, http.StatusOK, w.Code)
		token := decodeJSON[controller.TokenResponse](t, w)
		assert.Equal(t, "bearer", token.TokenType)

		w = app.Do(t, token.AccessToken, http.MethodGet, "/users/me", nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "carol", decodeJSON[controller.UserResponse](t, w).Username)
	})

	t.Run("CORS headers on API responses", func(t *testing.T) {
		w := app.Do(t, "", http.MethodGet, "/ping", nil)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "Content-Type, Authorization", w.Header().Get("Access-Control-Allow-Headers"))
	})
}
