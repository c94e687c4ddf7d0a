package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/avdonin/foodreel/internal/models"
	"github.com/avdonin/foodreel/internal/service"
)

type cartResp struct {
	CartItems []service.CartEntry `json:"cart_items"`
}

func TestGetCartEmpty(t *testing.T) {
	env := newTestEnv(t)
	account := env.createAccount("a@x.com", models.RoleUser)

	rec, c := env.doJSONRequest(http.MethodGet, "/cart", nil)
	asAccount(c, account)
	require.NoError(t, env.C.GetCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp cartResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.CartItems, 0)
}

func TestAddToCart(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createAccount("owner@x.com", models.RoleOwner)
	account := env.createAccount("a@x.com", models.RoleUser)
	product := env.createProduct(owner.ID)

	rec, c := env.doJSONRequest(http.MethodPost, "/cart/add", map[string]interface{}{
		"product_id": product.ID,
		"qty":        2,
	})
	asAccount(c, account)
	require.NoError(t, env.C.AddToCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp cartResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.CartItems, 1)
	require.Equal(t, product.ID, resp.CartItems[0].ProductID)
	require.Equal(t, 2, resp.CartItems[0].Quantity)
	require.Equal(t, "margherita", resp.CartItems[0].Name)
}

func TestAddToCartUnknownProduct(t *testing.T) {
	env := newTestEnv(t)
	account := env.createAccount("a@x.com", models.RoleUser)

	_, c := env.doJSONRequest(http.MethodPost, "/cart/add", map[string]interface{}{
		"product_id": 9999,
		"qty":        1,
	})
	asAccount(c, account)
	err := env.C.AddToCart(c)
	require.Equal(t, http.StatusNotFound, httpCode(t, err))
}

func TestAddToCartZeroQty(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createAccount("owner@x.com", models.RoleOwner)
	account := env.createAccount("a@x.com", models.RoleUser)
	product := env.createProduct(owner.ID)

	_, c := env.doJSONRequest(http.MethodPost, "/cart/add", map[string]interface{}{
		"product_id": product.ID,
		"qty":        0,
	})
	asAccount(c, account)
	err := env.C.AddToCart(c)
	require.Equal(t, http.StatusBadRequest, httpCode(t, err))
}

func TestRemoveFromCart(t *testing.T) {
	env := newTestEnv(t)
	owner := env.createAccount("owner@x.com", models.RoleOwner)
	account := env.createAccount("a@x.com", models.RoleUser)
	product := env.createProduct(owner.ID)

	require.NoError(t, env.DB.Create(&models.CartItem{
		AccountID: account.ID,
		ProductID: product.ID,
		Quantity:  3,
	}).Error)

	rec, c := env.doJSONRequest(http.MethodDelete, fmt.Sprintf("/cart/%d", product.ID), nil)
	c.SetParamNames("productId")
	c.SetParamValues(fmt.Sprint(product.ID))
	asAccount(c, account)
	require.NoError(t, env.C.RemoveFromCart(c))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp cartResp
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.CartItems, 0)

	// removing again still succeeds with the same result
	rec2, c2 := env.doJSONRequest(http.MethodDelete, fmt.Sprintf("/cart/%d", product.ID), nil)
	c2.SetParamNames("productId")
	c2.SetParamValues(fmt.Sprint(product.ID))
	asAccount(c2, account)
	require.NoError(t, env.C.RemoveFromCart(c2))
	require.Equal(t, http.StatusOK, rec2.Code)
}

func TestCartRequiresAuth(t *testing.T) {
	env := newTestEnv(t)

	_, c := env.doJSONRequest(http.MethodGet, "/cart", nil)
	err := env.C.GetCart(c)
	require.Equal(t, http.StatusUnauthorized, httpCode(t, err))
}
