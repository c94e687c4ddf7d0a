package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/avdonin/foodreel/internal/middleware/auth"
	"github.com/avdonin/foodreel/internal/mykafka"
	"github.com/avdonin/foodreel/internal/service"
)

type CartHandler struct {
	Cart     *service.CartService
	Producer *mykafka.Producer
}

func (h *CartHandler) GetCart(c echo.Context) error {
	account := auth.AccountFromContext(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	entries, err := h.Cart.Get(c.Request().Context(), account.ID)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, echo.Map{"cart_items": entries})
}

// AddToCart adds or adjusts a single entry; the sign of qty decides the
// direction, so the client uses one endpoint for add, increment and
// decrement.
func (h *CartHandler) AddToCart(c echo.Context) error {
	account := auth.AccountFromContext(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	var req struct {
		ProductID uint `json:"product_id"`
		Quantity  int  `json:"qty"`
	}
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	entries, err := h.Cart.AddOrAdjust(c.Request().Context(), account.ID, req.ProductID, req.Quantity)
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(account.ID), map[string]interface{}{
		"type":      "cart_adjusted",
		"accountID": account.ID,
		"productID": req.ProductID,
		"delta":     req.Quantity,
	})

	return c.JSON(http.StatusOK, echo.Map{"cart_items": entries})
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	account := auth.AccountFromContext(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	productID, err := strconv.ParseUint(c.Param("productId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	entries, err := h.Cart.Remove(c.Request().Context(), account.ID, uint(productID))
	if err != nil {
		return httpError(err)
	}

	publish(c, h.Producer, "cart_events", fmt.Sprint(account.ID), map[string]interface{}{
		"type":      "cart_item_removed",
		"accountID": account.ID,
		"productID": productID,
	})

	return c.JSON(http.StatusOK, echo.Map{"cart_items": entries})
}
