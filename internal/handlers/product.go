package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avdonin/foodreel/internal/es"
	"github.com/avdonin/foodreel/internal/middleware/auth"
	"github.com/avdonin/foodreel/internal/models"
	"github.com/avdonin/foodreel/internal/mykafka"
	"github.com/avdonin/foodreel/internal/service"
	"github.com/avdonin/foodreel/internal/storage"
)

type ProductHandler struct {
	DB       *gorm.DB
	Cart     *service.CartService
	Producer *mykafka.Producer
	Uploads  *storage.FileStore
	ES       *elasticsearch.Client
}

// AddProduct creates a product from multipart form data with a required
// image. Only owners reach this handler.
func (h *ProductHandler) AddProduct(c echo.Context) error {
	owner := auth.AccountFromContext(c)
	if owner == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	name := c.FormValue("name")
	prodType := c.FormValue("type")
	category := c.FormValue("category")
	if name == "" || prodType == "" || category == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name, type and category are required")
	}

	price, err := strconv.ParseFloat(c.FormValue("price"), 64)
	if err != nil || price < 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid price")
	}
	qty, err := strconv.ParseUint(c.FormValue("qty"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid qty")
	}

	file, err := c.FormFile("image")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "image file is required")
	}
	imageURL, err := h.Uploads.Save(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	product := models.Product{
		Name:     name,
		Price:    price,
		Quantity: uint(qty),
		Type:     prodType,
		Category: category,
		ImageURL: imageURL,
		OwnerID:  owner.ID,
	}
	if err := h.DB.Create(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := es.IndexProduct(c.Request().Context(), h.ES, &product); err != nil {
		c.Logger().Errorf("ES index error: %v", err)
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]interface{}{
		"type":      "product_created",
		"productID": product.ID,
		"ownerID":   owner.ID,
		"name":      product.Name,
	})

	return c.JSON(http.StatusCreated, echo.Map{"product": product})
}

func (h *ProductHandler) GetProducts(c echo.Context) error {
	var products []models.Product
	if err := h.DB.Order("id ASC").Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

func (h *ProductHandler) GetOwnerProducts(c echo.Context) error {
	owner := auth.AccountFromContext(c)
	if owner == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	var products []models.Product
	if err := h.DB.Where("owner_id = ?", owner.ID).Order("id ASC").Find(&products).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"products": products})
}

// DeleteProduct removes an owner's product. A 404 covers both an unknown
// product and a product belonging to someone else. The product is also
// pulled from every cart and de-indexed, best effort.
func (h *ProductHandler) DeleteProduct(c echo.Context) error {
	owner := auth.AccountFromContext(c)
	if owner == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid product id")
	}

	var product models.Product
	if err := h.DB.Where("id = ? AND owner_id = ?", id, owner.ID).First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "product not found or access denied")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&product).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.Cart.PullProduct(c.Request().Context(), product.ID); err != nil {
		c.Logger().Errorf("cart pull error: %v", err)
	}
	if err := es.DeleteProduct(c.Request().Context(), h.ES, product.ID); err != nil {
		c.Logger().Errorf("ES delete error: %v", err)
	}

	publish(c, h.Producer, "product_events", fmt.Sprint(product.ID), map[string]interface{}{
		"type":      "product_deleted",
		"productID": product.ID,
		"ownerID":   owner.ID,
	})

	return c.JSON(http.StatusOK, echo.Map{"message": "product deleted"})
}
