package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avdonin/foodreel/internal/hash"
	"github.com/avdonin/foodreel/internal/middleware/auth"
	"github.com/avdonin/foodreel/internal/models"
	"github.com/avdonin/foodreel/internal/mykafka"
	"github.com/avdonin/foodreel/internal/service"
	"github.com/avdonin/foodreel/internal/storage"
)

// AuthHandler serves registration, login and profile endpoints for both
// account roles. The /user/* and /owner/* groups wire the same handler with
// a different role.
type AuthHandler struct {
	DB       *gorm.DB
	Tokens   *service.TokenService
	Producer *mykafka.Producer
	Uploads  *storage.FileStore
}

func (h *AuthHandler) Register(role string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Name     string `json:"name"`
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if strings.TrimSpace(req.Name) == "" || strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "all fields are required")
		}

		var existing models.Account
		err := h.DB.Where("email = ? AND role = ?", req.Email, role).First(&existing).Error
		if err == nil {
			return echo.NewHTTPError(http.StatusBadRequest, "account already exists")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		pwHash, err := hash.HashPassword(req.Password)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		account := models.Account{
			Name:         req.Name,
			Email:        req.Email,
			Role:         role,
			PasswordHash: pwHash,
		}
		if err := h.DB.Create(&account).Error; err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}

		publish(c, h.Producer, "user_events", fmt.Sprint(account.ID), map[string]interface{}{
			"type":      "account_registered",
			"accountID": account.ID,
			"role":      role,
			"email":     account.Email,
		})

		return c.JSON(http.StatusCreated, account)
	}
}

func (h *AuthHandler) Login(role string) echo.HandlerFunc {
	return func(c echo.Context) error {
		var req struct {
			Email    string `json:"email"`
			Password string `json:"password"`
		}
		if err := c.Bind(&req); err != nil {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Password) == "" {
			return echo.NewHTTPError(http.StatusBadRequest, "all fields are required")
		}

		var account models.Account
		if err := h.DB.Where("email = ? AND role = ?", req.Email, role).First(&account).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return echo.NewHTTPError(http.StatusNotFound, "account not found")
			}
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		if !hash.CheckPassword(account.PasswordHash, req.Password) {
			return echo.NewHTTPError(http.StatusBadRequest, "email or password is incorrect")
		}

		pair, err := h.Tokens.IssueTokens(c.Request().Context(), account.ID)
		if err != nil {
			return httpError(err)
		}

		c.SetCookie(CreateCookie("accessToken", pair.AccessToken, "/", pair.AccessExp))
		c.SetCookie(CreateCookie("refreshToken", pair.RefreshToken, "/", pair.RefreshExp))

		publish(c, h.Producer, "user_events", fmt.Sprint(account.ID), map[string]interface{}{
			"type":      "account_logged_in",
			"accountID": account.ID,
			"role":      role,
		})

		return c.JSON(http.StatusOK, echo.Map{
			"account":       account,
			"access_token":  pair.AccessToken,
			"refresh_token": pair.RefreshToken,
		})
	}
}

// LogOut clears the stored refresh token and expires both cookies. Access
// tokens already in the wild stay valid until they expire.
func (h *AuthHandler) LogOut(c echo.Context) error {
	account := auth.AccountFromContext(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	if err := h.Tokens.Revoke(c.Request().Context(), account.ID); err != nil {
		return httpError(err)
	}

	expired := time.Now().Add(-1 * time.Hour)
	c.SetCookie(CreateCookie("accessToken", "", "/", expired))
	c.SetCookie(CreateCookie("refreshToken", "", "/", expired))

	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

// Refresh rotates the token pair from the refreshToken cookie.
func (h *AuthHandler) Refresh(c echo.Context) error {
	cookie, err := c.Cookie("refreshToken")
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "refresh token missing")
	}

	pair, err := h.Tokens.Rotate(c.Request().Context(), cookie.Value)
	if err != nil {
		return httpError(err)
	}

	c.SetCookie(CreateCookie("accessToken", pair.AccessToken, "/", pair.AccessExp))
	c.SetCookie(CreateCookie("refreshToken", pair.RefreshToken, "/", pair.RefreshExp))

	return c.JSON(http.StatusOK, echo.Map{
		"access_token":  pair.AccessToken,
		"refresh_token": pair.RefreshToken,
	})
}

func (h *AuthHandler) Profile(c echo.Context) error {
	account := auth.AccountFromContext(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}
	return c.JSON(http.StatusOK, account)
}

// UpdateProfile accepts multipart form data: optional name, address and an
// avatar file. Absent fields keep their stored values.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	account := auth.AccountFromContext(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	if name := c.FormValue("name"); name != "" {
		account.Name = name
	}
	if address := c.FormValue("address"); address != "" {
		account.Address = address
	}

	if file, err := c.FormFile("avatar"); err == nil {
		url, err := h.Uploads.Save(file)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
		account.AvatarURL = url
	}

	if err := h.DB.Save(account).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, account)
}
