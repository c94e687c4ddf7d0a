package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avdonin/foodreel/internal/middleware/auth"
	"github.com/avdonin/foodreel/internal/models"
	"github.com/avdonin/foodreel/internal/storage"
)

type VideoHandler struct {
	DB      *gorm.DB
	Uploads *storage.FileStore
}

const feedSize = 10

// ShareVideo stores an owner's uploaded clip and creates the video record.
func (h *VideoHandler) ShareVideo(c echo.Context) error {
	owner := auth.AccountFromContext(c)
	if owner == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	title := c.FormValue("title")
	description := c.FormValue("description")
	if title == "" || description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "title and description are required")
	}

	file, err := c.FormFile("videoFile")
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "video file is required")
	}
	videoURL, err := h.Uploads.Save(file)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	video := models.Video{
		Title:       title,
		Description: description,
		VideoURL:    videoURL,
		OwnerID:     owner.ID,
	}
	if err := h.DB.Create(&video).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, echo.Map{"video": video})
}

type feedVideo struct {
	models.Video
	OwnerName   string `json:"owner_name"`
	OwnerAvatar string `json:"owner_avatar"`
}

// GetFeed returns the latest clips with owner display data attached.
func (h *VideoHandler) GetFeed(c echo.Context) error {
	var videos []feedVideo
	err := h.DB.Table("videos").
		Select("videos.*, accounts.name AS owner_name, accounts.avatar_url AS owner_avatar").
		Joins("JOIN accounts ON accounts.id = videos.owner_id").
		Order("videos.created_at DESC").
		Limit(feedSize).
		Scan(&videos).Error
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"videos": videos})
}

func (h *VideoHandler) GetOwnerVideos(c echo.Context) error {
	owner := auth.AccountFromContext(c)
	if owner == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	var videos []models.Video
	if err := h.DB.Where("owner_id = ?", owner.ID).Order("id ASC").Find(&videos).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, echo.Map{"videos": videos})
}

func (h *VideoHandler) DeleteVideo(c echo.Context) error {
	owner := auth.AccountFromContext(c)
	if owner == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid video id")
	}

	var video models.Video
	if err := h.DB.Where("id = ? AND owner_id = ?", id, owner.ID).First(&video).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "video not found or access denied")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.Delete(&video).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if err := h.DB.Where("video_id = ?", video.ID).Delete(&models.Like{}).Error; err != nil {
		c.Logger().Errorf("like cleanup error: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "video deleted"})
}
