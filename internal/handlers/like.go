package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/avdonin/foodreel/internal/middleware/auth"
	"github.com/avdonin/foodreel/internal/models"
)

type LikeHandler struct {
	DB *gorm.DB
}

// ToggleLike flips the caller's like on a video and keeps the denormalized
// counter in step. Both sides run in one transaction with an atomic counter
// update.
func (h *LikeHandler) ToggleLike(c echo.Context) error {
	account := auth.AccountFromContext(c)
	if account == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "unauthorized request")
	}

	videoID, err := strconv.ParseUint(c.Param("videoId"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid video id")
	}

	var video models.Video
	if err := h.DB.First(&video, videoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "video not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	var isLiked bool
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		var existing models.Like
		err := tx.Where("video_id = ? AND account_id = ?", videoID, account.ID).First(&existing).Error
		switch {
		case err == nil:
			if err := tx.Delete(&existing).Error; err != nil {
				return err
			}
			isLiked = false
			return tx.Model(&models.Video{}).Where("id = ?", videoID).
				Update("likes_count", gorm.Expr("likes_count - 1")).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			like := models.Like{VideoID: uint(videoID), AccountID: account.ID}
			if err := tx.Create(&like).Error; err != nil {
				return err
			}
			isLiked = true
			return tx.Model(&models.Video{}).Where("id = ?", videoID).
				Update("likes_count", gorm.Expr("likes_count + 1")).Error
		default:
			return err
		}
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	if err := h.DB.First(&video, videoID).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, echo.Map{
		"isLiked":    isLiked,
		"likesCount": video.LikesCount,
	})
}
