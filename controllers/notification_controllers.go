package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tablebook/restaurant-app/models"
	"github.com/tablebook/restaurant-app/utils"
	"gorm.io/gorm"
)

type NotificationController struct {
	DB *gorm.DB
}

func NewNotificationController(db *gorm.DB) *NotificationController {
	return &NotificationController{DB: db}
}

// GetAllNotifications -> newest first, optionally only unread or for one
// role.
func (nc *NotificationController) GetAllNotifications(c *gin.Context) {
	query := nc.DB.Model(&models.Notification{})
	if c.Query("unread") == "true" {
		query = query.Where("read_at IS NULL")
	}
	if role := c.Query("role"); role != "" {
		query = query.Where("role = ?", role)
	}

	var notifications []models.Notification
	if err := query.Order("created_at DESC").Limit(100).Find(&notifications).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notifications", notifications)
}

// MarkNotificationRead
func (nc *NotificationController) MarkNotificationRead(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("notif_id"))

	var notif models.Notification
	if err := nc.DB.First(&notif, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("notification %d not found", id))
		return
	}

	now := time.Now()
	notif.ReadAt = &now
	if err := nc.DB.Save(&notif).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Notification marked as read", notif)
}
