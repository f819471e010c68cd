package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tablebook/restaurant-app/models"
	"github.com/tablebook/restaurant-app/utils"
	"gorm.io/gorm"
)

type CleaningLogController struct {
	DB *gorm.DB
}

func NewCleaningLogController(db *gorm.DB) *CleaningLogController {
	return &CleaningLogController{DB: db}
}

// GetAllCleaningLogs
func (clc *CleaningLogController) GetAllCleaningLogs(c *gin.Context) {
	var logs []models.CleaningLog
	if err := clc.DB.Preload("Cleaner").Preload("Table").Find(&logs).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "All cleaning logs", logs)
}

// CreateCleaningLog
func (clc *CleaningLogController) CreateCleaningLog(c *gin.Context) {
	var req struct {
		CleanerID uint   `json:"cleaner_id" binding:"required"`
		TableID   uint   `json:"table_id" binding:"required"`
		Status    string `json:"status"` // pending, in_progress, done
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	logEntry := models.CleaningLog{
		CleanerID: req.CleanerID,
		TableID:   req.TableID,
		Status:    "pending",
	}
	if req.Status != "" {
		logEntry.Status = req.Status
	}

	if err := clc.DB.Create(&logEntry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Cleaning log created", logEntry)
}

// UpdateCleaningLog -> a finished cleaning flips the table back to
// available when the transition is legal.
func (clc *CleaningLogController) UpdateCleaningLog(c *gin.Context) {
	id, _ := strconv.Atoi(c.Param("clean_id"))

	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var logEntry models.CleaningLog
	if err := clc.DB.First(&logEntry, id).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("cleaning log %d not found", id))
		return
	}

	logEntry.Status = req.Status
	if err := clc.DB.Save(&logEntry).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if req.Status == "done" {
		var table models.Table
		if err := clc.DB.First(&table, logEntry.TableID).Error; err == nil {
			if models.CanTransitionTable(table.Status, models.TableAvailable) {
				clc.DB.Model(&table).Updates(map[string]interface{}{
					"status":           models.TableAvailable,
					"current_order_id": nil,
				})
			}
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Cleaning log updated", logEntry)
}
