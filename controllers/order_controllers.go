package controllers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/tablebook/restaurant-app/events"
	"github.com/tablebook/restaurant-app/models"
	"github.com/tablebook/restaurant-app/utils"
	"gorm.io/gorm"
)

// OrderController carries the slice of the order flow that touches table
// state: opening an order seats the party and occupies the table,
// completing it sends the table to cleaning. Pricing and payment live in
// the payment system.
type OrderController struct {
	DB       *gorm.DB
	Notifier events.Notifier
}

func NewOrderController(db *gorm.DB, notifier events.Notifier) *OrderController {
	return &OrderController{DB: db, Notifier: notifier}
}

// CreateOrder -> opens an order on a table and marks it occupied.
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req struct {
		TableID uint  `json:"table_id" binding:"required"`
		StaffID *uint `json:"staff_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := oc.DB.First(&table, req.TableID).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %d not found", req.TableID))
		return
	}
	if !models.CanTransitionTable(table.Status, models.TableOccupied) {
		utils.RespondAppError(c, utils.NewStateError("table %s is %s and cannot take an order", table.Name, table.Status))
		return
	}
	if table.CurrentOrderID != nil {
		utils.RespondAppError(c, utils.NewStateError("table %s already has an active order", table.Name))
		return
	}

	order := models.Order{
		TableID: table.ID,
		StaffID: req.StaffID,
		Status:  "open",
	}
	if err := oc.DB.Create(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	err := oc.DB.Model(&table).Updates(map[string]interface{}{
		"status":           models.TableOccupied,
		"current_order_id": order.ID,
	}).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if oc.Notifier != nil {
		oc.Notifier.Notify(events.AudienceAll, events.EventOrderUpdate, order)
	}
	utils.InfoLogger.Printf("Order %d opened on table %s", order.ID, table.Name)
	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrderByID -> order detail.
func (oc *OrderController) GetOrderByID(c *gin.Context) {
	var order models.Order
	if err := oc.DB.Preload("Table").First(&order, c.Param("order_id")).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("order %s not found", c.Param("order_id")))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}

// CompleteOrder -> checkout: the order closes, the table moves to cleaning
// and its order reference is cleared in the same update.
func (oc *OrderController) CompleteOrder(c *gin.Context) {
	orderID, err := strconv.Atoi(c.Param("order_id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid order id"))
		return
	}

	var order models.Order
	if err := oc.DB.First(&order, orderID).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("order %d not found", orderID))
		return
	}
	if order.Status != "open" {
		utils.RespondAppError(c, utils.NewStateError("order %d is already %s", order.ID, order.Status))
		return
	}

	order.Status = "completed"
	if err := oc.DB.Save(&order).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	err = oc.DB.Model(&models.Table{}).
		Where("id = ?", order.TableID).
		Updates(map[string]interface{}{
			"status":           models.TableNeedsCleaning,
			"current_order_id": nil,
		}).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	if oc.Notifier != nil {
		oc.Notifier.Notify("cleaner", events.EventTableUpdate, gin.H{
			"table_id": order.TableID,
			"status":   models.TableNeedsCleaning,
		})
	}
	utils.InfoLogger.Printf("Order %d completed, table %d sent to cleaning", order.ID, order.TableID)
	utils.RespondJSON(c, http.StatusOK, "Order completed", order)
}
