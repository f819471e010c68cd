package controllers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tablebook/restaurant-app/events"
	"github.com/tablebook/restaurant-app/models"
	"github.com/tablebook/restaurant-app/services"
	"github.com/tablebook/restaurant-app/utils"
	"gorm.io/gorm"
)

type TableController struct {
	DB           *gorm.DB
	Availability *services.AvailabilityService
	Bookings     *services.BookingService
	Notifier     events.Notifier
}

func NewTableController(db *gorm.DB, availability *services.AvailabilityService, bookings *services.BookingService, notifier events.Notifier) *TableController {
	return &TableController{DB: db, Availability: availability, Bookings: bookings, Notifier: notifier}
}

// CreateTable -> staff add a new table.
func (tc *TableController) CreateTable(c *gin.Context) {
	var req struct {
		Name     string `json:"name" binding:"required"`
		Capacity int    `json:"capacity" binding:"required"`
		Location string `json:"location"`
		Status   string `json:"status"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}
	if req.Capacity < 1 {
		utils.RespondAppError(c, utils.NewValidationError("capacity must be at least 1"))
		return
	}

	table := models.Table{
		Name:     req.Name,
		Capacity: req.Capacity,
		Location: req.Location,
		Status:   models.TableAvailable,
	}
	if req.Status != "" {
		status := models.TableStatus(req.Status)
		if !models.IsValidTableStatus(status) {
			utils.RespondAppError(c, utils.NewValidationError("unknown table status %q", req.Status))
			return
		}
		table.Status = status
	}

	if err := tc.DB.Create(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.broadcast(events.EventTableCreate, table)
	utils.InfoLogger.Printf("New table created: %s (capacity=%d, status=%s)", table.Name, table.Capacity, table.Status)
	utils.RespondJSON(c, http.StatusCreated, "Table created successfully", table)
}

// GetAllTables -> list with optional status/location filters.
func (tc *TableController) GetAllTables(c *gin.Context) {
	query := tc.DB.Model(&models.Table{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if location := c.Query("location"); location != "" {
		query = query.Where("location LIKE ?", "%"+location+"%")
	}

	var tables []models.Table
	if err := query.Order("name ASC").Find(&tables).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "List of tables", tables)
}

// GetTableByID -> detail of one table.
func (tc *TableController) GetTableByID(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %s not found", c.Param("table_id")))
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Table detail", table)
}

// UpdateTable -> edit name/capacity/location.
func (tc *TableController) UpdateTable(c *gin.Context) {
	var req struct {
		Name     *string `json:"name"`
		Capacity *int    `json:"capacity"`
		Location *string `json:"location"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %s not found", c.Param("table_id")))
		return
	}

	if req.Name != nil {
		table.Name = *req.Name
	}
	if req.Capacity != nil {
		if *req.Capacity < 1 {
			utils.RespondAppError(c, utils.NewValidationError("capacity must be at least 1"))
			return
		}
		table.Capacity = *req.Capacity
	}
	if req.Location != nil {
		table.Location = *req.Location
	}

	if err := tc.DB.Save(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.broadcast(events.EventTableUpdate, table)
	utils.RespondJSON(c, http.StatusOK, "Table updated", table)
}

// DeleteTable -> remove a table; rejected while it is occupied, reserved or
// still holds an active order.
func (tc *TableController) DeleteTable(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %s not found", c.Param("table_id")))
		return
	}

	if table.CurrentOrderID != nil {
		utils.RespondAppError(c, utils.NewStateError("table %s still has an active order", table.Name))
		return
	}
	if table.Status == models.TableOccupied || table.Status == models.TableReserved {
		utils.RespondAppError(c, utils.NewStateError("table %s is %s and cannot be deleted", table.Name, table.Status))
		return
	}

	if err := tc.DB.Delete(&table).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.broadcast(events.EventTableDelete, gin.H{"table_id": table.ID})
	utils.InfoLogger.Printf("Table %s deleted", table.Name)
	utils.RespondJSON(c, http.StatusOK, "Table deleted", gin.H{"id": table.ID})
}

// UpdateTableStatus -> staff status change, checked against the legal
// transition table. Leaving occupied always drops the order reference.
func (tc *TableController) UpdateTableStatus(c *gin.Context) {
	var req struct {
		Status string `json:"status" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	status := models.TableStatus(req.Status)
	if !models.IsValidTableStatus(status) {
		utils.RespondAppError(c, utils.NewValidationError("unknown table status %q", req.Status))
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %s not found", c.Param("table_id")))
		return
	}

	if !models.CanTransitionTable(table.Status, status) {
		utils.RespondAppError(c, utils.NewStateError("cannot move table from %s to %s", table.Status, status))
		return
	}

	updates := map[string]interface{}{"status": status}
	if table.Status == models.TableOccupied && status != models.TableOccupied {
		updates["current_order_id"] = nil
	}
	if err := tc.DB.Model(&table).Updates(updates).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.broadcast(events.EventTableUpdate, table)
	utils.InfoLogger.Printf("Table %s status changed to %s", table.Name, status)
	utils.RespondJSON(c, http.StatusOK, "Table status updated", table)
}

// ClearTable -> staff reset an occupied or just-cleaned table back to
// available, dropping the order reference.
func (tc *TableController) ClearTable(c *gin.Context) {
	var table models.Table
	if err := tc.DB.First(&table, c.Param("table_id")).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %s not found", c.Param("table_id")))
		return
	}

	if table.Status != models.TableOccupied && table.Status != models.TableNeedsCleaning {
		utils.RespondAppError(c, utils.NewStateError("only occupied or needs_cleaning tables can be cleared"))
		return
	}

	err := tc.DB.Model(&table).Updates(map[string]interface{}{
		"status":           models.TableAvailable,
		"current_order_id": nil,
	}).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	tc.broadcast(events.EventTableUpdate, table)
	utils.RespondJSON(c, http.StatusOK, "Table cleared", table)
}

// GetAvailableTables -> public availability query for a slot and party
// size, with conflict annotations on the unavailable ones.
func (tc *TableController) GetAvailableTables(c *gin.Context) {
	date, timeStr, ok := parseSlot(c)
	if !ok {
		return
	}
	partySize, _ := strconv.Atoi(c.Query("partySize"))

	result, err := tc.Availability.GetAvailableTables(date, timeStr, partySize)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Available tables", result)
}

// CheckTableAvailability -> staff check of a single table for a slot.
func (tc *TableController) CheckTableAvailability(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Query("tableId"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("tableId is required"))
		return
	}
	date, timeStr, ok := parseSlot(c)
	if !ok {
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %d not found", tableID))
		return
	}

	conflict, diff, err := tc.Availability.CheckTable(uint(tableID), date, timeStr)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Table availability", gin.H{
		"table":                   table,
		"is_available":            conflict == nil,
		"conflicting_booking":     conflict,
		"time_difference_minutes": diff,
	})
}

// ReserveTable -> explicit manual assignment of this table to a booking.
// The override skips the capacity-first search but conflicts are still
// rejected.
func (tc *TableController) ReserveTable(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid table id"))
		return
	}

	var req struct {
		BookingID uint `json:"booking_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	tid := uint(tableID)
	booking, err := tc.Bookings.ConfirmBooking(req.BookingID, &tid)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tid).Error; err == nil {
		tc.broadcast(events.EventTableUpdate, table)
	}
	utils.RespondJSON(c, http.StatusOK, "Table reserved", gin.H{
		"booking": booking,
	})
}

// GetUpcomingReservations -> active bookings on this table within the next
// 24 hours.
func (tc *TableController) GetUpcomingReservations(c *gin.Context) {
	tableID, err := strconv.Atoi(c.Param("table_id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid table id"))
		return
	}

	var table models.Table
	if err := tc.DB.First(&table, tableID).Error; err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("table %d not found", tableID))
		return
	}

	upcoming, err := tc.Availability.UpcomingReservations(uint(tableID), time.Now())
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Upcoming reservations", upcoming)
}

func (tc *TableController) broadcast(event string, payload interface{}) {
	if tc.Notifier != nil {
		tc.Notifier.Notify(events.AudienceAll, event, payload)
	}
}

// parseSlot reads date + time query params, accepting either separate
// date/time values or a combined dateTime.
func parseSlot(c *gin.Context) (time.Time, string, bool) {
	if dt := c.Query("dateTime"); dt != "" {
		parsed, err := time.Parse("2006-01-02T15:04", dt)
		if err != nil {
			utils.RespondAppError(c, utils.NewValidationError("invalid dateTime %q, expected YYYY-MM-DDTHH:MM", dt))
			return time.Time{}, "", false
		}
		return parsed, parsed.Format("15:04"), true
	}

	dateStr, timeStr := c.Query("date"), c.Query("time")
	if dateStr == "" || timeStr == "" {
		utils.RespondAppError(c, utils.NewValidationError("date and time are required"))
		return time.Time{}, "", false
	}
	date, err := time.Parse(dateLayout, dateStr)
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid date %q, expected YYYY-MM-DD", dateStr))
		return time.Time{}, "", false
	}
	if _, err := services.TimeToMinutes(timeStr); err != nil {
		utils.RespondAppError(c, utils.NewValidationError("%v", err))
		return time.Time{}, "", false
	}
	return date, timeStr, true
}
