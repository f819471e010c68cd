package controllers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/tablebook/restaurant-app/models"
	"github.com/tablebook/restaurant-app/services"
	"github.com/tablebook/restaurant-app/utils"
	"gorm.io/gorm"
)

type BookingController struct {
	DB      *gorm.DB
	Service *services.BookingService
}

func NewBookingController(db *gorm.DB, service *services.BookingService) *BookingController {
	return &BookingController{DB: db, Service: service}
}

const dateLayout = "2006-01-02"

// CreateBooking -> public endpoint, attaches the customer account when a
// token was presented.
func (bc *BookingController) CreateBooking(c *gin.Context) {
	var req struct {
		CustomerName    string                    `json:"customer_name" binding:"required"`
		CustomerPhone   string                    `json:"customer_phone" binding:"required"`
		CustomerEmail   string                    `json:"customer_email"`
		Date            string                    `json:"date" binding:"required"`
		Time            string                    `json:"time" binding:"required"`
		NumberOfGuests  int                       `json:"number_of_guests" binding:"required"`
		Notes           string                    `json:"notes"`
		PreOrderedItems []services.PreOrderInput `json:"pre_ordered_items"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	date, err := time.Parse(dateLayout, req.Date)
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid date %q, expected YYYY-MM-DD", req.Date))
		return
	}

	input := services.CreateBookingInput{
		CustomerName:    req.CustomerName,
		CustomerPhone:   req.CustomerPhone,
		CustomerEmail:   req.CustomerEmail,
		Date:            date,
		Time:            req.Time,
		NumberOfGuests:  req.NumberOfGuests,
		Notes:           req.Notes,
		PreOrderedItems: req.PreOrderedItems,
	}
	if userID, exists := c.Get("user_id"); exists {
		if id, ok := userID.(uint); ok {
			input.CustomerID = &id
		}
	}

	booking, err := bc.Service.CreateBooking(input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Booking confirmed"
	if booking.Status == models.BookingPending {
		message = "Booking received, waiting for table assignment"
	}
	utils.RespondJSON(c, http.StatusCreated, message, booking)
}

// GetAllBookings -> staff listing with date/status filters, search and
// pagination.
func (bc *BookingController) GetAllBookings(c *gin.Context) {
	query := bc.DB.Model(&models.Booking{})

	if start, end := c.Query("start_date"), c.Query("end_date"); start != "" && end != "" {
		startDate, err1 := time.Parse(dateLayout, start)
		endDate, err2 := time.Parse(dateLayout, end)
		if err1 != nil || err2 != nil {
			utils.RespondAppError(c, utils.NewValidationError("invalid date range, expected YYYY-MM-DD"))
			return
		}
		query = query.Where("date >= ? AND date <= ?", startDate, endDate)
	} else if day := c.Query("date"); day != "" {
		date, err := time.Parse(dateLayout, day)
		if err != nil {
			utils.RespondAppError(c, utils.NewValidationError("invalid date %q, expected YYYY-MM-DD", day))
			return
		}
		query = query.Where("date >= ? AND date < ?", date, date.AddDate(0, 0, 1))
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := c.Query("search"); search != "" {
		like := "%" + search + "%"
		query = query.Where("customer_name LIKE ? OR customer_phone LIKE ?", like, like)
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = 10
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	var bookings []models.Booking
	err := query.
		Order("date DESC, time DESC").
		Offset((page - 1) * limit).
		Limit(limit).
		Preload("Customer").
		Preload("Table").
		Preload("Staff").
		Preload("PreOrderedItems.Menu").
		Find(&bookings).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "List of bookings", gin.H{
		"bookings":     bookings,
		"total":        total,
		"total_pages":  (total + int64(limit) - 1) / int64(limit),
		"current_page": page,
	})
}

// GetMyBookings -> bookings belonging to the logged-in customer.
func (bc *BookingController) GetMyBookings(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	var bookings []models.Booking
	err := bc.DB.
		Where("customer_id = ?", userID).
		Order("date DESC, time DESC").
		Preload("Table").
		Preload("PreOrderedItems.Menu").
		Find(&bookings).Error
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "My bookings", bookings)
}

// GetBookingByID -> detail; customers may only read their own bookings.
func (bc *BookingController) GetBookingByID(c *gin.Context) {
	id := c.Param("id")

	var booking models.Booking
	err := bc.DB.
		Preload("Customer").
		Preload("Table").
		Preload("Staff").
		Preload("PreOrderedItems.Menu").
		First(&booking, id).Error
	if err != nil {
		utils.RespondAppError(c, utils.NewNotFoundError("booking %s not found", id))
		return
	}

	if role, _ := c.Get("role"); role == "customer" {
		userID, _ := currentUserID(c)
		if booking.CustomerID == nil || *booking.CustomerID != userID {
			utils.RespondAppError(c, utils.NewForbiddenError("you are not allowed to view this booking"))
			return
		}
	}

	utils.RespondJSON(c, http.StatusOK, "Booking detail", booking)
}

// UpdateBooking -> staff edit of date/time/table/party size and contact
// fields; schedule changes are conflict-checked by the service.
func (bc *BookingController) UpdateBooking(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid booking id"))
		return
	}

	var req struct {
		CustomerName   *string               `json:"customer_name"`
		CustomerPhone  *string               `json:"customer_phone"`
		CustomerEmail  *string               `json:"customer_email"`
		Date           *string               `json:"date"`
		Time           *string               `json:"time"`
		NumberOfGuests *int                  `json:"number_of_guests"`
		Notes          *string               `json:"notes"`
		TableID        *uint                 `json:"table_id"`
		Status         *models.BookingStatus `json:"status"`
		StaffID        *uint                 `json:"staff_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	input := services.UpdateBookingInput{
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		CustomerEmail:  req.CustomerEmail,
		Time:           req.Time,
		NumberOfGuests: req.NumberOfGuests,
		Notes:          req.Notes,
		TableID:        req.TableID,
		Status:         req.Status,
		StaffID:        req.StaffID,
	}
	if req.Date != nil {
		date, err := time.Parse(dateLayout, *req.Date)
		if err != nil {
			utils.RespondAppError(c, utils.NewValidationError("invalid date %q, expected YYYY-MM-DD", *req.Date))
			return
		}
		input.Date = &date
	}

	booking, err := bc.Service.UpdateBooking(uint(bookingID), input)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Booking updated", booking)
}

// UpdateBookingStatus -> staff transition (confirm, complete, cancel,
// no-show).
func (bc *BookingController) UpdateBookingStatus(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid booking id"))
		return
	}

	var req struct {
		Status  models.BookingStatus `json:"status" binding:"required"`
		TableID *uint                `json:"table_id"`
		StaffID *uint                `json:"staff_id"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	booking, err := bc.Service.UpdateBookingStatus(uint(bookingID), req.Status, req.TableID, req.StaffID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Booking status updated", booking)
}

// ConfirmBooking -> assigns a table (automatically, or the explicit one
// supplied by staff) and confirms.
func (bc *BookingController) ConfirmBooking(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid booking id"))
		return
	}

	var req struct {
		TableID *uint `json:"table_id"`
	}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.RespondError(c, http.StatusBadRequest, err)
			return
		}
	}

	booking, err := bc.Service.ConfirmBooking(uint(bookingID), req.TableID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	message := "Booking confirmed"
	if booking.Status == models.BookingPending {
		message = "No table could be assigned, booking remains pending"
	}
	utils.RespondJSON(c, http.StatusOK, message, booking)
}

// CancelByCustomer -> customer cancels their own booking within the
// allowed lead time.
func (bc *BookingController) CancelByCustomer(c *gin.Context) {
	bookingID, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		utils.RespondAppError(c, utils.NewValidationError("invalid booking id"))
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		utils.RespondError(c, http.StatusUnauthorized, errors.New("user id not found in context"))
		return
	}

	booking, err := bc.Service.CancelByCustomer(uint(bookingID), userID)
	if err != nil {
		utils.RespondAppError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Booking cancelled", booking)
}

func currentUserID(c *gin.Context) (uint, bool) {
	value, exists := c.Get("user_id")
	if !exists {
		return 0, false
	}
	id, ok := value.(uint)
	return id, ok
}
