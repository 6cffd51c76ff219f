package handlers

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/farmconnect-dev/farmconnect/db"
	"github.com/farmconnect-dev/farmconnect/internal/auth"
	"github.com/farmconnect-dev/farmconnect/internal/models"
	"github.com/farmconnect-dev/farmconnect/internal/relay"
	"github.com/farmconnect-dev/farmconnect/internal/types"
	"github.com/farmconnect-dev/farmconnect/internal/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

const alertListLimit = 50

type CreateAlertRequest struct {
	Message  string `json:"message" binding:"required"`
	Type     string `json:"type"`
	Priority string `json:"priority"`
}

type AlertRow struct {
	ID        uint      `json:"id"`
	Message   string    `json:"message"`
	Type      string    `json:"type"`
	Priority  string    `json:"priority"`
	ImagePath string    `json:"image_path,omitempty"`
	UserID    *uint     `json:"user_id"`
	Username  string    `json:"username"`
	CreatedAt time.Time `json:"created_at"`
}

func alertRow(alert models.Alert, username string) AlertRow {
	if username == "" {
		username = "Admin"
	}

	return AlertRow{
		ID:        alert.ID,
		Message:   alert.Message,
		Type:      alert.Type,
		Priority:  alert.Priority,
		ImagePath: alert.ImagePath,
		UserID:    alert.UserID,
		Username:  username,
		CreatedAt: alert.CreatedAt,
	}
}

func CreateAlert(hub *relay.Hub) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		currentUser, err := utils.GetCurrentUser(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		if !auth.CanCreateAlert(currentUser.Role) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Only farmers or admins can create alerts"})
			return
		}

		var req CreateAlertRequest

		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Message is required"})
			return
		}

		if req.Type == "" {
			req.Type = "other"
		}

		if req.Priority == "" {
			req.Priority = "normal"
		}

		alert := models.Alert{
			Message:  req.Message,
			Type:     req.Type,
			Priority: req.Priority,
		}

		// Admin alerts are global: stored without a creator and shown as "Admin".
		username := currentUser.Username

		if currentUser.Role == types.RoleAdmin {
			username = ""
		} else {
			userID := currentUser.ID
			alert.UserID = &userID
		}

		if err := db.DB.Create(&alert).Error; err != nil {
			log.Printf("Failed to create alert: %v", err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating alert"})
			return
		}

		row := alertRow(alert, username)

		hub.Broadcast("newAlert", row)

		ctx.JSON(http.StatusCreated, gin.H{"message": "Alert created!", "alert": row})
	}
}

func ListAlerts(ctx *gin.Context) {
	var alerts []models.Alert

	if err := db.DB.Preload("User").
		Order("created_at DESC").
		Limit(alertListLimit).
		Find(&alerts).Error; err != nil {
		log.Printf("Failed to list alerts: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	rows := make([]AlertRow, 0, len(alerts))

	for _, alert := range alerts {
		username := ""

		if alert.User != nil {
			username = alert.User.Username
		}

		rows = append(rows, alertRow(alert, username))
	}

	ctx.JSON(http.StatusOK, rows)
}

func DeleteAlert(hub *relay.Hub) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		currentUser, err := utils.GetCurrentUser(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		alertID, err := utils.GetIDParam(ctx, "id")

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var alert models.Alert

		if err := db.DB.First(&alert, alertID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			} else {
				log.Printf("Failed to fetch alert %d: %v", alertID, err)
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
			}
			return
		}

		if !auth.CanDeleteAlert(currentUser.ID, currentUser.Role, alert.UserID) {
			ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
			return
		}

		if err := db.DB.Delete(&alert).Error; err != nil {
			log.Printf("Failed to delete alert %d: %v", alertID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Delete failed"})
			return
		}

		hub.Broadcast("alertDeleted", gin.H{"id": alertID})

		ctx.JSON(http.StatusOK, gin.H{"message": "Alert deleted"})
	}
}
