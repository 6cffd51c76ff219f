package handlers

import (
	"errors"
	"log"
	"net/http"

	"github.com/farmconnect-dev/farmconnect/internal/services"
	"github.com/farmconnect-dev/farmconnect/internal/utils"
	"github.com/gin-gonic/gin"
)

type PlaceOrderRequest struct {
	CropID   uint `json:"crop_id" binding:"required"`
	Quantity int  `json:"quantity" binding:"required"`
}

type UpdateOrderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

func orderErrorResponse(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Order or crop not found"})
	case errors.Is(err, services.ErrForbidden):
		ctx.JSON(http.StatusForbidden, gin.H{"error": "Not authorized"})
	case errors.Is(err, services.ErrInsufficientStock):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Not enough quantity available"})
	case errors.Is(err, services.ErrInvalidTransition):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid status transition"})
	case errors.Is(err, services.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
	default:
		log.Printf("Order operation failed: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

func PlaceOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		currentUser, err := utils.GetCurrentUser(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		var req PlaceOrderRequest

		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request"})
			return
		}

		order, err := orders.PlaceOrder(currentUser.ID, req.CropID, req.Quantity)

		if err != nil {
			orderErrorResponse(ctx, err)
			return
		}

		ctx.JSON(http.StatusCreated, gin.H{
			"message":      "Order placed successfully!",
			"order_id":     order.ID,
			"order_number": order.OrderNumber,
			"total_price":  order.TotalPrice,
		})
	}
}

func MyOrders(orders *services.OrderService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		currentUser, err := utils.GetCurrentUser(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		page, limit := utils.GetPagination(ctx)
		status := ctx.Query("status")

		rows, err := orders.ListOrders(currentUser.ID, currentUser.Role, page, limit, status)

		if err != nil {
			orderErrorResponse(ctx, err)
			return
		}

		if rows == nil {
			rows = []services.OrderRow{}
		}

		ctx.JSON(http.StatusOK, rows)
	}
}

func GetOrder(orders *services.OrderService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		currentUser, err := utils.GetCurrentUser(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		orderID, err := utils.GetIDParam(ctx, "id")

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		detail, err := orders.GetOrder(currentUser.ID, currentUser.Role, orderID)

		if err != nil {
			orderErrorResponse(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, detail)
	}
}

func UpdateOrderStatus(orders *services.OrderService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		currentUser, err := utils.GetCurrentUser(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		orderID, err := utils.GetIDParam(ctx, "id")

		if err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		var req UpdateOrderStatusRequest

		if err := ctx.BindJSON(&req); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": "Status is required"})
			return
		}

		order, err := orders.UpdateStatus(currentUser.ID, currentUser.Role, orderID, req.Status)

		if err != nil {
			orderErrorResponse(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, gin.H{"message": "Order status updated", "status": order.Status})
	}
}

func FarmerRevenue(orders *services.OrderService) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		currentUser, err := utils.GetCurrentUser(ctx)

		if err != nil {
			ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
			return
		}

		summary, err := orders.FarmerRevenue(currentUser.ID)

		if err != nil {
			orderErrorResponse(ctx, err)
			return
		}

		ctx.JSON(http.StatusOK, summary)
	}
}
