package handlers

import (
	"log"
	"net/http"
	"time"

	"github.com/farmconnect-dev/farmconnect/db"
	"github.com/farmconnect-dev/farmconnect/internal/models"
	"github.com/farmconnect-dev/farmconnect/internal/types"
	"github.com/gin-gonic/gin"
)

// Admin reporting. Every route in this file sits behind the admin role
// middleware; all queries are read-only aggregates.

type AdminStats struct {
	TotalUsers   int64   `json:"totalUsers"`
	TotalCrops   int64   `json:"totalCrops"`
	ActiveCrops  int64   `json:"activeCrops"`
	OrdersToday  int64   `json:"ordersToday"`
	RevenueToday float64 `json:"revenueToday"`
	TotalRevenue float64 `json:"totalRevenue"`
}

type TopCropRow struct {
	Name         string  `json:"name"`
	TotalSold    int64   `json:"total_sold"`
	TotalRevenue float64 `json:"total_revenue"`
}

type RecentOrderRow struct {
	ID         uint      `json:"id"`
	Quantity   int       `json:"quantity"`
	TotalPrice float64   `json:"total_price"`
	Status     string    `json:"status"`
	CreatedAt  time.Time `json:"created_at"`
	CropName   string    `json:"crop_name"`
	BuyerName  string    `json:"buyer_name"`
}

type AdminUserRow struct {
	ID        uint       `json:"id"`
	Username  string     `json:"username"`
	Email     string     `json:"email"`
	Role      types.Role `json:"role"`
	CreatedAt time.Time  `json:"created_at"`
}

func GetStats(ctx *gin.Context) {
	var stats AdminStats

	if err := db.DB.Model(&models.User{}).Count(&stats.TotalUsers).Error; err != nil {
		log.Printf("Failed to count users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Model(&models.Crop{}).Count(&stats.TotalCrops).Error; err != nil {
		log.Printf("Failed to count crops: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if err := db.DB.Model(&models.Crop{}).Where("quantity_available > 0").Count(&stats.ActiveCrops).Error; err != nil {
		log.Printf("Failed to count active crops: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	now := time.Now()
	todayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	tomorrowStart := todayStart.Add(24 * time.Hour)

	var today struct {
		OrdersToday  int64
		RevenueToday float64
	}

	if err := db.DB.Model(&models.Order{}).
		Select("COUNT(*) AS orders_today, COALESCE(SUM(total_price), 0) AS revenue_today").
		Where("created_at >= ? AND created_at < ?", todayStart, tomorrowStart).
		Scan(&today).Error; err != nil {
		log.Printf("Failed to compute today's orders: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	stats.OrdersToday = today.OrdersToday
	stats.RevenueToday = today.RevenueToday

	var totalRevenue struct {
		TotalRevenue float64
	}

	if err := db.DB.Model(&models.Order{}).
		Select("COALESCE(SUM(total_price), 0) AS total_revenue").
		Scan(&totalRevenue).Error; err != nil {
		log.Printf("Failed to compute total revenue: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	stats.TotalRevenue = totalRevenue.TotalRevenue

	ctx.JSON(http.StatusOK, stats)
}

func GetTopCrops(ctx *gin.Context) {
	var rows []TopCropRow

	err := db.DB.Table("orders").
		Select("crops.name, SUM(orders.quantity) AS total_sold, SUM(orders.total_price) AS total_revenue").
		Joins("JOIN crops ON crops.id = orders.crop_id").
		Group("orders.crop_id, crops.name").
		Order("total_sold DESC").
		Limit(5).
		Scan(&rows).Error

	if err != nil {
		log.Printf("Failed to fetch top crops: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching top crops"})
		return
	}

	if rows == nil {
		rows = []TopCropRow{}
	}

	ctx.JSON(http.StatusOK, rows)
}

func GetRecentOrders(ctx *gin.Context) {
	var rows []RecentOrderRow

	err := db.DB.Table("orders").
		Select("orders.id, orders.quantity, orders.total_price, orders.status, orders.created_at, crops.name AS crop_name, users.username AS buyer_name").
		Joins("JOIN crops ON crops.id = orders.crop_id").
		Joins("JOIN users ON users.id = orders.buyer_id").
		Order("orders.created_at DESC").
		Limit(10).
		Scan(&rows).Error

	if err != nil {
		log.Printf("Failed to fetch recent orders: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if rows == nil {
		rows = []RecentOrderRow{}
	}

	ctx.JSON(http.StatusOK, rows)
}

func GetUsers(ctx *gin.Context) {
	var rows []AdminUserRow

	err := db.DB.Model(&models.User{}).
		Select("id, username, email, role, created_at").
		Order("created_at DESC").
		Scan(&rows).Error

	if err != nil {
		log.Printf("Failed to fetch users: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if rows == nil {
		rows = []AdminUserRow{}
	}

	ctx.JSON(http.StatusOK, rows)
}
