package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"github.com/farmconnect-dev/farmconnect/internal/auth"
	"github.com/farmconnect-dev/farmconnect/internal/models"
	"github.com/farmconnect-dev/farmconnect/internal/types"
	"gorm.io/gorm"
)

type OrderService struct {
	db       *gorm.DB
	notifier *Notifier
}

func NewOrderService(db *gorm.DB, notifier *Notifier) *OrderService {
	return &OrderService{db: db, notifier: notifier}
}

type OrderRow struct {
	ID          uint      `json:"id"`
	OrderNumber string    `json:"order_number"`
	Quantity    int       `json:"quantity"`
	TotalPrice  float64   `json:"total_price"`
	Status      string    `json:"status"`
	CreatedAt   time.Time `json:"created_at"`
	CropName    string    `json:"crop_name"`
	ImagePath   string    `json:"image_path"`
	UnitPrice   float64   `json:"unit_price"`
	BuyerName   string    `json:"buyer_name,omitempty"`
	FarmerName  string    `json:"farmer_name,omitempty"`
}

type OrderDetail struct {
	OrderRow

	CropID      uint   `json:"crop_id"`
	Description string `json:"description"`
	BuyerEmail  string `json:"buyer_email"`
}

type RevenueSummary struct {
	TotalRevenue float64 `json:"total_revenue"`
	TotalOrders  int64   `json:"total_orders"`
}

// PlaceOrder creates a pending order for the buyer and consumes crop stock.
// The stock check and decrement are a single conditional UPDATE executed
// inside the order transaction, so two concurrent orders can never jointly
// oversell: the storage layer picks exactly one winner at the boundary.
func (s *OrderService) PlaceOrder(buyerID, cropID uint, quantity int) (models.Order, error) {
	if quantity <= 0 {
		return models.Order{}, ErrInvalidInput
	}

	var order models.Order
	var crop models.Crop

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&crop, cropID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		result := tx.Model(&models.Crop{}).
			Where("id = ? AND quantity_available >= ?", cropID, quantity).
			UpdateColumn("quantity_available", gorm.Expr("quantity_available - ?", quantity))

		if result.Error != nil {
			return result.Error
		}

		if result.RowsAffected == 0 {
			return ErrInsufficientStock
		}

		order = models.Order{
			BuyerID:    buyerID,
			CropID:     cropID,
			Quantity:   quantity,
			TotalPrice: roundCurrency(crop.Price * float64(quantity)),
			Status:     models.OrderPending,
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}

		order.OrderNumber = fmt.Sprintf("ORD-%06d", order.ID)

		return tx.Model(&models.Order{}).
			Where("id = ?", order.ID).
			UpdateColumn("order_number", order.OrderNumber).Error
	})

	if err != nil {
		return models.Order{}, err
	}

	// Best-effort: a failed notification never rolls back the order.
	if s.notifier != nil {
		go s.notifier.OrderPlaced(order, crop)
	}

	return order, nil
}

// ListOrders returns the actor's side of the order relationship, newest
// first. Farmers see the buyer's name, buyers see the farmer's name.
func (s *OrderService) ListOrders(actorID uint, role types.Role, page, limit int, status string) ([]OrderRow, error) {
	if page < 1 {
		page = 1
	}

	query := s.db.Table("orders").
		Joins("JOIN crops ON crops.id = orders.crop_id")

	if role == types.RoleFarmer {
		query = query.
			Select("orders.id, orders.order_number, orders.quantity, orders.total_price, orders.status, orders.created_at, crops.name AS crop_name, crops.image_path, crops.price AS unit_price, users.username AS buyer_name").
			Joins("JOIN users ON users.id = orders.buyer_id").
			Where("crops.farmer_id = ?", actorID)
	} else {
		query = query.
			Select("orders.id, orders.order_number, orders.quantity, orders.total_price, orders.status, orders.created_at, crops.name AS crop_name, crops.image_path, crops.price AS unit_price, users.username AS farmer_name").
			Joins("JOIN users ON users.id = crops.farmer_id").
			Where("orders.buyer_id = ?", actorID)
	}

	if status != "" && status != "all" {
		query = query.Where("orders.status = ?", status)
	}

	var rows []OrderRow

	err := query.
		Order("orders.created_at DESC, orders.id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&rows).Error

	return rows, err
}

func (s *OrderService) GetOrder(actorID uint, role types.Role, orderID uint) (OrderDetail, error) {
	var order models.Order

	if err := s.db.Preload("Crop").Preload("Buyer").Preload("Crop.Farmer").First(&order, orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return OrderDetail{}, ErrNotFound
		}
		return OrderDetail{}, err
	}

	if !auth.CanViewOrder(actorID, role, order.BuyerID, order.Crop.FarmerID) {
		return OrderDetail{}, ErrForbidden
	}

	return OrderDetail{
		OrderRow: OrderRow{
			ID:          order.ID,
			OrderNumber: order.OrderNumber,
			Quantity:    order.Quantity,
			TotalPrice:  order.TotalPrice,
			Status:      order.Status,
			CreatedAt:   order.CreatedAt,
			CropName:    order.Crop.Name,
			ImagePath:   order.Crop.ImagePath,
			UnitPrice:   order.Crop.Price,
			BuyerName:   order.Buyer.Username,
			FarmerName:  order.Crop.Farmer.Username,
		},
		CropID:      order.CropID,
		Description: order.Crop.Description,
		BuyerEmail:  order.Buyer.Email,
	}, nil
}

// UpdateStatus applies the transition policy:
//
//	admin:  any of the four statuses
//	buyer:  pending -> cancelled
//	farmer: pending -> shipped, shipped -> delivered
//
// Cancelling a pending order restores the consumed stock in the same
// transaction; moving a cancelled order back to pending re-consumes it,
// failing on insufficient stock. The status write is conditioned on the
// status the transition was validated against, so a concurrent update
// can never apply the same stock movement twice.
func (s *OrderService) UpdateStatus(actorID uint, role types.Role, orderID uint, target string) (models.Order, error) {
	switch target {
	case models.OrderPending, models.OrderShipped, models.OrderDelivered, models.OrderCancelled:
	default:
		return models.Order{}, ErrInvalidInput
	}

	var order models.Order

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Preload("Crop").First(&order, orderID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrNotFound
			}
			return err
		}

		isBuyer := order.BuyerID == actorID
		isFarmer := order.Crop.FarmerID == actorID

		if !auth.IsAdmin(role) && !isBuyer && !isFarmer {
			return ErrForbidden
		}

		if !transitionAllowed(role, isBuyer, isFarmer, order.Status, target) {
			return ErrInvalidTransition
		}

		if target == models.OrderCancelled && order.Status == models.OrderPending {
			result := tx.Model(&models.Crop{}).
				Where("id = ?", order.CropID).
				UpdateColumn("quantity_available", gorm.Expr("quantity_available + ?", order.Quantity))

			if result.Error != nil {
				return result.Error
			}
		}

		if target == models.OrderPending && order.Status == models.OrderCancelled {
			result := tx.Model(&models.Crop{}).
				Where("id = ? AND quantity_available >= ?", order.CropID, order.Quantity).
				UpdateColumn("quantity_available", gorm.Expr("quantity_available - ?", order.Quantity))

			if result.Error != nil {
				return result.Error
			}

			if result.RowsAffected == 0 {
				return ErrInsufficientStock
			}
		}

		result := tx.Model(&models.Order{}).
			Where("id = ? AND status = ?", order.ID, order.Status).
			UpdateColumn("status", target)

		if result.Error != nil {
			return result.Error
		}

		// The order moved under us; the transition was validated against a
		// stale status, so the whole attempt is rolled back.
		if result.RowsAffected == 0 {
			return ErrInvalidTransition
		}

		order.Status = target

		return nil
	})

	if err != nil {
		return models.Order{}, err
	}

	return order, nil
}

func transitionAllowed(role types.Role, isBuyer, isFarmer bool, from, to string) bool {
	if auth.IsAdmin(role) {
		return true
	}

	if isBuyer && from == models.OrderPending && to == models.OrderCancelled {
		return true
	}

	if isFarmer {
		if from == models.OrderPending && to == models.OrderShipped {
			return true
		}
		if from == models.OrderShipped && to == models.OrderDelivered {
			return true
		}
	}

	return false
}

// FarmerRevenue sums total_price over all non-cancelled orders on the
// farmer's crops.
func (s *OrderService) FarmerRevenue(farmerID uint) (RevenueSummary, error) {
	var summary RevenueSummary

	err := s.db.Table("orders").
		Select("COALESCE(SUM(orders.total_price), 0) AS total_revenue, COUNT(*) AS total_orders").
		Joins("JOIN crops ON crops.id = orders.crop_id").
		Where("crops.farmer_id = ? AND orders.status != ?", farmerID, models.OrderCancelled).
		Scan(&summary).Error

	if err != nil {
		log.Printf("Failed to compute revenue for farmer %d: %v", farmerID, err)
		return RevenueSummary{}, err
	}

	return summary, nil
}

func roundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}
