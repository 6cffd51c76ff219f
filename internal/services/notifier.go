package services

import (
	"encoding/json"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"time"

	"github.com/farmconnect-dev/farmconnect/internal/models"
	"gorm.io/gorm"
)

type Mailer interface {
	Send(to, subject, body string) error
}

type smtpMailer struct{}

func NewMailer() Mailer {
	return &smtpMailer{}
}

func (m *smtpMailer) Send(to, subject, body string) error {
	host := os.Getenv("SMTP_HOST")
	port := os.Getenv("SMTP_PORT")
	from := os.Getenv("SMTP_FROM")

	if host == "" {
		return fmt.Errorf("SMTP_HOST is not configured")
	}

	addr := host + ":" + port

	msg := "From: " + from + "\r\n" +
		"To: " + to + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-Version: 1.0\r\nContent-Type: text/plain; charset=utf-8\r\n\r\n" +
		body

	return smtp.SendMail(addr, nil, from, []string{to}, []byte(msg))
}

// Notifier delivers order emails to both sides of a purchase and records
// each attempt. Delivery is best-effort: failures are logged and recorded,
// never surfaced to the request that triggered them.
type Notifier struct {
	db     *gorm.DB
	mailer Mailer
}

func NewNotifier(db *gorm.DB, mailer Mailer) *Notifier {
	return &Notifier{db: db, mailer: mailer}
}

func (n *Notifier) OrderPlaced(order models.Order, crop models.Crop) {
	var farmer, buyer models.User

	if err := n.db.First(&farmer, crop.FarmerID).Error; err != nil {
		log.Printf("Failed to load farmer %d for order %s: %v", crop.FarmerID, order.OrderNumber, err)
	} else {
		n.deliver(order, farmer,
			fmt.Sprintf("New Order! %s", order.OrderNumber),
			fmt.Sprintf("You have a new order for %d %s! Total: $%.2f", order.Quantity, crop.Name, order.TotalPrice))
	}

	if err := n.db.First(&buyer, order.BuyerID).Error; err != nil {
		log.Printf("Failed to load buyer %d for order %s: %v", order.BuyerID, order.OrderNumber, err)
	} else {
		n.deliver(order, buyer,
			"Order Confirmed!",
			fmt.Sprintf("Your order for %d %s is placed! Total: $%.2f. Thank you!", order.Quantity, crop.Name, order.TotalPrice))
	}
}

func (n *Notifier) deliver(order models.Order, user models.User, subject, body string) {
	status := "sent"

	if err := n.mailer.Send(user.Email, subject, body); err != nil {
		log.Printf("Failed to send %q to %s: %v", subject, user.Email, err)
		status = "failed"
	}

	payload, _ := json.Marshal(map[string]interface{}{
		"order_id":     order.ID,
		"order_number": order.OrderNumber,
		"quantity":     order.Quantity,
		"total_price":  order.TotalPrice,
	})

	now := time.Now()
	notification := models.Notification{
		OrderID: order.ID,
		UserID:  user.ID,
		Channel: "email",
		Status:  status,
		Subject: subject,
		Payload: payload,
		SentAt:  &now,
	}

	if err := n.db.Create(&notification).Error; err != nil {
		log.Printf("Failed to record notification for order %s: %v", order.OrderNumber, err)
	}
}
