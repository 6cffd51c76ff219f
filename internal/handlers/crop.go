package handlers

import (
	"errors"
	"log"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/farmconnect-dev/farmconnect/db"
	"github.com/farmconnect-dev/farmconnect/internal/models"
	"github.com/farmconnect-dev/farmconnect/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type CropRow struct {
	ID                uint      `json:"id"`
	Name              string    `json:"name"`
	Description       string    `json:"description"`
	Category          string    `json:"category"`
	Price             float64   `json:"price"`
	QuantityAvailable int       `json:"quantity_available"`
	ImagePath         string    `json:"image_path"`
	FarmerID          uint      `json:"farmer_id"`
	FarmerName        string    `json:"farmer_name"`
	CreatedAt         time.Time `json:"created_at"`
}

type cropForm struct {
	Name              string
	Description       string
	Category          string
	Price             float64
	QuantityAvailable int
}

func parseCropForm(ctx *gin.Context) (cropForm, error) {
	form := cropForm{
		Name:        strings.TrimSpace(ctx.PostForm("name")),
		Description: ctx.PostForm("description"),
		Category:    strings.TrimSpace(ctx.PostForm("category")),
	}

	if form.Name == "" {
		return form, errors.New("Name is required")
	}

	if form.Category == "" {
		form.Category = "other"
	}

	price, err := strconv.ParseFloat(ctx.PostForm("price"), 64)

	if err != nil || price < 0 {
		return form, errors.New("Valid price is required")
	}

	quantity, err := strconv.Atoi(ctx.PostForm("quantity_available"))

	if err != nil || quantity < 0 {
		return form, errors.New("Valid quantity is required")
	}

	form.Price = price
	form.QuantityAvailable = quantity

	return form, nil
}

// saveCropImage stores an optional uploaded image and returns its public
// path, or "" when no file was attached.
func saveCropImage(ctx *gin.Context) (string, error) {
	file, err := ctx.FormFile("image")

	if err != nil {
		return "", nil
	}

	filename := uuid.NewString() + filepath.Ext(file.Filename)

	if err := ctx.SaveUploadedFile(file, filepath.Join(UploadDir(), filename)); err != nil {
		return "", err
	}

	return "/uploads/" + filename, nil
}

func CreateCrop(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	form, err := parseCropForm(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imagePath, err := saveCropImage(ctx)

	if err != nil {
		log.Printf("Failed to save crop image: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	crop := models.Crop{
		Name:              form.Name,
		Description:       form.Description,
		Category:          form.Category,
		Price:             form.Price,
		QuantityAvailable: form.QuantityAvailable,
		ImagePath:         imagePath,
		FarmerID:          currentUser.ID,
	}

	if err := db.DB.Create(&crop).Error; err != nil {
		log.Printf("Failed to create crop: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error adding crop"})
		return
	}

	ctx.JSON(http.StatusCreated, gin.H{"message": "Crop added successfully!", "crop_id": crop.ID})
}

func ListCrops(ctx *gin.Context) {
	page, limit := utils.GetPagination(ctx)
	search := strings.TrimSpace(ctx.Query("search"))
	category := strings.TrimSpace(ctx.Query("category"))

	query := db.DB.Table("crops").
		Select("crops.id, crops.name, crops.description, crops.category, crops.price, crops.quantity_available, crops.image_path, crops.farmer_id, crops.created_at, users.username AS farmer_name").
		Joins("JOIN users ON users.id = crops.farmer_id")

	if search != "" {
		query = query.Where("LOWER(crops.name) LIKE ?", "%"+strings.ToLower(search)+"%")
	}

	if category != "" {
		query = query.Where("crops.category = ?", category)
	}

	var rows []CropRow

	if err := query.
		Order("crops.created_at DESC, crops.id DESC").
		Limit(limit).
		Offset((page - 1) * limit).
		Scan(&rows).Error; err != nil {
		log.Printf("Failed to list crops: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if rows == nil {
		rows = []CropRow{}
	}

	ctx.JSON(http.StatusOK, rows)
}

func GetCrop(ctx *gin.Context) {
	cropID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var row CropRow

	err = db.DB.Table("crops").
		Select("crops.id, crops.name, crops.description, crops.category, crops.price, crops.quantity_available, crops.image_path, crops.farmer_id, crops.created_at, users.username AS farmer_name").
		Joins("JOIN users ON users.id = crops.farmer_id").
		Where("crops.id = ?", cropID).
		Take(&row).Error

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			ctx.JSON(http.StatusNotFound, gin.H{"error": "Crop not found"})
		} else {
			log.Printf("Failed to fetch crop %d: %v", cropID, err)
			ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		}
		return
	}

	ctx.JSON(http.StatusOK, row)
}

func ListMyCrops(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	var crops []models.Crop

	if err := db.DB.Where("farmer_id = ?", currentUser.ID).
		Order("created_at DESC").
		Find(&crops).Error; err != nil {
		log.Printf("Failed to list crops for farmer %d: %v", currentUser.ID, err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	ctx.JSON(http.StatusOK, crops)
}

// UpdateCrop mutates a crop through a query carrying the owner predicate.
// A missing crop and someone else's crop are indistinguishable on purpose.
func UpdateCrop(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cropID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	form, err := parseCropForm(ctx)

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	imagePath, err := saveCropImage(ctx)

	if err != nil {
		log.Printf("Failed to save crop image: %v", err)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to store image"})
		return
	}

	updates := map[string]interface{}{
		"name":               form.Name,
		"description":        form.Description,
		"category":           form.Category,
		"price":              form.Price,
		"quantity_available": form.QuantityAvailable,
	}

	if imagePath != "" {
		updates["image_path"] = imagePath
	}

	result := db.DB.Model(&models.Crop{}).
		Where("id = ? AND farmer_id = ?", cropID, currentUser.ID).
		Updates(updates)

	if result.Error != nil {
		log.Printf("Failed to update crop %d: %v", cropID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Crop not found"})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"message": "Crop updated successfully", "crop_id": cropID})
}

func DeleteCrop(ctx *gin.Context) {
	currentUser, err := utils.GetCurrentUser(ctx)

	if err != nil {
		ctx.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return
	}

	cropID, err := utils.GetIDParam(ctx, "id")

	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result := db.DB.Where("id = ? AND farmer_id = ?", cropID, currentUser.ID).Delete(&models.Crop{})

	if result.Error != nil {
		log.Printf("Failed to delete crop %d: %v", cropID, result.Error)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
		return
	}

	if result.RowsAffected == 0 {
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Crop not found"})
		return
	}

	ctx.Status(http.StatusNoContent)
}
