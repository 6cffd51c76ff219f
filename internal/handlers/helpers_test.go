package handlers_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http/httptest"
	"testing"

	"github.com/farmconnect-dev/farmconnect/db"
	"github.com/farmconnect-dev/farmconnect/internal/auth"
	"github.com/farmconnect-dev/farmconnect/internal/models"
	"github.com/farmconnect-dev/farmconnect/internal/relay"
	"github.com/farmconnect-dev/farmconnect/internal/router"
	"github.com/farmconnect-dev/farmconnect/internal/services"
	"github.com/farmconnect-dev/farmconnect/internal/types"
	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// setupAPI builds the full HTTP surface against a fresh in-memory
// database. The global db handle is swapped per test, so none of these
// tests may run in parallel.
func setupAPI(t *testing.T) *gin.Engine {
	t.Helper()

	t.Setenv("JWT_SECRET", "handler-test-secret")
	t.Setenv("UPLOAD_DIR", t.TempDir())

	if err := auth.InitJWTSecret(); err != nil {
		t.Fatalf("init jwt secret: %v", err)
	}

	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}

	if err := database.AutoMigrate(
		&models.User{},
		&models.Crop{},
		&models.Order{},
		&models.ForumPost{},
		&models.ForumComment{},
		&models.PostLike{},
		&models.CommentLike{},
		&models.Alert{},
		&models.Notification{},
	); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	db.DB = database

	orders := services.NewOrderService(database, nil)
	weather := services.NewWeatherService("", nil)

	return router.NewRouter(relay.NewHub(), orders, weather)
}

func seedUser(t *testing.T, username string, role types.Role) models.User {
	t.Helper()

	user := models.User{
		Username:     username,
		Email:        username + "@example.com",
		PasswordHash: "hash",
		Role:         role,
	}
	if err := db.DB.Create(&user).Error; err != nil {
		t.Fatalf("seed user %s: %v", username, err)
	}
	return user
}

func seedCrop(t *testing.T, farmerID uint, name string, category string, price float64, quantity int) models.Crop {
	t.Helper()

	crop := models.Crop{
		Name:              name,
		Category:          category,
		Price:             price,
		QuantityAvailable: quantity,
		FarmerID:          farmerID,
	}
	if err := db.DB.Create(&crop).Error; err != nil {
		t.Fatalf("seed crop %s: %v", name, err)
	}
	return crop
}

func bearer(t *testing.T, user models.User) string {
	t.Helper()

	token, err := auth.GenerateJWT(user.ID, user.Role)
	if err != nil {
		t.Fatalf("generate token: %v", err)
	}
	return "Bearer " + token
}

func doRequest(t *testing.T, r *gin.Engine, method, path string, body io.Reader, contentType, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	req := httptest.NewRequest(method, path, body)

	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, payload interface{}, authHeader string) *httptest.ResponseRecorder {
	t.Helper()

	var body io.Reader

	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(encoded)
	}

	return doRequest(t, r, method, path, body, "application/json", authHeader)
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()

	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", rec.Body.String(), err)
	}
}

func cropFormBody(t *testing.T, fields map[string]string) (io.Reader, string) {
	t.Helper()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	for key, value := range fields {
		if err := writer.WriteField(key, value); err != nil {
			t.Fatalf("write field %s: %v", key, err)
		}
	}
	if err := writer.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}

	return &buf, writer.FormDataContentType()
}

func expectStatus(t *testing.T, rec *httptest.ResponseRecorder, want int) {
	t.Helper()

	if rec.Code != want {
		t.Fatalf("expected status %d, got %d: %s", want, rec.Code, rec.Body.String())
	}
}
