package handlers_test

import (
	"net/http"
	"strconv"
	"testing"

	"github.com/farmconnect-dev/farmconnect/internal/handlers"
	"github.com/farmconnect-dev/farmconnect/internal/types"
)

func TestCreateAlertRoles(t *testing.T) {
	r := setupAPI(t)

	buyer := seedUser(t, "buyer1", types.RoleBuyer)
	farmer := seedUser(t, "farmer1", types.RoleFarmer)
	admin := seedUser(t, "admin1", types.RoleAdmin)

	rec := doJSON(t, r, http.MethodPost, "/api/alerts", handlers.CreateAlertRequest{
		Message: "Locust swarm near the river",
	}, bearer(t, buyer))
	expectStatus(t, rec, http.StatusForbidden)

	rec = doJSON(t, r, http.MethodPost, "/api/alerts", handlers.CreateAlertRequest{
		Message: "Locust swarm near the river",
		Type:    "pest",
	}, bearer(t, farmer))
	expectStatus(t, rec, http.StatusCreated)

	var farmerAlert struct {
		Alert handlers.AlertRow `json:"alert"`
	}
	decodeBody(t, rec, &farmerAlert)

	if farmerAlert.Alert.UserID == nil || *farmerAlert.Alert.UserID != farmer.ID {
		t.Fatalf("farmer alert should carry its creator, got %+v", farmerAlert.Alert)
	}
	if farmerAlert.Alert.Username != "farmer1" {
		t.Fatalf("expected username farmer1, got %q", farmerAlert.Alert.Username)
	}
	if farmerAlert.Alert.Priority != "normal" || farmerAlert.Alert.Type != "pest" {
		t.Fatalf("defaults not applied: %+v", farmerAlert.Alert)
	}

	// Admin alerts are global: no creator, shown as "Admin".
	rec = doJSON(t, r, http.MethodPost, "/api/alerts", handlers.CreateAlertRequest{
		Message:  "Heavy rainfall expected statewide",
		Priority: "high",
	}, bearer(t, admin))
	expectStatus(t, rec, http.StatusCreated)

	var adminAlert struct {
		Alert handlers.AlertRow `json:"alert"`
	}
	decodeBody(t, rec, &adminAlert)

	if adminAlert.Alert.UserID != nil {
		t.Fatalf("admin alert should have no creator, got %+v", adminAlert.Alert)
	}
	if adminAlert.Alert.Username != "Admin" {
		t.Fatalf("expected username Admin, got %q", adminAlert.Alert.Username)
	}

	// The public listing shows both, newest first, with the same naming.
	rec = doRequest(t, r, http.MethodGet, "/api/alerts", nil, "", "")
	expectStatus(t, rec, http.StatusOK)

	var listed []handlers.AlertRow
	decodeBody(t, rec, &listed)

	if len(listed) != 2 {
		t.Fatalf("expected 2 alerts, got %d", len(listed))
	}
	if listed[0].Username != "Admin" || listed[1].Username != "farmer1" {
		t.Fatalf("unexpected listing order or naming: %+v", listed)
	}
}

func TestDeleteAlertPolicy(t *testing.T) {
	r := setupAPI(t)

	farmer := seedUser(t, "farmer1", types.RoleFarmer)
	rival := seedUser(t, "farmer2", types.RoleFarmer)
	admin := seedUser(t, "admin1", types.RoleAdmin)

	rec := doJSON(t, r, http.MethodPost, "/api/alerts", handlers.CreateAlertRequest{
		Message: "Frost warning tonight",
		Type:    "weather",
	}, bearer(t, farmer))
	expectStatus(t, rec, http.StatusCreated)

	var created struct {
		Alert handlers.AlertRow `json:"alert"`
	}
	decodeBody(t, rec, &created)

	alertPath := "/api/alerts/" + strconv.Itoa(int(created.Alert.ID))

	rec = doRequest(t, r, http.MethodDelete, alertPath, nil, "", bearer(t, rival))
	expectStatus(t, rec, http.StatusForbidden)

	// The admin may remove anyone's alert.
	rec = doRequest(t, r, http.MethodDelete, alertPath, nil, "", bearer(t, admin))
	expectStatus(t, rec, http.StatusOK)

	rec = doRequest(t, r, http.MethodDelete, alertPath, nil, "", bearer(t, admin))
	expectStatus(t, rec, http.StatusNotFound)
}
