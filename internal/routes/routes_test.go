package routes_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/parfumier/internal/config"
	"github.com/example/parfumier/internal/database"
	"github.com/example/parfumier/internal/models"
	"github.com/example/parfumier/internal/routes"
)

// Integration tests are opt-in: set DATABASE_URL_TEST to a throwaway
// Postgres database to run them.
func setupTestApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()

	dsn := os.Getenv("DATABASE_URL_TEST")
	if dsn == "" {
		t.Skip("integration tests are disabled; set DATABASE_URL_TEST to enable")
	}

	cfg := &config.Config{
		AppPort:       "0",
		DatabaseURL:   dsn,
		JWTSecret:     "integration-secret",
		TokenExpires:  time.Hour,
		AdminEmail:    "admin@x.com",
		AdminPassword: "admin123",
	}

	db := database.Connect(cfg.DatabaseURL)
	if err := db.Exec("TRUNCATE comments, perfumes, brands, collectors, password_reset_tokens CASCADE").Error; err != nil {
		t.Fatalf("failed to truncate tables: %v", err)
	}
	database.SeedAdmin(db, cfg.AdminEmail, cfg.AdminPassword)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			if fe, ok := err.(*fiber.Error); ok {
				code = fe.Code
			}
			return c.Status(code).JSON(fiber.Map{"success": false, "error": err.Error()})
		},
	})
	routes.Register(app, db, cfg)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, payload interface{}, token string) (int, map[string]interface{}) {
	t.Helper()

	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			t.Fatalf("marshal payload: %v", err)
		}
		body = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("app.Test %s %s: %v", method, path, err)
	}
	defer resp.Body.Close()

	decoded := map[string]interface{}{}
	raw, _ := io.ReadAll(resp.Body)
	_ = json.Unmarshal(raw, &decoded)
	return resp.StatusCode, decoded
}

func login(t *testing.T, app *fiber.App, email, password string) (int, map[string]interface{}) {
	t.Helper()
	return doJSON(t, app, http.MethodPost, "/api/auth/login", map[string]string{
		"email":    email,
		"password": password,
	}, "")
}

func mustLogin(t *testing.T, app *fiber.App, email, password string) string {
	t.Helper()

	code, body := login(t, app, email, password)
	if code != http.StatusOK {
		t.Fatalf("login %s failed: status=%d body=%v", email, code, body)
	}
	token, _ := body["token"].(string)
	if token == "" {
		t.Fatalf("empty token in login response: %v", body)
	}
	return token
}

func TestAPIFlow(t *testing.T) {
	app, _ := setupTestApp(t)

	// Register two collectors.
	for _, email := range []string{"a@x.com", "b@x.com"} {
		code, body := doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]string{
			"email":    email,
			"password": "pw1234",
		}, "")
		if code != http.StatusCreated {
			t.Fatalf("register %s: status=%d body=%v", email, code, body)
		}
	}

	// Duplicate email is rejected, case-insensitively.
	if code, _ := doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "A@X.COM",
		"password": "pw5678",
	}, ""); code != http.StatusBadRequest {
		t.Fatalf("duplicate register: expected 400, got %d", code)
	}

	// Login failure modes.
	if code, _ := login(t, app, "nobody@x.com", "pw1234"); code != http.StatusNotFound {
		t.Fatalf("unknown email: expected 404, got %d", code)
	}
	if code, _ := login(t, app, "a@x.com", "wrong"); code != http.StatusUnauthorized {
		t.Fatalf("wrong password: expected 401, got %d", code)
	}

	adminToken := mustLogin(t, app, "admin@x.com", "admin123")
	userA := mustLogin(t, app, "a@x.com", "pw1234")
	userB := mustLogin(t, app, "b@x.com", "pw1234")

	// Brand CRUD and case-insensitive uniqueness.
	code, body := doJSON(t, app, http.MethodPost, "/api/brands/", map[string]string{"name": "Dior"}, adminToken)
	if code != http.StatusCreated {
		t.Fatalf("create brand: status=%d body=%v", code, body)
	}
	brandID := body["data"].(map[string]interface{})["id"].(string)

	if code, _ := doJSON(t, app, http.MethodPost, "/api/brands/", map[string]string{"name": "DIOR"}, adminToken); code != http.StatusBadRequest {
		t.Fatalf("duplicate brand: expected 400, got %d", code)
	}
	if code, _ := doJSON(t, app, http.MethodPost, "/api/brands/", map[string]string{"name": "Chanel"}, userA); code != http.StatusForbidden {
		t.Fatalf("brand create as non-admin: expected 403, got %d", code)
	}

	// Perfume creation (admin only).
	perfumePayload := map[string]interface{}{
		"name":            "Sauvage",
		"image_url":       "https://img.example/sauvage.jpg",
		"price":           100.0,
		"concentration":   "EDP",
		"description":     "Fresh and spicy",
		"ingredients":     "bergamot, pepper",
		"volume":          100.0,
		"target_audience": "male",
		"brand_id":        brandID,
	}
	code, body = doJSON(t, app, http.MethodPost, "/api/perfumes/", perfumePayload, adminToken)
	if code != http.StatusCreated {
		t.Fatalf("create perfume: status=%d body=%v", code, body)
	}
	perfumeID := body["data"].(map[string]interface{})["id"].(string)

	if code, _ := doJSON(t, app, http.MethodPost, "/api/perfumes/", perfumePayload, userA); code != http.StatusForbidden {
		t.Fatalf("perfume create as non-admin: expected 403, got %d", code)
	}

	// Search finds it case-insensitively.
	code, body = doJSON(t, app, http.MethodGet, "/api/perfumes/?q=sauv", nil, "")
	if code != http.StatusOK {
		t.Fatalf("list perfumes: status=%d", code)
	}
	if items, _ := body["data"].([]interface{}); len(items) != 1 {
		t.Fatalf("expected 1 search hit, got %v", body["data"])
	}

	commentsPath := fmt.Sprintf("/api/perfumes/%s/comments", perfumeID)

	// Comments: admin blocked, rating validated, one per collector.
	if code, _ := doJSON(t, app, http.MethodPost, commentsPath, map[string]interface{}{"rating": 3, "content": "great"}, adminToken); code != http.StatusForbidden {
		t.Fatalf("admin comment: expected 403, got %d", code)
	}
	// A missing perfume wins over the admin guard, even for admins.
	missingPath := "/api/perfumes/00000000-0000-0000-0000-000000000001/comments"
	if code, _ := doJSON(t, app, http.MethodPost, missingPath, map[string]interface{}{"rating": 3, "content": "great"}, adminToken); code != http.StatusNotFound {
		t.Fatalf("admin comment on missing perfume: expected 404, got %d", code)
	}
	if code, _ := doJSON(t, app, http.MethodPost, commentsPath, map[string]interface{}{"rating": 4, "content": "great"}, userA); code != http.StatusBadRequest {
		t.Fatalf("rating 4: expected 400, got %d", code)
	}

	code, body = doJSON(t, app, http.MethodPost, commentsPath, map[string]interface{}{"rating": 3, "content": "great"}, userA)
	if code != http.StatusCreated {
		t.Fatalf("add comment: status=%d body=%v", code, body)
	}
	commentID := body["data"].(map[string]interface{})["id"].(string)

	if code, _ := doJSON(t, app, http.MethodPost, commentsPath, map[string]interface{}{"rating": 2, "content": "again"}, userA); code != http.StatusBadRequest {
		t.Fatalf("duplicate comment: expected 400, got %d", code)
	}
	// The duplicate check comes before rating validation: a second comment
	// with a bogus rating still reports the duplicate.
	if code, dup := doJSON(t, app, http.MethodPost, commentsPath, map[string]interface{}{"rating": 9, "content": "again"}, userA); code != http.StatusBadRequest || dup["error"] != "you have already commented on this perfume" {
		t.Fatalf("duplicate with bad rating: expected duplicate error, got status=%d body=%v", code, dup)
	}

	// Average rating after one 3-star comment; comment authors expose only
	// their public fields.
	code, body = doJSON(t, app, http.MethodGet, "/api/perfumes/"+perfumeID, nil, "")
	if code != http.StatusOK {
		t.Fatalf("get perfume: status=%d", code)
	}
	detail := body["data"].(map[string]interface{})
	if avg := detail["avg_rating"].(float64); avg != 3.0 {
		t.Fatalf("expected avg rating 3.0, got %v", avg)
	}
	detailComments := detail["comments"].([]interface{})
	if len(detailComments) != 1 {
		t.Fatalf("expected 1 comment on detail view, got %d", len(detailComments))
	}
	author := detailComments[0].(map[string]interface{})["author"].(map[string]interface{})
	if _, leaked := author["email"]; leaked {
		t.Fatalf("comment author must not expose email: %v", author)
	}
	if author["id"] == "" {
		t.Fatalf("comment author missing id: %v", author)
	}

	// Only the author edits; author or admin deletes.
	commentPath := commentsPath + "/" + commentID
	if code, _ := doJSON(t, app, http.MethodPut, commentPath, map[string]interface{}{"rating": 2}, userB); code != http.StatusForbidden {
		t.Fatalf("edit by non-author: expected 403, got %d", code)
	}
	if code, _ := doJSON(t, app, http.MethodPut, commentPath, map[string]interface{}{"rating": 2}, userA); code != http.StatusOK {
		t.Fatalf("edit by author: expected 200, got %d", code)
	}
	if code, _ := doJSON(t, app, http.MethodDelete, commentPath, nil, userB); code != http.StatusForbidden {
		t.Fatalf("delete by non-author: expected 403, got %d", code)
	}
	if code, _ := doJSON(t, app, http.MethodDelete, commentPath, nil, adminToken); code != http.StatusOK {
		t.Fatalf("delete by admin: expected 200, got %d", code)
	}

	// Ban blocks both new logins and existing tokens; restore recovers.
	var collectorBID string
	code, body = doJSON(t, app, http.MethodGet, "/api/admin/collectors", nil, adminToken)
	if code != http.StatusOK {
		t.Fatalf("list collectors: status=%d", code)
	}
	for _, raw := range body["data"].(map[string]interface{})["active_collectors"].([]interface{}) {
		collector := raw.(map[string]interface{})
		if collector["email"] == "b@x.com" {
			collectorBID = collector["id"].(string)
		}
	}
	if collectorBID == "" {
		t.Fatal("collector b@x.com not found in admin list")
	}

	banPath := "/api/admin/collectors/" + collectorBID
	if code, _ := doJSON(t, app, http.MethodPatch, banPath+"/ban", map[string]string{"reason": "spam"}, adminToken); code != http.StatusOK {
		t.Fatalf("ban: expected 200, got %d", code)
	}

	code, body = login(t, app, "b@x.com", "pw1234")
	if code != http.StatusForbidden {
		t.Fatalf("login while banned: expected 403, got %d", code)
	}
	if msg, _ := body["error"].(string); msg != "Account locked: spam" {
		t.Fatalf("expected ban reason in message, got %q", msg)
	}
	if code, _ := doJSON(t, app, http.MethodGet, "/api/auth/profile", nil, userB); code != http.StatusForbidden {
		t.Fatalf("old token while banned: expected 403, got %d", code)
	}

	if code, _ := doJSON(t, app, http.MethodPatch, banPath+"/restore", nil, adminToken); code != http.StatusOK {
		t.Fatalf("restore: expected 200, got %d", code)
	}
	mustLogin(t, app, "b@x.com", "pw1234")
}

func TestPriceSortAscending(t *testing.T) {
	app, _ := setupTestApp(t)
	adminToken := mustLogin(t, app, "admin@x.com", "admin123")

	code, body := doJSON(t, app, http.MethodPost, "/api/brands/", map[string]string{"name": "Guerlain"}, adminToken)
	if code != http.StatusCreated {
		t.Fatalf("create brand: status=%d body=%v", code, body)
	}
	brandID := body["data"].(map[string]interface{})["id"].(string)

	for name, price := range map[string]float64{"Shalimar": 150, "Habit Rouge": 90, "Vetiver": 120} {
		payload := map[string]interface{}{
			"name":            name,
			"image_url":       "https://img.example/p.jpg",
			"price":           price,
			"concentration":   "EDT",
			"description":     "d",
			"ingredients":     "i",
			"volume":          75.0,
			"target_audience": "unisex",
			"brand_id":        brandID,
		}
		if code, body := doJSON(t, app, http.MethodPost, "/api/perfumes/", payload, adminToken); code != http.StatusCreated {
			t.Fatalf("create perfume %s: status=%d body=%v", name, code, body)
		}
	}

	code, body = doJSON(t, app, http.MethodGet, "/api/perfumes/?sort_price=asc", nil, "")
	if code != http.StatusOK {
		t.Fatalf("list sorted: status=%d", code)
	}

	var last float64 = -1
	for _, raw := range body["data"].([]interface{}) {
		price := raw.(map[string]interface{})["price"].(float64)
		if price < last {
			t.Fatalf("prices not non-decreasing: %v then %v", last, price)
		}
		last = price
	}
}

func TestPasswordResetFlow(t *testing.T) {
	app, db := setupTestApp(t)

	if code, body := doJSON(t, app, http.MethodPost, "/api/auth/register", map[string]string{
		"email":    "reset@x.com",
		"password": "oldpass",
	}, ""); code != http.StatusCreated {
		t.Fatalf("register: status=%d body=%v", code, body)
	}

	code, body := doJSON(t, app, http.MethodPost, "/api/auth/forgot-password", map[string]string{"email": "reset@x.com"}, "")
	if code != http.StatusOK {
		t.Fatalf("forgot-password: status=%d body=%v", code, body)
	}
	resetToken, _ := body["token"].(string)
	if resetToken == "" {
		t.Fatalf("empty reset token in response: %v", body)
	}

	// The code travels out-of-band; the test reads it straight from the store.
	var record models.PasswordResetToken
	if err := db.Where("token = ?", resetToken).First(&record).Error; err != nil {
		t.Fatalf("load reset record: %v", err)
	}

	wrongCode := "000000"
	if record.Code == wrongCode {
		wrongCode = "000001"
	}
	if code, body := doJSON(t, app, http.MethodPost, "/api/auth/verify-reset", map[string]string{
		"token": resetToken,
		"code":  wrongCode,
	}, ""); code != http.StatusBadRequest {
		t.Fatalf("wrong code: expected 400, got %d body=%v", code, body)
	}
	if code, body := doJSON(t, app, http.MethodPost, "/api/auth/verify-reset", map[string]string{
		"token": resetToken,
		"code":  record.Code,
	}, ""); code != http.StatusOK {
		t.Fatalf("verify-reset: status=%d body=%v", code, body)
	}

	if code, body := doJSON(t, app, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token":        resetToken,
		"new_password": "newpass",
	}, ""); code != http.StatusOK {
		t.Fatalf("reset-password: status=%d body=%v", code, body)
	}

	// The token is single-use: a replay must be rejected.
	code, body = doJSON(t, app, http.MethodPost, "/api/auth/reset-password", map[string]string{
		"token":        resetToken,
		"new_password": "hijacked",
	}, "")
	if code != http.StatusBadRequest || body["error"] != "token already used" {
		t.Fatalf("reset replay: expected 400 token already used, got status=%d body=%v", code, body)
	}

	if code, _ := login(t, app, "reset@x.com", "oldpass"); code != http.StatusUnauthorized {
		t.Fatalf("old password after reset: expected 401, got %d", code)
	}
	mustLogin(t, app, "reset@x.com", "newpass")
}
