package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"bloodbank-backend/internal/auth"
	"bloodbank-backend/internal/idempotency"
	"bloodbank-backend/internal/models"
	"bloodbank-backend/internal/testutil"

	"github.com/gofiber/fiber/v2"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

type client struct {
	t   *testing.T
	app *fiber.App
}

func (c client) do(method, path, token string, body any, headers ...string) (int, []byte) {
	c.t.Helper()

	var r io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			c.t.Fatalf("marshal: %v", err)
		}
		r = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := c.app.Test(req, -1)
	if err != nil {
		c.t.Fatalf("%s %s: %v", method, path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp.StatusCode, out
}

func decode[T any](t *testing.T, b []byte) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(b, &v); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return v
}

func setup(t *testing.T) client {
	t.Helper()
	db := testutil.NewDB(t)
	testutil.SeedBank(t, db, map[models.BloodType]int{
		models.BloodTypeOPos:  10,
		models.BloodTypeABNeg: 2,
	})
	app := New(testutil.Config(), idempotency.NewMemoryStore(time.Hour))
	return client{t: t, app: app}
}

func (c client) register(path string, body any) string {
	c.t.Helper()
	status, out := c.do(http.MethodPost, path, "", body)
	if status != http.StatusCreated {
		c.t.Fatalf("register %s: %d %s", path, status, out)
	}
	return decode[auth.SessionResponse](c.t, out).Token
}

func (c client) admin() string {
	return c.register("/api/auth/register/admin", auth.RegisterAdminRequest{
		Name: "Admin", Email: "admin@bank.org", Password: "secret123",
	})
}

func (c client) hospital(email, id string) string {
	return c.register("/api/auth/register/hospital", auth.RegisterHospitalRequest{
		Name: "General", Email: email, Password: "secret123",
		HospitalID: id, Address: "1 Main", Location: "Town", Contact: "5550000000",
	})
}

func (c client) donor(email string) string {
	return c.register("/api/auth/register/donor", auth.RegisterDonorRequest{
		Name: "Dee", Email: email, Password: "secret123", Age: 30,
		BloodType: "O+", Address: "2 Elm", Sex: "male", Phone: "5551234567",
	})
}

type requestDTO struct {
	ID           uint   `json:"id"`
	Status       string `json:"status"`
	HospitalName string `json:"hospital_name"`
	BloodType    string `json:"blood_type"`
}

type itemDTO struct {
	BloodType string `json:"blood_type"`
	Quantity  int    `json:"quantity"`
}

func quantityOf(items []itemDTO, bt string) int {
	for _, it := range items {
		if it.BloodType == bt {
			return it.Quantity
		}
	}
	return -1
}

func TestHealth(t *testing.T) {
	c := setup(t)
	status, out := c.do(http.MethodGet, "/health", "", nil)
	if status != http.StatusOK {
		t.Fatalf("expected 200, got %d %s", status, out)
	}
}

func TestFulfillmentFlow(t *testing.T) {
	c := setup(t)
	admin := c.admin()
	hosp := c.hospital("er@general.org", "GEN-1")

	status, out := c.do(http.MethodPost, "/api/requests", hosp, map[string]any{
		"blood_type": "O+", "quantity": 5, "urgency": "high",
	})
	if status != http.StatusCreated {
		t.Fatalf("create: %d %s", status, out)
	}
	created := decode[requestDTO](t, out)
	if created.Status != "pending" || created.HospitalName != "General" {
		t.Errorf("unexpected request %+v", created)
	}

	path := fmt.Sprintf("/api/requests/%d", created.ID)
	status, out = c.do(http.MethodPut, path, admin, map[string]any{"status": "fulfilled"})
	if status != http.StatusOK {
		t.Fatalf("fulfill: %d %s", status, out)
	}
	if got := decode[requestDTO](t, out); got.Status != "fulfilled" {
		t.Errorf("expected fulfilled, got %s", got.Status)
	}

	status, out = c.do(http.MethodGet, "/api/inventory", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("inventory: %d %s", status, out)
	}
	if q := quantityOf(decode[[]itemDTO](t, out), "O+"); q != 5 {
		t.Errorf("expected 5 O+ left, got %d", q)
	}

	status, out = c.do(http.MethodGet, "/api/hospital/history", hosp, nil)
	if status != http.StatusOK {
		t.Fatalf("history: %d %s", status, out)
	}
	if hist := decode[[]map[string]any](t, out); len(hist) != 1 {
		t.Errorf("expected 1 distribution, got %d", len(hist))
	}

	status, out = c.do(http.MethodGet, "/api/audit-logs?entity_type=request", admin, nil)
	if status != http.StatusOK {
		t.Fatalf("audit: %d %s", status, out)
	}
	if logs := decode[[]map[string]any](t, out); len(logs) != 1 || logs[0]["user_name"] != "Admin" {
		t.Errorf("expected one audit entry by Admin, got %v", logs)
	}
}

func TestFulfill_InsufficientStockIs400(t *testing.T) {
	c := setup(t)
	admin := c.admin()
	hosp := c.hospital("er@general.org", "GEN-1")

	_, out := c.do(http.MethodPost, "/api/hospital/requests", hosp, map[string]any{"blood_type": "AB-", "quantity": 3})
	req := decode[requestDTO](t, out)

	status, out := c.do(http.MethodPut, fmt.Sprintf("/api/requests/%d", req.ID), admin, map[string]any{"status": "fulfilled"})
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d %s", status, out)
	}
	if body := decode[map[string]string](t, out); body["error"] == "" {
		t.Error("expected an error message")
	}

	status, _ = c.do(http.MethodPut, "/api/requests/9999", admin, map[string]any{"status": "approved"})
	if status != http.StatusNotFound {
		t.Errorf("expected 404 for a missing request, got %d", status)
	}
}

func TestRoleGates(t *testing.T) {
	c := setup(t)
	admin := c.admin()
	hosp := c.hospital("er@general.org", "GEN-1")
	donor := c.donor("dee@example.com")

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		want   int
	}{
		{"no token", http.MethodGet, "/api/inventory", "", http.StatusUnauthorized},
		{"bad token", http.MethodGet, "/api/inventory", "nope", http.StatusUnauthorized},
		{"hospital reads inventory", http.MethodGet, "/api/inventory", hosp, http.StatusForbidden},
		{"donor lists requests", http.MethodGet, "/api/requests", donor, http.StatusForbidden},
		{"hospital transitions", http.MethodPut, "/api/requests/1", hosp, http.StatusForbidden},
		{"admin creates request", http.MethodPost, "/api/requests", admin, http.StatusForbidden},
		{"hospital donates", http.MethodPost, "/api/donations", hosp, http.StatusForbidden},
		{"donor reads hospital dashboard", http.MethodGet, "/api/hospital/dashboard", donor, http.StatusForbidden},
		{"admin reads statistics", http.MethodGet, "/api/statistics", admin, http.StatusOK},
		{"admin reads directory", http.MethodGet, "/api/bloodbank/donors", admin, http.StatusOK},
		{"hospital reads dashboard", http.MethodGet, "/api/hospital/dashboard", hosp, http.StatusOK},
		{"donor reads profile", http.MethodGet, "/api/donor/profile", donor, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if status, out := c.do(tc.method, tc.path, tc.token, nil); status != tc.want {
				t.Errorf("expected %d, got %d %s", tc.want, status, out)
			}
		})
	}
}

func TestAdminRegistrationClosesAfterFirst(t *testing.T) {
	c := setup(t)
	c.admin()

	status, _ := c.do(http.MethodPost, "/api/auth/register/admin", "", auth.RegisterAdminRequest{
		Name: "Other", Email: "other@bank.org", Password: "secret123",
	})
	if status != http.StatusForbidden {
		t.Errorf("expected 403, got %d", status)
	}
}

func TestLoginAndMe(t *testing.T) {
	c := setup(t)
	c.donor("dee@example.com")

	status, out := c.do(http.MethodPost, "/api/auth/login", "", auth.LoginRequest{
		Email: "dee@example.com", Password: "secret123", Role: "donor",
	})
	if status != http.StatusOK {
		t.Fatalf("login: %d %s", status, out)
	}
	token := decode[auth.SessionResponse](t, out).Token

	status, out = c.do(http.MethodGet, "/api/auth/me", token, nil)
	if status != http.StatusOK {
		t.Fatalf("me: %d %s", status, out)
	}
	me := decode[struct {
		User    auth.UserResponse         `json:"user"`
		Profile auth.DonorProfileResponse `json:"profile"`
	}](t, out)
	if me.User.Email != "dee@example.com" || me.Profile.BloodType != models.BloodTypeOPos {
		t.Errorf("unexpected me: %+v", me)
	}

	status, _ = c.do(http.MethodPost, "/api/auth/login", "", auth.LoginRequest{
		Email: "dee@example.com", Password: "wrong-pass", Role: "donor",
	})
	if status != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", status)
	}
}

func TestDonationIdempotency(t *testing.T) {
	c := setup(t)
	donor := c.donor("dee@example.com")
	body := map[string]any{"date": "2024-05-01", "location": "Clinic", "quantity": 1}

	status, out := c.do(http.MethodPost, "/api/donations", donor, body, idempotency.HeaderKey, "abc")
	if status != http.StatusCreated {
		t.Fatalf("first donation: %d %s", status, out)
	}
	status, _ = c.do(http.MethodPost, "/api/donations", donor, body, idempotency.HeaderKey, "abc")
	if status != http.StatusConflict {
		t.Errorf("expected 409 for a repeated key, got %d", status)
	}

	// a failed attempt does not burn its key
	status, _ = c.do(http.MethodPost, "/api/donations", donor, map[string]any{"date": "bad"}, idempotency.HeaderKey, "xyz")
	if status != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	status, out = c.do(http.MethodPost, "/api/donations", donor, body, idempotency.HeaderKey, "xyz")
	if status != http.StatusCreated {
		t.Errorf("retry after failure: %d %s", status, out)
	}

	status, out = c.do(http.MethodGet, "/api/donations/history", donor, nil)
	if status != http.StatusOK {
		t.Fatalf("history: %d %s", status, out)
	}
	if list := decode[[]map[string]any](t, out); len(list) != 2 {
		t.Errorf("expected 2 donations, got %d", len(list))
	}
}

func TestInventoryAdjust(t *testing.T) {
	c := setup(t)
	admin := c.admin()

	status, out := c.do(http.MethodPost, "/api/inventory", admin, map[string]any{"blood_type": "A+", "quantity": 3, "action": "add"})
	if status != http.StatusOK {
		t.Fatalf("add: %d %s", status, out)
	}
	if q := quantityOf(decode[[]itemDTO](t, out), "A+"); q != 3 {
		t.Errorf("expected A+ at 3, got %d", q)
	}

	status, _ = c.do(http.MethodPost, "/api/inventory", admin, map[string]any{"blood_type": "A+", "quantity": 4, "action": "subtract"})
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for an overdraw, got %d", status)
	}

	status, _ = c.do(http.MethodPost, "/api/inventory", admin, map[string]any{"blood_type": "A+", "quantity": 1, "action": "steal"})
	if status != http.StatusBadRequest {
		t.Errorf("expected 400 for an unknown action, got %d", status)
	}
}

func TestStatisticsExport(t *testing.T) {
	c := setup(t)
	admin := c.admin()

	req := httptest.NewRequest(http.MethodGet, "/api/statistics/export", nil)
	req.Header.Set("Authorization", "Bearer "+admin)
	resp, err := c.app.Test(req, -1)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != xlsxContentType {
		t.Errorf("unexpected content type %q", ct)
	}
	body, _ := io.ReadAll(resp.Body)
	// xlsx files are zip archives
	if len(body) < 4 || string(body[:2]) != "PK" {
		t.Error("expected a zip payload")
	}
}
