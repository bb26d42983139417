package httpserver

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"timecore/internal/auth"
	"timecore/internal/models"
	"timecore/internal/testdb"
)

const testSecret = "router-test-secret"

func token(t *testing.T, userID, tenantID string, role auth.Role) string {
	t.Helper()
	claims := jwt.MapClaims{
		"sub":       userID,
		"tenant_id": tenantID,
		"role":      string(role),
		"exp":       time.Now().Add(time.Hour).Unix(),
	}
	s, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatal(err)
	}
	return s
}

func do(t *testing.T, h http.Handler, method, path, bearer string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), v); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
}

func TestRouter(t *testing.T) {
	t.Setenv("JWT_SECRET", testSecret)
	db := testdb.New(t)
	h := NewRouter(db, zap.NewNop().Sugar())

	tenant := uuid.NewString()
	staffID := uuid.NewString()
	staff := token(t, staffID, tenant, auth.RoleStaff)
	manager := token(t, uuid.NewString(), tenant, auth.RoleManager)

	t.Run("healthz is open", func(t *testing.T) {
		if w := do(t, h, http.MethodGet, "/healthz", "", nil); w.Code != http.StatusOK {
			t.Fatalf("healthz = %d", w.Code)
		}
	})

	t.Run("missing token is unauthorized", func(t *testing.T) {
		if w := do(t, h, http.MethodGet, "/v1/entries", "", nil); w.Code != http.StatusUnauthorized {
			t.Fatalf("got %d, want 401", w.Code)
		}
	})

	t.Run("role gates", func(t *testing.T) {
		if w := do(t, h, http.MethodGet, "/v1/approval-queue", staff, nil); w.Code != http.StatusForbidden {
			t.Fatalf("staff queue access = %d, want 403", w.Code)
		}
		if w := do(t, h, http.MethodPost, "/v1/rates/staff", staff, map[string]any{
			"subject_id": staffID, "hourly_rate": 120,
		}); w.Code != http.StatusForbidden {
			t.Fatalf("staff rate write = %d, want 403", w.Code)
		}
	})

	t.Run("timer and approval flow", func(t *testing.T) {
		w := do(t, h, http.MethodPost, "/v1/rates/staff", manager, map[string]any{
			"subject_id": staffID, "hourly_rate": 120,
		})
		if w.Code != http.StatusOK {
			t.Fatalf("create rate = %d: %s", w.Code, w.Body.String())
		}

		w = do(t, h, http.MethodPost, "/v1/timer/start", staff, map[string]any{"description": "vat return"})
		if w.Code != http.StatusOK {
			t.Fatalf("start timer = %d: %s", w.Code, w.Body.String())
		}
		var sess models.TimerSession
		decode(t, w, &sess)

		if w = do(t, h, http.MethodPost, "/v1/timer/start", staff, map[string]any{}); w.Code != http.StatusConflict {
			t.Fatalf("second start = %d, want 409", w.Code)
		}

		w = do(t, h, http.MethodPost, "/v1/timer/stop", staff, map[string]any{"session_id": sess.ID})
		if w.Code != http.StatusOK {
			t.Fatalf("stop timer = %d: %s", w.Code, w.Body.String())
		}
		var entry models.TimeEntry
		decode(t, w, &entry)
		if entry.Status != models.StatusDraft {
			t.Fatalf("stopped entry status = %s", entry.Status)
		}
		if entry.RateApplied == nil || *entry.RateApplied != 120 {
			t.Fatalf("rate_applied = %v, want 120", entry.RateApplied)
		}

		if w = do(t, h, http.MethodPost, "/v1/entries/"+entry.ID+"/submit", staff, nil); w.Code != http.StatusOK {
			t.Fatalf("submit = %d: %s", w.Code, w.Body.String())
		}
		if w = do(t, h, http.MethodPost, "/v1/entries/"+entry.ID+"/approve", staff, nil); w.Code != http.StatusForbidden {
			t.Fatalf("staff approve = %d, want 403", w.Code)
		}
		if w = do(t, h, http.MethodPost, "/v1/entries/"+entry.ID+"/approve", manager, nil); w.Code != http.StatusOK {
			t.Fatalf("manager approve = %d: %s", w.Code, w.Body.String())
		}

		w = do(t, h, http.MethodPost, "/v1/mark-billed", staff, map[string]any{"entry_ids": []string{entry.ID}})
		if w.Code != http.StatusOK {
			t.Fatalf("mark billed = %d: %s", w.Code, w.Body.String())
		}
		var billed struct {
			Count int64 `json:"count"`
		}
		decode(t, w, &billed)
		if billed.Count != 1 {
			t.Fatalf("billed count = %d, want 1", billed.Count)
		}

		w = do(t, h, http.MethodGet, "/v1/entries/"+entry.ID+"/audit", staff, nil)
		if w.Code != http.StatusOK {
			t.Fatalf("audit = %d", w.Code)
		}
		var history struct {
			Data []models.AuditRecord `json:"data"`
		}
		decode(t, w, &history)
		if len(history.Data) != 4 { // create, submit, approve, mark_billed
			t.Fatalf("audit records = %d, want 4", len(history.Data))
		}
	})
}
