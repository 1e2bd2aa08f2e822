package httperr_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/d0x2f/retro.tools-backend/internal/app/system/httperr"
)

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body %q: %v", rec.Body.String(), err)
	}
	return body.Error
}

func TestErrorResponses(t *testing.T) {
	cases := []struct {
		name       string
		write      func(http.ResponseWriter)
		wantStatus int
		wantError  string
	}{
		{"not found", func(w http.ResponseWriter) { httperr.NotFound(w) }, http.StatusNotFound, "Not Found"},
		{"unauthorized", func(w http.ResponseWriter) { httperr.Unauthorized(w) }, http.StatusUnauthorized, "Unauthorized"},
		{"forbidden", func(w http.ResponseWriter) { httperr.Forbidden(w) }, http.StatusForbidden, "Forbidden"},
		{"bad request", func(w http.ResponseWriter) { httperr.BadRequest(w, "Empty cards are not allowed.") }, http.StatusBadRequest, "Empty cards are not allowed."},
		{"internal", func(w http.ResponseWriter) { httperr.Internal(w) }, http.StatusInternalServerError, "Something went wrong"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			tc.write(rec)
			if rec.Code != tc.wantStatus {
				t.Fatalf("status: got %d, want %d", rec.Code, tc.wantStatus)
			}
			if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
				t.Fatalf("content type: got %q, want application/json", ct)
			}
			if got := decodeError(t, rec); got != tc.wantError {
				t.Fatalf("error: got %q, want %q", got, tc.wantError)
			}
		})
	}
}

func TestJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	httperr.JSON(rec, http.StatusOK, map[string]int{"votes": 3})
	if rec.Code != http.StatusOK {
		t.Fatalf("status: got %d, want %d", rec.Code, http.StatusOK)
	}
	var body map[string]int
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("failed to decode body: %v", err)
	}
	if body["votes"] != 3 {
		t.Fatalf("votes: got %d, want 3", body["votes"])
	}
}
