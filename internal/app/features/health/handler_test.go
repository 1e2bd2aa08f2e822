package health_test

import (
	"net/http"
	"testing"

	"go.uber.org/zap"

	"github.com/d0x2f/retro.tools-backend/internal/app/features/health"
	"github.com/d0x2f/retro.tools-backend/internal/testutil"
)

func TestServe(t *testing.T) {
	db := testutil.SetupTestDB(t)
	h := health.NewHandler(db.Client(), zap.NewNop())

	req := testutil.NewRequest(http.MethodGet, "/health")
	rec := testutil.NewRecorder()

	h.Serve(rec.ResponseRecorder, req)
	rec.AssertStatus(t, http.StatusOK)

	var body struct {
		Status   string `json:"status"`
		Database string `json:"database"`
	}
	rec.DecodeJSON(t, &body)
	if body.Status != "ok" {
		t.Errorf("status: got %q", body.Status)
	}
	if body.Database != "connected" {
		t.Errorf("database: got %q", body.Database)
	}
}
