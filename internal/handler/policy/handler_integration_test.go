package policy

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"os"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/howdoihelp/howdoihelp/internal/data"
)

const testMMDBPath = "../../../testdata/GeoLite2-Country-Test.mmdb"

func skipIfNoMMDB(t *testing.T) {
	t.Helper()
	if _, err := os.Stat(testMMDBPath); os.IsNotExist(err) {
		t.Skip("test MMDB file not found; download it first")
	}
}

func setupIntegrationRouter(t *testing.T) *gin.Engine {
	t.Helper()
	skipIfNoMMDB(t)

	lookup, err := data.NewReloadingLookup(testMMDBPath, slog.New(slog.NewTextHandler(io.Discard, nil)))
	if err != nil {
		t.Fatalf("failed to open MMDB: %v", err)
	}
	t.Cleanup(func() { lookup.Close() })

	return setupRouter(lookup)
}

func TestIntegration_CheckGB(t *testing.T) {
	router := setupIntegrationRouter(t)

	body, _ := json.Marshal(CheckRequest{IP: "2.125.160.216"})
	w, resp := doCheck(t, router, body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.CountryCode != "GB" {
		t.Errorf("expected country GB, got %s", resp.CountryCode)
	}
	if resp.IsAuthoritarian {
		t.Error("expected is_authoritarian=false for GB")
	}
}

func TestIntegration_CheckUS(t *testing.T) {
	router := setupIntegrationRouter(t)

	body, _ := json.Marshal(CheckRequest{IP: "216.160.83.56"})
	w, resp := doCheck(t, router, body)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	if resp.CountryCode != "US" {
		t.Errorf("expected country US, got %s", resp.CountryCode)
	}
	if !resp.ShowAdvocacy {
		t.Error("expected show_advocacy=true for US")
	}
}
