package roster

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/kitout3/emargement-qr-app/internal/checkin"
)

func newTestRouter(ledger *checkin.Service) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	checkin.RegisterRoutes(api, ledger)
	RegisterRoutes(api, NewService(ledger))
	return r
}

func multipartImport(t *testing.T, csvBody, name, date string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	if csvBody != "" {
		fw, err := w.CreateFormFile("file", "roster.csv")
		if err != nil {
			t.Fatalf("form file: %v", err)
		}
		if _, err := fw.Write([]byte(csvBody)); err != nil {
			t.Fatalf("write form file: %v", err)
		}
	}
	if name != "" {
		_ = w.WriteField("name", name)
	}
	if date != "" {
		_ = w.WriteField("date", date)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	return &buf, w.FormDataContentType()
}

func TestImportEndpoint(t *testing.T) {
	r := newTestRouter(newTestLedger())

	body, ctype := multipartImport(t,
		"Registration ID,Full Name,Email\n101,Ada Lovelace,ada@x.com\n,ignored,\n",
		"Formation Azure 2025", "2025-06-01")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/import", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	if !strings.Contains(w.Body.String(), `"total_count":1`) {
		t.Fatalf("expected single imported participant, got %s", w.Body.String())
	}
}

func TestImportEndpointWithoutFile(t *testing.T) {
	r := newTestRouter(newTestLedger())

	body, ctype := multipartImport(t, "", "Soiree", "2025-06-01")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/import", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
}

func TestExportEndpoint(t *testing.T) {
	ledger := newTestLedger()
	r := newTestRouter(ledger)

	body, ctype := multipartImport(t,
		"Registration ID,Full Name\n101,Ada Lovelace\n",
		"Formation Azure 2025", "2025-06-01")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/events/import", body)
	req.Header.Set("Content-Type", ctype)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("import failed: %d %s", w.Code, w.Body.String())
	}

	var eventID string
	if i := strings.Index(w.Body.String(), `"event_id":"`); i >= 0 {
		rest := w.Body.String()[i+len(`"event_id":"`):]
		eventID = rest[:strings.IndexByte(rest, '"')]
	}
	if eventID == "" {
		t.Fatalf("no event id in %s", w.Body.String())
	}

	req = httptest.NewRequest(http.MethodGet, "/api/v1/events/"+eventID+"/export", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "emargement_Formation_Azure_2025_2025-06-01.csv") {
		t.Fatalf("unexpected Content-Disposition: %q", cd)
	}
	if !bytes.HasPrefix(w.Body.Bytes(), []byte("\xef\xbb\xbf")) {
		t.Fatal("expected BOM at start of export")
	}
	if !strings.Contains(w.Body.String(), "Ada Lovelace") {
		t.Fatalf("participant missing from export: %s", w.Body.String())
	}
}
