package api

import (
	"net/http"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/vyronlabs/agencyos/internal/brain"
)

func TestCreateDocumentEndpoint(t *testing.T) {
	ts, deps := newTestServer(t)
	deps.ingestor.doc = &brain.Document{
		ID:         uuid.New(),
		Filename:   "contract.txt",
		ChunkCount: 4,
		CreatedAt:  time.Now(),
	}

	resp := postJSON(t, ts.URL+"/api/documents", map[string]any{
		"filename":  "contract.txt",
		"text":      "Section 1. Scope of work...",
		"scope_ref": "client-1",
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("status = %d, want 201", resp.StatusCode)
	}
	body := decodeBody[brain.Document](t, resp)
	if body.ChunkCount != 4 || body.Filename != "contract.txt" {
		t.Errorf("document = %+v", body)
	}

	if deps.ingestor.lastFile != "contract.txt" || deps.ingestor.lastScope != "client-1" {
		t.Errorf("forwarded file=%q scope=%q", deps.ingestor.lastFile, deps.ingestor.lastScope)
	}
}

func TestCreateDocumentRequiresFilename(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := postJSON(t, ts.URL+"/api/documents", map[string]any{"text": "content"})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestListDocumentsEndpoint(t *testing.T) {
	ts, deps := newTestServer(t)
	deps.docs.docs = []brain.Document{
		{ID: uuid.New(), Filename: "a.txt", ChunkCount: 2},
		{ID: uuid.New(), Filename: "b.txt", ChunkCount: 7},
	}

	resp, err := http.Get(ts.URL + "/api/documents?scope_ref=client-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[listDocumentsResponse](t, resp)
	if body.Total != 2 {
		t.Errorf("total = %d, want 2", body.Total)
	}
}

func TestDeleteDocumentEndpoint(t *testing.T) {
	ts, deps := newTestServer(t)
	id := uuid.New()

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/documents/"+id.String(), nil)
	if err != nil {
		t.Fatalf("NewRequest: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if deps.docs.deletedID != id {
		t.Errorf("deleted id = %s, want %s", deps.docs.deletedID, id)
	}
}

func TestDeleteDocumentNotFound(t *testing.T) {
	ts, deps := newTestServer(t)
	deps.docs.err = brain.ErrNotFound

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/documents/"+uuid.NewString(), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestDeleteDocumentBadID(t *testing.T) {
	ts, _ := newTestServer(t)

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/documents/not-a-uuid", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
}

func TestDeactivateUnitEndpoint(t *testing.T) {
	ts, deps := newTestServer(t)
	id := uuid.New()

	req, _ := http.NewRequest(http.MethodDelete, ts.URL+"/api/units/"+id.String(), nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("DELETE: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("status = %d, want 204", resp.StatusCode)
	}
	if deps.docs.deactivatedID != id {
		t.Errorf("deactivated id = %s, want %s", deps.docs.deactivatedID, id)
	}
}

func TestStatsEndpoint(t *testing.T) {
	ts, deps := newTestServer(t)
	deps.docs.stats = brain.Stats{
		TotalUnits:     12,
		TotalDocuments: 2,
		BySource:       map[brain.SourceKind]int{brain.SourceDocumentChunk: 9, brain.SourceManualInteraction: 3},
	}

	resp, err := http.Get(ts.URL + "/api/stats?scope_ref=client-1")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody[brain.Stats](t, resp)
	if body.TotalUnits != 12 || body.BySource[brain.SourceDocumentChunk] != 9 {
		t.Errorf("stats = %+v", body)
	}
}
