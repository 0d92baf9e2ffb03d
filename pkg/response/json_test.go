package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJSONSuccessEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	JSON(rec, http.StatusOK, map[string]string{"hello": "world"})

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("content type = %q", ct)
	}

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !resp.Success {
		t.Error("success = false, want true")
	}
	if resp.Error != nil {
		t.Error("error is set on a success response")
	}
}

func TestErrorEnvelope(t *testing.T) {
	rec := httptest.NewRecorder()
	NotFound(rec, "event not found")

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}

	var resp APIResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Success {
		t.Error("success = true on an error response")
	}
	if resp.Error == nil {
		t.Fatal("error info missing")
	}
	if resp.Error.Code != "NOT_FOUND" {
		t.Errorf("code = %q, want NOT_FOUND", resp.Error.Code)
	}
	if resp.Error.Message != "event not found" {
		t.Errorf("message = %q", resp.Error.Message)
	}
}

func TestNewMeta(t *testing.T) {
	tests := []struct {
		page, perPage  int
		total          int64
		wantTotalPages int
	}{
		{1, 10, 0, 0},
		{1, 10, 10, 1},
		{1, 10, 11, 2},
		{3, 20, 95, 5},
	}

	for _, tt := range tests {
		meta := NewMeta(tt.page, tt.perPage, tt.total)
		if meta.TotalPages != tt.wantTotalPages {
			t.Errorf("NewMeta(%d, %d, %d).TotalPages = %d, want %d",
				tt.page, tt.perPage, tt.total, meta.TotalPages, tt.wantTotalPages)
		}
	}
}
