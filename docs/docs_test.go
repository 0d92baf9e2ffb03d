package docs

import (
	"encoding/json"
	"testing"
)

func TestSwaggerTemplateRenders(t *testing.T) {
	rendered := SwaggerInfo.ReadDoc()

	var doc struct {
		Swagger     string                     `json:"swagger"`
		BasePath    string                     `json:"basePath"`
		Paths       map[string]json.RawMessage `json:"paths"`
		Definitions map[string]json.RawMessage `json:"definitions"`
	}
	if err := json.Unmarshal([]byte(rendered), &doc); err != nil {
		t.Fatalf("rendered swagger doc is not valid JSON: %v", err)
	}

	if doc.Swagger != "2.0" {
		t.Errorf("swagger version = %q, want 2.0", doc.Swagger)
	}
	if doc.BasePath != "/api/v1" {
		t.Errorf("basePath = %q, want /api/v1", doc.BasePath)
	}

	for _, path := range []string{
		"/auth/login",
		"/events",
		"/registrations/register",
		"/admin/stats",
		"/organizer/events/{id}/participants",
	} {
		if _, ok := doc.Paths[path]; !ok {
			t.Errorf("path %s missing from swagger doc", path)
		}
	}
	if _, ok := doc.Definitions["response.APIResponse"]; !ok {
		t.Error("definition response.APIResponse missing from swagger doc")
	}
}
