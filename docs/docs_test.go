package docs

import (
	"encoding/json"
	"testing"

	"github.com/swaggo/swag"
)

func TestSwaggerDocListsRoutes(t *testing.T) {
	raw, err := swag.ReadDoc(SwaggerInfo.InstanceName())
	if err != nil {
		t.Fatalf("failed to read swagger doc: %v", err)
	}

	var doc struct {
		Info  struct{ Title string } `json:"info"`
		Paths map[string]map[string]json.RawMessage
	}
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		t.Fatalf("swagger doc is not valid JSON: %v", err)
	}
	if doc.Info.Title != "StockTrack API" {
		t.Errorf("unexpected title %q", doc.Info.Title)
	}

	routes := []struct{ path, method string }{
		{"/session", "post"},
		{"/state", "get"},
		{"/events", "get"},
		{"/input", "put"},
		{"/suggestions/select", "post"},
		{"/suggestions/dismiss", "post"},
		{"/quote", "post"},
		{"/portfolios", "post"},
		{"/portfolios/active", "put"},
		{"/portfolios/form", "put"},
		{"/portfolios/{id}", "delete"},
		{"/holdings", "post"},
		{"/holdings/reorder", "post"},
		{"/holdings/{symbol}", "delete"},
	}
	for _, r := range routes {
		if _, ok := doc.Paths[r.path][r.method]; !ok {
			t.Errorf("missing %s %s", r.method, r.path)
		}
	}
}
