package swagger

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDocListsEveryRoute(t *testing.T) {
	var doc struct {
		Paths map[string]map[string]json.RawMessage `json:"paths"`
	}
	require.NoError(t, json.Unmarshal([]byte(SwaggerInfo.ReadDoc()), &doc))

	routes := map[string][]string{
		"/api/lab/procedures/{id}/complete":     {"get"},
		"/api/lab/samples/{id}/complete":        {"get"},
		"/api/lab/samples/{id}":                 {"put", "delete"},
		"/api/lab/results/{id}":                 {"put", "delete"},
		"/api/lab/inventory/{id}":               {"get", "put", "delete"},
		"/api/vet/shipments/next-number":        {"get"},
		"/api/vet/shipments/{id}":               {"get", "put", "delete"},
		"/api/vet/traders":                      {"get", "post"},
		"/api/vet/traders/{id}":                 {"put", "delete"},
		"/api/{domain}/users/{id}":              {"get", "put", "delete"},
		"/api/{domain}/notifications":           {"get", "post"},
		"/api/{domain}/notifications/{id}/read": {"patch"},
		"/api/{domain}/notifications/read-all":  {"post"},
		"/api/{domain}/notifications/{id}":      {"delete"},
		"/logout":                               {"post"},
	}
	for path, methods := range routes {
		ops, ok := doc.Paths[path]
		if !assert.True(t, ok, path) {
			continue
		}
		for _, m := range methods {
			assert.Contains(t, ops, m, "%s %s", m, path)
		}
	}
}
