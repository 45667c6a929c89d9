package events

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRosterSchemaIDUsesExistingSubject(t *testing.T) {
	var path string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		path = r.URL.Path
		_ = json.NewEncoder(w).Encode(map[string]int{"id": 42})
	}))
	defer server.Close()

	registry := NewSchemaRegistry(server.URL, "roster_events", nil)

	id, err := registry.RosterSchemaID(context.Background())
	require.NoError(t, err)
	require.Equal(t, 42, id)
	require.Equal(t, "/subjects/roster_events-value/versions/latest", path)
}

func TestRosterSchemaIDRegistersOnFirstUse(t *testing.T) {
	var registered struct {
		SchemaType string `json:"schemaType"`
		Schema     string `json:"schema"`
	}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		require.Equal(t, "/subjects/roster_events-value/versions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&registered))
		_ = json.NewEncoder(w).Encode(map[string]int{"id": 7})
	}))
	defer server.Close()

	registry := NewSchemaRegistry(server.URL, "roster_events", nil)

	id, err := registry.RosterSchemaID(context.Background())
	require.NoError(t, err)
	require.Equal(t, 7, id)
	require.Equal(t, "JSON", registered.SchemaType)
	require.Contains(t, registered.Schema, "RosterChanged")
}

func TestRosterSchemaIDSurfacesRegistryErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "schema registry unavailable", http.StatusInternalServerError)
	}))
	defer server.Close()

	registry := NewSchemaRegistry(server.URL, "roster_events", nil)

	_, err := registry.RosterSchemaID(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "roster_events-value")
}
