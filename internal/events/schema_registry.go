package events

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// SchemaRegistry resolves the RosterChanged schema against a Confluent Schema
// Registry. The service owns exactly one subject, <topic>-value, so the client
// is bound to it at construction.
type SchemaRegistry struct {
	baseURL    string
	subject    string
	httpClient *http.Client
	logger     *zap.SugaredLogger
}

// NewSchemaRegistry constructs a registry client for the roster topic's subject.
func NewSchemaRegistry(baseURL, topic string, logger *zap.SugaredLogger) *SchemaRegistry {
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}
	return &SchemaRegistry{
		baseURL:    baseURL,
		subject:    topic + "-value",
		httpClient: &http.Client{Timeout: 10 * time.Second},
		logger:     logger,
	}
}

// RosterSchemaID returns the registered schema ID for RosterChanged,
// registering the schema on first use.
func (r *SchemaRegistry) RosterSchemaID(ctx context.Context) (int, error) {
	if id, err := r.latestVersion(ctx); err == nil {
		return id, nil
	}

	r.logger.Infow("registering roster schema", "subject", r.subject)
	return r.register(ctx)
}

func (r *SchemaRegistry) latestVersion(ctx context.Context) (int, error) {
	url := fmt.Sprintf("%s/subjects/%s/versions/latest", r.baseURL, r.subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, err
	}
	return r.schemaIDFrom(req)
}

func (r *SchemaRegistry) register(ctx context.Context) (int, error) {
	body, err := json.Marshal(map[string]any{
		"schemaType": "JSON",
		"schema":     rosterChangedSchema,
	})
	if err != nil {
		return 0, err
	}

	url := fmt.Sprintf("%s/subjects/%s/versions", r.baseURL, r.subject)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/vnd.schemaregistry.v1+json")

	return r.schemaIDFrom(req)
}

// schemaIDFrom performs the request and decodes the registry's {"id": N} body.
func (r *SchemaRegistry) schemaIDFrom(req *http.Request) (int, error) {
	resp, err := r.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		data, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("schema registry: %s returned %d: %s", r.subject, resp.StatusCode, data)
	}

	var payload struct {
		ID int `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return 0, err
	}
	return payload.ID, nil
}
