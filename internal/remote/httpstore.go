package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"
)

// HTTPStore implements Store against the hazard service's REST surface:
//
//	GET {base}/hazards          full snapshot
//	PUT {base}/hazards/{id}     whole-document overwrite
type HTTPStore struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewHTTPStore creates a remote store client.
func NewHTTPStore(baseURL string, timeout time.Duration, logger *slog.Logger) *HTTPStore {
	return &HTTPStore{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
	}
}

// Snapshot fetches the full remote record set.
func (s *HTTPStore) Snapshot(ctx context.Context) ([]Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseURL+"/hazards", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("snapshot request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("remote store error: status %d: %s", resp.StatusCode, body)
	}

	var docs []Document
	if err := json.NewDecoder(resp.Body).Decode(&docs); err != nil {
		return nil, fmt.Errorf("decode snapshot: %w", err)
	}
	return docs, nil
}

// putResponse is the server's acknowledgment of a document write.
type putResponse struct {
	Ref             string    `json:"ref"`
	ServerUpdatedAt time.Time `json:"server_updated_at"`
}

// Put overwrites the full remote document and returns the server ref.
func (s *HTTPStore) Put(ctx context.Context, doc Document) (string, error) {
	body, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("marshal document: %w", err)
	}

	u := fmt.Sprintf("%s/hazards/%s", s.baseURL, url.PathEscape(doc.ID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, u, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("put request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(resp.Body)
		return "", fmt.Errorf("remote store error: status %d: %s", resp.StatusCode, respBody)
	}

	var ack putResponse
	if err := json.NewDecoder(resp.Body).Decode(&ack); err != nil && err != io.EOF {
		return "", fmt.Errorf("decode put response: %w", err)
	}
	if ack.Ref == "" {
		// Older servers acknowledge without a body; the path is the ref.
		ack.Ref = "hazards/" + doc.ID
	}
	return ack.Ref, nil
}
