package sink

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"

	"gndsync/internal/models"
)

// LDP posts each batch into a Linked Data Platform container. The batch label
// is sent as the Slug and the container must answer 201 Created.
type LDP struct {
	container  string
	httpClient *http.Client
	username   string
	password   string
}

// NewLDP returns a writer for the container URL. Empty credentials send no
// Authorization header.
func NewLDP(container, username, password string) *LDP {
	return &LDP{
		container:  container,
		httpClient: &http.Client{},
		username:   username,
		password:   password,
	}
}

func (l *LDP) Name() string { return "ldp" }

func (l *LDP) Write(ctx context.Context, b models.Batch) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, l.container, bytes.NewReader(b.Payload))
	if err != nil {
		return fmt.Errorf("build ldp request: %w", err)
	}
	req.Header.Set("Slug", b.Label)
	req.Header.Set("Content-Type", b.ContentType)
	if l.username != "" || l.password != "" {
		req.SetBasicAuth(l.username, l.password)
	}

	resp, err := l.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("post %s: %w", b.Label, err)
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("post %s: unexpected status %s", b.Label, resp.Status)
	}
	return nil
}
