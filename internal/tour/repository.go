package tour

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Repository loads tour descriptors by id.
type Repository interface {
	// Load fetches and validates a tour. Failures are *LoadError.
	Load(ctx context.Context, tourID string) (*Tour, error)
}

// HTTPRepository fetches tours from the tour service at GET /api/tour/{id}.
type HTTPRepository struct {
	baseURL string
	client  *http.Client
}

// NewHTTPRepository creates a repository for the service at baseURL.
// A nil client uses http.DefaultClient.
func NewHTTPRepository(baseURL string, client *http.Client) *HTTPRepository {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPRepository{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
	}
}

func (r *HTTPRepository) Load(ctx context.Context, tourID string) (*Tour, error) {
	if tourID == "" {
		return nil, &LoadError{TourID: tourID, Err: fmt.Errorf("tour id is required")}
	}

	endpoint := fmt.Sprintf("%s/api/tour/%s", r.baseURL, url.PathEscape(tourID))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, &LoadError{TourID: tourID, Err: fmt.Errorf("creating request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &LoadError{TourID: tourID, Err: fmt.Errorf("tour service request failed: %w", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{TourID: tourID, Err: fmt.Errorf("reading tour response: %w", err)}
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, &LoadError{TourID: tourID, Err: ErrNotFound}
	case resp.StatusCode != http.StatusOK:
		return nil, &LoadError{TourID: tourID, Err: fmt.Errorf("tour service returned status %d: %s", resp.StatusCode, string(body))}
	}

	return decode(tourID, body, json.Unmarshal)
}

// decode parses body with unmarshal and validates the result.
func decode(tourID string, body []byte, unmarshal func([]byte, any) error) (*Tour, error) {
	var t Tour
	if err := unmarshal(body, &t); err != nil {
		return nil, &LoadError{TourID: tourID, Err: fmt.Errorf("%w: %w", ErrInvalid, err)}
	}
	t.ID = tourID
	if err := Validate(&t); err != nil {
		return nil, &LoadError{TourID: tourID, Err: err}
	}
	return &t, nil
}
