package event

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var ErrInvalidResponse = errors.New("invalid events response structure")

// RestSource reads events from the LoveLog REST API (GET {baseUrl}/events).
// Requests carry the bearer token handed out by tokens; the token is never
// stored here.
type RestSource struct {
	baseUrl string
	client  *http.Client
}

func NewRestSource(baseUrl string, tokens oauth2.TokenSource, timeout time.Duration) *RestSource {
	var client *http.Client
	if tokens != nil {
		client = oauth2.NewClient(context.Background(), tokens)
	} else {
		client = &http.Client{}
	}
	client.Timeout = timeout
	return &RestSource{
		baseUrl: strings.TrimRight(baseUrl, "/"),
		client:  client,
	}
}

// StaticToken wraps a configured bearer token. An empty token disables
// authentication.
func StaticToken(token string) oauth2.TokenSource {
	if token == "" {
		return nil
	}
	return oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
}

func (s *RestSource) FetchEvents(ctx context.Context) ([]Event, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.baseUrl+"/events", nil)
	if err != nil {
		return nil, fmt.Errorf("could not create events request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	log.Debugf("Fetching events from %s", req.URL)
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("could not fetch events: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read events response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("events endpoint returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}
	eventsJson, ok := raw["events"]
	if !ok || !bytes.HasPrefix(bytes.TrimSpace(eventsJson), []byte("[")) {
		return nil, fmt.Errorf("%w: missing events array", ErrInvalidResponse)
	}

	var dtos []EventDTO
	if err := json.Unmarshal(eventsJson, &dtos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
	}

	events := make([]Event, 0, len(dtos))
	for _, dto := range dtos {
		events = append(events, FromDTO(dto))
	}
	log.Debugf("Fetched %d events", len(events))
	return events, nil
}
