package google

import (
	"context"
	"errors"
	"fmt"

	"github.com/lovelog/lovelog/internal/config"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	googleOAuth "golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

var ErrMissingCredentials = errors.New("google credentials are incomplete")

// NewCalendarService creates a read-only Calendar client authorized with the
// configured refresh token.
func NewCalendarService(ctx context.Context, cfg config.Google) (*gcal.Service, error) {
	if cfg.ClientId == "" || cfg.ClientSecret == "" || cfg.RefreshToken == "" {
		return nil, ErrMissingCredentials
	}
	oauthConfig := &oauth2.Config{
		ClientID:     cfg.ClientId,
		ClientSecret: cfg.ClientSecret,
		Endpoint:     googleOAuth.Endpoint,
		Scopes:       []string{gcal.CalendarReadonlyScope},
	}
	tokens := oauthConfig.TokenSource(ctx, &oauth2.Token{RefreshToken: cfg.RefreshToken})

	service, err := gcal.NewService(ctx, option.WithTokenSource(tokens))
	if err != nil {
		err := fmt.Errorf("unable to create Calendar client: %w", err)
		log.Error(err)
		return nil, err
	}
	return service, nil
}
