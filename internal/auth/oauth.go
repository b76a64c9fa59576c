package auth

import (
	"context"

	"golang.org/x/oauth2"

	"github.com/coursecal/coursecal/internal/apperrors"
	"github.com/coursecal/coursecal/internal/config"
)

// Service wraps the authorization-code flow against the LMS. The flow is
// linear: redirect to the authorize URL, then exchange the returned code.
type Service struct {
	config *oauth2.Config
}

func NewService(cfg config.OAuthConfig) *Service {
	return &Service{
		config: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
	}
}

// AuthURL is where unauthenticated users are redirected. The upstream does
// not verify the state parameter, so a fixed token is sent.
func (s *Service) AuthURL() string {
	return s.config.AuthCodeURL("state-token")
}

func (s *Service) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	token, err := s.config.Exchange(ctx, code)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeUpstreamError, "failed to exchange authorization code")
	}
	return token, nil
}
