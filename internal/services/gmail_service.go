package services

import (
	"context"
	"errors"

	"studentdash-be/config"
	"studentdash-be/internal/models"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const gmailUserID = "me"

var metadataHeaders = []string{"From", "To", "Subject", "Date"}

// MailProvider is the narrow Gmail surface the statistics engine
// consumes. The engine never mutates provider state.
type MailProvider interface {
	ListMessages(ctx context.Context, query string, maxResults int64) ([]*gmail.Message, error)
	GetMessageMetadata(ctx context.Context, id string) (*gmail.Message, error)
	ListThreads(ctx context.Context, query string, maxResults int64) ([]*gmail.Thread, error)
	GetThread(ctx context.Context, id string) (*gmail.Thread, error)
}

type GmailService struct {
	cfg *config.Config
}

func NewGmailService(cfg *config.Config) *GmailService {
	return &GmailService{
		cfg: cfg,
	}
}

func (s *GmailService) getOAuthConfig() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     s.cfg.GoogleClientID,
		ClientSecret: s.cfg.GoogleClientSecret,
		RedirectURL:  s.cfg.FrontendURL,
		Scopes: []string{
			gmail.GmailReadonlyScope,
			gmail.GmailMetadataScope,
		},
		Endpoint: google.Endpoint,
	}
}

// ProviderFor builds a MailProvider bound to the user's stored Google
// tokens. Token refresh happens inside the oauth2 token source before
// aggregation; the provider itself treats the credential as read-only.
func (s *GmailService) ProviderFor(ctx context.Context, user *models.User) (MailProvider, error) {
	if user.GoogleRefreshToken == "" {
		return nil, errors.New("no google refresh token found")
	}

	config := s.getOAuthConfig()
	token := &oauth2.Token{
		AccessToken:  user.GoogleAccessToken,
		RefreshToken: user.GoogleRefreshToken,
		Expiry:       user.GoogleTokenExpiry,
		TokenType:    "Bearer",
	}

	srv, err := gmail.NewService(ctx, option.WithTokenSource(config.TokenSource(ctx, token)))
	if err != nil {
		return nil, err
	}

	return &gmailProvider{srv: srv}, nil
}

type gmailProvider struct {
	srv *gmail.Service
}

func (p *gmailProvider) ListMessages(ctx context.Context, query string, maxResults int64) ([]*gmail.Message, error) {
	resp, err := p.srv.Users.Messages.List(gmailUserID).
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Messages, nil
}

func (p *gmailProvider) GetMessageMetadata(ctx context.Context, id string) (*gmail.Message, error) {
	return p.srv.Users.Messages.Get(gmailUserID, id).
		Format("metadata").
		MetadataHeaders(metadataHeaders...).
		Context(ctx).
		Do()
}

func (p *gmailProvider) ListThreads(ctx context.Context, query string, maxResults int64) ([]*gmail.Thread, error) {
	resp, err := p.srv.Users.Threads.List(gmailUserID).
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Threads, nil
}

func (p *gmailProvider) GetThread(ctx context.Context, id string) (*gmail.Thread, error) {
	return p.srv.Users.Threads.Get(gmailUserID, id).
		Format("metadata").
		MetadataHeaders(metadataHeaders...).
		Context(ctx).
		Do()
}
