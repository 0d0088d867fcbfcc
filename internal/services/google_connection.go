package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/yungbote/chargeback-backend/internal/data/repos"
	types "github.com/yungbote/chargeback-backend/internal/domain"
	"github.com/yungbote/chargeback-backend/internal/platform/apierr"
	"github.com/yungbote/chargeback-backend/internal/platform/dbctx"
	"github.com/yungbote/chargeback-backend/internal/platform/logger"
)

const oauthStateTTL = 10 * time.Minute

// GoogleConnectionService owns the one Google account every document call
// runs as.
type GoogleConnectionService interface {
	AuthURL(ctx context.Context) (string, error)
	HandleCallback(ctx context.Context, code, state string) error
	Connected(ctx context.Context) (bool, error)
	// TokenSource returns a source that refreshes as needed and persists
	// every refreshed token. A missing credential is apierr.NotConnected.
	TokenSource(ctx context.Context) (oauth2.TokenSource, error)
}

type googleConnectionService struct {
	log    *logger.Logger
	creds  repos.CredentialRepo
	oauth  *oauth2.Config
	secret []byte
	now    func() time.Time
}

func NewGoogleConnectionService(log *logger.Logger, creds repos.CredentialRepo, oauth *oauth2.Config, stateSecret string) GoogleConnectionService {
	return &googleConnectionService{
		log:    log.With("service", "GoogleConnectionService"),
		creds:  creds,
		oauth:  oauth,
		secret: []byte(stateSecret),
		now:    time.Now,
	}
}

func (s *googleConnectionService) AuthURL(ctx context.Context) (string, error) {
	if s.oauth == nil || s.oauth.ClientID == "" {
		return "", apierr.Validation("Google OAuth is not configured")
	}
	state, err := s.signState()
	if err != nil {
		return "", fmt.Errorf("sign oauth state: %w", err)
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOffline, oauth2.SetAuthURLParam("prompt", "consent")), nil
}

func (s *googleConnectionService) signState() (string, error) {
	now := s.now()
	claims := jwt.RegisteredClaims{
		Subject:   "google-oauth",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(oauthStateTTL)),
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
}

func (s *googleConnectionService) verifyState(state string) error {
	claims := &jwt.RegisteredClaims{}
	tok, err := jwt.ParseWithClaims(state, claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithTimeFunc(s.now))
	if err != nil || !tok.Valid || claims.Subject != "google-oauth" {
		return apierr.Validation("invalid or expired OAuth state")
	}
	return nil
}

func (s *googleConnectionService) HandleCallback(ctx context.Context, code, state string) error {
	if code == "" {
		return apierr.Validation("Missing code")
	}
	if err := s.verifyState(state); err != nil {
		return err
	}
	tok, err := s.oauth.Exchange(ctx, code)
	if err != nil {
		return apierr.Remote("google-oauth", 0, "", fmt.Errorf("exchange code: %w", err))
	}
	if tok.RefreshToken == "" {
		// Without offline access the connection dies with the access token.
		s.log.Warn("oauth exchange returned no refresh token")
	}
	if err := s.creds.Save(dbctx.Context{Ctx: ctx}, credentialFromToken(tok, "")); err != nil {
		return fmt.Errorf("save google credential: %w", err)
	}
	s.log.Info("google account connected")
	return nil
}

func (s *googleConnectionService) Connected(ctx context.Context) (bool, error) {
	cred, err := s.creds.Get(dbctx.Context{Ctx: ctx})
	if err != nil {
		return false, fmt.Errorf("load google credential: %w", err)
	}
	return cred != nil, nil
}

func (s *googleConnectionService) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	cred, err := s.creds.Get(dbctx.Context{Ctx: ctx})
	if err != nil {
		return nil, fmt.Errorf("load google credential: %w", err)
	}
	if cred == nil {
		return nil, apierr.NotConnected(nil)
	}
	initial := &oauth2.Token{
		AccessToken:  cred.AccessToken,
		RefreshToken: cred.RefreshToken,
		TokenType:    cred.TokenType,
		Expiry:       cred.Expiry,
	}
	// The refresh source gets a detached context: it outlives this call but
	// must not be cancelled mid-refresh by the request that triggered it.
	base := s.oauth.TokenSource(context.WithoutCancel(ctx), initial)
	return &persistingTokenSource{
		log:   s.log,
		creds: s.creds,
		src:   oauth2.ReuseTokenSource(initial, base),
		last:  initial.AccessToken,
	}, nil
}

// persistingTokenSource writes a token back to storage the first time it
// sees a new access token.
type persistingTokenSource struct {
	log   *logger.Logger
	creds repos.CredentialRepo
	src   oauth2.TokenSource

	mu   sync.Mutex
	last string
}

func (p *persistingTokenSource) Token() (*oauth2.Token, error) {
	tok, err := p.src.Token()
	if err != nil {
		var re *oauth2.RetrieveError
		if errors.As(err, &re) {
			return nil, apierr.NotConnected(fmt.Errorf("google refresh rejected: %w", err))
		}
		return nil, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if tok.AccessToken == p.last {
		return tok, nil
	}
	prev, err := p.creds.Get(dbctx.Background())
	if err != nil {
		p.log.Warn("load credential before persisting refresh failed", "error", err)
	}
	keep := ""
	if prev != nil {
		keep = prev.RefreshToken
	}
	if err := p.creds.Save(dbctx.Background(), credentialFromToken(tok, keep)); err != nil {
		// The token is still valid for this request; the next refresh retries.
		p.log.Warn("persist refreshed google token failed", "error", err)
		return tok, nil
	}
	p.last = tok.AccessToken
	p.log.Debug("google token refreshed", "expiry", tok.Expiry)
	return tok, nil
}

// credentialFromToken keeps fallbackRefresh when the provider omitted a new
// refresh token, which Google does on most refreshes.
func credentialFromToken(tok *oauth2.Token, fallbackRefresh string) *types.GoogleCredential {
	refresh := tok.RefreshToken
	if refresh == "" {
		refresh = fallbackRefresh
	}
	return &types.GoogleCredential{
		AccessToken:  tok.AccessToken,
		RefreshToken: refresh,
		TokenType:    tok.TokenType,
		Expiry:       tok.Expiry,
	}
}
