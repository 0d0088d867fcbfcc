package gworkspace

import (
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/yungbote/chargeback-backend/internal/platform/envutil"
)

// Scopes requested from the connected account. drive.file alone cannot copy
// templates owned by someone else, hence the full drive scope.
var Scopes = []string{
	"https://www.googleapis.com/auth/drive.file",
	"https://www.googleapis.com/auth/documents",
	"https://www.googleapis.com/auth/drive",
}

type OAuthConfig struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

func OAuthConfigFromEnv() OAuthConfig {
	return OAuthConfig{
		ClientID:     envutil.String("GOOGLE_CLIENT_ID", ""),
		ClientSecret: envutil.String("GOOGLE_CLIENT_SECRET", ""),
		RedirectURL:  envutil.String("GOOGLE_REDIRECT_URI", ""),
	}
}

func (c OAuthConfig) Configured() bool {
	return c.ClientID != "" && c.ClientSecret != "" && c.RedirectURL != ""
}

func (c OAuthConfig) OAuth2() *oauth2.Config {
	return &oauth2.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		RedirectURL:  c.RedirectURL,
		Scopes:       Scopes,
		Endpoint:     google.Endpoint,
	}
}
