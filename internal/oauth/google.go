// Package oauth implements the Google login flow: redirect URL construction,
// authorization-code exchange and the userinfo fetch.
package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/arekbor/helpdesk/internal/config"
)

const userinfoEndpoint = "https://www.googleapis.com/oauth2/v3/userinfo"

// Userinfo is the subset of the Google profile the login flow consumes.
type Userinfo struct {
	Email      string `json:"email"`
	GivenName  string `json:"given_name"`
	FamilyName string `json:"family_name"`
	Picture    string `json:"picture"`
}

type GoogleClient struct {
	conf *oauth2.Config
}

func NewGoogleClient(cfg config.GoogleConfig) *GoogleClient {
	return &GoogleClient{
		conf: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
	}
}

// AuthURL builds the provider redirect for the given signed state.
func (g *GoogleClient) AuthURL(state string) string {
	return g.conf.AuthCodeURL(state)
}

// Exchange trades the authorization code for a token and fetches the
// user's profile.
func (g *GoogleClient) Exchange(ctx context.Context, code string) (Userinfo, error) {
	token, err := g.conf.Exchange(ctx, code)
	if err != nil {
		return Userinfo{}, fmt.Errorf("exchange code: %w", err)
	}

	client := g.conf.Client(ctx, token)
	resp, err := client.Get(userinfoEndpoint)
	if err != nil {
		return Userinfo{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return Userinfo{}, fmt.Errorf("fetch userinfo: unexpected status %d", resp.StatusCode)
	}

	var info Userinfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return Userinfo{}, fmt.Errorf("decode userinfo: %w", err)
	}
	return info, nil
}
