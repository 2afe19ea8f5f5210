package oidc

import (
	"context"
	"fmt"
	"net/url"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"leadawaker/internal/config"
)

// Client bundles what the login, callback and logout handlers need.
type Client struct {
	Provider    *oidc.Provider
	Verifier    *oidc.IDTokenVerifier
	OauthConfig *oauth2.Config
	LogoutURL   string
}

// Claims are the ID token fields used to find or create the local user.
type Claims struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

func InitOIDC(ctx context.Context, opts config.OIDCOptions) (*Client, error) {
	provider, err := oidc.NewProvider(ctx, opts.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("oidc discovery for %s: %w", opts.IssuerURL, err)
	}

	return &Client{
		Provider: provider,
		Verifier: provider.Verifier(&oidc.Config{
			ClientID: opts.ClientID,
		}),
		OauthConfig: &oauth2.Config{
			ClientID:     opts.ClientID,
			ClientSecret: opts.ClientSecret,
			RedirectURL:  opts.RedirectURI,
			Endpoint:     provider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		LogoutURL: opts.LogoutURL,
	}, nil
}

// EndSessionURL builds the provider logout redirect with an id_token_hint.
func (c *Client) EndSessionURL(idToken, postLogoutRedirect string) string {
	q := url.Values{}
	if idToken != "" {
		q.Set("id_token_hint", idToken)
	}
	q.Set("post_logout_redirect_uri", postLogoutRedirect)
	return c.LogoutURL + "?" + q.Encode()
}
