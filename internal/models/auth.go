package models

import "golang.org/x/oauth2"

// TokensAndURLAuthData is the credential bundle passed to importers.
//
// It is owned by the caller; importers never refresh or persist it.
type TokensAndURLAuthData struct {
	AccessToken    string `json:"access_token"`
	RefreshToken   string `json:"refresh_token,omitempty"`
	TokenServerURL string `json:"token_server_url,omitempty"`
}

// NewAuthDataFromToken converts an [oauth2.Token] obtained from tokenURL.
func NewAuthDataFromToken(token *oauth2.Token, tokenURL string) *TokensAndURLAuthData {
	if token == nil {
		return nil
	}
	return &TokensAndURLAuthData{
		AccessToken:    token.AccessToken,
		RefreshToken:   token.RefreshToken,
		TokenServerURL: tokenURL,
	}
}
