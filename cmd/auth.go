package main

import (
	"context"
	"fmt"
	"maps"
	"net"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/desertthunder/portx/internal/oauth"
	"github.com/desertthunder/portx/internal/server"
	"github.com/desertthunder/portx/internal/shared"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

type providerInfo struct {
	Name             string              `json:"name"`
	AuthorizationURL string              `json:"authorization_url"`
	TokenURL         string              `json:"token_url"`
	ExportScopes     map[string][]string `json:"export_scopes"`
	ImportScopes     map[string][]string `json:"import_scopes"`
	ExportCategories []string            `json:"export_categories"`
	ImportCategories []string            `json:"import_categories"`
	Configured       bool                `json:"configured"`
}

// AuthProviders lists the registered OAuth2 providers.
func (r *Runner) AuthProviders(ctx context.Context, cmd *cli.Command) error {
	var providers []providerInfo
	for _, name := range oauth.Providers() {
		p, err := oauth.Lookup(name)
		if err != nil {
			return err
		}
		creds, ok := r.config.Provider(name)
		providers = append(providers, providerInfo{
			Name:             p.ServiceName(),
			AuthorizationURL: p.AuthorizationURL(),
			TokenURL:         p.TokenURL(),
			ExportScopes:     p.ExportScopes(),
			ImportScopes:     p.ImportScopes(),
			ExportCategories: p.Categories(oauth.ModeExport),
			ImportCategories: p.Categories(oauth.ModeImport),
			Configured:       ok && creds.ClientID != "" && creds.ClientSecret != "",
		})
	}

	if cmd.Bool("json") {
		return r.writeJSON(providers, true)
	}

	for _, p := range providers {
		r.writePlain("%s\n", r.palette.Title(p.Name))
		r.writePlain("   Authorize: %s\n", p.AuthorizationURL)
		r.writePlain("   Token: %s\n", p.TokenURL)
		r.writePlain("   Export: %s\n", formatScopes(p.ExportScopes))
		r.writePlain("   Import: %s\n", formatScopes(p.ImportScopes))
		if p.Configured {
			r.writePlain("   Credentials: %s configured\n", r.palette.Mark(true))
		} else {
			r.writePlain("   Credentials: %s missing from config\n", r.palette.Mark(false))
		}
		r.writePlain("\n")
	}
	return nil
}

// AuthLogin runs the OAuth2 authorization code flow for a provider and saves the token.
//
// Starts a local HTTP server, opens browser for user authorization, and exchanges auth code for tokens.
func (r *Runner) AuthLogin(ctx context.Context, cmd *cli.Command) error {
	name := cmd.String("provider")

	provider, err := oauth.Lookup(name)
	if err != nil {
		return err
	}

	mode, err := oauth.ParseMode(cmd.String("mode"))
	if err != nil {
		return err
	}

	creds, ok := r.config.Provider(name)
	if !ok {
		return fmt.Errorf("%w: add [providers.%s] to %s", shared.ErrMissingCredentials, strings.ToLower(name), r.configPath)
	}

	outputPath := cmd.String("output")
	if outputPath == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to get home directory: %w", err)
		}
		outputPath = filepath.Join(homeDir, ".portx", strings.ToLower(provider.ServiceName())+"_token.json")
	}

	token, err := r.doOAuth(ctx, provider, oauth.Credentials{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURI,
	}, mode, cmd.String("category"))
	if err != nil {
		return err
	}

	if err := saveToken(outputPath, token); err != nil {
		return err
	}

	r.logger.Info("token saved", "provider", provider.ServiceName(), "path", outputPath)
	r.writePlainln("%s Authorization successful", r.palette.Mark(true))
	r.writePlain("%s Token saved to %s\n", r.palette.Mark(true), outputPath)
	return nil
}

// clientExchanger exchanges codes with the runner's HTTP client.
type clientExchanger struct {
	config *oauth2.Config
	client *http.Client
}

func (c clientExchanger) Exchange(ctx context.Context, code string, opts ...oauth2.AuthCodeOption) (*oauth2.Token, error) {
	return c.config.Exchange(context.WithValue(ctx, oauth2.HTTPClient, c.client), code, opts...)
}

// doOAuth executes the OAuth2 authorization flow with a local HTTP server
//
// Without a configured redirect URI the callback is served at /callback on the listener address.
func (r *Runner) doOAuth(ctx context.Context, provider *oauth.Config, creds oauth.Credentials, mode oauth.Mode, category string) (*oauth2.Token, error) {
	callbackServer, err := server.Listen(net.JoinHostPort(r.config.Server.Host, fmt.Sprint(r.config.Server.Port)), r.logger)
	if err != nil {
		return nil, err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := callbackServer.Shutdown(shutdownCtx); err != nil {
			r.logger.Warn("error shutting down server", "error", err)
		}
	}()

	if creds.RedirectURL == "" {
		creds.RedirectURL = callbackServer.URL(server.DefaultCallbackPath)
	}
	callback, err := url.Parse(creds.RedirectURL)
	if err != nil {
		return nil, fmt.Errorf("%w: redirect uri: %v", shared.ErrInvalidConfig, err)
	}

	config, err := provider.OAuth2Config(creds, mode, category)
	if err != nil {
		return nil, err
	}

	state, err := shared.GenerateState()
	if err != nil {
		return nil, fmt.Errorf("failed to generate state token: %w", err)
	}

	authURL := config.AuthCodeURL(state)
	oauthHandler := server.NewOAuthHandler(clientExchanger{config: config, client: r.httpClient}, state, callback.Path, provider.ServiceName())
	router := server.NewBasicRouter()
	router.Use(server.RequestLogger(r.logger), server.Recoverer(r.logger))
	router.Handler(oauthHandler)

	r.logger.Infof("starting OAuth server for %s at %v", provider.ServiceName(), callbackServer.Addr())
	callbackServer.Serve(router)

	r.writePlain("→ Opening browser for %s authorization...\n", provider.ServiceName())
	if err := r.openBrowser(authURL); err != nil {
		r.logger.Warnf("failed to open browser automatically %v", err)
		r.writePlainln("%s", r.palette.Warn("⚠ Could not open browser automatically."))
		r.writePlain("Please open this URL in your browser:\n%s\n\n", authURL)
	}

	r.writePlain("→ Waiting for authorization (%s timeout)...\n", r.authTimeout)

	timeout := time.NewTimer(r.authTimeout)
	defer timeout.Stop()

	var result server.OAuthResult

	select {
	case result = <-oauthHandler.Result():
	case err := <-callbackServer.Errors():
		return nil, fmt.Errorf("server error: %w", err)
	case <-timeout.C:
		return nil, fmt.Errorf("%w: authorization timed out after %s", shared.ErrTimeout, r.authTimeout)
	case <-ctx.Done():
		return nil, ctx.Err()
	}

	if result.Error() != nil {
		return nil, fmt.Errorf("authorization failed: %w", result.Error())
	}

	if result.Token == nil {
		return nil, fmt.Errorf("%w: no token received", shared.ErrAuthFailed)
	}

	return result.Token, nil
}

// saveToken writes token as JSON readable only by the current user.
func saveToken(path string, token *oauth2.Token) error {
	data, err := shared.MarshalJSON(token, true)
	if err != nil {
		return fmt.Errorf("failed to marshal token: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("failed to create token directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("failed to write token file: %w", err)
	}
	return nil
}

// loadToken reads a token saved by [saveToken].
func loadToken(path string) (*oauth2.Token, error) {
	var token oauth2.Token
	if err := shared.ReadJSONFile(path, &token); err != nil {
		return nil, fmt.Errorf("failed to read token file: %w", err)
	}
	if token.AccessToken == "" {
		return nil, fmt.Errorf("%w: %s has no access_token", shared.ErrInvalidInput, path)
	}
	return &token, nil
}

func formatScopes(scopes map[string][]string) string {
	if len(scopes) == 0 {
		return "none"
	}
	parts := make([]string, 0, len(scopes))
	for _, category := range slices.Sorted(maps.Keys(scopes)) {
		parts = append(parts, fmt.Sprintf("%s (%s)", category, strings.Join(scopes[category], ", ")))
	}
	return strings.Join(parts, "; ")
}
