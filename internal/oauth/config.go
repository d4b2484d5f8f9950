// Package oauth holds the OAuth2 descriptors of the providers portx knows about.
//
// A descriptor is plain data: endpoints plus the scopes needed to export from, or import into, each data category.
// The generic [oauth2.Config] used to drive the authorization-code flow is built from it on demand.
package oauth

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/desertthunder/portx/internal/shared"
	"golang.org/x/oauth2"
)

// Mode selects which scope set a flow requests.
type Mode string

const (
	ModeExport Mode = "export"
	ModeImport Mode = "import"
)

// ParseMode parses "export" or "import", case-insensitively.
func ParseMode(s string) (Mode, error) {
	switch Mode(strings.ToLower(s)) {
	case ModeExport:
		return ModeExport, nil
	case ModeImport:
		return ModeImport, nil
	default:
		return "", fmt.Errorf("%w: mode must be export or import, got %q", shared.ErrInvalidArgument, s)
	}
}

// Config describes one provider's OAuth2 endpoints and scopes. It is never mutated after construction.
type Config struct {
	serviceName  string
	authURL      string
	tokenURL     string
	exportScopes map[string][]string
	importScopes map[string][]string
}

// Credentials is the client registration used when building an [oauth2.Config].
type Credentials struct {
	ClientID     string
	ClientSecret string
	RedirectURL  string
}

// ServiceName is the stable identifier used for provider lookup.
func (c *Config) ServiceName() string { return c.serviceName }

// AuthorizationURL is the authorization-code endpoint.
func (c *Config) AuthorizationURL() string { return c.authURL }

// TokenURL is the token exchange endpoint.
func (c *Config) TokenURL() string { return c.tokenURL }

// ExportScopes returns the scopes needed to pull each data category from the provider.
func (c *Config) ExportScopes() map[string][]string { return cloneScopes(c.exportScopes) }

// ImportScopes returns the scopes needed to push each data category into the provider.
// Empty for export-only providers.
func (c *Config) ImportScopes() map[string][]string { return cloneScopes(c.importScopes) }

// Scopes returns the scopes for category under mode. Categories are matched case-insensitively.
func (c *Config) Scopes(mode Mode, category string) []string {
	scopes := c.exportScopes
	if mode == ModeImport {
		scopes = c.importScopes
	}
	for name, list := range scopes {
		if strings.EqualFold(name, category) {
			return slices.Clone(list)
		}
	}
	return nil
}

// Categories lists the data categories supported under mode, sorted.
func (c *Config) Categories(mode Mode) []string {
	scopes := c.exportScopes
	if mode == ModeImport {
		scopes = c.importScopes
	}
	return slices.Sorted(maps.Keys(scopes))
}

// OAuth2Config builds the generic client configuration for a flow on category under mode.
//
// Returns [shared.ErrNoScopes] when the provider declares nothing for that combination,
// e.g. importing into an export-only provider.
func (c *Config) OAuth2Config(creds Credentials, mode Mode, category string) (*oauth2.Config, error) {
	if creds.ClientID == "" || creds.ClientSecret == "" {
		return nil, fmt.Errorf("%w: %s client_id and client_secret are required", shared.ErrMissingCredentials, c.serviceName)
	}

	scopes := c.Scopes(mode, category)
	if len(scopes) == 0 {
		available := "none"
		if categories := c.Categories(mode); len(categories) > 0 {
			available = strings.Join(categories, ", ")
		}
		return nil, fmt.Errorf("%w: %s has no %s scopes for %s (available: %s)", shared.ErrNoScopes, c.serviceName, mode, category, available)
	}

	return &oauth2.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		RedirectURL:  creds.RedirectURL,
		Scopes:       scopes,
		Endpoint: oauth2.Endpoint{
			AuthURL:  c.authURL,
			TokenURL: c.tokenURL,
		},
	}, nil
}

func cloneScopes(in map[string][]string) map[string][]string {
	out := make(map[string][]string, len(in))
	for k, v := range in {
		out[k] = slices.Clone(v)
	}
	return out
}
