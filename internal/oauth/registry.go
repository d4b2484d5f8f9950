package oauth

import (
	"fmt"
	"maps"
	"slices"
	"strings"

	"github.com/desertthunder/portx/internal/shared"
)

// Instagram is export-only: basic scope for photos, nothing to import.
var Instagram = &Config{
	serviceName:  "Instagram",
	authURL:      "https://api.instagram.com/oauth/authorize",
	tokenURL:     "https://api.instagram.com/oauth/access_token",
	exportScopes: map[string][]string{"PHOTOS": {"basic"}},
	importScopes: map[string][]string{},
}

// registry is keyed by lower-cased service name.
var registry = map[string]*Config{
	"instagram": Instagram,
}

// Lookup returns the descriptor registered under name, case-insensitively.
func Lookup(name string) (*Config, error) {
	cfg, ok := registry[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return nil, fmt.Errorf("%w: %q (known: %s)", shared.ErrUnknownProvider, name, strings.Join(Providers(), ", "))
	}
	return cfg, nil
}

// Providers lists the registered service names, sorted.
func Providers() []string {
	names := make([]string, 0, len(registry))
	for _, key := range slices.Sorted(maps.Keys(registry)) {
		names = append(names, registry[key].ServiceName())
	}
	return names
}
