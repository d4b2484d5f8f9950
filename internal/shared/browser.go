package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// browserCommands maps GOOS to the launcher used for URLs.
var browserCommands = map[string][]string{
	"darwin":  {"open"},
	"linux":   {"xdg-open"},
	"windows": {"cmd", "/c", "start"},
}

// OpenBrowser opens the default system browser at url.
//
// Used by the OAuth login flow to show the provider's authorization page.
func OpenBrowser(url string) error {
	rt := getRuntime()
	launcher, ok := browserCommands[rt]
	if !ok {
		return fmt.Errorf("unsupported platform: %s", rt)
	}

	args := append(launcher[1:len(launcher):len(launcher)], url)
	if err := exec.Command(launcher[0], args...).Start(); err != nil {
		return fmt.Errorf("failed to open browser: %w", err)
	}

	return nil
}
