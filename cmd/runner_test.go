package main

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/desertthunder/portx/internal/shared"
	tu "github.com/desertthunder/portx/internal/testing"
	"github.com/urfave/cli/v3"
	"golang.org/x/oauth2"
)

// newTestRunner returns a runner with a file-backed database in a temp dir.
func newTestRunner(t *testing.T) (*Runner, *bytes.Buffer) {
	t.Helper()

	config := shared.DefaultConfig()
	config.Database.Path = filepath.Join(t.TempDir(), "portx.db")

	output := &bytes.Buffer{}
	runner := NewRunner(RunnerOpts{
		Config:     config,
		ConfigPath: "config.toml",
		Logger:     shared.NewLogger(&bytes.Buffer{}),
		Output:     output,
	})
	return runner, output
}

func runApp(r *Runner, args ...string) error {
	app := &cli.Command{Name: "portx", Commands: r.register()}
	return app.Run(context.Background(), append([]string{"portx"}, args...))
}

// newDaybookServer fakes the album endpoint. Albums titled "Broken" fail.
func newDaybookServer(t *testing.T) (*httptest.Server, *atomic.Int32) {
	t.Helper()

	calls := &atomic.Int32{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		if r.Header.Get("Authorization") != "Bearer daybook-token" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		r.ParseForm()
		if r.PostForm.Get("title") == "Broken" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		fmt.Fprintf(w, `{"data":{"id":"db-%s"}}`, strings.ToLower(r.PostForm.Get("title")))
	}))
	t.Cleanup(srv.Close)
	return srv, calls
}

func writeBundle(t *testing.T, albums ...string) string {
	t.Helper()

	type album struct {
		ID   string `json:"id"`
		Name string `json:"name"`
	}
	var bundle struct {
		Albums []album `json:"albums"`
	}
	for i, name := range albums {
		bundle.Albums = append(bundle.Albums, album{ID: fmt.Sprintf("ig-%d", i+1), Name: name})
	}

	data, _ := json.Marshal(bundle)
	path := filepath.Join(t.TempDir(), "bundle.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write bundle: %v", err)
	}
	return path
}

func TestRunner(t *testing.T) {
	t.Run("NewRunner", func(t *testing.T) {
		t.Run("with all dependencies provided", func(t *testing.T) {
			config := shared.DefaultConfig()
			logger := shared.NewLogger(nil)
			output := &bytes.Buffer{}
			httpClient := &http.Client{}

			runner := NewRunner(RunnerOpts{
				Config:     config,
				ConfigPath: "/test/path/config.toml",
				Logger:     logger,
				Output:     output,
				HTTPClient: httpClient,
			})

			if runner.config != config {
				t.Error("expected config to be set")
			}
			if runner.logger != logger {
				t.Error("expected logger to be set")
			}
			if runner.output != output {
				t.Error("expected output to be set")
			}
			if runner.httpClient != httpClient {
				t.Error("expected httpClient to be set")
			}
			if runner.configPath != "/test/path/config.toml" {
				t.Errorf("expected configPath to be set, got %s", runner.configPath)
			}
		})

		t.Run("with zero options uses defaults", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{})

			if runner.config == nil {
				t.Error("expected default config to be set")
			}
			if runner.logger == nil {
				t.Error("expected default logger to be set")
			}
			if runner.output != os.Stdout {
				t.Error("expected output to default to os.Stdout")
			}
			if runner.httpClient != http.DefaultClient {
				t.Error("expected httpClient to default to http.DefaultClient")
			}
			if runner.openDB == nil || runner.openBrowser == nil {
				t.Error("expected database and browser openers to be set")
			}
			if runner.authTimeout != 2*time.Minute {
				t.Errorf("expected 2 minute auth timeout, got %s", runner.authTimeout)
			}
		})
	})

	t.Run("writeJSON", func(t *testing.T) {
		t.Run("writes formatted JSON successfully", func(t *testing.T) {
			output := &bytes.Buffer{}
			runner := NewRunner(RunnerOpts{Output: output})

			if err := runner.writeJSON(map[string]string{"key": "value"}, true); err != nil {
				t.Fatalf("expected no error, got %v", err)
			}

			result := output.String()
			if !strings.Contains(result, `"key": "value"`) {
				t.Errorf("expected formatted JSON, got %s", result)
			}
			if !strings.HasSuffix(result, "\n") {
				t.Error("expected output to end with newline")
			}
		})

		t.Run("handles marshal error with non-serializable data", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &bytes.Buffer{}})

			err := runner.writeJSON(make(chan int), false)
			if err == nil || !strings.Contains(err.Error(), "failed to marshal JSON") {
				t.Errorf("expected marshal error, got %v", err)
			}
		})

		t.Run("handles write failure", func(t *testing.T) {
			runner := NewRunner(RunnerOpts{Output: &tu.FWriter{}})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write output") {
				t.Errorf("expected write error, got %v", err)
			}
		})

		t.Run("handles newline write failure", func(t *testing.T) {
			limitedWriter := tu.NewLimitedWriter(1, 0, &bytes.Buffer{})
			runner := NewRunner(RunnerOpts{Output: &limitedWriter})

			err := runner.writeJSON(map[string]string{"key": "value"}, false)
			if err == nil || !strings.Contains(err.Error(), "failed to write newline") {
				t.Errorf("expected newline write error, got %v", err)
			}
		})
	})

	t.Run("writePlain", func(t *testing.T) {
		output := &bytes.Buffer{}
		runner := NewRunner(RunnerOpts{Output: output})

		if err := runner.writePlain("hello %s", "world"); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if output.String() != "hello world" {
			t.Errorf("expected 'hello world', got %q", output.String())
		}

		failing := NewRunner(RunnerOpts{Output: &tu.FWriter{}})
		if err := failing.writePlain("test"); err == nil {
			t.Fatal("expected error from failing writer")
		}
	})

	t.Run("register", func(t *testing.T) {
		runner := NewRunner(RunnerOpts{})

		var names []string
		for _, cmd := range runner.register() {
			names = append(names, cmd.Name)
		}
		if strings.Join(names, ",") != "setup,auth,import,jobs" {
			t.Errorf("unexpected commands %v", names)
		}
	})
}

func TestSetup(t *testing.T) {
	t.Run("existing config", func(t *testing.T) {
		runner, output := newTestRunner(t)
		dir := t.TempDir()
		configPath := filepath.Join(dir, "config.toml")

		config := shared.DefaultConfig()
		config.Database.Path = filepath.Join(dir, "portx.db")
		if err := shared.SaveConfig(configPath, config); err != nil {
			t.Fatalf("failed to save config: %v", err)
		}

		if err := runApp(runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		tu.AssertFileExists(t, config.Database.Path)
		if !strings.Contains(output.String(), "Database ready at "+config.Database.Path) {
			t.Errorf("unexpected output %q", output.String())
		}
		if runner.configPath != configPath {
			t.Errorf("expected runner to adopt %s, got %s", configPath, runner.configPath)
		}

		if err := runApp(runner, "setup", "rollback"); err != nil {
			t.Fatalf("setup rollback failed: %v", err)
		}
	})

	t.Run("creates config from template", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		configPath := filepath.Join(t.TempDir(), "config.toml")

		var opened string
		runner.openDB = func(cfg shared.DatabaseConfig) (*sql.DB, error) {
			opened = cfg.Path
			return shared.OpenDatabase(shared.DatabaseConfig{Path: ":memory:", MaxOpenConns: 1})
		}

		if err := runApp(runner, "setup", "database", "--config", configPath); err != nil {
			t.Fatalf("setup database failed: %v", err)
		}

		tu.AssertFileExists(t, configPath)
		if opened != shared.DefaultConfig().Database.Path {
			t.Errorf("expected template database path, got %q", opened)
		}
	})
}

func TestAuthProviders(t *testing.T) {
	t.Run("plain", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := runApp(runner, "auth", "providers"); err != nil {
			t.Fatalf("auth providers failed: %v", err)
		}

		for _, want := range []string{"Instagram", "Export: PHOTOS (basic)", "Import: none", "api.instagram.com/oauth/authorize"} {
			if !strings.Contains(output.String(), want) {
				t.Errorf("output missing %q:\n%s", want, output.String())
			}
		}
	})

	t.Run("json", func(t *testing.T) {
		runner, output := newTestRunner(t)

		if err := runApp(runner, "auth", "providers", "--json"); err != nil {
			t.Fatalf("auth providers failed: %v", err)
		}

		var providers []providerInfo
		if err := json.Unmarshal(output.Bytes(), &providers); err != nil {
			t.Fatalf("invalid JSON: %v", err)
		}
		if len(providers) != 1 || providers[0].Name != "Instagram" || !providers[0].Configured {
			t.Errorf("unexpected providers %+v", providers)
		}
		if strings.Join(providers[0].ExportCategories, ",") != "PHOTOS" || len(providers[0].ImportCategories) != 0 {
			t.Errorf("unexpected categories %v / %v", providers[0].ExportCategories, providers[0].ImportCategories)
		}
	})
}

func TestAuthLogin(t *testing.T) {
	newLoginRunner := func(t *testing.T) *Runner {
		runner, _ := newTestRunner(t)
		runner.config.Server = shared.ServerConfig{Host: "127.0.0.1", Port: 0}
		runner.config.Providers = map[string]shared.ProviderCredentials{
			"instagram": {ClientID: "client", ClientSecret: "secret"},
		}
		runner.httpClient = &http.Client{Transport: tu.RoundTripFunc(func(r *http.Request) (*http.Response, error) {
			if r.URL.Host != "api.instagram.com" {
				return nil, fmt.Errorf("unexpected token request to %s", r.URL)
			}
			return tu.NewResponse(http.StatusOK, `{"access_token":"ig-token","token_type":"bearer"}`), nil
		})}
		return runner
	}

	t.Run("saves token", func(t *testing.T) {
		runner := newLoginRunner(t)
		runner.openBrowser = func(authURL string) error {
			u, err := url.Parse(authURL)
			if err != nil {
				return err
			}
			q := u.Query()
			if q.Get("scope") != "basic" || q.Get("client_id") != "client" {
				t.Errorf("unexpected auth url %s", authURL)
			}
			go http.Get(q.Get("redirect_uri") + "?state=" + url.QueryEscape(q.Get("state")) + "&code=abc")
			return nil
		}

		tokenPath := filepath.Join(t.TempDir(), "tokens", "instagram.json")
		if err := runApp(runner, "auth", "login", "--provider", "Instagram", "--output", tokenPath); err != nil {
			t.Fatalf("auth login failed: %v", err)
		}

		info, err := os.Stat(tokenPath)
		if err != nil {
			t.Fatalf("token file missing: %v", err)
		}
		if info.Mode().Perm() != 0600 {
			t.Errorf("expected 0600 permissions, got %v", info.Mode().Perm())
		}

		token, err := loadToken(tokenPath)
		if err != nil || token.AccessToken != "ig-token" {
			t.Errorf("unexpected token %+v, %v", token, err)
		}
	})

	t.Run("import mode has no scopes", func(t *testing.T) {
		runner := newLoginRunner(t)

		err := runApp(runner, "auth", "login", "--provider", "instagram", "--mode", "import", "--output", filepath.Join(t.TempDir(), "t.json"))
		if !errors.Is(err, shared.ErrNoScopes) {
			t.Errorf("expected ErrNoScopes, got %v", err)
		}
	})

	t.Run("unknown provider", func(t *testing.T) {
		runner := newLoginRunner(t)

		if err := runApp(runner, "auth", "login", "--provider", "flickr"); !errors.Is(err, shared.ErrUnknownProvider) {
			t.Errorf("expected ErrUnknownProvider, got %v", err)
		}
	})

	t.Run("missing credentials", func(t *testing.T) {
		runner := newLoginRunner(t)
		runner.config.Providers = nil

		if err := runApp(runner, "auth", "login", "--provider", "instagram"); !errors.Is(err, shared.ErrMissingCredentials) {
			t.Errorf("expected ErrMissingCredentials, got %v", err)
		}
	})

	t.Run("times out", func(t *testing.T) {
		runner := newLoginRunner(t)
		runner.authTimeout = 50 * time.Millisecond
		runner.openBrowser = func(string) error { return errors.New("no browser") }

		err := runApp(runner, "auth", "login", "--provider", "instagram", "--output", filepath.Join(t.TempDir(), "t.json"))
		if !errors.Is(err, shared.ErrTimeout) {
			t.Errorf("expected ErrTimeout, got %v", err)
		}
	})
}

func TestImportDaybook(t *testing.T) {
	t.Run("imports and resumes", func(t *testing.T) {
		runner, output := newTestRunner(t)
		srv, calls := newDaybookServer(t)
		bundle := writeBundle(t, "Summer", "Broken", "Winter")

		if err := runApp(runner, "import", "daybook", "--file", bundle, "--token", "daybook-token", "--base-url", srv.URL, "--json"); err != nil {
			t.Fatalf("import failed: %v", err)
		}

		var result struct {
			Job struct {
				ID     string `json:"id"`
				Status string `json:"status"`
			} `json:"job"`
			Imported int               `json:"imported"`
			Failed   int               `json:"failed"`
			Albums   map[string]string `json:"albums"`
		}
		if err := json.Unmarshal(output.Bytes(), &result); err != nil {
			t.Fatalf("invalid JSON output: %v\n%s", err, output.String())
		}
		if result.Job.Status != "completed" || result.Imported != 2 || result.Failed != 1 {
			t.Errorf("unexpected result %+v", result)
		}
		if result.Albums["ig-1"] != "db-summer" || result.Albums["ig-3"] != "db-winter" {
			t.Errorf("unexpected album ids %v", result.Albums)
		}

		output.Reset()
		if err := runApp(runner, "import", "daybook", "--file", bundle, "--token", "daybook-token", "--base-url", srv.URL, "--job", result.Job.ID); err != nil {
			t.Fatalf("resume failed: %v", err)
		}
		if calls.Load() != 4 {
			t.Errorf("expected only the failed album to be retried, got %d requests", calls.Load())
		}
		if !strings.Contains(output.String(), "Resuming job") || !strings.Contains(output.String(), "Albums: 2/3 imported") {
			t.Errorf("unexpected output:\n%s", output.String())
		}

		output.Reset()
		if err := runApp(runner, "jobs", "show", "--id", result.Job.ID, "--format", "csv"); err != nil {
			t.Fatalf("jobs show failed: %v", err)
		}
		if !strings.Contains(output.String(), "ig-1,Summer,imported,db-summer,") || !strings.Contains(output.String(), "ig-2,Broken,failed") {
			t.Errorf("unexpected report:\n%s", output.String())
		}
	})

	t.Run("token file", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		srv, calls := newDaybookServer(t)

		tokenPath := filepath.Join(t.TempDir(), "token.json")
		if err := saveToken(tokenPath, &oauth2.Token{AccessToken: "daybook-token"}); err != nil {
			t.Fatalf("saveToken failed: %v", err)
		}

		if err := runApp(runner, "import", "daybook", "--file", writeBundle(t, "Summer"), "--token-file", tokenPath, "--base-url", srv.URL); err != nil {
			t.Fatalf("import failed: %v", err)
		}
		if calls.Load() != 1 {
			t.Errorf("expected one request, got %d", calls.Load())
		}
	})

	t.Run("argument errors", func(t *testing.T) {
		runner, _ := newTestRunner(t)
		bundle := writeBundle(t, "Summer")

		tests := []struct {
			name string
			args []string
			want error
		}{
			{name: "no token", args: []string{"--file", bundle}, want: shared.ErrMissingArgument},
			{name: "both tokens", args: []string{"--file", bundle, "--token", "a", "--token-file", "b"}, want: shared.ErrInvalidArgument},
			{name: "missing bundle", args: []string{"--file", "/nonexistent.json", "--token", "a"}, want: shared.ErrInvalidInput},
			{name: "bad job id", args: []string{"--file", bundle, "--token", "a", "--job", "nope"}, want: shared.ErrInvalidInput},
		}

		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				err := runApp(runner, append([]string{"import", "daybook"}, tt.args...)...)
				if !errors.Is(err, tt.want) {
					t.Errorf("expected %v, got %v", tt.want, err)
				}
			})
		}
	})
}

func TestJobs(t *testing.T) {
	runner, output := newTestRunner(t)
	srv, _ := newDaybookServer(t)

	if err := runApp(runner, "jobs", "list"); err != nil {
		t.Fatalf("jobs list failed: %v", err)
	}
	if !strings.Contains(output.String(), "No jobs found") {
		t.Errorf("unexpected output %q", output.String())
	}

	if err := runApp(runner, "import", "daybook", "--file", writeBundle(t, "Summer"), "--token", "daybook-token", "--base-url", srv.URL); err != nil {
		t.Fatalf("import failed: %v", err)
	}

	output.Reset()
	if err := runApp(runner, "jobs", "list", "--status", "completed", "--json"); err != nil {
		t.Fatalf("jobs list failed: %v", err)
	}

	var jobs []struct {
		ID            string `json:"id"`
		ItemsImported int    `json:"items_imported"`
	}
	if err := json.Unmarshal(output.Bytes(), &jobs); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if len(jobs) != 1 || jobs[0].ItemsImported != 1 {
		t.Fatalf("unexpected jobs %+v", jobs)
	}

	reportPath := filepath.Join(t.TempDir(), "report.md")
	if err := runApp(runner, "jobs", "show", "--id", jobs[0].ID, "--format", "markdown", "--output", reportPath); err != nil {
		t.Fatalf("jobs show failed: %v", err)
	}
	if !strings.Contains(tu.MustReadFile(t, reportPath), "## Imported") {
		t.Error("expected imported section in report")
	}

	if err := runApp(runner, "jobs", "show", "--id", jobs[0].ID, "--format", "xml"); !errors.Is(err, shared.ErrInvalidFormat) {
		t.Errorf("expected ErrInvalidFormat, got %v", err)
	}

	if err := runApp(runner, "jobs", "delete", "--id", jobs[0].ID); err != nil {
		t.Fatalf("jobs delete failed: %v", err)
	}
	if err := runApp(runner, "jobs", "show", "--id", jobs[0].ID); !errors.Is(err, shared.ErrJobNotFound) {
		t.Errorf("expected ErrJobNotFound after delete, got %v", err)
	}
}
