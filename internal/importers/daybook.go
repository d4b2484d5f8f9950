package importers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/portx/internal/models"
	"github.com/desertthunder/portx/internal/shared"
)

// DefaultDaybookBaseURL is the album creation endpoint used when none is configured.
const DefaultDaybookBaseURL string = "http://localhost:8080/albums"

// DaybookPhotosImporter creates Daybook albums for the albums of a [models.PhotosContainer].
//
// Photos in the container are not uploaded.
type DaybookPhotosImporter struct {
	logger     *log.Logger
	httpClient *http.Client
	baseURL    string
}

// NewDaybookPhotosImporter creates an importer posting to baseURL.
func NewDaybookPhotosImporter(logger *log.Logger, client *http.Client, baseURL string) *DaybookPhotosImporter {
	if logger == nil {
		logger = shared.NewLogger(nil)
	}
	if client == nil {
		client = http.DefaultClient
	}
	if baseURL == "" {
		baseURL = DefaultDaybookBaseURL
	}

	logger = shared.WithLogger(logger, "importer", "daybook")
	logger.Debug("created importer", "base_url", baseURL)

	return &DaybookPhotosImporter{
		logger:     logger,
		httpClient: client,
		baseURL:    baseURL,
	}
}

// BaseURL returns the album creation endpoint.
func (d *DaybookPhotosImporter) BaseURL() string { return d.baseURL }

// ImportItem creates each album in resource in order.
//
// A nil resource is a successful no-op. Album failures are swallowed by executor, so the result is
// [models.ImportOK] whenever the resource could be processed at all.
func (d *DaybookPhotosImporter) ImportItem(ctx context.Context, jobID string, executor Executor, authData *models.TokensAndURLAuthData, resource *models.PhotosContainer) models.ImportResult {
	if resource == nil {
		return models.ImportOK
	}
	if authData == nil {
		return models.NewImportError(fmt.Errorf("%w: no auth data for job %s", shared.ErrNotAuthenticated, jobID))
	}

	logger := shared.WithLogger(d.logger, "job", jobID)
	logger.Info("importing albums", "count", len(resource.Albums))

	for _, album := range resource.Albums {
		executor.ExecuteAndSwallowErrors(ctx, album.ID, album.Name, func() (string, error) {
			return d.createAlbum(ctx, logger, album, authData)
		})
	}

	return models.ImportOK
}

// createAlbum posts album to Daybook and returns the new album id.
func (d *DaybookPhotosImporter) createAlbum(ctx context.Context, logger *log.Logger, album models.PhotoAlbum, authData *models.TokensAndURLAuthData) (string, error) {
	form := url.Values{}
	form.Set("title", album.Name)
	if album.Description != "" {
		form.Set("description", album.Description)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.baseURL, strings.NewReader(form.Encode()))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+authData.AccessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	logger.Debug("creating album", "album", album.ID, "title", album.Name)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrAPIRequest, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := strings.TrimPrefix(resp.Status, strconv.Itoa(resp.StatusCode)+" ")
		return "", fmt.Errorf("%w: error occurred in request for %s, code: %d, message: %s",
			shared.ErrUnexpectedStatus, d.baseURL, resp.StatusCode, message)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if len(body) == 0 {
		return "", fmt.Errorf("%w: %s", shared.ErrMissingResponseBody, d.baseURL)
	}

	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return "", fmt.Errorf("%w: %v", shared.ErrMalformedResponse, err)
	}

	id, err := newAlbumID(payload)
	if err != nil {
		return "", err
	}

	logger.Info("created album", "album", album.ID, "daybook_id", id)
	return id, nil
}

// newAlbumID extracts data.id from a creation response.
func newAlbumID(payload map[string]any) (string, error) {
	data, ok := payload["data"].(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: didn't receive new album id", shared.ErrMalformedResponse)
	}
	id, ok := data["id"].(string)
	if !ok || id == "" {
		return "", fmt.Errorf("%w: didn't receive new album id", shared.ErrMalformedResponse)
	}
	return id, nil
}
