package main

import (
	"context"
	"fmt"
	"os"

	"github.com/desertthunder/portx/internal/formatter"
	"github.com/desertthunder/portx/internal/importers"
	"github.com/desertthunder/portx/internal/models"
	"github.com/desertthunder/portx/internal/repositories"
	"github.com/desertthunder/portx/internal/shared"
	"github.com/desertthunder/portx/internal/tasks"
	"github.com/urfave/cli/v3"
	"golang.org/x/sync/errgroup"
)

// ImportDaybook creates Daybook albums for every album in a photos export bundle.
//
// Re-running with --job resumes that job; albums it already created are skipped.
func (r *Runner) ImportDaybook(ctx context.Context, cmd *cli.Command) error {
	authData, err := r.authData(cmd.String("token"), cmd.String("token-file"))
	if err != nil {
		return err
	}

	file, err := os.Open(cmd.String("file"))
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}
	container, err := models.ReadPhotosContainer(file)
	file.Close()
	if err != nil {
		return fmt.Errorf("%w: %v", shared.ErrInvalidInput, err)
	}

	baseURL := cmd.String("base-url")
	if baseURL == "" {
		baseURL = r.config.Daybook.BaseURL
	}

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	importer := importers.NewDaybookPhotosImporter(r.logger, r.httpClient, baseURL)
	engine := tasks.NewImportEngine(importer, repositories.NewJobRepository(db), repositories.NewImportRecordRepository(db), r.logger)

	r.logger.Info("starting import", "file", cmd.String("file"), "albums", len(container.Albums), "base_url", importer.BaseURL())

	useJSON := cmd.Bool("json")
	progressCh := make(chan tasks.ProgressUpdate, 50)

	var result *tasks.ImportRunResult
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		for update := range progressCh {
			if useJSON {
				continue
			}
			switch update.Phase {
			case tasks.LoadJob:
				r.writePlain("📋 %s\n", update.Message)
			case tasks.ImportAlbums:
				if update.Step == 0 {
					r.writePlain("\n📤 %s\n", update.Message)
				} else {
					r.writePlain("   %s\n", update.Message)
				}
			case tasks.FinalizeJob:
				r.writePlain("\n%s\n", update.Message)
			}
		}
		return nil
	})
	g.Go(func() error {
		defer close(progressCh)

		var err error
		result, err = engine.Run(gctx, progressCh, tasks.RunOpts{
			JobID:         cmd.String("job"),
			SourceService: tasks.DefaultSourceService,
			DestService:   tasks.DefaultDestService,
			AuthData:      authData,
			Container:     container,
		})
		return err
	})

	if err := g.Wait(); err != nil {
		return err
	}

	if useJSON {
		return r.writeJSON(map[string]any{
			"job":      formatter.JobToJSON(result.Job),
			"resumed":  result.Resumed,
			"total":    result.Total,
			"imported": result.Imported,
			"failed":   result.Failed,
			"errors":   result.Errors,
			"albums":   result.Destinations,
		}, true)
	}

	r.writePlain("\n")
	r.writePlainHeader("Import Complete!")
	r.writePlain("Job: %s\n", result.Job.ID())
	r.writePlain("Albums: %d/%d imported\n", result.Imported, result.Total)

	if result.Failed > 0 {
		r.writePlain("\n%s\n", r.palette.Warn(fmt.Sprintf("Failed to import %d albums:", result.Failed)))
		for _, detail := range result.Errors {
			r.writePlain("  %s %s: %s\n", r.palette.Mark(false), detail.Label, detail.Message)
		}
		r.writePlain("\n%s\n", r.palette.Hint(fmt.Sprintf("Re-run with --job %s to retry the failed albums.", result.Job.ID())))
	}

	return nil
}

// authData builds importer credentials from exactly one of token or tokenFile.
func (r *Runner) authData(token, tokenFile string) (*models.TokensAndURLAuthData, error) {
	if token == "" && tokenFile == "" {
		return nil, fmt.Errorf("%w: either --token or --token-file must be provided", shared.ErrMissingArgument)
	}
	if token != "" && tokenFile != "" {
		return nil, fmt.Errorf("%w: cannot specify both --token and --token-file", shared.ErrInvalidArgument)
	}

	if token != "" {
		return &models.TokensAndURLAuthData{AccessToken: token}, nil
	}

	saved, err := loadToken(tokenFile)
	if err != nil {
		return nil, err
	}
	return models.NewAuthDataFromToken(saved, ""), nil
}
