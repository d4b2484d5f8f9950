package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/desertthunder/portx/internal/formatter"
	"github.com/desertthunder/portx/internal/repositories"
	"github.com/urfave/cli/v3"
)

// JobsList prints job history, optionally filtered by status.
func (r *Runner) JobsList(ctx context.Context, cmd *cli.Command) error {
	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	criteria := map[string]any{}
	if status := cmd.String("status"); status != "" {
		criteria["status"] = strings.ToLower(status)
	}

	jobs, err := repositories.NewJobRepository(db).List(ctx, criteria)
	if err != nil {
		return err
	}

	if cmd.Bool("json") {
		out := make([]formatter.JobJSON, 0, len(jobs))
		for _, job := range jobs {
			out = append(out, formatter.JobToJSON(job))
		}
		return r.writeJSON(out, true)
	}

	if len(jobs) == 0 {
		return r.writePlain("No jobs found\n")
	}

	r.writePlain("Found %d jobs:\n\n", len(jobs))
	for _, job := range jobs {
		row := formatter.JobRow(job)
		r.writePlain("#%s %s\n", row[0], row[1])
		r.writePlain("   Status: %s\n", row[2])
		r.writePlain("   Transfer: %s\n", row[3])
		r.writePlain("   Imported: %s (failed: %s)\n", row[4], row[5])
		if job.ErrorMessage() != "" {
			r.writePlain("   Error: %s\n", job.ErrorMessage())
		}
		r.writePlain("\n")
	}
	return nil
}

// JobsShow renders a job report to stdout or a file.
func (r *Runner) JobsShow(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	job, err := repositories.NewJobRepository(db).Get(ctx, id)
	if err != nil {
		return err
	}

	records := repositories.NewImportRecordRepository(db)
	imported, err := records.Records(ctx, id)
	if err != nil {
		return err
	}
	failures, err := records.Errors(ctx, id)
	if err != nil {
		return err
	}

	report := &formatter.JobReport{Job: job, Records: imported, Errors: failures}

	if output := cmd.String("output"); output != "" {
		if err := formatter.WriteJobReport(report, cmd.String("format"), output); err != nil {
			return err
		}
		r.logger.Info("report written", "job", id, "path", output)
		return r.writePlain("%s Report written to %s\n", r.palette.Mark(true), output)
	}

	data, err := formatter.RenderJobReport(report, cmd.String("format"))
	if err != nil {
		return err
	}
	return r.writePlain("%s", data)
}

// JobsDelete removes a job from history.
func (r *Runner) JobsDelete(ctx context.Context, cmd *cli.Command) error {
	id := cmd.String("id")

	db, err := r.database()
	if err != nil {
		return err
	}
	defer db.Close()

	if err := repositories.NewJobRepository(db).Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}

	r.logger.Info("job deleted", "job", id)
	return r.writePlain("%s Deleted job %s\n", r.palette.Mark(true), id)
}
