// package formatter renders import job reports in various formats (JSON, CSV, Markdown, plain text)
package formatter

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/desertthunder/portx/internal/idempotent"
	"github.com/desertthunder/portx/internal/models"
	"github.com/desertthunder/portx/internal/shared"
)

// JobReport bundles a job with its recorded imports and outstanding failures.
type JobReport struct {
	Job     *models.Job
	Records []models.ImportRecord
	Errors  []idempotent.ErrorDetail
}

// JobJSON is the JSON form of a [models.Job].
type JobJSON struct {
	ID            string     `json:"id"`
	Sequence      int        `json:"sequence"`
	SourceService string     `json:"source_service"`
	DestService   string     `json:"dest_service"`
	Status        string     `json:"status"`
	ItemsTotal    int        `json:"items_total"`
	ItemsImported int        `json:"items_imported"`
	ItemsFailed   int        `json:"items_failed"`
	ErrorMessage  string     `json:"error_message,omitempty"`
	StartedAt     *time.Time `json:"started_at,omitempty"`
	CompletedAt   *time.Time `json:"completed_at,omitempty"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`
}

type reportJSON struct {
	Job     JobJSON                  `json:"job"`
	Records []models.ImportRecord    `json:"records"`
	Errors  []idempotent.ErrorDetail `json:"errors"`
}

// JobToJSON converts a job to its JSON-serializable form.
func JobToJSON(job *models.Job) JobJSON {
	return JobJSON{
		ID:            job.ID(),
		Sequence:      job.Sequence(),
		SourceService: job.SourceService(),
		DestService:   job.DestService(),
		Status:        job.Status(),
		ItemsTotal:    job.ItemsTotal(),
		ItemsImported: job.ItemsImported(),
		ItemsFailed:   job.ItemsFailed(),
		ErrorMessage:  job.ErrorMessage(),
		StartedAt:     job.StartedAt(),
		CompletedAt:   job.CompletedAt(),
		CreatedAt:     job.CreatedAt(),
		UpdatedAt:     job.UpdatedAt(),
	}
}

// RenderJobReport renders report as json, csv, markdown (or md) or txt.
func RenderJobReport(report *JobReport, format string) ([]byte, error) {
	if report == nil || report.Job == nil {
		return nil, fmt.Errorf("%w: empty report", shared.ErrInvalidInput)
	}

	switch strings.ToLower(format) {
	case "json":
		return ExportToJSON(report)
	case "csv":
		return ExportToCSV(report)
	case "markdown", "md":
		return ExportToMarkdown(report)
	case "txt":
		return ExportToText(report)
	default:
		return nil, fmt.Errorf("%w: %q (use json, csv, markdown or txt)", shared.ErrInvalidFormat, format)
	}
}

// ExportToJSON renders the report as indented JSON. Empty lists are rendered as [].
func ExportToJSON(report *JobReport) ([]byte, error) {
	out := reportJSON{
		Job:     JobToJSON(report.Job),
		Records: report.Records,
		Errors:  report.Errors,
	}
	if out.Records == nil {
		out.Records = []models.ImportRecord{}
	}
	if out.Errors == nil {
		out.Errors = []idempotent.ErrorDetail{}
	}
	return shared.MarshalJSON(out, true)
}

// ExportToCSV writes one row per item with columns: Key, Label, Status, Value, Message
func ExportToCSV(report *JobReport) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	headers := []string{"Key", "Label", "Status", "Value", "Message"}
	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}

	for _, rec := range report.Records {
		if err := writer.Write([]string{rec.Key, rec.Label, "imported", rec.Value, ""}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}
	for _, detail := range report.Errors {
		if err := writer.Write([]string{detail.Key, detail.Label, "failed", "", detail.Message}); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// ExportToMarkdown renders a summary followed by imported and failed item lists
func ExportToMarkdown(report *JobReport) ([]byte, error) {
	var buf bytes.Buffer
	job := report.Job

	fmt.Fprintf(&buf, "# Job #%d\n\n", job.Sequence())
	fmt.Fprintf(&buf, "**ID**: %s\n", job.ID())
	fmt.Fprintf(&buf, "**Transfer**: %s → %s\n", job.SourceService(), job.DestService())
	fmt.Fprintf(&buf, "**Status**: %s\n", job.Status())
	fmt.Fprintf(&buf, "**Items**: %d total, %d imported, %d failed\n", job.ItemsTotal(), job.ItemsImported(), job.ItemsFailed())
	if job.ErrorMessage() != "" {
		fmt.Fprintf(&buf, "**Error**: %s\n", job.ErrorMessage())
	}

	if len(report.Records) > 0 {
		buf.WriteString("\n## Imported\n\n")
		buf.WriteString("| Key | Label | Value |\n|---|---|---|\n")
		for _, rec := range report.Records {
			fmt.Fprintf(&buf, "| %s | %s | %s |\n", escapeCell(rec.Key), escapeCell(rec.Label), escapeCell(rec.Value))
		}
	}

	if len(report.Errors) > 0 {
		buf.WriteString("\n## Failed\n\n")
		for i, detail := range report.Errors {
			fmt.Fprintf(&buf, "%d. %s (%s): %s\n", i+1, detail.Label, detail.Key, detail.Message)
		}
	}

	return buf.Bytes(), nil
}

// ExportToText renders the report as plain text
func ExportToText(report *JobReport) ([]byte, error) {
	var buf bytes.Buffer
	job := report.Job

	fmt.Fprintf(&buf, "Job: %s (#%d)\n", job.ID(), job.Sequence())
	fmt.Fprintf(&buf, "Transfer: %s -> %s\n", job.SourceService(), job.DestService())
	fmt.Fprintf(&buf, "Status: %s\n", job.Status())
	fmt.Fprintf(&buf, "Items: %d total, %d imported, %d failed\n", job.ItemsTotal(), job.ItemsImported(), job.ItemsFailed())
	if job.ErrorMessage() != "" {
		fmt.Fprintf(&buf, "Error: %s\n", job.ErrorMessage())
	}
	if job.CompletedAt() != nil {
		fmt.Fprintf(&buf, "Completed: %s\n", job.CompletedAt().Format(time.RFC3339))
	}

	if len(report.Records) > 0 {
		buf.WriteString("\nImported:\n")
		for i, rec := range report.Records {
			fmt.Fprintf(&buf, "%d. %s -> %s\n", i+1, rec.Label, rec.Value)
		}
	}

	if len(report.Errors) > 0 {
		buf.WriteString("\nFailed:\n")
		for i, detail := range report.Errors {
			fmt.Fprintf(&buf, "%d. %s: %s\n", i+1, detail.Label, detail.Message)
		}
	}

	return buf.Bytes(), nil
}

// WriteJobReport renders report and writes it to path.
func WriteJobReport(report *JobReport, format, path string) error {
	data, err := RenderJobReport(report, format)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

// JobRow returns the columns shown for a job in list output.
func JobRow(job *models.Job) []string {
	return []string{
		strconv.Itoa(job.Sequence()),
		job.ID(),
		job.Status(),
		job.SourceService() + " -> " + job.DestService(),
		fmt.Sprintf("%d/%d", job.ItemsImported(), job.ItemsTotal()),
		strconv.Itoa(job.ItemsFailed()),
	}
}

func escapeCell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
