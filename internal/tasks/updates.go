package tasks

import (
	"fmt"

	"github.com/desertthunder/portx/internal/models"
)

// ProgressUpdate represents a progress event during a long-running operation.
//
// Used to send real-time updates to the CLI layer for display.
type ProgressUpdate struct {
	Phase   Phase  // Operation phase
	Step    int    // Current step number within phase
	Total   int    // Total steps in this phase
	Message string // Human-readable message for display
	Data    any    // Optional phase-specific data
}

// Operation phase enumeration
type Phase int

const (
	LoadJob Phase = iota
	ImportAlbums
	FinalizeJob
)

func (p Phase) String() string {
	switch p {
	case LoadJob:
		return "load_job"
	case ImportAlbums:
		return "import_albums"
	case FinalizeJob:
		return "finalize_job"
	default:
		return ""
	}
}

func loadJobUpdate(job *models.Job, resumed bool) ProgressUpdate {
	msg := fmt.Sprintf("Created job #%d (%s)", job.Sequence(), job.ID())
	if resumed {
		msg = fmt.Sprintf("Resuming job #%d (%s)", job.Sequence(), job.ID())
	}
	return ProgressUpdate{
		Phase:   LoadJob,
		Step:    1,
		Total:   1,
		Message: msg,
		Data:    job,
	}
}

func importAlbumsUpdate(total int) ProgressUpdate {
	return ProgressUpdate{
		Phase:   ImportAlbums,
		Step:    0,
		Total:   total,
		Message: fmt.Sprintf("Importing %d albums...", total),
	}
}

func albumUpdate(step, total int, label string, ok bool) ProgressUpdate {
	mark := "✓"
	if !ok {
		mark = "✗"
	}
	return ProgressUpdate{
		Phase:   ImportAlbums,
		Step:    step,
		Total:   total,
		Message: fmt.Sprintf("[%d/%d] %s %s", step, total, mark, label),
	}
}

func finalizeJobUpdate(job *models.Job) ProgressUpdate {
	return ProgressUpdate{
		Phase:   FinalizeJob,
		Step:    1,
		Total:   1,
		Message: fmt.Sprintf("Job %s: %d imported, %d failed", job.Status(), job.ItemsImported(), job.ItemsFailed()),
		Data:    job,
	}
}
