// Package tasks orchestrates import jobs with real-time progress reporting.
//
// # Import Engine
//
// [ImportEngine.Run] drives one import job:
//
//  1. Loads the job named by [RunOpts.JobID] or creates a new one
//  2. Binds an [idempotent.Executor] to the job id
//  3. Hands the container to the configured importer
//  4. Marks the job completed with item counts, or failed with the importer's cause
//
// Re-running with the same job id resumes it. Albums recorded by an earlier attempt are not posted again.
//
// # Progress Reporting
//
// All operations use non-blocking channels for progress updates.
//
// The [ProgressUpdate] struct contains phase, step counters, messages, and optional data.
// Updates use select with default to prevent blocking.
package tasks
