// Package repositories implements SQLite persistence for transfer jobs and their import records.
//
// Repositories handle CRUD operations with atomic sequence generation for human-readable ordering.
// Jobs support soft deletes via deleted_at timestamps and deleted rows are excluded from queries.
//
// Key Implementations:
//   - [JobRepository] : Transfer job history with status tracking
//   - [ImportRecordRepository] : Durable [idempotent.Store] keyed by job id and item key
//
// Sequence numbers provide stable, human-readable ordering (e.g., job #42) independent of UUIDs and creation timestamps.
// The [NextSequence] function atomically increments per-table sequence counters in dedicated sequence tables.
package repositories
