// Package idempotent provides the at-most-once executor importers use to make multi-item imports resumable.
//
// # Contract
//
// An [Executor] is bound to one job. For each item key it either returns the value recorded by an earlier
// attempt, or runs the producer once and records what it returns. Producers that fail leave no value behind,
// so the key is retried on the job's next attempt.
//
// [Executor.ExecuteAndSwallowErrors] logs and records producer failures instead of returning them,
// which lets an importer keep going after one bad item.
//
// # Storage
//
// The durable key → value mapping lives behind [Store]:
//   - [ResultStore] : tryGetExisting ([ResultStore.Get]) and recordResult ([ResultStore.Record])
//   - [ErrorLog] : failure bookkeeping surfaced to the host after the run
//
// [MemoryStore] keeps everything in process; repositories.ImportRecordRepository persists to SQLite.
package idempotent
