// Package importers writes transferred data into destination services.
//
// An importer receives one container resource per invocation and materializes its items at the destination.
// Every side-effecting request goes through an [Executor] keyed by the source item id, so re-running a job
// never creates the same item twice.
//
// # Daybook
//
// [DaybookPhotosImporter] creates one Daybook album per source album with a form-encoded POST.
// Per-album failures are logged and recorded by the executor and do not stop the remaining albums.
package importers
