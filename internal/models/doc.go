// Package models defines the data model shared by the portx importers, the import engine and the repositories.
//
// The package contains two categories of types:
//
// 1. Transfer types: the in-memory form of previously exported data and the credentials used to replay it
//   - [PhotosContainer] : Albums and photos read from an export bundle
//   - [PhotoAlbum] : Album identity, name and optional description
//   - [TokensAndURLAuthData] : Bearer token bundle owned by the caller
//   - [ImportResult] : Outcome of one importer invocation
//
// 2. Persistent Entities: Database-backed models with full lifecycle management
//   - [Job] : One user-initiated transfer, resumable across attempts
//
// Persistent entities implement the [Model] interface providing ID, timestamps and validation.
// The Repository[T] interface defines standard CRUD operations for database access.
package models
