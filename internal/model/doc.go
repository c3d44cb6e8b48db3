// Package model defines the hazard report entity shared by every other
// internal package.
//
// This package contains type definitions and pure accessors only. All other
// internal packages import model; model imports nothing internal. This keeps
// the entity the foundational layer with no circular dependencies.
//
// Key design constraints:
//   - Vote counts are derived from ledger length, never stored separately
//   - LastModified is Unix milliseconds and strictly increases per record
//   - SyncStatus is the only field never shipped to the remote store
package model
