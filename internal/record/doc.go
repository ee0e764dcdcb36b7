// Package record defines the change record: one immutable, file-backed entry
// describing a single release-worthy change and the bump level it carries.
//
// A record is a fixed set of reserved fields (id, type, branch_id, description,
// author, tags, timestamp) plus an open set of extra fields copied from the
// project template when the record is created. Reserved fields always take
// precedence over template values of the same name.
//
// The package also defines the typed errors shared by the ledger engine.
package record
