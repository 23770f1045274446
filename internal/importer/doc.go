// Package importer implements the bulk CV reconciliation pipeline.
//
// This package is the heart of the smart import feature, containing all
// domain logic independent of any UI or transport layer. It can be used
// by web handlers, CLI tools, or tests without modification.
//
// # Pipeline
//
// An uploaded spreadsheet flows through four stages:
//
//  1. Decode: raw bytes become a sequence of [RawRow] maps keyed by the
//     sheet's own (inconsistent) column headers.
//  2. Map: [MapRow] resolves each logical field through its candidate
//     header list and normalizes the cell into a typed [Candidate].
//  3. Reconcile: [Reconciler.Reconcile] classifies every row as new,
//     update, skipped, or error against the persisted store and the
//     other rows of the same file, producing a [BatchOutcome].
//  4. Commit: [Executor.Execute] persists the approved plan, routing
//     candidates between pipeline stages when their status changes.
//
// Stages 1-3 are read-only; running them twice over the same file and
// store snapshot yields the same plan. Only the execute action invokes
// stage 4, which is why an operator can preview an import before
// committing it.
//
// # Failure policy
//
// Row-level problems never abort a batch. A row that fails to map lands
// in the error bucket and processing continues. A store lookup that
// fails during duplicate checks is treated as "no match" so that a
// storage hiccup degrades to over-inserting rather than blocking the
// import; the unique constraint on reference codes is the backstop. A
// row that fails to persist is moved to the error bucket and the rest
// of the batch still commits. Only file-level decode failures fail the
// whole request.
package importer
