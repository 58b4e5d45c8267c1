// Package diag defines the diagnostic model shared by all export phases.
//
// # Purpose
//
//   - Provide deterministic, serialisable records for findings produced by
//     the type database, classifier, resolver, layout and emission phases.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to storage or formatting layers.
//
// # Scope
//
// Package diag performs no IO and no CLI integration. Rendering lives with
// the callers: the CLI prints short one-line forms, tests compare golden
// renderings via FormatGolden.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - TypeName – the registered type name the finding is about ("" when the
//     finding is not tied to one type).
//   - Notes – optional secondary messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g. "also
// provided here") rather than repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Phases accept a diag.Reporter to decouple emission from storage. When no
// extra metadata is needed they call Reporter.Report directly; otherwise they
// build the record with ReportWarning/ReportError and chain WithNote before
// Emit. BagReporter aggregates into a Bag, which supports sorting,
// deduplication and merging. NewDedupReporter suppresses repeats, which the
// type database uses to warn about an ambiguous name only once per export.
//
// Keep the data model deterministic: diagnostics end up in golden files and
// must not depend on map iteration order or timing.
package diag
