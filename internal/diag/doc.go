// Package diag defines the diagnostic model shared by all compilation passes.
//
// # Purpose
//
//   - Provide deterministic data structures that capture findings produced by
//     unit decoding, the declare pass, lowering and IR verification.
//   - Offer light-weight utilities (Reporter, Bag) that let producers emit
//     diagnostics without coupling to concrete storage or formatting layers.
//
// # Scope
//
// Package diag does not perform any formatting, IO or CLI integration.
// Rendering lives in internal/diagfmt; collection per unit and across units is
// orchestrated by internal/driver.
//
// # Data model
//
// Diagnostic is the central record. It contains:
//
//   - Severity – tri-level enum (Info, Warning, Error) defined in severity.go.
//   - Code – compact numeric identifier (see codes.go) with stable string form.
//   - Message – human oriented text; keep it short and actionable.
//   - Primary span – unit file plus the position in the original rial source.
//   - Notes – optional secondary spans/messages for additional context.
//
// Notes should be used sparingly: each note must add new context (e.g. “first
// default declared here”, one note per ambiguous candidate) rather than
// repeating the diagnostic message.
//
// # Emitting diagnostics
//
// Passes use a diag.Reporter to decouple emission from storage. The lowering
// engine, for example, constructs a ReportBuilder via ReportError or
// ReportWarning, chains WithNote and calls Emit.
//
// When no additional metadata is needed, passes may call Reporter.Report(...)
// directly. diag.BagReporter aggregates diagnostics into a Bag, which supports
// sorting and deduplication. A Bag is safe for concurrent use.
//
// Recoverable errors never stop a pass: the producer reports and substitutes a
// placeholder or skips the offending construct. Fatal conditions are Go errors
// and are the caller's business.
package diag
