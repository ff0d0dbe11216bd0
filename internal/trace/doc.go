// Package trace records profiler activity as a stream of span events.
//
// Every build maps to one top-level span and every unit start/complete
// pair maps to a nested span, so a whole run can be exported as a
// timeline. Output formats:
//
//   - FormatText: human-readable lines for quick inspection
//   - FormatNDJSON: newline-delimited JSON for machine consumption
//   - FormatChrome: Chrome trace-viewer JSON (load via chrome://tracing
//     or https://ui.perfetto.dev)
//
// FormatAuto picks the format from the output file extension.
//
// Verbosity is controlled by levels:
//
//   - LevelOff: no tracing
//   - LevelBuild: build boundaries and summary points only
//   - LevelUnit: every unit span
//   - LevelDebug: everything, including skipped notifications
//
// Writes are best effort: a trace failure must never disturb the build
// being observed.
package trace
