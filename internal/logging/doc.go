// Package logging builds the slog loggers used across Tonearm.
//
// It supports a human-oriented console handler (one header line per record,
// attributes indented beneath it) and a JSON handler for machine capture,
// with fan-out to stderr plus an optional log file in the configured log
// directory. Construct loggers through New or NewFromConfig so level parsing
// and writer setup stay consistent.
package logging
