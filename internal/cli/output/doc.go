// Package output renders tracklink-cli results.
//
// Every command builds a value and hands it to a Formatter:
//
//   - table: aligned columns for people (default)
//   - json: indented JSON for scripts
//   - yaml: YAML, the same shape as the daemon configuration file
//
// Struct fields are named by their json tag in tables. A field tagged
// `table:"wide"` only shows with --wide; `table:"-"` never shows.
package output
