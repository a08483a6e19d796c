// Package display renders paver results for people and for CI.
//
// Every report has three renderings selected by Format:
//
//   - text: human output, colored when the writer is a terminal
//   - json: indented JSON of the underlying structured value
//   - github: GitHub Actions workflow annotations (::error file=..,line=..::msg)
//
// Warnings and progress lines written to stderr live here too, so command
// code never formats output itself.
package display
