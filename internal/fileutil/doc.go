// Package fileutil provides file system scanning for paver.
//
// ScanDirectory walks a tree with extension filtering, depth limits and
// doublestar exclude globs (e.g. "archive/**", "**/*_draft.md"). Hidden
// directories are always skipped, output is sorted, and non-fatal errors
// such as an unreadable subdirectory are collected rather than aborting.
//
// FindMarkdown turns the paths given on the command line into the ordered
// list of documents to check:
//
//	files, errs, err := fileutil.FindMarkdown([]string{"docs", "README.md"}, []string{"docs/archive/**"})
//
// MatchAny is the shared glob matcher, also used by coverage mapping.
package fileutil
