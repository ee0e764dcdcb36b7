// Package notes builds the release-notes tree: every change record filed
// under the major, minor and patch number it produced.
//
// The tree is built with the same fold as versioning.Calculator, so the path
// of each record is exactly the version the history had after that record.
//
// The package also renders the tree:
//   - RenderMarkdown writes a release-notes document, newest version first
//   - FormatTerminal writes colored output for the CLI
//   - Export produces the nested {major: {notes: {minor: {notes: ...}}}} form
//     used for YAML and JSON output
package notes
