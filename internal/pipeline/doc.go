// Package pipeline turns Markdown source into a parsed HTML tree.
//
// The stages run in this order:
//   - Markdown preprocessing (line endings, blank lines, ==highlight== syntax)
//   - Markdown to HTML via Goldmark, with pipe-table alignment written as
//     canonical text-align styles and code blocks colored inline by Chroma
//   - Sanitizing of the rendered fragment with bluemonday
//   - [TOC] directive expansion into a numbered table of contents
//   - Parsing into an x/net/html tree for the document walker
//
// HTML files can enter the pipeline too: NormalizeHTML converts them to
// Markdown first so they get the same treatment.
package pipeline
