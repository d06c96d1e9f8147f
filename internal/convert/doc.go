// Package convert turns stored HTML artifacts into Markdown
// documents.
//
// Conversion walks the content elements of each page in document
// order: the page title becomes the top-level heading, h1 through h6
// keep their levels, paragraphs become plain text, list items become
// bullets, and links, emphasis, and blockquotes map to their Markdown
// forms. Elements outside that set are ignored. A file that cannot be
// converted is logged and skipped so one broken page never stops the
// corpus.
package convert
