package types

import "time"

// ParsedFile is the Parser Pool's output for one source file: the raw
// content, its tree-sitter tree kept alive for the duration of extraction,
// and the content digest used to detect unchanged files on update_file.
type ParsedFile struct {
	Path        string
	Language    Language
	Content     []byte
	ContentHash string // hex-encoded sha256 of Content
	ParsedAt    time.Time
	HasErrors   bool // tree-sitter reported at least one ERROR/MISSING node
}

// FileRecord is what the Graph Manager keeps per indexed file: its identity,
// the symbols it defines, and the references it makes outward. Re-parsing a
// file with the same ContentHash as its existing FileRecord is a no-op.
type FileRecord struct {
	ID          FileID
	Path        string
	Language    Language
	ContentHash string
	Symbols     []CompositeSymbolID
	References  []Reference
	IndexedAt   time.Time
}
