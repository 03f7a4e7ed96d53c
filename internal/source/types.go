package source

// FileID identifies a unit file within a FileSet. IDs are dense and
// assigned in load order.
type FileID uint32

// FileFlags encodes how a unit file was obtained.
type FileFlags uint8

const (
	// FileVirtual marks content handed over in memory (tests, scenarios).
	FileVirtual FileFlags = 1 << iota
	// FileBinary marks msgpack-encoded units; they have no line index.
	FileBinary
	// FileNormalized marks text whose BOM or CRLF line endings were stripped.
	FileNormalized
)

// File is one loaded unit file.
type File struct {
	ID      FileID
	Path    string
	Module  string // заполняется драйвером после декодирования
	Content []byte
	LineIdx []uint32 // offsets of '\n'
	Flags   FileFlags
}

// LineCol is a 1-based position inside the unit file itself. It is used
// only for syntax errors of text units; diagnostics about the program
// carry Pos from the original rial source instead.
type LineCol struct {
	Line uint32
	Col  uint32
}
