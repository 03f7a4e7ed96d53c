package source

import (
	"fmt"
	"os"
	"strings"
	"sync"

	"fortio.org/safecast"
)

// FileSet holds the unit files of one compilation. Files are added by a
// single goroutine before decoding starts; module names are attached
// concurrently by the decode workers, so every method locks.
type FileSet struct {
	mu      sync.RWMutex
	files   []File
	baseDir string // база для относительных путей в диагностиках
}

// NewFileSet creates an empty FileSet rooted at the working directory.
func NewFileSet() *FileSet {
	return &FileSet{}
}

// NewFileSetWithBase creates an empty FileSet whose relative paths are
// shown against baseDir.
func NewFileSetWithBase(baseDir string) *FileSet {
	return &FileSet{baseDir: baseDir}
}

// BaseDir returns the base directory, or the working directory when none
// was set.
func (fileSet *FileSet) BaseDir() string {
	fileSet.mu.RLock()
	dir := fileSet.baseDir
	fileSet.mu.RUnlock()
	if dir == "" {
		if wd, err := os.Getwd(); err == nil {
			return wd
		}
	}
	return dir
}

// Add stores content under path and returns a fresh FileID. Text content
// gets a line index; FileBinary content does not.
func (fileSet *FileSet) Add(path string, content []byte, flags FileFlags) FileID {
	if _, err := safecast.Conv[uint32](len(content)); err != nil {
		panic(fmt.Errorf("file %s too large: %w", path, err))
	}
	var lineIdx []uint32
	if flags&FileBinary == 0 {
		lineIdx = buildLineIndex(content)
	}

	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()
	n, err := safecast.Conv[uint32](len(fileSet.files))
	if err != nil {
		panic(fmt.Errorf("too many files: %w", err))
	}
	id := FileID(n)
	fileSet.files = append(fileSet.files, File{
		ID:      id,
		Path:    normalizePath(path),
		Content: content,
		LineIdx: lineIdx,
		Flags:   flags,
	})
	return id
}

// Load reads a unit file from disk. Binary units (".mp") are kept
// byte-exact; text units are normalized.
func (fileSet *FileSet) Load(path string) (FileID, error) {
	// #nosec G304 -- path is provided by the caller
	content, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	if strings.HasSuffix(path, ".mp") {
		return fileSet.Add(path, content, FileBinary), nil
	}
	var flags FileFlags
	content, changed := normalizeText(content)
	if changed {
		flags |= FileNormalized
	}
	return fileSet.Add(path, content, flags), nil
}

// AddVirtual adds in-memory text content with the FileVirtual flag.
func (fileSet *FileSet) AddVirtual(name string, content []byte) FileID {
	content, _ = normalizeText(content)
	return fileSet.Add(name, content, FileVirtual)
}

// Len returns the number of files added so far.
func (fileSet *FileSet) Len() int {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	return len(fileSet.files)
}

// Get returns a copy of the file metadata for id.
func (fileSet *FileSet) Get(id FileID) (File, bool) {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return File{}, false
	}
	return fileSet.files[id], true
}

// SetModule records the module name a unit file declares.
func (fileSet *FileSet) SetModule(id FileID, module string) {
	fileSet.mu.Lock()
	defer fileSet.mu.Unlock()
	if int(id) < len(fileSet.files) {
		fileSet.files[id].Module = module
	}
}

// Module returns the module name of a file, falling back to its path for
// units that never decoded.
func (fileSet *FileSet) Module(id FileID) string {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return "<unknown>"
	}
	if f := &fileSet.files[id]; f.Module != "" {
		return f.Module
	}
	return fileSet.files[id].Path
}

// Resolve converts a byte offset within a text unit into line and column
// of that file.
func (fileSet *FileSet) Resolve(id FileID, off uint32) LineCol {
	fileSet.mu.RLock()
	defer fileSet.mu.RUnlock()
	if int(id) >= len(fileSet.files) {
		return LineCol{}
	}
	return toLineCol(fileSet.files[id].LineIdx, off)
}
