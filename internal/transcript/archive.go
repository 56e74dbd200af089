// =============================================================================
// Graduation Audit - Transcript Archive
// =============================================================================
//
// An Archive is the container of per-student transcripts. Two sources are
// supported:
//   - ZipArchive: the bulk download from the registrar system
//   - FSArchive:  an already extracted directory tree
//
// Entry names are normalized to NFC. Zips created on macOS store Hangul
// decomposed (NFD), and zips created by Korean Windows tools store CP949
// names without the UTF-8 flag; both would otherwise fail to match the
// 성적정보_ prefix.
//
// =============================================================================

package transcript

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/unicode/norm"
)

// ErrArchiveOpen is returned when the container itself cannot be opened.
var ErrArchiveOpen = errors.New("transcript archive cannot be opened")

// ErrEntryNotFound is returned by ReadFile for unknown entry names.
var ErrEntryNotFound = errors.New("archive entry not found")

// Archive is an enumerable container of named byte blobs.
type Archive interface {
	// Names returns every entry path in enumeration order.
	Names() []string

	// ReadFile returns the bytes of the named entry.
	ReadFile(name string) ([]byte, error)
}

// =============================================================================
// ZIP ARCHIVE
// =============================================================================

// ZipArchive is an Archive backed by a zip file.
type ZipArchive struct {
	names []string
	files map[string]*zip.File
}

// OpenZip opens a zip archive from r.
//
// PARAMETERS:
//   - r: Random access to the zip bytes.
//   - size: Total size of the zip in bytes.
//
// RETURNS:
//   - The archive with normalized entry names.
//   - An error matching ErrArchiveOpen if r is not a readable zip.
func OpenZip(r io.ReaderAt, size int64) (*ZipArchive, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveOpen, err)
	}

	a := &ZipArchive{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		name := entryName(f)
		a.names = append(a.names, name)
		if _, dup := a.files[name]; !dup {
			a.files[name] = f
		}
	}
	return a, nil
}

// OpenZipBytes opens a zip archive held in memory.
func OpenZipBytes(data []byte) (*ZipArchive, error) {
	return OpenZip(bytes.NewReader(data), int64(len(data)))
}

// Names implements Archive.
func (a *ZipArchive) Names() []string {
	names := make([]string, len(a.names))
	copy(names, a.names)
	return names
}

// ReadFile implements Archive.
func (a *ZipArchive) ReadFile(name string) ([]byte, error) {
	f, ok := a.files[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open entry %s: %w", name, err)
	}
	defer rc.Close()

	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", name, err)
	}
	return data, nil
}

// entryName decodes legacy CP949 names and normalizes to NFC.
func entryName(f *zip.File) string {
	name := f.Name
	if f.NonUTF8 && !utf8.ValidString(name) {
		if decoded, err := korean.EUCKR.NewDecoder().String(name); err == nil {
			name = decoded
		}
	}
	return norm.NFC.String(name)
}

// =============================================================================
// DIRECTORY ARCHIVE
// =============================================================================

// FSArchive is an Archive backed by a file system tree, enumerated in
// lexical order.
type FSArchive struct {
	fsys  fs.FS
	names []string
	paths map[string]string
}

// OpenFS walks fsys and returns an archive over its regular files.
func OpenFS(fsys fs.FS) (*FSArchive, error) {
	a := &FSArchive{fsys: fsys, paths: make(map[string]string)}

	err := fs.WalkDir(fsys, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !d.Type().IsRegular() {
			return nil
		}
		name := norm.NFC.String(path)
		a.names = append(a.names, name)
		if _, dup := a.paths[name]; !dup {
			a.paths[name] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrArchiveOpen, err)
	}
	return a, nil
}

// Names implements Archive.
func (a *FSArchive) Names() []string {
	names := make([]string, len(a.names))
	copy(names, a.names)
	return names
}

// ReadFile implements Archive.
func (a *FSArchive) ReadFile(name string) ([]byte, error) {
	path, ok := a.paths[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrEntryNotFound, name)
	}
	data, err := fs.ReadFile(a.fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read entry %s: %w", name, err)
	}
	return data, nil
}
