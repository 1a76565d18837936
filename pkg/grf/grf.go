// Package grf reads and writes GRF 0x200 archives, the zlib-packed containers
// rig and model files are often shipped in.
package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Faultbox/midgard-anim/pkg/encoding"
)

const (
	grfMagic   = "Master of Magic"
	headerSize = 46
	version200 = 0x200

	flagFile      = 0x01
	flagEncrypted = 0x02 | 0x04
)

// Archive errors.
var (
	ErrInvalidMagic       = errors.New("invalid GRF magic")
	ErrUnsupportedVersion = errors.New("unsupported GRF version")
	ErrNotFound           = errors.New("file not found in archive")
	ErrEncrypted          = errors.New("encrypted GRF entries are not supported")
)

// Archive represents an opened GRF archive.
type Archive struct {
	file     *os.File
	header   Header
	fileList map[string]*Entry
}

// Header contains GRF file header information.
type Header struct {
	Magic         [15]byte
	EncryptionKey [15]byte
	TableOffset   uint32
	Seed          uint32
	FileCount     uint32
	Version       uint32
}

// Entry represents a file entry in the archive.
type Entry struct {
	Name             string
	CompressedSize   uint32
	AlignedSize      uint32
	UncompressedSize uint32
	Flags            uint8
	Offset           uint32
}

// Open opens a GRF archive for reading.
func Open(path string) (*Archive, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	archive := &Archive{
		file:     file,
		fileList: make(map[string]*Entry),
	}

	if err := archive.readHeader(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading header: %w", err)
	}

	if err := archive.readFileTable(); err != nil {
		file.Close()
		return nil, fmt.Errorf("reading file table: %w", err)
	}

	return archive, nil
}

// Close closes the archive.
func (a *Archive) Close() error {
	if a.file != nil {
		return a.file.Close()
	}
	return nil
}

func (a *Archive) readHeader() error {
	if _, err := a.file.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := binary.Read(a.file, binary.LittleEndian, &a.header); err != nil {
		return err
	}
	if string(a.header.Magic[:]) != grfMagic {
		return ErrInvalidMagic
	}
	if a.header.Version != version200 {
		return fmt.Errorf("%w: 0x%x", ErrUnsupportedVersion, a.header.Version)
	}
	return nil
}

func (a *Archive) readFileTable() error {
	if _, err := a.file.Seek(int64(a.header.TableOffset)+headerSize, io.SeekStart); err != nil {
		return err
	}

	var sizes struct {
		Compressed   uint32
		Uncompressed uint32
	}
	if err := binary.Read(a.file, binary.LittleEndian, &sizes); err != nil {
		return err
	}

	compressed := make([]byte, sizes.Compressed)
	if _, err := io.ReadFull(a.file, compressed); err != nil {
		return err
	}
	table, err := inflate(compressed, sizes.Uncompressed)
	if err != nil {
		return err
	}

	fileCount := a.header.FileCount - a.header.Seed - 7
	offset := 0
	for i := uint32(0); i < fileCount; i++ {
		nameEnd := bytes.IndexByte(table[offset:], 0)
		if nameEnd < 0 {
			break
		}
		name := encoding.EUCKRToUTF8(table[offset : offset+nameEnd])
		offset += nameEnd + 1

		if offset+17 > len(table) {
			break
		}

		entry := &Entry{
			Name:             normalizePath(name),
			CompressedSize:   binary.LittleEndian.Uint32(table[offset:]),
			AlignedSize:      binary.LittleEndian.Uint32(table[offset+4:]),
			UncompressedSize: binary.LittleEndian.Uint32(table[offset+8:]),
			Flags:            table[offset+12],
			Offset:           binary.LittleEndian.Uint32(table[offset+13:]),
		}
		offset += 17

		if entry.Flags&flagFile != 0 {
			a.fileList[entry.Name] = entry
		}
	}

	return nil
}

// List returns all file paths in the archive, sorted.
func (a *Archive) List() []string {
	result := make([]string, 0, len(a.fileList))
	for path := range a.fileList {
		result = append(result, path)
	}
	sort.Strings(result)
	return result
}

// Contains checks if a file exists. Lookup ignores case and slash direction.
func (a *Archive) Contains(path string) bool {
	_, ok := a.fileList[normalizePath(path)]
	return ok
}

// Stat returns the entry for a file.
func (a *Archive) Stat(path string) (Entry, bool) {
	e, ok := a.fileList[normalizePath(path)]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// Read reads a file from the archive.
func (a *Archive) Read(path string) ([]byte, error) {
	entry, ok := a.fileList[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if entry.Flags&flagEncrypted != 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEncrypted)
	}

	raw := make([]byte, entry.AlignedSize)
	if _, err := a.file.ReadAt(raw, int64(entry.Offset)+headerSize); err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	data, err := inflate(raw[:entry.CompressedSize], entry.UncompressedSize)
	if err != nil {
		return nil, fmt.Errorf("inflating %s: %w", path, err)
	}
	return data, nil
}

func inflate(compressed []byte, size uint32) ([]byte, error) {
	reader, err := zlib.NewReader(bytes.NewReader(compressed))
	if err != nil {
		return nil, err
	}
	defer reader.Close()

	out := make([]byte, size)
	if _, err := io.ReadFull(reader, out); err != nil {
		return nil, err
	}
	return out, nil
}

func normalizePath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	return strings.ToLower(path)
}
