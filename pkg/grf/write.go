package grf

import (
	"bytes"
	"compress/zlib"
	"encoding/binary"
	"io"
	"strings"

	"github.com/Faultbox/midgard-anim/pkg/encoding"
)

// File is one entry to pack with Write.
type File struct {
	Name string
	Data []byte
}

// Write packs files into a GRF 0x200 archive. Entry names use forward
// slashes and are stored with backslashes and EUC-KR encoding.
func Write(w io.Writer, files []File) error {
	var body, table bytes.Buffer

	for _, f := range files {
		compressed, err := deflate(f.Data)
		if err != nil {
			return err
		}

		aligned := len(compressed)
		if rem := aligned % 8; rem != 0 {
			aligned += 8 - rem
		}
		offset := uint32(body.Len())
		body.Write(compressed)
		body.Write(make([]byte, aligned-len(compressed)))

		table.Write(encoding.UTF8ToEUCKR(strings.ReplaceAll(f.Name, "/", "\\")))
		table.WriteByte(0)
		_ = binary.Write(&table, binary.LittleEndian, uint32(len(compressed)))
		_ = binary.Write(&table, binary.LittleEndian, uint32(aligned))
		_ = binary.Write(&table, binary.LittleEndian, uint32(len(f.Data)))
		table.WriteByte(flagFile)
		_ = binary.Write(&table, binary.LittleEndian, offset)
	}

	packedTable, err := deflate(table.Bytes())
	if err != nil {
		return err
	}

	h := Header{
		TableOffset: uint32(body.Len()),
		FileCount:   uint32(len(files)) + 7,
		Version:     version200,
	}
	copy(h.Magic[:], grfMagic)

	if err := binary.Write(w, binary.LittleEndian, &h); err != nil {
		return err
	}
	if _, err := w.Write(body.Bytes()); err != nil {
		return err
	}
	if err := binary.Write(w, binary.LittleEndian, [2]uint32{uint32(len(packedTable)), uint32(table.Len())}); err != nil {
		return err
	}
	_, err = w.Write(packedTable)
	return err
}

func deflate(data []byte) ([]byte, error) {
	var buf bytes.Buffer
	zw := zlib.NewWriter(&buf)
	if _, err := zw.Write(data); err != nil {
		return nil, err
	}
	if err := zw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
