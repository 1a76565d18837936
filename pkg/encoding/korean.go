// Package encoding decodes the legacy text found in imported model files.
package encoding

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

// EUCKRToUTF8 converts EUC-KR encoded bytes to a UTF-8 string.
// Input that is already valid UTF-8 or fails to decode is returned as is.
func EUCKRToUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	result, _, err := transform.Bytes(korean.EUCKR.NewDecoder(), data)
	if err != nil {
		return string(data)
	}
	return string(result)
}

// UTF8ToEUCKR converts a UTF-8 string to EUC-KR encoded bytes.
// Returns the original bytes if conversion fails.
func UTF8ToEUCKR(s string) []byte {
	result, _, err := transform.Bytes(korean.EUCKR.NewEncoder(), []byte(s))
	if err != nil {
		return []byte(s)
	}
	return result
}

// FixedStringToUTF8 decodes a fixed-size, NUL-padded EUC-KR field.
func FixedStringToUTF8(data []byte) string {
	if i := bytes.IndexByte(data, 0); i >= 0 {
		data = data[:i]
	}
	return EUCKRToUTF8(data)
}

// UTF8ToFixedString encodes s as EUC-KR into a NUL-padded field of size bytes.
// Longer names are truncated.
func UTF8ToFixedString(s string, size int) []byte {
	result := make([]byte, size)
	copy(result, UTF8ToEUCKR(s))
	return result
}
