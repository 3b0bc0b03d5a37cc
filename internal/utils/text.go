package utils

import (
	"bytes"
	"context"
	"errors"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// ErrNotText is returned when a payload cannot be shown as text
var ErrNotText = errors.New("failed to read file content")

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// DecodeAsText converts a report payload to text for preview.
//
// UTF-8 and UTF-16 byte order marks are honoured, plain UTF-8 is returned as
// is and anything else is read as Windows-1252. Payloads containing NUL bytes
// outside a UTF-16 encoding are treated as binary and rejected.
func DecodeAsText(ctx context.Context, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	switch {
	case bytes.HasPrefix(data, bomUTF16LE), bytes.HasPrefix(data, bomUTF16BE):
		decoder := unicode.BOMOverride(unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewDecoder())
		out, _, err := transform.Bytes(decoder, data)
		if err != nil {
			return "", errors.Join(ErrNotText, err)
		}
		return string(out), nil

	case bytes.HasPrefix(data, bomUTF8):
		data = data[len(bomUTF8):]
	}

	if bytes.IndexByte(data, 0) != -1 {
		return "", ErrNotText
	}

	if utf8.Valid(data) {
		return string(data), nil
	}

	out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), data)
	if err != nil {
		return "", errors.Join(ErrNotText, err)
	}
	return string(out), nil
}
