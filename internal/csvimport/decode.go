package csvimport

import (
	"bytes"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Bytes left unassigned by Windows-1252.
var cp1252Undefined = []byte{0x81, 0x8D, 0x8F, 0x90, 0x9D}

// Decode converts uploaded bytes to text: UTF-8 with or without a byte-order
// mark first, then Windows-1252. When nothing fits, undefined bytes are
// replaced by U+FFFD.
func Decode(raw []byte) string {
	if body, ok := bytes.CutPrefix(raw, utf8BOM); ok && utf8.Valid(body) {
		return string(body)
	}
	if utf8.Valid(raw) {
		return string(raw)
	}
	if !hasCP1252Undefined(raw) {
		if text, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
			return string(text)
		}
	}
	return decodeLossy(raw)
}

func hasCP1252Undefined(raw []byte) bool {
	for _, b := range cp1252Undefined {
		if bytes.IndexByte(raw, b) >= 0 {
			return true
		}
	}
	return false
}

func decodeLossy(raw []byte) string {
	var buf bytes.Buffer
	buf.Grow(len(raw))
	for _, b := range raw {
		if bytes.IndexByte(cp1252Undefined, b) >= 0 {
			buf.WriteRune(utf8.RuneError)
			continue
		}
		buf.WriteRune(charmap.Windows1252.DecodeByte(b))
	}
	return buf.String()
}
