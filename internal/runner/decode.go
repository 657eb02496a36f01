package runner

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/htmlindex"
	"golang.org/x/text/transform"
)

// DefaultOutputEncoding is used when no output encoding is configured.
const DefaultOutputEncoding = "utf-8"

// LookupEncoding resolves an encoding label such as "utf-8", "latin1" or
// "shift_jis".
func LookupEncoding(name string) (encoding.Encoding, error) {
	if name == "" {
		name = DefaultOutputEncoding
	}
	enc, err := htmlindex.Get(name)
	if err != nil {
		return nil, fmt.Errorf("unknown output encoding %q: %w", name, err)
	}
	return enc, nil
}

// maxTailBytes bounds the bytes held back between chunks. No supported
// encoding has longer sequences.
const maxTailBytes = utf8.UTFMax

// lineDecoder turns raw child output into log lines. Invalid input is
// replaced with U+FFFD instead of failing the run.
type lineDecoder struct {
	dec *encoding.Decoder
	// tail holds a multibyte sequence cut off the end of the previous chunk.
	tail []byte
}

func newLineDecoder(enc encoding.Encoding) *lineDecoder {
	return &lineDecoder{dec: enc.NewDecoder()}
}

// chunk decodes a piece of a line that was split because it exceeded the
// read buffer. Whitespace is kept since the line continues.
func (d *lineDecoder) chunk(raw []byte) string {
	return strings.ToValidUTF8(d.transform(raw, false), "\uFFFD")
}

// line decodes the final piece of a line and trims trailing whitespace.
func (d *lineDecoder) line(raw []byte) string {
	s := strings.ToValidUTF8(d.transform(raw, true), "\uFFFD")
	d.dec.Reset()
	return strings.TrimRightFunc(s, unicode.IsSpace)
}

// pending reports whether bytes from an earlier chunk are still undecoded.
func (d *lineDecoder) pending() bool {
	return len(d.tail) > 0
}

func (d *lineDecoder) transform(raw []byte, atEOF bool) string {
	src := append(d.tail, raw...)
	d.tail = nil
	dst := make([]byte, 3*len(src)+utf8.UTFMax)
	var out []byte
	for {
		nDst, nSrc, err := d.dec.Transform(dst, src, atEOF)
		out = append(out, dst[:nDst]...)
		src = src[nSrc:]
		switch {
		case err == nil:
			return string(out)
		case errors.Is(err, transform.ErrShortDst) && (nDst > 0 || nSrc > 0):
			continue
		case errors.Is(err, transform.ErrShortSrc) && !atEOF && len(src) <= maxTailBytes:
			d.tail = append([]byte(nil), src...)
			return string(out)
		default:
			d.dec.Reset()
			return string(append(out, src...))
		}
	}
}
