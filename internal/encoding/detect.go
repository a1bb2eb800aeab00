// Package encoding normalises uploaded text files to UTF-8.
package encoding

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"unicode/utf8"

	"github.com/saintfish/chardet"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// Charset names the encoding a file was read as.
type Charset string

const (
	UTF8        Charset = "UTF-8"
	UTF8BOM     Charset = "UTF-8-BOM"
	UTF16LE     Charset = "UTF-16LE"
	UTF16BE     Charset = "UTF-16BE"
	Windows1252 Charset = "windows-1252"
	ISO88599    Charset = "ISO-8859-9"
	ISO885915   Charset = "ISO-8859-15"
)

const sampleSize = 4096

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// Reader yields the input decoded to UTF-8.
type Reader struct {
	io.Reader
	Charset Charset
}

// Detect guesses the charset of sample. A byte order mark wins, then valid
// UTF-8, then chardet's best guess; anything else is read as Windows-1252.
func Detect(sample []byte) Charset {
	return detect(sample, false)
}

// detect is Detect for a sample that may end in the middle of a rune.
func detect(sample []byte, truncated bool) Charset {
	switch {
	case bytes.HasPrefix(sample, bomUTF8):
		return UTF8BOM
	case bytes.HasPrefix(sample, bomUTF16LE):
		return UTF16LE
	case bytes.HasPrefix(sample, bomUTF16BE):
		return UTF16BE
	case validUTF8(sample, truncated):
		return UTF8
	}

	result, err := chardet.NewTextDetector().DetectBest(sample)
	if err != nil {
		return Windows1252
	}

	switch result.Charset {
	case "UTF-8":
		return UTF8
	case "ISO-8859-9":
		return ISO88599
	case "ISO-8859-15":
		return ISO885915
	}

	return Windows1252
}

func validUTF8(sample []byte, truncated bool) bool {
	if !truncated {
		return utf8.Valid(sample)
	}

	for i := 0; i < utf8.UTFMax && len(sample) > 0; i++ {
		if utf8.Valid(sample) {
			return true
		}

		sample = sample[:len(sample)-1]
	}

	return false
}

func decoder(c Charset) encoding.Encoding {
	switch c {
	case UTF16LE:
		return unicode.UTF16(unicode.LittleEndian, unicode.UseBOM)
	case UTF16BE:
		return unicode.UTF16(unicode.BigEndian, unicode.UseBOM)
	case Windows1252:
		return charmap.Windows1252
	case ISO88599:
		return charmap.ISO8859_9
	case ISO885915:
		return charmap.ISO8859_15
	}

	return nil
}

// NewUTF8Reader sniffs the start of r and returns a reader that decodes the
// whole stream to UTF-8. A UTF-8 byte order mark is dropped.
func NewUTF8Reader(r io.Reader) (*Reader, error) {
	br := bufio.NewReaderSize(r, sampleSize)

	sample, err := br.Peek(sampleSize)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return nil, fmt.Errorf("peeking input: %w", err)
	}

	charset := detect(sample, len(sample) == sampleSize)

	if charset == UTF8BOM {
		if _, err := br.Discard(len(bomUTF8)); err != nil {
			return nil, fmt.Errorf("skipping byte order mark: %w", err)
		}

		return &Reader{Reader: br, Charset: charset}, nil
	}

	if enc := decoder(charset); enc != nil {
		return &Reader{Reader: transform.NewReader(br, enc.NewDecoder()), Charset: charset}, nil
	}

	return &Reader{Reader: br, Charset: charset}, nil
}
