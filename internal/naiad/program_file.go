package naiad

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

var ErrInvalidEncoding = errors.New("program is neither valid UTF-8 nor UTF-16")

// guessEncoding returns the fallback encoding used when data carries
// no byte order mark. Separators are ASCII, so UTF-16 text always has
// NUL high bytes; their parity gives the endianness.
func guessEncoding(data []byte) encoding.Encoding {
	if utf8.Valid(data) && bytes.IndexByte(data, 0) < 0 {
		return unicode.UTF8
	}
	even, odd := 0, 0
	for i, b := range data {
		if b != 0 {
			continue
		}
		if i%2 == 0 {
			even += 1
		} else {
			odd += 1
		}
	}
	if even > odd {
		return unicode.UTF16(unicode.BigEndian, unicode.IgnoreBOM)
	}
	return unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)
}

// ReadProgram decodes a program text. UTF-16 and UTF-8 with or
// without byte order mark are accepted.
func ReadProgram(r io.Reader) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	decoder := unicode.BOMOverride(guessEncoding(data).NewDecoder())
	decoded, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), decoder))
	if err != nil {
		return "", fmt.Errorf("%w: %s", ErrInvalidEncoding, err)
	}
	if utf8.Valid(decoded) == false || bytes.ContainsRune(decoded, utf8.RuneError) {
		return "", ErrInvalidEncoding
	}
	return string(decoded), nil
}

func ReadProgramFile(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return ReadProgram(f)
}

// ParseProgramFile reads and parses a whole program file.
func ParseProgramFile(filename string) ([]Command, error) {
	text, err := ReadProgramFile(filename)
	if err != nil {
		return nil, err
	}
	commands, err := Parse(text)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", filename, err)
	}
	return commands, nil
}
