package metaparser

import (
	"bytes"
	"fmt"
	"time"

	"github.com/BurntSushi/toml"
)

var delimiter = []byte("+++")

type MetaData struct {
	Title       string    `toml:"title"`
	Description string    `toml:"description"`
	Tags        []string  `toml:"tags"`
	Date        time.Time `toml:"date"`
	Draft       bool      `toml:"draft"`
}

// ParseMetaData parses TOML metadata into a MetaData pointer
func ParseMetaData(data []byte) (*MetaData, error) {
	meta := &MetaData{}
	err := toml.Unmarshal(data, meta)
	return meta, err
}

// SplitFrontMatter separates a "+++" delimited TOML header from the body of
// a markdown document. Documents without a header return empty metadata and
// the input unchanged.
func SplitFrontMatter(doc []byte) (*MetaData, []byte, error) {
	rest, ok := cutLine(doc, delimiter)
	if !ok {
		return &MetaData{}, doc, nil
	}

	end := bytes.Index(rest, append([]byte("\n"), delimiter...))
	if end < 0 {
		return nil, nil, fmt.Errorf("front matter: missing closing %s", delimiter)
	}

	meta, err := ParseMetaData(rest[:end])
	if err != nil {
		return nil, nil, fmt.Errorf("front matter: %w", err)
	}

	body := rest[end+1+len(delimiter):]
	body = bytes.TrimLeft(body, "\r\n")
	return meta, body, nil
}

// cutLine reports whether doc starts with a line equal to marker and returns
// what follows that line.
func cutLine(doc, marker []byte) ([]byte, bool) {
	line, rest, found := bytes.Cut(doc, []byte("\n"))
	if !found {
		return nil, false
	}
	if !bytes.Equal(bytes.TrimRight(line, "\r \t"), marker) {
		return nil, false
	}
	return rest, true
}
