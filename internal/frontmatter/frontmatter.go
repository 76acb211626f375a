// Package frontmatter splits a textual file into an optional leading
// metadata block and a body. YAML blocks are delimited by --- lines,
// TOML blocks by +++ lines. The opening delimiter must start the file.
package frontmatter

import (
	"bytes"
	"fmt"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"
)

var (
	yamlDelimiter = []byte("---")
	tomlDelimiter = []byte("+++")
	utf8BOM       = []byte{0xEF, 0xBB, 0xBF}
)

// Error reports a frontmatter failure with the file path and the line
// on which the problem was detected.
type Error struct {
	Path string
	Line int
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("frontmatter %s:%d: %v", e.Path, e.Line, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// Parse detects and parses a frontmatter block at the start of raw.
// It returns the parsed metadata, the remaining body, and any error.
//
// If no opening delimiter is present, metadata is nil and the full
// content is returned as the body. A present opening delimiter without
// a closing one is an *Error. Inside a YAML block, #-prefixed lines are
// comments and scalar typing (bool, null, numbers, dates) follows YAML;
// bare YYYY-MM-DD dates parse as UTC midnight.
func Parse(path string, raw []byte) (metadata map[string]any, body []byte, err error) {
	content := bytes.TrimPrefix(raw, utf8BOM)

	var delimiter []byte
	var format string

	switch {
	case bytes.HasPrefix(content, yamlDelimiter):
		delimiter = yamlDelimiter
		format = "yaml"
	case bytes.HasPrefix(content, tomlDelimiter):
		delimiter = tomlDelimiter
		format = "toml"
	default:
		return nil, raw, nil
	}

	rest := content[len(delimiter):]
	nlIdx := bytes.IndexByte(rest, '\n')
	if nlIdx == -1 {
		// Opening delimiter with no content at all.
		return nil, raw, &Error{Path: path, Line: 1, Err: fmt.Errorf("closing %q delimiter not found", string(delimiter))}
	}
	// Reject trailing junk on the delimiter line ("---foo" is body text,
	// not a delimiter).
	if len(bytes.TrimSpace(rest[:nlIdx])) > 0 {
		return nil, raw, nil
	}
	rest = rest[nlIdx+1:]

	block, after, ok := cutClosingDelimiter(rest, delimiter)
	if !ok {
		line := bytes.Count(content[:len(content)-len(rest)], []byte("\n")) + bytes.Count(rest, []byte("\n")) + 1
		return nil, raw, &Error{Path: path, Line: line, Err: fmt.Errorf("closing %q delimiter not found", string(delimiter))}
	}
	body = after

	if len(bytes.TrimSpace(block)) == 0 {
		return make(map[string]any), body, nil
	}

	metadata = make(map[string]any)
	switch format {
	case "yaml":
		if err := yaml.Unmarshal(block, &metadata); err != nil {
			return nil, raw, &Error{Path: path, Line: 2, Err: err}
		}
	case "toml":
		if err := toml.Unmarshal(block, &metadata); err != nil {
			return nil, raw, &Error{Path: path, Line: 2, Err: err}
		}
	}

	return metadata, body, nil
}

// cutClosingDelimiter finds the first line consisting solely of the
// delimiter and returns the block before it and the body after it.
func cutClosingDelimiter(rest, delimiter []byte) (block, body []byte, ok bool) {
	offset := 0
	for offset <= len(rest) {
		lineEnd := bytes.IndexByte(rest[offset:], '\n')
		var line []byte
		next := len(rest)
		if lineEnd == -1 {
			line = rest[offset:]
		} else {
			line = rest[offset : offset+lineEnd]
			next = offset + lineEnd + 1
		}
		if bytes.Equal(bytes.TrimRight(line, " \t\r"), delimiter) {
			return rest[:offset], rest[next:], true
		}
		if lineEnd == -1 {
			break
		}
		offset = next
	}
	return nil, nil, false
}

// Stringify encodes metadata as a YAML frontmatter block, delimiters
// included. Parse(Stringify(m)) round-trips metadata whose values stay
// within the supported scalar subset.
func Stringify(metadata map[string]any) ([]byte, error) {
	encoded, err := yaml.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("frontmatter: encoding metadata: %w", err)
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(encoded)
	buf.WriteString("---\n")
	return buf.Bytes(), nil
}
