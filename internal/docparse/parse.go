// Package docparse splits the delimiter-based judgment bundle format into its
// metadata block and per-file text sections for display.
package docparse

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

// File is one text section of a bundle.
type File struct {
	Filename string
	Content  string
}

// Parsed is the result of splitting one bundle.
type Parsed struct {
	// Metadata is the <metadados> block, pretty-printed when it is JSON,
	// verbatim otherwise. Empty when the section is absent.
	Metadata string
	Files    []File
}

var (
	metadataRe = regexp.MustCompile(`(?s)<metadados>(.*?)</metadados>`)
	textosRe   = regexp.MustCompile(`(?s)<textos>(.*?)</textos>`)
	fileSepRe  = regexp.MustCompile(`# Arquivo ([^\n]+\.txt) --+`)
)

// Parse splits a bundle into metadata and file sections. A <textos> block
// without `# Arquivo name.txt ---` separators is treated as one document.
func Parse(text string) Parsed {
	var parsed Parsed
	if text == "" {
		return parsed
	}

	if m := metadataRe.FindStringSubmatch(text); m != nil {
		parsed.Metadata = prettyMetadata(strings.TrimSpace(m[1]))
	}

	m := textosRe.FindStringSubmatch(text)
	if m == nil {
		return parsed
	}
	body := strings.TrimSpace(m[1])
	if body == "" {
		return parsed
	}

	parsed.Files = splitFiles(body)
	return parsed
}

func splitFiles(body string) []File {
	seps := fileSepRe.FindAllStringSubmatchIndex(body, -1)
	if len(seps) == 0 {
		return []File{{Filename: "Documento Principal", Content: body}}
	}

	files := make([]File, 0, len(seps))
	for i, sep := range seps {
		name := body[sep[2]:sep[3]]
		end := len(body)
		if i+1 < len(seps) {
			end = seps[i+1][0]
		}
		content := strings.TrimSpace(body[sep[1]:end])
		files = append(files, File{Filename: name, Content: content})
	}
	return files
}

// prettyMetadata reindents JSON metadata; non-JSON blocks pass through.
func prettyMetadata(raw string) string {
	var decoded any
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		return raw
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(decoded); err != nil {
		return raw
	}
	return strings.TrimRight(buf.String(), "\n")
}
