package normalisers

import (
	"path/filepath"
	"regexp"
	"strings"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
)

var multiBlankLines = regexp.MustCompile(`\n{3,}`)

// CleanText normalises line endings, trims trailing spaces on every line
// and collapses runs of blank lines to one.
func CleanText(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	s = strings.ReplaceAll(s, "\x00", "")

	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimRight(line, " \t\f\v")
	}
	s = strings.Join(lines, "\n")
	s = multiBlankLines.ReplaceAllString(s, "\n\n")
	return strings.TrimSpace(s)
}

// TitleFromFilename turns "refund_policy-v2.pdf" into "refund policy v2".
func TitleFromFilename(name string) string {
	filename := filepath.Base(name)
	if filename == "." || filename == string(filepath.Separator) {
		return ""
	}
	if ext := filepath.Ext(filename); ext != "" && ext != filename {
		filename = strings.TrimSuffix(filename, ext)
	}
	filename = strings.ReplaceAll(filename, "_", " ")
	filename = strings.ReplaceAll(filename, "-", " ")
	return strings.TrimSpace(filename)
}

// CopyMetadata creates a shallow copy of metadata.
func CopyMetadata(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	dst := make(map[string]any, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}

// Result builds the normaliser output, recording the MIME type and format.
func Result(raw *domain.RawDocument, title, content, format string) *driven.NormaliseResult {
	metadata := CopyMetadata(raw.Metadata)
	if metadata == nil {
		metadata = make(map[string]any)
	}
	metadata["mime_type"] = raw.MIMEType
	if format != "" {
		metadata["format"] = format
	}
	if title == "" {
		title = TitleFromFilename(raw.Filename)
	}
	return &driven.NormaliseResult{
		Document: domain.Document{
			Title:    title,
			Content:  CleanText(content),
			Metadata: metadata,
		},
	}
}
