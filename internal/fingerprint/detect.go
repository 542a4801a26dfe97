package fingerprint

import (
	"mime"
	"net/http"
	"path/filepath"
	"strings"
)

// Detector is one MIME detection strategy.
// It returns ok=false when it cannot tell.
type Detector interface {
	Detect(filename string, data []byte) (mimeType string, ok bool)
}

// DetectorFunc adapts a function to Detector.
type DetectorFunc func(filename string, data []byte) (string, bool)

// Detect calls f.
func (f DetectorFunc) Detect(filename string, data []byte) (string, bool) {
	return f(filename, data)
}

// Chain tries detectors in order; the first conclusive answer wins.
type Chain []Detector

// DefaultChain is extension, then content sniffing, then octet-stream.
var DefaultChain = Chain{ExtensionDetector{}, SniffDetector{}, DefaultDetector{}}

// Detect returns the first conclusive answer, or OctetStream.
func (c Chain) Detect(filename string, data []byte) string {
	for _, d := range c {
		if m, ok := d.Detect(filename, data); ok {
			if canonical := Canonical(m); canonical != "" {
				return canonical
			}
		}
	}
	return OctetStream
}

// extensionTypes is consulted before the platform MIME table, which varies
// between systems for these extensions.
var extensionTypes = map[string]string{
	".txt":      "text/plain",
	".text":     "text/plain",
	".log":      "text/plain",
	".md":       "text/markdown",
	".markdown": "text/markdown",
	".html":     "text/html",
	".htm":      "text/html",
	".csv":      "text/csv",
	".tsv":      "text/tab-separated-values",
	".json":     "application/json",
	".xml":      "application/xml",
	".yaml":     "application/yaml",
	".yml":      "application/yaml",
	".pdf":      "application/pdf",
	".docx":     "application/vnd.openxmlformats-officedocument.wordprocessingml.document",
}

// ExtensionDetector maps the filename extension to a MIME type.
type ExtensionDetector struct{}

// Detect looks up the lowercased extension. An extension that only maps to
// OctetStream, such as .bin, counts as inconclusive.
func (ExtensionDetector) Detect(filename string, _ []byte) (string, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if ext == "" {
		return "", false
	}
	if m, ok := extensionTypes[ext]; ok {
		return m, true
	}
	if m := Canonical(mime.TypeByExtension(ext)); m != "" && m != OctetStream {
		return m, true
	}
	return "", false
}

// SniffDetector inspects the leading bytes of the content.
// A sniffed octet-stream counts as inconclusive.
type SniffDetector struct{}

// Detect uses the WHATWG sniffing algorithm.
func (SniffDetector) Detect(_ string, data []byte) (string, bool) {
	if len(data) == 0 {
		return "", false
	}
	m := Canonical(http.DetectContentType(data))
	if m == "" || m == OctetStream {
		return "", false
	}
	return m, true
}

// DefaultDetector always answers OctetStream.
type DefaultDetector struct{}

// Detect returns OctetStream.
func (DefaultDetector) Detect(string, []byte) (string, bool) {
	return OctetStream, true
}

// Canonical lowercases a MIME type and strips its parameters.
// It returns "" for values that do not parse.
func Canonical(m string) string {
	mediaType, _, err := mime.ParseMediaType(strings.TrimSpace(m))
	if err != nil {
		return ""
	}
	return strings.ToLower(mediaType)
}
