package html

import (
	"context"
	"html"
	"regexp"
	"strings"

	"github.com/all-black-493/supportly/internal/core/domain"
	"github.com/all-black-493/supportly/internal/core/ports/driven"
	"github.com/all-black-493/supportly/internal/normalisers"
)

// Ensure Normaliser implements the interface.
var _ driven.Normaliser = (*Normaliser)(nil)

// Normaliser handles HTML documents.
type Normaliser struct{}

// New creates a new HTML normaliser.
func New() *Normaliser {
	return &Normaliser{}
}

// SupportedMIMETypes returns the MIME types this normaliser handles.
func (n *Normaliser) SupportedMIMETypes() []string {
	return []string{"text/html", "application/xhtml+xml"}
}

// Priority returns the selection priority.
func (n *Normaliser) Priority() int {
	return 50 // Generic MIME normaliser, higher than plaintext
}

// Normalise strips markup from an HTML document. The <title> element,
// then the first <h1>, supply the title.
func (n *Normaliser) Normalise(_ context.Context, raw *domain.RawDocument) (*driven.NormaliseResult, error) {
	if raw == nil {
		return nil, domain.ErrInvalidInput
	}

	page := string(raw.Content)
	return normalisers.Result(raw, extractTitle(page), stripHTML(page), "html"), nil
}

var (
	titleTag     = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	h1Tag        = regexp.MustCompile(`(?is)<h1[^>]*>(.*?)</h1>`)
	htmlComments = regexp.MustCompile(`(?s)<!--.*?-->`)
	blockTags    = regexp.MustCompile(`(?i)</?(p|div|h[1-6]|li|ul|ol|tr|table|blockquote|pre|section|article|header|footer|nav|main|dd|dt)(\s[^>]*)?>`)
	lineBreaks   = regexp.MustCompile(`(?i)<(br|hr)\s*/?>`)
	cellTags     = regexp.MustCompile(`(?i)</t[dh]>`)
	allTags      = regexp.MustCompile(`<[^>]+>`)
	multiSpaces  = regexp.MustCompile(`[ \t\f\v]+`)

	// Elements whose content is never readable text.
	droppedTags = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<head(\s[^>]*)?>.*?</head>`),
		regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`),
		regexp.MustCompile(`(?is)<template[^>]*>.*?</template>`),
	}
)

func extractTitle(page string) string {
	for _, re := range []*regexp.Regexp{titleTag, h1Tag} {
		if m := re.FindStringSubmatch(page); len(m) > 1 {
			title := strings.TrimSpace(html.UnescapeString(allTags.ReplaceAllString(m[1], "")))
			title = multiSpaces.ReplaceAllString(strings.ReplaceAll(title, "\n", " "), " ")
			if title != "" {
				return title
			}
		}
	}
	return ""
}

// stripHTML reduces markup to text, one block element per line.
func stripHTML(page string) string {
	page = htmlComments.ReplaceAllString(page, "")
	for _, re := range droppedTags {
		page = re.ReplaceAllString(page, "")
	}
	page = blockTags.ReplaceAllString(page, "\n")
	page = lineBreaks.ReplaceAllString(page, "\n")
	page = cellTags.ReplaceAllString(page, " ")
	page = allTags.ReplaceAllString(page, "")
	page = html.UnescapeString(page)
	page = strings.ReplaceAll(page, "\u00a0", " ")
	page = multiSpaces.ReplaceAllString(page, " ")

	lines := strings.Split(page, "\n")
	kept := lines[:0]
	for _, line := range lines {
		if line = strings.TrimSpace(line); line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}
