package extract

import (
	"html"
	"regexp"
	"strings"
)

var (
	titleTag      = regexp.MustCompile(`(?is)<title[^>]*>(.*?)</title>`)
	droppedBlocks = []*regexp.Regexp{
		regexp.MustCompile(`(?is)<script[^>]*>.*?</script>`),
		regexp.MustCompile(`(?is)<style[^>]*>.*?</style>`),
		regexp.MustCompile(`(?is)<noscript[^>]*>.*?</noscript>`),
		regexp.MustCompile(`(?is)<head[^>]*>.*?</head>`),
		regexp.MustCompile(`(?is)<svg[^>]*>.*?</svg>`),
		regexp.MustCompile(`(?s)<!--.*?-->`),
	}
	blockBoundary = regexp.MustCompile(
		`(?i)<(p|div|h[1-6]|li|tr|blockquote|pre|table|section|article)(\s[^>]*)?>|</div>|<br\s*/?>|<hr\s*/?>`)
	headingClose  = regexp.MustCompile(`(?i)</(h[1-6]|p|blockquote|pre|table|section|article)>`)
	anyTag        = regexp.MustCompile(`<[^>]+>`)
	runsOfSpace   = regexp.MustCompile(`[ \t]+`)
	paragraphGaps = regexp.MustCompile(`\n{3,}`)
)

// HTML returns the readable text of an HTML document.
// The <title>, when present, becomes the first paragraph. Paragraph-level
// elements are separated by blank lines so the paragraph chunker keeps them apart.
func HTML(data []byte) (string, error) {
	content := string(data)

	var title string
	if m := titleTag.FindStringSubmatch(content); len(m) > 1 {
		title = strings.TrimSpace(html.UnescapeString(m[1]))
	}

	for _, re := range droppedBlocks {
		content = re.ReplaceAllString(content, "")
	}
	content = headingClose.ReplaceAllString(content, "\n\n")
	content = blockBoundary.ReplaceAllString(content, "\n")
	content = anyTag.ReplaceAllString(content, "")
	content = html.UnescapeString(content)
	content = runsOfSpace.ReplaceAllString(content, " ")

	lines := strings.Split(content, "\n")
	for i := range lines {
		lines[i] = strings.TrimSpace(lines[i])
	}
	body := strings.TrimSpace(paragraphGaps.ReplaceAllString(strings.Join(lines, "\n"), "\n\n"))

	if title != "" && !strings.HasPrefix(body, title) {
		return title + "\n\n" + body, nil
	}
	return body, nil
}
