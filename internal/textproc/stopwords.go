package textproc

import (
	"strings"

	"golang.org/x/net/html"
)

// stopwordsEN filters common English words that add noise to term weighting.
var stopwordsEN = map[string]bool{
	"a": true, "an": true, "and": true, "are": true, "as": true, "at": true,
	"be": true, "by": true, "for": true, "from": true, "has": true, "had": true,
	"have": true, "in": true, "is": true, "it": true, "its": true, "of": true,
	"on": true, "or": true, "that": true, "the": true, "to": true, "was": true,
	"were": true, "will": true, "with": true, "this": true, "but": true,
	"they": true, "when": true, "where": true, "which": true, "while": true,
	"you": true, "your": true, "our": true, "their": true, "we": true,
}

// stopwordsES mirrors stopwordsEN for Spanish.
var stopwordsES = map[string]bool{
	"de": true, "la": true, "que": true, "el": true, "en": true, "y": true,
	"a": true, "los": true, "del": true, "se": true, "las": true, "por": true,
	"un": true, "para": true, "con": true, "no": true, "una": true, "su": true,
	"al": true, "lo": true, "como": true, "más": true, "pero": true, "sus": true,
	"le": true, "ya": true, "o": true, "este": true, "sí": true, "porque": true,
	"esta": true, "entre": true, "cuando": true, "muy": true, "sin": true,
	"sobre": true, "también": true, "me": true, "hasta": true, "hay": true,
	"donde": true, "quien": true, "desde": true, "todo": true, "nos": true,
}

// StripHTML extracts plain text from an HTML fragment, skipping script and
// style subtrees. Falls back to the input on parse failure.
func StripHTML(fragment string) string {
	doc, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode {
			switch n.Data {
			case "script", "style", "noscript":
				return
			}
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				b.WriteString(t)
				b.WriteByte(' ')
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return strings.TrimSpace(b.String())
}
