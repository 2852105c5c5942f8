package etsy

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"golang.org/x/net/html"
)

// ErrSoldCountNotFound is returned when the shop page has no sold link.
var ErrSoldCountNotFound = errors.New("sold count not found on shop page")

// ScrapeSoldCount reads the sale count from a public shop page. The count is the first
// word of the link pointing at the shop's /sold page, e.g. "1,234 Sales".
func ScrapeSoldCount(page []byte) (int, error) {
	doc, err := html.Parse(bytes.NewReader(page))
	if err != nil {
		return 0, errors.Wrap(err, "parse shop page")
	}

	var text string
	var found bool
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if found {
			return
		}
		if n.Type == html.ElementNode && n.Data == "a" && isSoldLink(n) {
			text = strings.TrimSpace(nodeText(n))
			if text != "" {
				found = true
				return
			}
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(doc)

	if !found {
		return 0, ErrSoldCountNotFound
	}

	word := strings.ReplaceAll(strings.Fields(text)[0], ",", "")
	n, err := strconv.Atoi(word)
	if err != nil {
		return 0, errors.Wrapf(err, "parse sold count %q", text)
	}
	return n, nil
}

func isSoldLink(n *html.Node) bool {
	for _, attr := range n.Attr {
		if attr.Key != "href" {
			continue
		}
		href := strings.TrimRight(strings.SplitN(attr.Val, "?", 2)[0], "/")
		return strings.HasSuffix(href, "/sold")
	}
	return false
}

func nodeText(n *html.Node) string {
	var sb strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			sb.WriteString(n.Data)
		}
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			walk(child)
		}
	}
	walk(n)
	return sb.String()
}
