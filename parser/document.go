package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"
)

// parseDocument builds a goquery document from a rendered page snapshot.
func parseDocument(rawHTML string) (*goquery.Document, error) {
	root, err := html.Parse(strings.NewReader(rawHTML))
	if err != nil {
		return nil, err
	}
	return goquery.NewDocumentFromNode(root), nil
}

// textOf returns the trimmed text content of the first match under s.
func textOf(s *goquery.Selection, sel cascadia.Selector) string {
	return strings.TrimSpace(s.FindMatcher(sel).First().Text())
}

// attrOf returns the trimmed attribute of the first match under s.
func attrOf(s *goquery.Selection, sel cascadia.Selector, name string) string {
	v, _ := s.FindMatcher(sel).First().Attr(name)
	return strings.TrimSpace(v)
}
