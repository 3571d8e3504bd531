package chat

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// sizeParams pins the CDN proxy to a preview resolution.
var sizeParams = regexp.MustCompile(`&width=\d+&height=\d+`)

// CleanImageURL removes the width/height query pair so the full-size image is served.
// It strips until no pair is left, so applying it twice equals applying it once.
func CleanImageURL(raw string) string {
	for {
		cleaned := sizeParams.ReplaceAllString(raw, "")
		if cleaned == raw {
			return cleaned
		}
		raw = cleaned
	}
}

// ImageSource reads the source attribute from the outer HTML of an image link.
func ImageSource(linkHTML, attr string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(linkHTML))
	if err != nil {
		return "", fmt.Errorf("parse image link: %w", err)
	}
	src, ok := doc.Find("a").Last().Attr(attr)
	if !ok || strings.TrimSpace(src) == "" {
		return "", fmt.Errorf("image link has no %s attribute", attr)
	}
	return strings.TrimSpace(src), nil
}
