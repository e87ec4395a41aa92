package client

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	log "github.com/sirupsen/logrus"
)

// plainText reduces a product description that may carry HTML markup to
// its text, with whitespace runs collapsed.
func plainText(description string) string {
	if !strings.ContainsAny(description, "<&") {
		return strings.TrimSpace(description)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(description))
	if err != nil {
		log.Warnf("Failed to parse description markup: %v", err)
		return strings.TrimSpace(description)
	}

	doc.Find("script, style").Remove()

	return strings.Join(strings.Fields(doc.Text()), " ")
}
