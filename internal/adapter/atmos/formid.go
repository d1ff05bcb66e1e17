package atmos

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// formIDSelector is the only place that knows the login page markup.
const formIDSelector = `input#authenticate_formId, form input[name="formId"]`

// ExtractFormID finds the anti-forgery form id on the portal login page.
func ExtractFormID(page []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrFormIDNotFound, err)
	}

	input := doc.Find(formIDSelector).First()
	if input.Length() == 0 {
		return "", ErrFormIDNotFound
	}

	value, _ := input.Attr("value")
	value = strings.TrimSpace(value)
	if value == "" {
		return "", fmt.Errorf("%w: form id input has no value", ErrFormIDNotFound)
	}
	return value, nil
}
