package extract

import (
	"regexp"
	"strings"
)

// NotFound is reported for contact details that are absent from a résumé.
const NotFound = "Not found"

var (
	emailPattern = regexp.MustCompile(`\b[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}\b`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,2}[-.\s]?)?(\(?\d{3}\)?[-.\s]?)\d{3}[-.\s]?\d{4}`)
	spaceRun     = regexp.MustCompile(`\s+`)
)

// Contacts are the details pulled from résumé text by pattern.
type Contacts struct {
	Email string
	Phone string
}

// CleanText collapses whitespace runs to single spaces and drops zero-width spaces.
func CleanText(text string) string {
	text = spaceRun.ReplaceAllString(text, " ")
	text = strings.ReplaceAll(text, "\u200b", "")
	return strings.TrimSpace(text)
}

// FindContacts returns the first email address and phone number in text.
func FindContacts(text string) Contacts {
	c := Contacts{Email: NotFound, Phone: NotFound}
	if m := emailPattern.FindString(text); m != "" {
		c.Email = m
	}
	if m := phonePattern.FindString(text); m != "" {
		c.Phone = m
	}
	return c
}
