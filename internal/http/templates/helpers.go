package templates

import (
	"fmt"

	"github.com/a-h/templ"
)

var legalLinks = []struct{ Name, Path string }{
	{"About", "/about"},
	{"Contact", "/contact"},
	{"Privacy Policy", "/privacy"},
	{"Terms of Service", "/terms"},
	{"Disclaimer", "/disclaimer"},
}

var contactFields = []struct{ Name, Label, Type string }{
	{"name", "Name", "text"},
	{"email", "Email", "email"},
	{"subject", "Subject", "text"},
}

// NotFoundMessage is the copy shown for unknown routes and articles.
func NotFoundMessage(what string) string {
	return fmt.Sprintf("The %s you're looking for doesn't exist or has been removed.", what)
}

func pluralize(n int64, singular, plural string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, singular)
	}
	return fmt.Sprintf("%d %s", n, plural)
}

func readingTime(minutes int) string {
	return fmt.Sprintf("%d min read", minutes)
}

// imageSrc applies the same scheme allowlist templ uses for href values.
func imageSrc(url string) string {
	return string(templ.URL(url))
}

func footerNote(note string) string {
	if note == "" {
		return DefaultFooterNote
	}
	return note
}

func copyright(year int, siteName string) string {
	return fmt.Sprintf("© %d %s. All rights reserved.", year, siteName)
}
