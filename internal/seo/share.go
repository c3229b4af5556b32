package seo

import "net/url"

// Share holds the social share URLs for a page.
type Share struct {
	Twitter  string
	Facebook string
	LinkedIn string
}

// ShareLinks builds query-escaped share URLs for pageURL.
func ShareLinks(pageURL, title string) Share {
	encodedURL := url.QueryEscape(pageURL)
	return Share{
		Twitter:  "https://twitter.com/intent/tweet?url=" + encodedURL + "&text=" + url.QueryEscape(title),
		Facebook: "https://www.facebook.com/sharer/sharer.php?u=" + encodedURL,
		LinkedIn: "https://www.linkedin.com/sharing/share-offsite/?url=" + encodedURL,
	}
}
