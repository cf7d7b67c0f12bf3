package safeurl

import "net/url"

// IsHTTPOrHTTPS returns true if u is a valid URL with scheme http or https.
// Discovered candidates come from scraped third-party pages, so every outbound
// probe and playlist fetch goes through this check first to reject file://,
// ftp:// and other schemes.
func IsHTTPOrHTTPS(u string) bool {
	parsed, err := url.Parse(u)
	if err != nil {
		return false
	}
	s := parsed.Scheme
	return s == "http" || s == "https"
}
