package entity

import (
	"fmt"
	"net"
	"net/mail"
	"net/url"

	"github.com/google/uuid"
)

// maxURLLength defines the maximum allowed length for URLs to prevent DoS attacks.
const maxURLLength = 2048

// ValidateURL validates the format and safety of an article URL.
// Only http/https URLs with a host are accepted, and hosts resolving to
// private networks are rejected.
func ValidateURL(rawURL string) error {
	parsedURL, err := parseArticleURL(rawURL)
	if err != nil {
		return err
	}

	// SSRF対策: プライベートIPアドレスをブロック
	ips, err := net.LookupIP(parsedURL.Hostname())
	if err == nil {
		for _, ip := range ips {
			if IsPrivateIP(ip) {
				return &ValidationError{Field: "url", Message: "url cannot point to private network"}
			}
		}
	}

	return nil
}

// ValidateURLFormat is ValidateURL without the DNS lookup, for URLs that are
// stored but never fetched.
func ValidateURLFormat(rawURL string) error {
	_, err := parseArticleURL(rawURL)
	return err
}

func parseArticleURL(rawURL string) (*url.URL, error) {
	if rawURL == "" {
		return nil, &ValidationError{Field: "url", Message: "URL is required"}
	}
	if len(rawURL) > maxURLLength {
		return nil, &ValidationError{
			Field:   "url",
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return nil, &ValidationError{Field: "url", Message: "URL is malformed"}
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return nil, &ValidationError{Field: "url", Message: "URL must use http or https scheme"}
	}
	if parsedURL.Host == "" {
		return nil, &ValidationError{Field: "url", Message: "URL must have a valid host"}
	}
	return parsedURL, nil
}

// ValidateEmail checks an optional result-delivery address.
// An empty address is valid.
func ValidateEmail(addr string) error {
	if addr == "" {
		return nil
	}
	parsed, err := mail.ParseAddress(addr)
	if err != nil || parsed.Address != addr {
		return &ValidationError{Field: "email", Message: "email address is malformed"}
	}
	return nil
}

// ValidateID checks that id is a UUID. field names the offending input.
func ValidateID(field, id string) error {
	if id == "" {
		return &ValidationError{Field: field, Message: "id is required"}
	}
	if _, err := uuid.Parse(id); err != nil {
		return &ValidationError{Field: field, Message: "id must be a UUID"}
	}
	return nil
}

// NewID returns a fresh entity id.
func NewID() string {
	return uuid.NewString()
}

// IsPrivateIP checks if an IP address is loopback, link-local or in an RFC 1918 range.
// Cloud metadata (169.254.169.254) falls in the link-local range.
func IsPrivateIP(ip net.IP) bool {
	if ip.IsLoopback() || ip.IsLinkLocalUnicast() || ip.IsLinkLocalMulticast() || ip.IsUnspecified() {
		return true
	}
	return ip.IsPrivate()
}
