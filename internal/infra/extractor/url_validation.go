package extractor

import (
	"fmt"
	"net"
	"net/url"

	"healthquiz/internal/domain/entity"
)

// validateURL checks scheme and host, and with denyPrivateIPs resolves the
// host and rejects internal addresses.
func validateURL(rawURL string, denyPrivateIPs bool) (*url.URL, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: parse error: %v", ErrInvalidURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: scheme '%s' not allowed (only http/https)", ErrInvalidURL, u.Scheme)
	}
	hostname := u.Hostname()
	if hostname == "" {
		return nil, fmt.Errorf("%w: empty hostname", ErrInvalidURL)
	}
	if !denyPrivateIPs {
		return u, nil
	}

	ips, err := net.LookupIP(hostname)
	if err != nil {
		return nil, fmt.Errorf("%w: DNS lookup failed for %s: %v", ErrInvalidURL, hostname, err)
	}
	for _, ip := range ips {
		if entity.IsPrivateIP(ip) {
			return nil, fmt.Errorf("%w: hostname '%s' resolves to %s", ErrPrivateIP, hostname, ip)
		}
	}
	return u, nil
}
