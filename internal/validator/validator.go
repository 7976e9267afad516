package validator

import (
	"net"
	"net/url"
	"strings"

	"github.com/paularinzee/URL-Shortner/internal/errors"
	"github.com/paularinzee/URL-Shortner/internal/shortid"
)

// URLValidator validates URL inputs
type URLValidator struct {
	maxLength       int
	allowedSchemes  []string
	blockedDomains  []string
	blockPrivateIPs bool
	ownHost         string
}

// NewURLValidator creates a validator with default settings
func NewURLValidator() *URLValidator {
	return &URLValidator{
		maxLength:       2048,
		allowedSchemes:  []string{"http", "https"},
		blockedDomains:  []string{},
		blockPrivateIPs: true,
	}
}

// ValidateURL validates a URL string
func (v *URLValidator) ValidateURL(rawURL string) *errors.AppError {
	// Check if empty
	if strings.TrimSpace(rawURL) == "" {
		return errors.MissingField("url")
	}

	// Check length
	if len(rawURL) > v.maxLength {
		return errors.InvalidURL("URL exceeds maximum length of 2048 characters")
	}

	// Parse URL
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.InvalidURL("URL could not be parsed")
	}

	// Check scheme
	if !v.isAllowedScheme(parsedURL.Scheme) {
		return errors.InvalidURL("URL must use http or https scheme")
	}

	// Check host exists
	if parsedURL.Host == "" {
		return errors.InvalidURL("URL must have a valid host")
	}

	// Shortening a URL that points back at this service would create a
	// redirect loop; rejected here so the store never sees it.
	if v.isOwnHost(parsedURL.Host) {
		return errors.InvalidURL("URL must not point back at this service")
	}

	// Check for blocked domains
	if v.isBlockedDomain(parsedURL.Host) {
		return errors.InvalidURL("This domain is not allowed")
	}

	// Check for private/local IPs
	if v.blockPrivateIPs && v.isPrivateIP(parsedURL.Host) {
		return errors.InvalidURL("URLs pointing to private IPs are not allowed")
	}

	return nil
}

// ValidateShortCode validates a short code format: non-empty, at most 50
// characters, charset [A-Za-z0-9_-].
func (v *URLValidator) ValidateShortCode(code string) *errors.AppError {
	if code == "" {
		return errors.MissingField("code")
	}

	if _, err := shortid.ValidateAlias(code); err != nil {
		switch err {
		case shortid.ErrAliasTooLong:
			return errors.BadRequest("Short code must be at most 50 characters")
		default:
			return errors.BadRequest("Short code can only contain letters, numbers, hyphens, and underscores")
		}
	}

	return nil
}

// ValidateCustomCode validates a custom short code
func (v *URLValidator) ValidateCustomCode(code string) *errors.AppError {
	if code == "" {
		return nil // Custom code is optional
	}

	// Check reserved words
	reserved := []string{"api", "admin", "health", "shorten", "stats", "static"}
	for _, r := range reserved {
		if strings.EqualFold(code, r) {
			return errors.BadRequest("This short code is reserved and cannot be used")
		}
	}

	return v.ValidateShortCode(code)
}

// ============================================================
// HELPER METHODS
// ============================================================

func (v *URLValidator) isAllowedScheme(scheme string) bool {
	scheme = strings.ToLower(scheme)
	for _, allowed := range v.allowedSchemes {
		if scheme == allowed {
			return true
		}
	}
	return false
}

func (v *URLValidator) isOwnHost(host string) bool {
	return v.ownHost != "" && strings.EqualFold(stripPort(host), v.ownHost)
}

func (v *URLValidator) isBlockedDomain(host string) bool {
	host = strings.ToLower(host)
	for _, blocked := range v.blockedDomains {
		if strings.Contains(host, blocked) {
			return true
		}
	}
	return false
}

func (v *URLValidator) isPrivateIP(host string) bool {
	hostOnly := stripPort(host)

	// Check for localhost variants
	localPatterns := []string{
		"localhost",
		"127.",
		"0.0.0.0",
		"::1",
		"10.",
		"192.168.",
		"172.16.", "172.17.", "172.18.", "172.19.",
		"172.20.", "172.21.", "172.22.", "172.23.",
		"172.24.", "172.25.", "172.26.", "172.27.",
		"172.28.", "172.29.", "172.30.", "172.31.",
	}

	for _, pattern := range localPatterns {
		if strings.HasPrefix(hostOnly, pattern) || hostOnly == pattern {
			return true
		}
	}

	return false
}

// stripPort reduces a URL host to its bare hostname or IP. IPv6 literals
// arrive bracketed ("[::1]" or "[::1]:80"); a naive cut at the last colon
// would mangle them.
func stripPort(host string) string {
	if h, _, err := net.SplitHostPort(host); err == nil {
		return h
	}
	return strings.Trim(host, "[]")
}

// ============================================================
// CONFIGURATION METHODS
// ============================================================

// WithMaxLength sets maximum URL length
func (v *URLValidator) WithMaxLength(length int) *URLValidator {
	v.maxLength = length
	return v
}

// WithOwnHost marks the service's own host so self-referential URLs are
// rejected before they ever reach the store. Accepts a bare host or a full
// base URL.
func (v *URLValidator) WithOwnHost(baseURL string) *URLValidator {
	host := baseURL
	if parsed, err := url.Parse(baseURL); err == nil && parsed.Host != "" {
		host = parsed.Host
	}
	v.ownHost = strings.ToLower(stripPort(host))
	return v
}

// WithBlockedDomains adds domains to block list
func (v *URLValidator) WithBlockedDomains(domains ...string) *URLValidator {
	v.blockedDomains = append(v.blockedDomains, domains...)
	return v
}

// WithAllowPrivateIPs allows private IP addresses
func (v *URLValidator) WithAllowPrivateIPs() *URLValidator {
	v.blockPrivateIPs = false
	return v
}
