package service

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when a URL submitted for shortening is malformed,
// uses an unsupported scheme or has no host.
var ErrInvalidURL = errors.New("invalid url")

// ValidateURL checks that raw is a well-formed absolute http or https URL
// with a non-empty host. It does not check reachability, DNS resolution or
// the content behind the URL.
func ValidateURL(raw string) error {
	if strings.TrimSpace(raw) == "" {
		return fmt.Errorf("%w: url must not be blank", ErrInvalidURL)
	}

	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}

	if u.Scheme == "" {
		return fmt.Errorf("%w: url must include a scheme (http:// or https://)", ErrInvalidURL)
	}

	scheme := strings.ToLower(u.Scheme)
	if scheme != "http" && scheme != "https" {
		return fmt.Errorf("%w: url scheme must be http or https", ErrInvalidURL)
	}

	if strings.TrimSpace(u.Host) == "" {
		return fmt.Errorf("%w: url must include a host", ErrInvalidURL)
	}

	return nil
}
