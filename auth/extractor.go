package auth

import "strings"

// bearerPrefix is the exact scheme prefix required on Authorization header
// values. The match is case-sensitive with a single space.
const bearerPrefix = "Bearer "

// ExtractBearer parses an Authorization header value of the form
// "Bearer {token}" and returns the raw token unmodified. It performs no
// validation of the token itself; whether the token is usable is for
// verification to decide. An empty header value means no credentials were
// presented and yields ErrBearerMissing; any other scheme or shape yields
// ErrBearerMalformed.
func ExtractBearer(header string) (string, error) {
	if header == "" {
		return "", ErrBearerMissing
	}

	if !strings.HasPrefix(header, bearerPrefix) {
		return "", ErrBearerMalformed
	}

	return header[len(bearerPrefix):], nil
}
