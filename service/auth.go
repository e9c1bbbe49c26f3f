package service

import (
	"encoding/base64"
	"strings"
)

// basicAuthScheme is the expected authorization header scheme prefix.
const basicAuthScheme = "Basic "

// verifyBasicAuth reports whether the provided authorization header carries
// the configured credentials. Malformed headers (missing scheme, bad base64,
// missing colon) are authentication failures, not errors.
func verifyBasicAuth(header string, username string, password string) bool {
	if !strings.HasPrefix(header, basicAuthScheme) {
		return false
	}

	decoded, err := base64.StdEncoding.DecodeString(header[len(basicAuthScheme):])
	if err != nil {
		return false
	}

	credentials := strings.SplitN(string(decoded), ":", 2)
	if len(credentials) != 2 {
		return false
	}

	return credentials[0] == username && credentials[1] == password
}
