package apiclient

import (
	"crypto/tls"
	"net/http"
)

// insecureTransport backs --ignore-certs. It is constructed fresh per
// Client rather than mutating http.DefaultTransport, so it can never leak
// into requests that didn't ask for it.
func insecureTransport() http.RoundTripper {
	return &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: true},
	}
}
