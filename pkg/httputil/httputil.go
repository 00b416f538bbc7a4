// Package httputil builds the HTTP client used for cloud API calls. It
// loads root certificates from the system pool with a manual fallback over
// well-known bundle paths, for minimal container images that ship without
// a usable system pool.
package httputil

import (
	"crypto/tls"
	"crypto/x509"
	"net/http"
	"os"
	"time"
)

// certPaths lists common certificate bundle locations across distros.
var certPaths = []string{
	"/etc/ssl/certs/ca-certificates.crt",     // Debian/Ubuntu/Arch
	"/etc/pki/tls/certs/ca-bundle.crt",       // Fedora/RHEL
	"/etc/ssl/ca-bundle.pem",                 // OpenSUSE
	"/etc/ssl/cert.pem",                      // Alpine/OpenBSD
	"/usr/local/share/certs/ca-root-nss.crt", // FreeBSD
}

// NewClient returns an HTTP client with the given timeout and a root CA
// pool assembled from the system pool plus the well-known bundle paths.
func NewClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout: timeout,
		Transport: &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs: rootCAs(),
			},
		},
	}
}

// rootCAs merges the system pool with manually loaded bundles.
func rootCAs() *x509.CertPool {
	pool, err := x509.SystemCertPool()
	if err != nil || pool == nil {
		pool = x509.NewCertPool()
	}
	for _, path := range certPaths {
		if certs, err := os.ReadFile(path); err == nil {
			pool.AppendCertsFromPEM(certs)
		}
	}
	return pool
}
