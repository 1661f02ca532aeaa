package cert

import (
	"crypto/x509"
	"errors"
)

// Trust store errors.
var (
	ErrCertNotFound   = errors.New("certificate not found")
	ErrAlreadyTrusted = errors.New("certificate already trusted")
	ErrInvalidCert    = errors.New("invalid certificate")
)

// TrustStore holds the certificates this application accepts from
// peers. Certificates are identified by their SHA-1 thumbprint, the
// same identifier servers report in endpoint descriptions.
// Implementations must be safe for concurrent access.
//
// A trust list entry can be either a peer's self-signed application
// instance certificate (pinning) or a CA certificate; chains ending
// in a trusted CA verify without pinning each application.
type TrustStore interface {
	// Trust adds a certificate to the trust list.
	// Returns ErrAlreadyTrusted if it is already present.
	Trust(cert *x509.Certificate) error

	// Untrust removes the certificate with the given thumbprint.
	// Returns ErrCertNotFound if it is not in the trust list.
	Untrust(thumbprint string) error

	// IsTrusted reports whether the exact certificate is in the
	// trust list.
	IsTrusted(cert *x509.Certificate) bool

	// Get returns the trusted certificate with the given thumbprint.
	// Returns ErrCertNotFound if it is not in the trust list.
	Get(thumbprint string) (*x509.Certificate, error)

	// Trusted returns all certificates in the trust list.
	Trusted() []*x509.Certificate

	// Pool returns the trust list as a certificate pool for chain
	// verification.
	Pool() *x509.CertPool

	// Count returns the number of certificates in the trust list.
	Count() int

	// Save persists the trust list to its backing storage.
	// For in-memory stores, this is a no-op.
	Save() error

	// Load reads the trust list from its backing storage.
	// For in-memory stores, this is a no-op.
	Load() error
}
