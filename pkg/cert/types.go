package cert

import (
	"crypto/ecdsa"
	"crypto/sha1"
	"crypto/tls"
	"crypto/x509"
	"encoding/hex"
	"time"
)

// Certificate validity periods.
const (
	// DefaultValidity is the validity period for application instance
	// certificates.
	DefaultValidity = 365 * 24 * time.Hour // 1 year

	// CAValidity is the validity period for issuing CA certificates.
	// Long-lived to avoid re-trusting the authority on every renewal.
	CAValidity = 10 * 365 * 24 * time.Hour // 10 years

	// RenewalWindow is how long before expiry to start renewal.
	RenewalWindow = 30 * 24 * time.Hour // 30 days
)

// ApplicationCert represents an application instance certificate with
// its private key. The certificate carries the application URI as a
// subject alternative name, which peers check against the application
// description during session establishment.
type ApplicationCert struct {
	// Certificate is the X.509 certificate.
	Certificate *x509.Certificate

	// PrivateKey is the application's private key for this certificate.
	PrivateKey *ecdsa.PrivateKey
}

// ApplicationURI returns the application URI embedded in the
// certificate's subject alternative names, or "" when absent.
func (ac *ApplicationCert) ApplicationURI() string {
	if ac.Certificate == nil || len(ac.Certificate.URIs) == 0 {
		return ""
	}
	return ac.Certificate.URIs[0].String()
}

// SKI returns the Subject Key Identifier of the certificate.
func (ac *ApplicationCert) SKI() []byte {
	if ac.Certificate == nil {
		return nil
	}
	return ac.Certificate.SubjectKeyId
}

// Thumbprint returns the certificate thumbprint, the identifier used
// to reference certificates in trust lists.
func (ac *ApplicationCert) Thumbprint() string {
	if ac.Certificate == nil {
		return ""
	}
	return Thumbprint(ac.Certificate)
}

// ExpiresAt returns when this certificate expires.
func (ac *ApplicationCert) ExpiresAt() time.Time {
	if ac.Certificate == nil {
		return time.Time{}
	}
	return ac.Certificate.NotAfter
}

// NeedsRenewal returns true if the certificate should be renewed.
func (ac *ApplicationCert) NeedsRenewal() bool {
	if ac.Certificate == nil {
		return true
	}
	return time.Now().Add(RenewalWindow).After(ac.Certificate.NotAfter)
}

// IsExpired returns true if the certificate has expired.
func (ac *ApplicationCert) IsExpired() bool {
	if ac.Certificate == nil {
		return true
	}
	return time.Now().After(ac.Certificate.NotAfter)
}

// TLSCertificate converts the application certificate to a
// tls.Certificate for use in TLS connections.
func (ac *ApplicationCert) TLSCertificate() tls.Certificate {
	if ac == nil || ac.Certificate == nil || ac.PrivateKey == nil {
		return tls.Certificate{}
	}
	return tls.Certificate{
		Certificate: [][]byte{ac.Certificate.Raw},
		PrivateKey:  ac.PrivateKey,
		Leaf:        ac.Certificate,
	}
}

// Thumbprint computes the SHA-1 thumbprint of a certificate's DER
// encoding as lowercase hex. OPC UA identifies certificates by this
// thumbprint in trust lists and security headers.
func Thumbprint(cert *x509.Certificate) string {
	sum := sha1.Sum(cert.Raw)
	return hex.EncodeToString(sum[:])
}

// CertificateRequest describes an application instance certificate to
// generate or issue.
type CertificateRequest struct {
	// ApplicationName becomes the subject CommonName.
	ApplicationName string

	// ApplicationURI is embedded as a URI subject alternative name.
	// By convention "urn:<host>:<vendor>:<application>".
	ApplicationURI string

	// Organization is the subject Organization (optional).
	Organization string

	// Hosts lists DNS names and IP addresses for the subject
	// alternative names (optional).
	Hosts []string

	// Validity is the certificate lifetime. Zero means DefaultValidity.
	Validity time.Duration
}
