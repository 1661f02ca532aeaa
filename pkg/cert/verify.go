package cert

import (
	"bytes"
	"crypto/x509"
	"errors"
	"fmt"
	"time"
)

// Verification errors.
var (
	ErrCertExpired      = errors.New("certificate has expired")
	ErrCertNotYetValid  = errors.New("certificate is not yet valid")
	ErrUntrusted        = errors.New("certificate is not trusted")
	ErrInvalidChain     = errors.New("invalid certificate chain")
	ErrURIMismatch      = errors.New("application URI mismatch")
	ErrNoApplicationURI = errors.New("certificate has no application URI")
	ErrIssuerMismatch   = errors.New("certificate issuer mismatch")
)

// VerifyApplicationCert verifies a peer's application instance
// certificate against the trust list. A certificate pinned in the
// trust list verifies directly; anything else must chain to a trusted
// CA.
func VerifyApplicationCert(cert *x509.Certificate, trust TrustStore) error {
	if cert == nil {
		return ErrInvalidCert
	}

	// Check validity period
	now := time.Now()
	if now.Before(cert.NotBefore) {
		return ErrCertNotYetValid
	}
	if now.After(cert.NotAfter) {
		return ErrCertExpired
	}

	if trust == nil || trust.Count() == 0 {
		return fmt.Errorf("%w: trust list is empty", ErrUntrusted)
	}

	// Pinned certificates verify without a chain
	if trust.IsTrusted(cert) {
		return nil
	}

	opts := x509.VerifyOptions{
		Roots:       trust.Pool(),
		CurrentTime: now,
		KeyUsages:   []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
	}

	if _, err := cert.Verify(opts); err != nil {
		var unknownAuthority x509.UnknownAuthorityError
		if errors.As(err, &unknownAuthority) {
			return fmt.Errorf("%w: %v", ErrUntrusted, err)
		}
		return fmt.Errorf("%w: %v", ErrInvalidChain, err)
	}

	return nil
}

// VerifyApplicationURI checks that the certificate carries the given
// application URI as a URI subject alternative name. Servers must
// present a certificate whose URI matches the ApplicationURI in their
// application description.
func VerifyApplicationURI(cert *x509.Certificate, applicationURI string) error {
	if cert == nil {
		return ErrInvalidCert
	}
	if len(cert.URIs) == 0 {
		return ErrNoApplicationURI
	}
	for _, uri := range cert.URIs {
		if uri.String() == applicationURI {
			return nil
		}
	}
	return fmt.Errorf("%w: want %s, certificate has %s", ErrURIMismatch, applicationURI, cert.URIs[0])
}

// ApplicationURIFromCert returns the application URI embedded in the
// certificate's subject alternative names.
func ApplicationURIFromCert(cert *x509.Certificate) (string, error) {
	if cert == nil {
		return "", ErrInvalidCert
	}
	if len(cert.URIs) == 0 {
		return "", ErrNoApplicationURI
	}
	return cert.URIs[0].String(), nil
}

// VerifyIssuedBy checks that a certificate was issued by the given CA
// by matching its Authority Key ID against the CA's Subject Key ID.
func VerifyIssuedBy(cert *x509.Certificate, ca *x509.Certificate) error {
	if cert == nil || ca == nil {
		return ErrInvalidCert
	}

	if len(cert.AuthorityKeyId) == 0 || len(ca.SubjectKeyId) == 0 {
		return fmt.Errorf("%w: missing key identifiers", ErrIssuerMismatch)
	}

	if !bytes.Equal(cert.AuthorityKeyId, ca.SubjectKeyId) {
		return ErrIssuerMismatch
	}

	return nil
}

// VerifyPeerCertificate creates a verification callback for TLS
// connections. The peer's certificate must verify against the trust
// list, and when expectedURI is non-empty, must carry it as its
// application URI.
func VerifyPeerCertificate(trust TrustStore, expectedURI string) func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
	return func(rawCerts [][]byte, verifiedChains [][]*x509.Certificate) error {
		if len(rawCerts) == 0 {
			return fmt.Errorf("no peer certificate")
		}

		peerCert, err := x509.ParseCertificate(rawCerts[0])
		if err != nil {
			return fmt.Errorf("parse peer certificate: %w", err)
		}

		if err := VerifyApplicationCert(peerCert, trust); err != nil {
			return err
		}

		if expectedURI != "" {
			if err := VerifyApplicationURI(peerCert, expectedURI); err != nil {
				return err
			}
		}

		return nil
	}
}

// CertificateInfo extracts human-readable information from a certificate.
type CertificateInfo struct {
	ApplicationURI string
	CommonName     string
	Issuer         string
	NotBefore      time.Time
	NotAfter       time.Time
	IsCA           bool
	SKI            []byte
	Thumbprint     string
}

// GetCertificateInfo extracts information from a certificate.
func GetCertificateInfo(cert *x509.Certificate) *CertificateInfo {
	if cert == nil {
		return nil
	}

	info := &CertificateInfo{
		CommonName: cert.Subject.CommonName,
		Issuer:     cert.Issuer.CommonName,
		NotBefore:  cert.NotBefore,
		NotAfter:   cert.NotAfter,
		IsCA:       cert.IsCA,
		SKI:        cert.SubjectKeyId,
		Thumbprint: Thumbprint(cert),
	}
	if len(cert.URIs) > 0 {
		info.ApplicationURI = cert.URIs[0].String()
	}
	return info
}
