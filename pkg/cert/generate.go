package cert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha1"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"fmt"
	"math/big"
	"net"
	"net/url"
	"time"
)

// Generation errors.
var (
	ErrMissingApplicationName = errors.New("application name required")
	ErrInvalidApplicationURI  = errors.New("invalid application URI")
)

// GenerateApplicationCert creates a self-signed application instance
// certificate. Peers that pin the certificate in their trust list can
// verify it without a CA.
func GenerateApplicationCert(req CertificateRequest) (*ApplicationCert, error) {
	template, key, err := applicationTemplate(req)
	if err != nil {
		return nil, err
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	certificate, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}

	return &ApplicationCert{Certificate: certificate, PrivateKey: key}, nil
}

// GenerateCA creates a self-signed certificate authority for issuing
// application instance certificates, the way a GDS certificate manager
// would. A zero validity means CAValidity.
func GenerateCA(name string, validity time.Duration) (*ApplicationCert, error) {
	if name == "" {
		return nil, ErrMissingApplicationName
	}
	if validity == 0 {
		validity = CAValidity
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}

	serialNumber, err := newSerialNumber()
	if err != nil {
		return nil, fmt.Errorf("generate serial: %w", err)
	}

	ski, err := ComputeSKI(&key.PublicKey)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber: serialNumber,
		Subject: pkix.Name{
			CommonName: name,
		},
		NotBefore:             now,
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
		BasicConstraintsValid: true,
		IsCA:                  true,
		MaxPathLen:            0,
		MaxPathLenZero:        true,
		SubjectKeyId:          ski,
		AuthorityKeyId:        ski,
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	certificate, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}

	return &ApplicationCert{Certificate: certificate, PrivateKey: key}, nil
}

// IssueApplicationCert signs an application instance certificate for
// the request with the CA's key. The issued certificate chains to the
// CA, so trusting the CA is enough to verify every application it has
// issued.
func IssueApplicationCert(ca *ApplicationCert, req CertificateRequest) (*ApplicationCert, error) {
	if ca == nil || ca.Certificate == nil || ca.PrivateKey == nil {
		return nil, ErrInvalidCert
	}

	template, key, err := applicationTemplate(req)
	if err != nil {
		return nil, err
	}

	certDER, err := x509.CreateCertificate(rand.Reader, template, ca.Certificate, &key.PublicKey, ca.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("create certificate: %w", err)
	}

	certificate, err := x509.ParseCertificate(certDER)
	if err != nil {
		return nil, fmt.Errorf("parse certificate: %w", err)
	}

	return &ApplicationCert{Certificate: certificate, PrivateKey: key}, nil
}

// applicationTemplate builds the leaf certificate template and a fresh
// key pair for it.
func applicationTemplate(req CertificateRequest) (*x509.Certificate, *ecdsa.PrivateKey, error) {
	if req.ApplicationName == "" {
		return nil, nil, ErrMissingApplicationName
	}

	uri, err := parseApplicationURI(req.ApplicationURI)
	if err != nil {
		return nil, nil, err
	}

	validity := req.Validity
	if validity == 0 {
		validity = DefaultValidity
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, fmt.Errorf("generate key: %w", err)
	}

	serialNumber, err := newSerialNumber()
	if err != nil {
		return nil, nil, fmt.Errorf("generate serial: %w", err)
	}

	ski, err := ComputeSKI(&key.PublicKey)
	if err != nil {
		return nil, nil, err
	}

	subject := pkix.Name{CommonName: req.ApplicationName}
	if req.Organization != "" {
		subject.Organization = []string{req.Organization}
	}

	now := time.Now()
	template := &x509.Certificate{
		SerialNumber:          serialNumber,
		Subject:               subject,
		NotBefore:             now,
		NotAfter:              now.Add(validity),
		KeyUsage:              x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth, x509.ExtKeyUsageClientAuth},
		BasicConstraintsValid: true,
		IsCA:                  false,
		SubjectKeyId:          ski,
		URIs:                  []*url.URL{uri},
	}

	// Split hosts into DNS names and IP addresses
	for _, h := range req.Hosts {
		if ip := net.ParseIP(h); ip != nil {
			template.IPAddresses = append(template.IPAddresses, ip)
		} else {
			template.DNSNames = append(template.DNSNames, h)
		}
	}

	return template, key, nil
}

// parseApplicationURI validates an application URI for SAN embedding.
func parseApplicationURI(raw string) (*url.URL, error) {
	if raw == "" {
		return nil, fmt.Errorf("%w: empty", ErrInvalidApplicationURI)
	}
	uri, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidApplicationURI, err)
	}
	if uri.Scheme == "" {
		return nil, fmt.Errorf("%w: missing scheme in %q", ErrInvalidApplicationURI, raw)
	}
	return uri, nil
}

// ComputeSKI computes a Subject Key Identifier for a public key
// (SHA-1 of the DER-encoded subject public key info).
func ComputeSKI(pub *ecdsa.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(pub)
	if err != nil {
		return nil, err
	}
	sum := sha1.Sum(der)
	return sum[:], nil
}

// newSerialNumber generates a random 128-bit certificate serial.
func newSerialNumber() (*big.Int, error) {
	return rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
}
