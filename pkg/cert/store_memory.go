package cert

import (
	"bytes"
	"crypto/x509"
	"sort"
	"sync"
)

// MemoryTrustStore is an in-memory implementation of the TrustStore
// interface. This is primarily useful for testing and short-lived
// clients that configure their trust list at startup.
type MemoryTrustStore struct {
	mu sync.RWMutex

	// Trusted certificates by SHA-1 thumbprint
	certs map[string]*x509.Certificate
}

// NewMemoryTrustStore creates a new in-memory trust store.
func NewMemoryTrustStore() *MemoryTrustStore {
	return &MemoryTrustStore{
		certs: make(map[string]*x509.Certificate),
	}
}

// Trust adds a certificate to the trust list.
func (s *MemoryTrustStore) Trust(cert *x509.Certificate) error {
	if cert == nil || len(cert.Raw) == 0 {
		return ErrInvalidCert
	}

	thumbprint := Thumbprint(cert)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.certs[thumbprint]; exists {
		return ErrAlreadyTrusted
	}

	s.certs[thumbprint] = cert
	return nil
}

// Untrust removes the certificate with the given thumbprint.
func (s *MemoryTrustStore) Untrust(thumbprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.certs[thumbprint]; !exists {
		return ErrCertNotFound
	}

	delete(s.certs, thumbprint)
	return nil
}

// IsTrusted reports whether the exact certificate is in the trust list.
func (s *MemoryTrustStore) IsTrusted(cert *x509.Certificate) bool {
	if cert == nil {
		return false
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	stored, exists := s.certs[Thumbprint(cert)]
	if !exists {
		return false
	}
	return bytes.Equal(stored.Raw, cert.Raw)
}

// Get returns the trusted certificate with the given thumbprint.
func (s *MemoryTrustStore) Get(thumbprint string) (*x509.Certificate, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	cert, exists := s.certs[thumbprint]
	if !exists {
		return nil, ErrCertNotFound
	}
	return cert, nil
}

// Trusted returns all certificates in the trust list, ordered by
// thumbprint for stable iteration.
func (s *MemoryTrustStore) Trusted() []*x509.Certificate {
	s.mu.RLock()
	defer s.mu.RUnlock()

	thumbprints := make([]string, 0, len(s.certs))
	for thumbprint := range s.certs {
		thumbprints = append(thumbprints, thumbprint)
	}
	sort.Strings(thumbprints)

	certs := make([]*x509.Certificate, 0, len(thumbprints))
	for _, thumbprint := range thumbprints {
		certs = append(certs, s.certs[thumbprint])
	}
	return certs
}

// Pool returns the trust list as a certificate pool.
func (s *MemoryTrustStore) Pool() *x509.CertPool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := x509.NewCertPool()
	for _, cert := range s.certs {
		pool.AddCert(cert)
	}
	return pool
}

// Count returns the number of certificates in the trust list.
func (s *MemoryTrustStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.certs)
}

// Save is a no-op for in-memory stores.
func (s *MemoryTrustStore) Save() error {
	return nil
}

// Load is a no-op for in-memory stores.
func (s *MemoryTrustStore) Load() error {
	return nil
}

// Verify MemoryTrustStore implements TrustStore.
var _ TrustStore = (*MemoryTrustStore)(nil)
