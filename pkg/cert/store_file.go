package cert

import (
	"bytes"
	"crypto/x509"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// certFileExt is the file extension for trust list entries.
const certFileExt = ".pem"

// FileTrustStore is a file-backed implementation of the TrustStore
// interface. Each trusted certificate is stored as a PEM file named
// after its SHA-1 thumbprint, the layout of a PKI trust list
// directory.
type FileTrustStore struct {
	mu      sync.RWMutex
	baseDir string

	// In-memory state (same as MemoryTrustStore)
	certs map[string]*x509.Certificate

	// Track untrusted certificates for cleanup on Save
	removed map[string]bool
}

// NewFileTrustStore creates a new file-backed trust store rooted at
// baseDir. Call Load to read existing entries from disk.
func NewFileTrustStore(baseDir string) *FileTrustStore {
	return &FileTrustStore{
		baseDir: baseDir,
		certs:   make(map[string]*x509.Certificate),
		removed: make(map[string]bool),
	}
}

// Dir returns the trust list directory.
func (s *FileTrustStore) Dir() string {
	return s.baseDir
}

// Trust adds a certificate to the trust list.
func (s *FileTrustStore) Trust(cert *x509.Certificate) error {
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
	delete(s.removed, thumbprint) // Unmark as removed if re-added
	return nil
}

// Untrust removes the certificate with the given thumbprint.
func (s *FileTrustStore) Untrust(thumbprint string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.certs[thumbprint]; !exists {
		return ErrCertNotFound
	}

	delete(s.certs, thumbprint)
	s.removed[thumbprint] = true
	return nil
}

// IsTrusted reports whether the exact certificate is in the trust list.
func (s *FileTrustStore) IsTrusted(cert *x509.Certificate) bool {
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
func (s *FileTrustStore) Get(thumbprint string) (*x509.Certificate, error) {
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
func (s *FileTrustStore) Trusted() []*x509.Certificate {
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
func (s *FileTrustStore) Pool() *x509.CertPool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	pool := x509.NewCertPool()
	for _, cert := range s.certs {
		pool.AddCert(cert)
	}
	return pool
}

// Count returns the number of certificates in the trust list.
func (s *FileTrustStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.certs)
}

// Save persists the trust list to disk.
func (s *FileTrustStore) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("%w: %v", ErrWriteFile, err)
	}

	for thumbprint, cert := range s.certs {
		path := s.certPath(thumbprint)
		if err := WriteCertFile(path, cert); err != nil {
			return fmt.Errorf("%w: %v", ErrWriteFile, err)
		}
	}

	// Remove untrusted entries
	for thumbprint := range s.removed {
		_ = os.Remove(s.certPath(thumbprint))
		delete(s.removed, thumbprint)
	}

	return nil
}

// Load reads the trust list from disk. Files that do not contain a
// valid certificate are skipped.
func (s *FileTrustStore) Load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entries, err := os.ReadDir(s.baseDir)
	if os.IsNotExist(err) {
		return nil // Empty store
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrReadFile, err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), certFileExt) {
			continue
		}
		cert, err := ReadCertFile(filepath.Join(s.baseDir, entry.Name()))
		if err != nil {
			continue
		}
		s.certs[Thumbprint(cert)] = cert
	}

	return nil
}

func (s *FileTrustStore) certPath(thumbprint string) string {
	return filepath.Join(s.baseDir, thumbprint+certFileExt)
}

// Verify FileTrustStore implements TrustStore.
var _ TrustStore = (*FileTrustStore)(nil)
