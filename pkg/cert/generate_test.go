package cert

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"errors"
	"testing"
	"time"
)

func testRequest() CertificateRequest {
	return CertificateRequest{
		ApplicationName: "TestApplication",
		ApplicationURI:  "urn:plc.example.com:vendor:test-application",
		Organization:    "Example Org",
		Hosts:           []string{"plc.example.com", "192.0.2.10"},
	}
}

func TestGenerateApplicationCert(t *testing.T) {
	ac, err := GenerateApplicationCert(testRequest())
	if err != nil {
		t.Fatalf("GenerateApplicationCert() error = %v", err)
	}

	if ac.Certificate == nil {
		t.Fatal("Certificate should not be nil")
	}
	if ac.PrivateKey == nil {
		t.Fatal("PrivateKey should not be nil")
	}

	// Verify it's P-256
	if ac.PrivateKey.Curve.Params().Name != "P-256" {
		t.Errorf("Expected P-256 curve, got %s", ac.PrivateKey.Curve.Params().Name)
	}

	cert := ac.Certificate
	if cert.IsCA {
		t.Error("Application certificate should not be a CA")
	}
	if cert.Subject.CommonName != "TestApplication" {
		t.Errorf("Subject.CommonName = %q, want %q", cert.Subject.CommonName, "TestApplication")
	}
	if len(cert.Subject.Organization) != 1 || cert.Subject.Organization[0] != "Example Org" {
		t.Errorf("Subject.Organization = %v, want [\"Example Org\"]", cert.Subject.Organization)
	}

	// Application URI must be the URI subject alternative name
	if len(cert.URIs) != 1 || cert.URIs[0].String() != "urn:plc.example.com:vendor:test-application" {
		t.Errorf("URIs = %v, want the application URI", cert.URIs)
	}

	// Hosts split into DNS names and IP addresses
	if len(cert.DNSNames) != 1 || cert.DNSNames[0] != "plc.example.com" {
		t.Errorf("DNSNames = %v, want [plc.example.com]", cert.DNSNames)
	}
	if len(cert.IPAddresses) != 1 || cert.IPAddresses[0].String() != "192.0.2.10" {
		t.Errorf("IPAddresses = %v, want [192.0.2.10]", cert.IPAddresses)
	}

	// Verify key usage includes DigitalSignature and KeyEncipherment
	expectedKeyUsage := x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment
	if cert.KeyUsage&expectedKeyUsage != expectedKeyUsage {
		t.Errorf("KeyUsage = %v, want at least %v", cert.KeyUsage, expectedKeyUsage)
	}

	// Verify extended key usage includes ClientAuth and ServerAuth
	hasClientAuth := false
	hasServerAuth := false
	for _, usage := range cert.ExtKeyUsage {
		if usage == x509.ExtKeyUsageClientAuth {
			hasClientAuth = true
		}
		if usage == x509.ExtKeyUsageServerAuth {
			hasServerAuth = true
		}
	}
	if !hasClientAuth {
		t.Error("ExtKeyUsage should include ClientAuth")
	}
	if !hasServerAuth {
		t.Error("ExtKeyUsage should include ServerAuth")
	}

	// Check validity (1 year default)
	expectedDuration := DefaultValidity
	actualDuration := cert.NotAfter.Sub(cert.NotBefore)
	// Allow 1 second tolerance for test execution time
	if actualDuration < expectedDuration-time.Second || actualDuration > expectedDuration+time.Second {
		t.Errorf("Validity duration = %v, want ~%v", actualDuration, expectedDuration)
	}
}

func TestGenerateApplicationCertValidation(t *testing.T) {
	t.Run("MissingName", func(t *testing.T) {
		req := testRequest()
		req.ApplicationName = ""
		if _, err := GenerateApplicationCert(req); !errors.Is(err, ErrMissingApplicationName) {
			t.Errorf("error = %v, want ErrMissingApplicationName", err)
		}
	})

	t.Run("MissingURI", func(t *testing.T) {
		req := testRequest()
		req.ApplicationURI = ""
		if _, err := GenerateApplicationCert(req); !errors.Is(err, ErrInvalidApplicationURI) {
			t.Errorf("error = %v, want ErrInvalidApplicationURI", err)
		}
	})

	t.Run("SchemelessURI", func(t *testing.T) {
		req := testRequest()
		req.ApplicationURI = "not-a-uri"
		if _, err := GenerateApplicationCert(req); !errors.Is(err, ErrInvalidApplicationURI) {
			t.Errorf("error = %v, want ErrInvalidApplicationURI", err)
		}
	})
}

func TestGenerateApplicationCertCustomValidity(t *testing.T) {
	req := testRequest()
	req.Validity = 48 * time.Hour

	ac, err := GenerateApplicationCert(req)
	if err != nil {
		t.Fatalf("GenerateApplicationCert() error = %v", err)
	}

	actualDuration := ac.Certificate.NotAfter.Sub(ac.Certificate.NotBefore)
	if actualDuration < 47*time.Hour || actualDuration > 49*time.Hour {
		t.Errorf("Validity duration = %v, want ~48h", actualDuration)
	}
}

func TestGenerateApplicationCertFreshKeys(t *testing.T) {
	ac1, err := GenerateApplicationCert(testRequest())
	if err != nil {
		t.Fatalf("First GenerateApplicationCert() error = %v", err)
	}

	ac2, err := GenerateApplicationCert(testRequest())
	if err != nil {
		t.Fatalf("Second GenerateApplicationCert() error = %v", err)
	}

	// Verify different SubjectKeyIds (different keys)
	if bytes.Equal(ac1.Certificate.SubjectKeyId, ac2.Certificate.SubjectKeyId) {
		t.Error("Each call should generate different key pairs (different SKIs)")
	}

	// Verify different serial numbers
	if ac1.Certificate.SerialNumber.Cmp(ac2.Certificate.SerialNumber) == 0 {
		t.Error("Each call should generate different serial numbers")
	}
}

func TestGenerateCA(t *testing.T) {
	ca, err := GenerateCA("Example CA", 0)
	if err != nil {
		t.Fatalf("GenerateCA() error = %v", err)
	}

	if ca.Certificate == nil {
		t.Fatal("Certificate should not be nil")
	}
	if ca.PrivateKey == nil {
		t.Fatal("PrivateKey should not be nil")
	}

	cert := ca.Certificate
	if !cert.IsCA {
		t.Error("Certificate should be a CA")
	}
	if cert.MaxPathLen != 0 || !cert.MaxPathLenZero {
		t.Error("MaxPathLen should be 0")
	}
	if cert.Subject.CommonName != "Example CA" {
		t.Errorf("Subject.CommonName = %q, want %q", cert.Subject.CommonName, "Example CA")
	}

	// Check validity (10 years)
	expectedDuration := CAValidity
	actualDuration := cert.NotAfter.Sub(cert.NotBefore)
	if actualDuration < expectedDuration-time.Second || actualDuration > expectedDuration+time.Second {
		t.Errorf("Validity duration = %v, want ~%v", actualDuration, expectedDuration)
	}

	// Check self-signed (SKI == AKI)
	if !bytes.Equal(cert.SubjectKeyId, cert.AuthorityKeyId) {
		t.Error("CA should be self-signed (SKI == AKI)")
	}
}

func TestGenerateCAMissingName(t *testing.T) {
	if _, err := GenerateCA("", 0); !errors.Is(err, ErrMissingApplicationName) {
		t.Errorf("error = %v, want ErrMissingApplicationName", err)
	}
}

func TestIssueApplicationCert(t *testing.T) {
	ca, err := GenerateCA("Example CA", 0)
	if err != nil {
		t.Fatalf("GenerateCA() error = %v", err)
	}

	ac, err := IssueApplicationCert(ca, testRequest())
	if err != nil {
		t.Fatalf("IssueApplicationCert() error = %v", err)
	}

	cert := ac.Certificate
	if cert.IsCA {
		t.Error("Issued certificate should not be a CA")
	}

	// Verify signed by the CA (AKI matches CA's SKI)
	if !bytes.Equal(cert.AuthorityKeyId, ca.Certificate.SubjectKeyId) {
		t.Error("Certificate should be signed by the CA (AKI should match CA SKI)")
	}
	if cert.Issuer.CommonName != "Example CA" {
		t.Errorf("Issuer.CommonName = %q, want %q", cert.Issuer.CommonName, "Example CA")
	}

	// Verify the chain against the CA
	roots := x509.NewCertPool()
	roots.AddCert(ca.Certificate)
	opts := x509.VerifyOptions{
		Roots:     roots,
		KeyUsages: []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
	}
	if _, err := cert.Verify(opts); err != nil {
		t.Errorf("issued certificate should verify against the CA: %v", err)
	}
}

func TestIssueApplicationCertInvalidCA(t *testing.T) {
	tests := []struct {
		name string
		ca   *ApplicationCert
	}{
		{"Nil", nil},
		{"Empty", &ApplicationCert{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := IssueApplicationCert(tt.ca, testRequest()); !errors.Is(err, ErrInvalidCert) {
				t.Errorf("error = %v, want ErrInvalidCert", err)
			}
		})
	}
}

func TestComputeSKI(t *testing.T) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}

	ski, err := ComputeSKI(&key.PublicKey)
	if err != nil {
		t.Fatalf("ComputeSKI() error = %v", err)
	}

	// SKI should be 20 bytes (160 bits)
	if len(ski) != 20 {
		t.Errorf("SKI length = %d, want 20", len(ski))
	}

	// Same key should produce same SKI
	ski2, _ := ComputeSKI(&key.PublicKey)
	if !bytes.Equal(ski, ski2) {
		t.Error("Same key should produce same SKI")
	}

	// Different key should produce different SKI
	key2, _ := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	ski3, _ := ComputeSKI(&key2.PublicKey)
	if bytes.Equal(ski, ski3) {
		t.Error("Different keys should produce different SKIs")
	}
}

func TestApplicationCertProperties(t *testing.T) {
	ac, err := GenerateApplicationCert(testRequest())
	if err != nil {
		t.Fatalf("GenerateApplicationCert() error = %v", err)
	}

	t.Run("ApplicationURI", func(t *testing.T) {
		if got := ac.ApplicationURI(); got != "urn:plc.example.com:vendor:test-application" {
			t.Errorf("ApplicationURI() = %q, want the request URI", got)
		}
	})

	t.Run("SKI", func(t *testing.T) {
		if len(ac.SKI()) != 20 {
			t.Errorf("SKI length = %d, want 20", len(ac.SKI()))
		}
	})

	t.Run("Thumbprint", func(t *testing.T) {
		tp := ac.Thumbprint()
		if len(tp) != 40 {
			t.Errorf("Thumbprint length = %d, want 40 hex chars", len(tp))
		}
		if tp != Thumbprint(ac.Certificate) {
			t.Error("Thumbprint() should match the package function")
		}
	})

	t.Run("NotExpired", func(t *testing.T) {
		if ac.IsExpired() {
			t.Error("Fresh certificate should not be expired")
		}
	})

	t.Run("NeedsRenewalFresh", func(t *testing.T) {
		if ac.NeedsRenewal() {
			t.Error("Fresh certificate should not need renewal")
		}
	})

	t.Run("NeedsRenewalShortLived", func(t *testing.T) {
		req := testRequest()
		req.Validity = 24 * time.Hour // inside the renewal window
		shortLived, err := GenerateApplicationCert(req)
		if err != nil {
			t.Fatalf("GenerateApplicationCert() error = %v", err)
		}
		if !shortLived.NeedsRenewal() {
			t.Error("Certificate expiring within the renewal window should need renewal")
		}
	})

	t.Run("ExpiresAt", func(t *testing.T) {
		if ac.ExpiresAt().IsZero() {
			t.Error("ExpiresAt should return a valid time")
		}
	})

	t.Run("TLSCertificate", func(t *testing.T) {
		tlsCert := ac.TLSCertificate()
		if len(tlsCert.Certificate) != 1 {
			t.Fatalf("TLSCertificate chain length = %d, want 1", len(tlsCert.Certificate))
		}
		if !bytes.Equal(tlsCert.Certificate[0], ac.Certificate.Raw) {
			t.Error("TLSCertificate should carry the DER encoding")
		}
		if tlsCert.Leaf != ac.Certificate {
			t.Error("TLSCertificate Leaf should be set")
		}
	})
}
