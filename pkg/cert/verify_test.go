package cert

import (
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"errors"
	"net/url"
	"testing"
	"time"
)

// makeCertWithValidity crafts a self-signed certificate with an
// arbitrary validity period. An empty uri omits the URI SAN.
func makeCertWithValidity(t *testing.T, uri string, notBefore, notAfter time.Time) *x509.Certificate {
	t.Helper()

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey() error = %v", err)
	}
	serial, err := newSerialNumber()
	if err != nil {
		t.Fatalf("newSerialNumber() error = %v", err)
	}

	template := &x509.Certificate{
		SerialNumber: serial,
		Subject:      pkix.Name{CommonName: "Validity"},
		NotBefore:    notBefore,
		NotAfter:     notAfter,
		KeyUsage:     x509.KeyUsageDigitalSignature,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageClientAuth, x509.ExtKeyUsageServerAuth},
	}
	if uri != "" {
		parsed, err := url.Parse(uri)
		if err != nil {
			t.Fatalf("Parse(%q) error = %v", uri, err)
		}
		template.URIs = []*url.URL{parsed}
	}

	der, err := x509.CreateCertificate(rand.Reader, template, template, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("CreateCertificate() error = %v", err)
	}
	cert, err := x509.ParseCertificate(der)
	if err != nil {
		t.Fatalf("ParseCertificate() error = %v", err)
	}
	return cert
}

func TestVerifyApplicationCert(t *testing.T) {
	ca, err := GenerateCA("Verify CA", 0)
	if err != nil {
		t.Fatalf("GenerateCA() error = %v", err)
	}
	issued, err := IssueApplicationCert(ca, testRequest())
	if err != nil {
		t.Fatalf("IssueApplicationCert() error = %v", err)
	}
	pinned := testCert(t)

	t.Run("PinnedSelfSigned", func(t *testing.T) {
		trust := NewMemoryTrustStore()
		if err := trust.Trust(pinned.Certificate); err != nil {
			t.Fatalf("Trust() error = %v", err)
		}
		if err := VerifyApplicationCert(pinned.Certificate, trust); err != nil {
			t.Errorf("VerifyApplicationCert() error = %v", err)
		}
	})

	t.Run("ChainToTrustedCA", func(t *testing.T) {
		trust := NewMemoryTrustStore()
		if err := trust.Trust(ca.Certificate); err != nil {
			t.Fatalf("Trust() error = %v", err)
		}
		if err := VerifyApplicationCert(issued.Certificate, trust); err != nil {
			t.Errorf("VerifyApplicationCert() error = %v", err)
		}
	})

	t.Run("EmptyTrustList", func(t *testing.T) {
		trust := NewMemoryTrustStore()
		if err := VerifyApplicationCert(pinned.Certificate, trust); !errors.Is(err, ErrUntrusted) {
			t.Errorf("error = %v, want ErrUntrusted", err)
		}
	})

	t.Run("UnknownIssuer", func(t *testing.T) {
		otherCA, err := GenerateCA("Other CA", 0)
		if err != nil {
			t.Fatalf("GenerateCA() error = %v", err)
		}
		trust := NewMemoryTrustStore()
		if err := trust.Trust(otherCA.Certificate); err != nil {
			t.Fatalf("Trust() error = %v", err)
		}
		if err := VerifyApplicationCert(issued.Certificate, trust); !errors.Is(err, ErrUntrusted) {
			t.Errorf("error = %v, want ErrUntrusted", err)
		}
	})

	t.Run("Expired", func(t *testing.T) {
		expired := makeCertWithValidity(t, "urn:example:expired",
			time.Now().Add(-48*time.Hour), time.Now().Add(-24*time.Hour))
		trust := NewMemoryTrustStore()
		if err := trust.Trust(expired); err != nil {
			t.Fatalf("Trust() error = %v", err)
		}
		// Period checks run before the pinning shortcut
		if err := VerifyApplicationCert(expired, trust); !errors.Is(err, ErrCertExpired) {
			t.Errorf("error = %v, want ErrCertExpired", err)
		}
	})

	t.Run("NotYetValid", func(t *testing.T) {
		future := makeCertWithValidity(t, "urn:example:future",
			time.Now().Add(24*time.Hour), time.Now().Add(48*time.Hour))
		trust := NewMemoryTrustStore()
		if err := trust.Trust(future); err != nil {
			t.Fatalf("Trust() error = %v", err)
		}
		if err := VerifyApplicationCert(future, trust); !errors.Is(err, ErrCertNotYetValid) {
			t.Errorf("error = %v, want ErrCertNotYetValid", err)
		}
	})

	t.Run("NilCert", func(t *testing.T) {
		trust := NewMemoryTrustStore()
		if err := VerifyApplicationCert(nil, trust); !errors.Is(err, ErrInvalidCert) {
			t.Errorf("error = %v, want ErrInvalidCert", err)
		}
	})
}

func TestVerifyApplicationURI(t *testing.T) {
	ac := testCert(t)

	t.Run("Match", func(t *testing.T) {
		if err := VerifyApplicationURI(ac.Certificate, "urn:plc.example.com:vendor:test-application"); err != nil {
			t.Errorf("VerifyApplicationURI() error = %v", err)
		}
	})

	t.Run("Mismatch", func(t *testing.T) {
		err := VerifyApplicationURI(ac.Certificate, "urn:other:application")
		if !errors.Is(err, ErrURIMismatch) {
			t.Errorf("error = %v, want ErrURIMismatch", err)
		}
	})

	t.Run("NoURI", func(t *testing.T) {
		bare := makeCertWithValidity(t, "", time.Now(), time.Now().Add(time.Hour))
		err := VerifyApplicationURI(bare, "urn:example:app")
		if !errors.Is(err, ErrNoApplicationURI) {
			t.Errorf("error = %v, want ErrNoApplicationURI", err)
		}
	})

	t.Run("NilCert", func(t *testing.T) {
		if err := VerifyApplicationURI(nil, "urn:example:app"); !errors.Is(err, ErrInvalidCert) {
			t.Errorf("error = %v, want ErrInvalidCert", err)
		}
	})
}

func TestApplicationURIFromCert(t *testing.T) {
	ac := testCert(t)

	uri, err := ApplicationURIFromCert(ac.Certificate)
	if err != nil {
		t.Fatalf("ApplicationURIFromCert() error = %v", err)
	}
	if uri != "urn:plc.example.com:vendor:test-application" {
		t.Errorf("ApplicationURIFromCert() = %q, want the request URI", uri)
	}

	bare := makeCertWithValidity(t, "", time.Now(), time.Now().Add(time.Hour))
	if _, err := ApplicationURIFromCert(bare); !errors.Is(err, ErrNoApplicationURI) {
		t.Errorf("error = %v, want ErrNoApplicationURI", err)
	}

	if _, err := ApplicationURIFromCert(nil); !errors.Is(err, ErrInvalidCert) {
		t.Errorf("error = %v, want ErrInvalidCert", err)
	}
}

func TestVerifyIssuedBy(t *testing.T) {
	ca, err := GenerateCA("Issuer CA", 0)
	if err != nil {
		t.Fatalf("GenerateCA() error = %v", err)
	}
	issued, err := IssueApplicationCert(ca, testRequest())
	if err != nil {
		t.Fatalf("IssueApplicationCert() error = %v", err)
	}

	t.Run("Issued", func(t *testing.T) {
		if err := VerifyIssuedBy(issued.Certificate, ca.Certificate); err != nil {
			t.Errorf("VerifyIssuedBy() error = %v", err)
		}
	})

	t.Run("WrongCA", func(t *testing.T) {
		otherCA, err := GenerateCA("Wrong CA", 0)
		if err != nil {
			t.Fatalf("GenerateCA() error = %v", err)
		}
		if err := VerifyIssuedBy(issued.Certificate, otherCA.Certificate); !errors.Is(err, ErrIssuerMismatch) {
			t.Errorf("error = %v, want ErrIssuerMismatch", err)
		}
	})

	t.Run("SelfSignedWithoutAKI", func(t *testing.T) {
		selfSigned := testCert(t)
		if err := VerifyIssuedBy(selfSigned.Certificate, ca.Certificate); !errors.Is(err, ErrIssuerMismatch) {
			t.Errorf("error = %v, want ErrIssuerMismatch", err)
		}
	})

	t.Run("NilArgs", func(t *testing.T) {
		if err := VerifyIssuedBy(nil, ca.Certificate); !errors.Is(err, ErrInvalidCert) {
			t.Errorf("error = %v, want ErrInvalidCert", err)
		}
		if err := VerifyIssuedBy(issued.Certificate, nil); !errors.Is(err, ErrInvalidCert) {
			t.Errorf("error = %v, want ErrInvalidCert", err)
		}
	})
}

func TestVerifyPeerCertificate(t *testing.T) {
	pinned := testCert(t)
	trust := NewMemoryTrustStore()
	if err := trust.Trust(pinned.Certificate); err != nil {
		t.Fatalf("Trust() error = %v", err)
	}

	t.Run("Valid", func(t *testing.T) {
		verify := VerifyPeerCertificate(trust, "")
		if err := verify([][]byte{pinned.Certificate.Raw}, nil); err != nil {
			t.Errorf("verify error = %v", err)
		}
	})

	t.Run("ExpectedURIMatch", func(t *testing.T) {
		verify := VerifyPeerCertificate(trust, "urn:plc.example.com:vendor:test-application")
		if err := verify([][]byte{pinned.Certificate.Raw}, nil); err != nil {
			t.Errorf("verify error = %v", err)
		}
	})

	t.Run("ExpectedURIMismatch", func(t *testing.T) {
		verify := VerifyPeerCertificate(trust, "urn:other:application")
		err := verify([][]byte{pinned.Certificate.Raw}, nil)
		if !errors.Is(err, ErrURIMismatch) {
			t.Errorf("error = %v, want ErrURIMismatch", err)
		}
	})

	t.Run("NoPeerCert", func(t *testing.T) {
		verify := VerifyPeerCertificate(trust, "")
		if err := verify(nil, nil); err == nil {
			t.Error("verify should fail without a peer certificate")
		}
	})

	t.Run("GarbageDER", func(t *testing.T) {
		verify := VerifyPeerCertificate(trust, "")
		if err := verify([][]byte{{1, 2, 3}}, nil); err == nil {
			t.Error("verify should fail for undecodable certificates")
		}
	})

	t.Run("Untrusted", func(t *testing.T) {
		verify := VerifyPeerCertificate(NewMemoryTrustStore(), "")
		err := verify([][]byte{pinned.Certificate.Raw}, nil)
		if !errors.Is(err, ErrUntrusted) {
			t.Errorf("error = %v, want ErrUntrusted", err)
		}
	})
}

func TestGetCertificateInfo(t *testing.T) {
	ac := testCert(t)

	info := GetCertificateInfo(ac.Certificate)
	if info == nil {
		t.Fatal("GetCertificateInfo() returned nil")
	}
	if info.ApplicationURI != "urn:plc.example.com:vendor:test-application" {
		t.Errorf("ApplicationURI = %q, want the request URI", info.ApplicationURI)
	}
	if info.CommonName != "TestApplication" {
		t.Errorf("CommonName = %q, want %q", info.CommonName, "TestApplication")
	}
	if info.Issuer != "TestApplication" {
		t.Errorf("Issuer = %q, want %q for a self-signed cert", info.Issuer, "TestApplication")
	}
	if info.IsCA {
		t.Error("IsCA should be false")
	}
	if len(info.SKI) != 20 {
		t.Errorf("SKI length = %d, want 20", len(info.SKI))
	}
	if info.Thumbprint != Thumbprint(ac.Certificate) {
		t.Error("Thumbprint should match the package function")
	}
	if info.NotBefore.IsZero() || info.NotAfter.IsZero() {
		t.Error("validity bounds should be set")
	}

	if GetCertificateInfo(nil) != nil {
		t.Error("GetCertificateInfo(nil) should return nil")
	}
}
