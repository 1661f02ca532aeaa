package channel

import (
	"errors"
	"time"
)

// Security policy URIs from OPC UA Part 7.
const (
	SecurityPolicyNone           = "http://opcfoundation.org/UA/SecurityPolicy#None"
	SecurityPolicyBasic256Sha256 = "http://opcfoundation.org/UA/SecurityPolicy#Basic256Sha256"
	SecurityPolicyAes128Sha256   = "http://opcfoundation.org/UA/SecurityPolicy#Aes128_Sha256_RsaOaep"
)

// Default timing parameters, matching common server-side limits.
const (
	// DefaultSecureChannelLifetime is the requested token lifetime for
	// the secure channel.
	DefaultSecureChannelLifetime = 10 * time.Minute

	// DefaultRenewFraction is the fraction of the channel lifetime
	// after which the transport starts renewing the security token.
	DefaultRenewFraction = 0.75

	// DefaultSessionTimeout is the requested session timeout.
	DefaultSessionTimeout = 20 * time.Minute

	// DefaultRequestTimeout bounds a single service call.
	DefaultRequestTimeout = 5 * time.Second
)

// Config configures a transport.
type Config struct {
	// EndpointURL is the server endpoint, e.g. "opc.tcp://host:4840/path".
	EndpointURL string

	// SecurityPolicy is the security policy URI (default: none).
	SecurityPolicy string

	// ApplicationURI identifies the client application, e.g.
	// "urn:example:client". Must match the SAN URI of the application
	// instance certificate when one is used.
	ApplicationURI string

	// ApplicationName is the human-readable client name.
	ApplicationName string

	// SecureChannelLifetime is the requested security token lifetime
	// (default: 10m).
	SecureChannelLifetime time.Duration

	// RenewFraction is the fraction of SecureChannelLifetime after
	// which token renewal starts (default: 0.75).
	RenewFraction float64

	// SessionTimeout is the requested session timeout (default: 20m).
	SessionTimeout time.Duration

	// RequestTimeout bounds a single Invoke call (default: 5s).
	RequestTimeout time.Duration
}

// DefaultConfig returns the default transport configuration for the
// given endpoint.
func DefaultConfig(endpointURL string) Config {
	return Config{
		EndpointURL:           endpointURL,
		SecurityPolicy:        SecurityPolicyNone,
		SecureChannelLifetime: DefaultSecureChannelLifetime,
		RenewFraction:         DefaultRenewFraction,
		SessionTimeout:        DefaultSessionTimeout,
		RequestTimeout:        DefaultRequestTimeout,
	}
}

// Validate checks the configuration for values no transport can honor.
func (c Config) Validate() error {
	if c.EndpointURL == "" {
		return errors.New("endpoint URL is required")
	}
	if c.RenewFraction < 0 || c.RenewFraction > 1 {
		return errors.New("renew fraction must be within [0, 1]")
	}
	if c.SecureChannelLifetime < 0 || c.SessionTimeout < 0 || c.RequestTimeout < 0 {
		return errors.New("timeouts must not be negative")
	}
	return nil
}
