package discovery

import (
	"context"
	"time"

	"github.com/opcua-sdk/opcua-go/pkg/log"
)

// Advertiser provides mDNS advertising for OPC UA servers.
type Advertiser interface {
	// Advertise starts advertising a server. Multiple servers can be
	// advertised simultaneously, keyed by instance name. Advertising
	// an existing name replaces the registration.
	Advertise(ctx context.Context, info *ServerInfo) error

	// Update replaces the TXT records of an advertised server.
	Update(instance string, info *ServerInfo) error

	// Stop stops advertising a specific server.
	Stop(instance string) error

	// StopAll stops all advertisements.
	StopAll()
}

// AdvertiserConfig configures advertiser behavior.
type AdvertiserConfig struct {
	// Interface specifies which network interface to use.
	// Empty string means all interfaces.
	Interface string

	// TTL is the DNS record TTL.
	// Default: 120 seconds.
	TTL time.Duration

	// Logger receives discovery events. Nil disables logging.
	Logger log.Logger
}

// DefaultAdvertiserConfig returns the default advertiser configuration.
func DefaultAdvertiserConfig() AdvertiserConfig {
	return AdvertiserConfig{
		Interface: "",
		TTL:       AdvertiseTTL,
	}
}
