package discovery

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ApplicationID derives a stable ID from an application URI.
//
// The ID is the first 64 bits (16 hex chars) of SHA-256(applicationURI).
// Two servers with distinct application URIs get distinct IDs, so the ID
// can disambiguate instance names when several servers advertise the
// same product name on one network.
func ApplicationID(applicationURI string) string {
	hash := sha256.Sum256([]byte(applicationURI))
	return hex.EncodeToString(hash[:8])
}

// ValidateApplicationID checks if an ID string is a valid 64-bit
// fingerprint (16 hex chars).
func ValidateApplicationID(id string) bool {
	if len(id) != ApplicationIDLength {
		return false
	}
	return isHexString(id)
}

// UniqueInstanceName builds an mDNS instance name from a display name
// and an application URI.
//
// Format: "<name>-<id-prefix>" where the prefix is the first 8 hex chars
// of the application ID. The result is truncated to the DNS label limit
// from the left so the disambiguating suffix survives.
func UniqueInstanceName(name, applicationURI string) string {
	suffix := ApplicationID(applicationURI)[:8]
	instance := fmt.Sprintf("%s-%s", name, suffix)
	if len(instance) > MaxInstanceNameLen {
		keep := MaxInstanceNameLen - len(suffix) - 1
		instance = fmt.Sprintf("%s-%s", name[:keep], suffix)
	}
	return instance
}

// isHexString checks if a string contains only valid hex characters.
func isHexString(s string) bool {
	for _, c := range s {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')) {
			return false
		}
	}
	return true
}
