// Package discovery implements mDNS/DNS-SD discovery for OPC UA servers.
//
// Servers register the service type defined by OPC UA Part 12 for
// multicast extension discovery (LDS-ME):
//
// # Server Discovery (_opcua-tcp._tcp)
//
// The instance name is the server's display name, unique per network.
// TXT records include: path (endpoint path below the host, optional)
// and caps (comma-separated capability tokens, "NA" when none).
//
// A discovered server converts directly to a connectable endpoint URL:
//
//	opc.tcp://<host>:<port><path>
//
// # Capability Tokens
//
// Tokens follow the OPC UA Part 12 ServerCapabilities table:
//   - LDS: Local Discovery Server
//   - DA: Data Access
//   - HD: Historical Data Access
//   - AC: Alarms and Conditions
//   - HE: Historical Events
//   - GDS: Global Discovery Server
//   - NA: no capability information
//
// Unknown tokens are preserved so newer servers remain discoverable.
//
// # Instance Names
//
// Several servers may advertise the same product name on one network.
// UniqueInstanceName derives a collision-safe name by appending the
// first 64 bits of SHA-256(application URI), the same stable identity
// the server presents in its application description.
package discovery
