// Package ua provides the OPC UA value types used throughout the module:
// node identifiers, attribute identifiers, status codes, timestamps, and
// the payload types carried by the browse and read services.
//
// # Node identifiers
//
// A NodeID addresses a node in a server's address space. The identifier
// part is one of four kinds (numeric, string, GUID, opaque), each a small
// comparable struct, so NodeID values can be compared with == and used as
// map keys:
//
//	id := ua.NewNodeIDString(2, "Demo.Static.Scalar.Float")
//	root := ua.ObjectsFolder // well-known numeric ID, "i=85"
//
// String forms follow the standard "ns=<index>;<type>=<value>" syntax and
// round-trip through ParseNodeID:
//
//	id, err := ua.ParseNodeID("ns=2;s=Demo.Static.Scalar.Float")
//
// Binary forms follow the compact protocol encoding (two-byte and
// four-byte forms for small numeric IDs) and round-trip through
// EncodeNodeID and DecodeNodeID.
//
// # Attribute identifiers
//
// AttributeID is a closed enumeration with the protocol's wire values
// (NodeID=1 .. AccessLevelEx=27). The AttributeID… constants are
// canonical; the AttributeId… spellings are kept as deprecated aliases
// for callers written against the old casing and resolve to the same
// values.
//
// # Status codes
//
// StatusCode carries the protocol's 32-bit status values. The severity
// bits classify a code as good, uncertain, or bad; bad codes implement
// the error interface so per-operation failures can be returned and
// wrapped directly.
package ua
