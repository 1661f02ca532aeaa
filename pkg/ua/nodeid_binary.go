package ua

import (
	"encoding/binary"
	"fmt"

	"github.com/google/uuid"
)

// Binary encoding discriminants for NodeID.
const (
	nodeIDEncodingTwoByte    = 0x00
	nodeIDEncodingFourByte   = 0x01
	nodeIDEncodingNumeric    = 0x02
	nodeIDEncodingString     = 0x03
	nodeIDEncodingGUID       = 0x04
	nodeIDEncodingByteString = 0x05
)

// EncodeNodeID encodes a node ID in the protocol's binary form. Numeric
// IDs use the compact two-byte and four-byte forms when they fit.
func EncodeNodeID(n NodeID) ([]byte, error) {
	switch id := n.(type) {
	case NodeIDNumeric:
		switch {
		case id.NamespaceIndex == 0 && id.ID <= 0xFF:
			return []byte{nodeIDEncodingTwoByte, byte(id.ID)}, nil
		case id.NamespaceIndex <= 0xFF && id.ID <= 0xFFFF:
			b := make([]byte, 4)
			b[0] = nodeIDEncodingFourByte
			b[1] = byte(id.NamespaceIndex)
			binary.LittleEndian.PutUint16(b[2:], uint16(id.ID))
			return b, nil
		default:
			b := make([]byte, 7)
			b[0] = nodeIDEncodingNumeric
			binary.LittleEndian.PutUint16(b[1:], id.NamespaceIndex)
			binary.LittleEndian.PutUint32(b[3:], id.ID)
			return b, nil
		}
	case NodeIDString:
		b := make([]byte, 7+len(id.ID))
		b[0] = nodeIDEncodingString
		binary.LittleEndian.PutUint16(b[1:], id.NamespaceIndex)
		binary.LittleEndian.PutUint32(b[3:], uint32(len(id.ID)))
		copy(b[7:], id.ID)
		return b, nil
	case NodeIDGUID:
		b := make([]byte, 19)
		b[0] = nodeIDEncodingGUID
		binary.LittleEndian.PutUint16(b[1:], id.NamespaceIndex)
		encodeGUID(b[3:], id.ID)
		return b, nil
	case NodeIDOpaque:
		b := make([]byte, 7+len(id.ID))
		b[0] = nodeIDEncodingByteString
		binary.LittleEndian.PutUint16(b[1:], id.NamespaceIndex)
		binary.LittleEndian.PutUint32(b[3:], uint32(len(id.ID)))
		copy(b[7:], id.ID)
		return b, nil
	case nil:
		return nil, fmt.Errorf("encode node id: nil: %w", ErrInvalidFormat)
	default:
		return nil, fmt.Errorf("encode node id: unsupported type %T: %w", n, ErrInvalidFormat)
	}
}

// DecodeNodeID decodes a node ID from the protocol's binary form. The
// input must contain exactly one encoded node ID; truncated input,
// unknown discriminants, and trailing bytes fail with ErrInvalidFormat.
func DecodeNodeID(b []byte) (NodeID, error) {
	n, used, err := decodeNodeID(b)
	if err != nil {
		return nil, err
	}
	if used != len(b) {
		return nil, fmt.Errorf("decode node id: %d trailing bytes: %w", len(b)-used, ErrInvalidFormat)
	}
	return n, nil
}

func decodeNodeID(b []byte) (NodeID, int, error) {
	if len(b) == 0 {
		return nil, 0, fmt.Errorf("decode node id: empty input: %w", ErrInvalidFormat)
	}
	switch b[0] {
	case nodeIDEncodingTwoByte:
		if len(b) < 2 {
			return nil, 0, truncated()
		}
		return NodeIDNumeric{0, uint32(b[1])}, 2, nil
	case nodeIDEncodingFourByte:
		if len(b) < 4 {
			return nil, 0, truncated()
		}
		return NodeIDNumeric{uint16(b[1]), uint32(binary.LittleEndian.Uint16(b[2:]))}, 4, nil
	case nodeIDEncodingNumeric:
		if len(b) < 7 {
			return nil, 0, truncated()
		}
		return NodeIDNumeric{binary.LittleEndian.Uint16(b[1:]), binary.LittleEndian.Uint32(b[3:])}, 7, nil
	case nodeIDEncodingString:
		ns, body, used, err := decodeSized(b)
		if err != nil {
			return nil, 0, err
		}
		return NodeIDString{ns, string(body)}, used, nil
	case nodeIDEncodingGUID:
		if len(b) < 19 {
			return nil, 0, truncated()
		}
		return NodeIDGUID{binary.LittleEndian.Uint16(b[1:]), decodeGUID(b[3:19])}, 19, nil
	case nodeIDEncodingByteString:
		ns, body, used, err := decodeSized(b)
		if err != nil {
			return nil, 0, err
		}
		return NodeIDOpaque{ns, ByteString(body)}, used, nil
	default:
		return nil, 0, fmt.Errorf("decode node id: unknown discriminant 0x%02X: %w", b[0], ErrInvalidFormat)
	}
}

// decodeSized handles the string and byte-string bodies, which share a
// namespace index followed by a signed length prefix (-1 means empty).
func decodeSized(b []byte) (ns uint16, body []byte, used int, err error) {
	if len(b) < 7 {
		return 0, nil, 0, truncated()
	}
	ns = binary.LittleEndian.Uint16(b[1:])
	length := int32(binary.LittleEndian.Uint32(b[3:]))
	if length == -1 {
		return ns, nil, 7, nil
	}
	if length < 0 {
		return 0, nil, 0, fmt.Errorf("decode node id: negative length %d: %w", length, ErrInvalidFormat)
	}
	if int(length) > len(b)-7 {
		return 0, nil, 0, truncated()
	}
	return ns, b[7 : 7+int(length)], 7 + int(length), nil
}

func truncated() error {
	return fmt.Errorf("decode node id: truncated input: %w", ErrInvalidFormat)
}

// encodeGUID writes the 16-byte protocol layout: the first three GUID
// fields little-endian, the final eight bytes verbatim.
func encodeGUID(dst []byte, id uuid.UUID) {
	dst[0], dst[1], dst[2], dst[3] = id[3], id[2], id[1], id[0]
	dst[4], dst[5] = id[5], id[4]
	dst[6], dst[7] = id[7], id[6]
	copy(dst[8:16], id[8:16])
}

func decodeGUID(src []byte) uuid.UUID {
	var id uuid.UUID
	id[0], id[1], id[2], id[3] = src[3], src[2], src[1], src[0]
	id[4], id[5] = src[5], src[4]
	id[6], id[7] = src[7], src[6]
	copy(id[8:16], src[8:16])
	return id
}
