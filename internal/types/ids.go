package types

import (
	"errors"
	"fmt"
	"hash/fnv"
)

// FileID is a process-local, stable-for-the-process-lifetime identifier
// assigned to a file the first time it's indexed.
type FileID uint32

// CompositeSymbolID uniquely identifies a symbol within the graph by
// combining the file it was defined in with a per-file local counter.
// CompactString gives it a dense base-63 string form.
type CompositeSymbolID struct {
	FileID        FileID
	LocalSymbolID uint32
}

func NewCompositeSymbolID(fileID FileID, localID uint32) CompositeSymbolID {
	return CompositeSymbolID{FileID: fileID, LocalSymbolID: localID}
}

func (s CompositeSymbolID) String() string {
	return fmt.Sprintf("Symbol[F:%d,L:%d]", s.FileID, s.LocalSymbolID)
}

func valueToChar(val uint64) byte {
	switch {
	case val < 26:
		return byte('A' + val)
	case val < 52:
		return byte('a' + (val - 26))
	case val < 62:
		return byte('0' + (val - 52))
	default:
		return '_'
	}
}

// CompactString encodes the ID as a dense base-63 (A-Za-z0-9_) string,
// suitable for use as a map key or as a wire-visible opaque symbol handle.
func (s CompositeSymbolID) CompactString() string {
	combined := uint64(s.FileID) | (uint64(s.LocalSymbolID) << 32)
	if combined == 0 {
		return ""
	}

	var result []byte
	const base = 63
	for combined > 0 {
		val := combined % base
		result = append(result, valueToChar(val))
		combined /= base
	}
	for i, j := 0, len(result)-1; i < j; i, j = i+1, j-1 {
		result[i], result[j] = result[j], result[i]
	}
	return string(result)
}

func charToValue(c rune) (uint64, error) {
	switch {
	case c >= 'A' && c <= 'Z':
		return uint64(c - 'A'), nil
	case c >= 'a' && c <= 'z':
		return uint64(c-'a') + 26, nil
	case c >= '0' && c <= '9':
		return uint64(c-'0') + 52, nil
	case c == '_':
		return 62, nil
	default:
		return 0, fmt.Errorf("invalid character in compact string: %c", c)
	}
}

// ParseCompactString decodes a CompactString back into a CompositeSymbolID.
func ParseCompactString(compact string) (CompositeSymbolID, error) {
	if compact == "" {
		return CompositeSymbolID{}, errors.New("empty compact string")
	}

	var combined uint64
	const base = 63
	for _, c := range compact {
		val, err := charToValue(c)
		if err != nil {
			return CompositeSymbolID{}, err
		}
		combined = combined*base + val
	}

	return CompositeSymbolID{
		FileID:        FileID(combined & 0xFFFFFFFF),
		LocalSymbolID: uint32(combined >> 32),
	}, nil
}

func (s CompositeSymbolID) Hash() uint64 {
	h := fnv.New64a()
	h.Write([]byte{
		byte(s.FileID >> 24), byte(s.FileID >> 16), byte(s.FileID >> 8), byte(s.FileID),
		byte(s.LocalSymbolID >> 24), byte(s.LocalSymbolID >> 16), byte(s.LocalSymbolID >> 8), byte(s.LocalSymbolID),
	})
	return h.Sum64()
}

func (s CompositeSymbolID) Equals(other CompositeSymbolID) bool {
	return s.FileID == other.FileID && s.LocalSymbolID == other.LocalSymbolID
}

func (s CompositeSymbolID) IsValid() bool {
	return s.FileID != 0 || s.LocalSymbolID != 0
}
