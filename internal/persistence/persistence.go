// Package persistence implements codegraph's optional on-disk graph
// cache. The format is a magic header plus a monotonically increasing
// schema version, followed by a gob-encoded snapshot; any header or
// version mismatch is rejected and the caller is expected to fall back to
// a full rebuild rather than trust stale or foreign data.
package persistence

import (
	"bufio"
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
	"os"

	cgerrors "github.com/arven/codegraph/internal/errors"
	"github.com/arven/codegraph/internal/graph"
)

// magic identifies a codegraph persisted-cache file. Four bytes, matching
// the convention of a short ASCII tag rather than a binary constant, so a
// misdirected `cat` immediately shows what the file is.
var magic = [4]byte{'C', 'G', 'P', 'H'}

// schemaVersion increases whenever the on-disk layout changes in a way old
// readers can't tolerate. A version mismatch is always a hard rejection,
// never a best-effort upgrade.
const schemaVersion uint32 = 1

// ErrVersionMismatch is returned by Load when the file's schema version
// doesn't match schemaVersion, or its header isn't the codegraph magic.
var ErrVersionMismatch = fmt.Errorf("persistence: cache version mismatch, rebuild required")

// Save writes entries to path as a versioned codegraph graph cache.
func Save(path string, entries []graph.FileEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return cgerrors.NewIOError("create", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.Write(magic[:]); err != nil {
		return cgerrors.NewIOError("write", path, err)
	}
	if err := binary.Write(w, binary.BigEndian, schemaVersion); err != nil {
		return cgerrors.NewIOError("write", path, err)
	}
	if err := gob.NewEncoder(w).Encode(entries); err != nil {
		return cgerrors.NewIOError("encode", path, err)
	}
	if err := w.Flush(); err != nil {
		return cgerrors.NewIOError("flush", path, err)
	}
	return nil
}

// Load reads path, validating the magic header and schema version before
// decoding. Returns ErrVersionMismatch (wrapped) on any header/version
// mismatch, signalling the caller to discard the file and rebuild.
func Load(path string) ([]graph.FileEntry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, cgerrors.NewIOError("open", path, err)
	}
	defer f.Close()

	r := bufio.NewReader(f)

	var gotMagic [4]byte
	if _, err := io.ReadFull(r, gotMagic[:]); err != nil {
		return nil, cgerrors.NewIOError("read", path, err)
	}
	if gotMagic != magic {
		return nil, cgerrors.NewIOError("read", path, ErrVersionMismatch)
	}

	var gotVersion uint32
	if err := binary.Read(r, binary.BigEndian, &gotVersion); err != nil {
		return nil, cgerrors.NewIOError("read", path, err)
	}
	if gotVersion != schemaVersion {
		return nil, cgerrors.NewIOError("read", path, ErrVersionMismatch)
	}

	var entries []graph.FileEntry
	if err := gob.NewDecoder(r).Decode(&entries); err != nil {
		return nil, cgerrors.NewIOError("decode", path, err)
	}
	return entries, nil
}
