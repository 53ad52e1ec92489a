package core

import (
	"bytes"
	"fmt"
	"io"

	"golang.org/x/mod/sumdb/dirhash"
)

// RegistryHash returns a diagnostic content hash over the currently
// occupied app descriptors, in the dirhash.Hash1 form.
//
// This plays no part in the install-correctness protocol, which relies
// solely on CRC-32 over firmware files; it exists only so
// `ogfw list --verify` can flag a registry that changed between two
// reads without re-parsing every descriptor by hand.
func (r *AppRegistry) RegistryHash() (string, error) {
	names := make([]string, r.count)
	blobs := make([][]byte, r.count)
	for i := 0; i < r.count; i++ {
		names[i] = fmt.Sprintf("app%04d", i)
		blobs[i] = r.apps[i].MarshalBinary()
	}
	open := func(name string) (io.ReadCloser, error) {
		for i, n := range names {
			if n == name {
				return io.NopCloser(bytes.NewReader(blobs[i])), nil
			}
		}
		return nil, fmt.Errorf("registry hash: unknown entry %q", name)
	}
	return dirhash.Hash1(names, open)
}
