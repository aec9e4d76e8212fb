package verify

import (
	"encoding/binary"
	"encoding/hex"

	"github.com/zeebo/blake3"

	"github.com/joshuapare/hexlayout/layout"
)

// Fingerprint returns a stable digest of a region list. Two compiles of an
// unchanged document produce the same fingerprint; payload identity is not
// part of the digest, only the type name and extent of typed blocks.
func Fingerprint(regions []layout.Region) string {
	h := blake3.New()
	var scratch [8]byte

	putInt := func(v int64) {
		binary.LittleEndian.PutUint64(scratch[:], uint64(v))
		_, _ = h.Write(scratch[:])
	}
	putString := func(s string) {
		putInt(int64(len(s)))
		_, _ = h.Write([]byte(s))
	}
	putBool := func(b bool) {
		if b {
			putInt(1)
		} else {
			putInt(0)
		}
	}

	putInt(int64(len(regions)))
	for _, r := range regions {
		putInt(int64(r.Kind))
		putInt(r.Offset.TotalBits())
		putInt(r.Length.TotalBits())
		putInt(r.VirtOffset.TotalBits())
		switch r.Kind {
		case layout.KindComment:
			putString(r.Text)
			putBool(r.Truncate)
			putBool(r.Synthetic)
			putInt(r.IndentOffset.TotalBits())
			putInt(r.IndentLength.TotalBits())
		case layout.KindTyped:
			putString(r.TypeName)
		}
	}

	return hex.EncodeToString(h.Sum(nil))
}
