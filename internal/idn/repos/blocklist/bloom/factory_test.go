package bloom

import (
	"encoding/binary"
	"testing"
)

func runeKey(c rune) []byte {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], uint32(c))
	return b[:]
}

func TestFactory_New_Basic(t *testing.T) {
	f := NewFactory()
	bf := f.New(128, 0.01)
	if bf == nil {
		t.Fatalf("expected non-nil bloom filter")
	}

	key := runeKey(0x200B)
	if bf.MightContain(key) {
		t.Fatalf("unexpected positive before add")
	}
	bf.Add(key)
	if !bf.MightContain(key) {
		t.Fatalf("expected maybe after add")
	}
}

func TestFactory_New_Defaults(t *testing.T) {
	// capacity=0 and invalid fp → sizer defaults apply; filter still usable
	f := NewFactory()
	bf := f.New(0, 0)
	key := runeKey(0x3002)
	bf.Add(key)
	if !bf.MightContain(key) {
		t.Fatalf("expected maybe after add with default-sized bloom")
	}
}
