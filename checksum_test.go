package etherdfs

import "testing"

func TestChecksum(t *testing.T) {
	var tests = []struct {
		desc string
		in   []byte
	}{
		{desc: "empty", in: []byte{}},
		{desc: "single byte", in: []byte{0x42}},
		{desc: "odd length", in: []byte{1, 2, 3}},
		{desc: "typical header", in: []byte{0x83, 0x01, 0x02, 0x00, 0x00, 0x00}},
	}

	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			// checksum must be deterministic for identical input.
			a := checksum(tt.in)
			b := checksum(tt.in)
			if a != b {
				t.Fatalf("checksum not deterministic: %#x != %#x", a, b)
			}
		})
	}
}

func TestChecksumDetectsCorruption(t *testing.T) {
	orig := []byte{0x83, 0x05, 0x01, 0x08, 0xAA, 0xBB, 0xCC}
	want := checksum(orig)

	for i := range orig {
		corrupt := append([]byte(nil), orig...)
		corrupt[i] ^= 0xFF
		if got := checksum(corrupt); got == want {
			t.Errorf("byte %d: corruption not detected, checksum still %#x", i, got)
		}
	}
}
