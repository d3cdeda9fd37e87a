package chain

import (
	"strings"
	"testing"
)

func TestNormalizeAddress(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"0x1", "0x" + strings.Repeat("0", 63) + "1"},
		{"1", "0x" + strings.Repeat("0", 63) + "1"},
		{"0xABCDEF", "0x" + strings.Repeat("0", 58) + "abcdef"},
	}
	for _, c := range cases {
		got := NormalizeAddress(c.in)
		if len(got) != 66 {
			t.Fatalf("NormalizeAddress(%q) = %q, want length 66, got length %d", c.in, got, len(got))
		}
		if got != c.want {
			t.Errorf("NormalizeAddress(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestModuleAddrAndName(t *testing.T) {
	addr, module, name, ok := ModuleAddrAndName("0x1::events::ListingPlaced")
	if !ok {
		t.Fatal("expected ok=true")
	}
	if module != "events" || name != "ListingPlaced" {
		t.Errorf("got module=%q name=%q", module, name)
	}
	if len(addr) != 66 {
		t.Errorf("expected normalized 32-byte address, got %q", addr)
	}

	if _, _, _, ok := ModuleAddrAndName("not_a_valid_type"); ok {
		t.Error("expected ok=false for malformed event type")
	}
}
