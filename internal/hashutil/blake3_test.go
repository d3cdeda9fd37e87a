package hashutil

import (
	"testing"

	"github.com/nft-aggregator/indexer/pkg/chain"
	"lukechampine.com/blake3"
)

// TestAskOrderIDV1SeedVector pins spec.md L1's seed vector: owner="0x1"
// (padded), token_id=(creator="0x2" padded, collection="C", name="N",
// property_version="0") must hash the literal padded-owner preimage.
func TestAskOrderIDV1SeedVector(t *testing.T) {
	creator := chain.NormalizeAddress("0x2")
	owner := chain.NormalizeAddress("0x1")

	got := AskOrderIDV1(creator, "C", "N", "0", owner)

	preimage := creator + "_C_N_0_" + owner
	sum := blake3.Sum256([]byte(preimage))
	want := hexString(sum[:])

	if got != want {
		t.Fatalf("AskOrderIDV1 seed vector mismatch:\n got  %s\n want %s", got, want)
	}
}

// TestAskOrderIDV1Stability is L6: identical inputs across separate calls
// (standing in for separate process runs) must yield byte-identical ids.
func TestAskOrderIDV1Stability(t *testing.T) {
	creator := chain.NormalizeAddress("0x2")
	owner := chain.NormalizeAddress("0x3")

	a := AskOrderIDV1(creator, "Coll", "Name", "3", owner)
	b := AskOrderIDV1(creator, "Coll", "Name", "3", owner)
	if a != b {
		t.Fatalf("expected stable id across calls, got %s and %s", a, b)
	}
}

func TestCollectionBidOrderIDV1DoubleUnderscore(t *testing.T) {
	got := CollectionBidOrderIDV1("42")
	want := BLAKE3Hex("tradeport_v1_collection_bid_order__42")
	if got != want {
		t.Fatalf("expected double-underscore preimage preserved, got mismatch")
	}
}

func hexString(b []byte) string {
	const hexdigits = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, c := range b {
		out[i*2] = hexdigits[c>>4]
		out[i*2+1] = hexdigits[c&0x0f]
	}
	return string(out)
}
