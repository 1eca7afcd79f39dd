package checksum

import "testing"

func TestSum(t *testing.T) {
	a := Sum([]byte("ab"), []byte("c"))
	if a != Sum([]byte("ab"), []byte("c")) {
		t.Fatal("sum is not deterministic")
	}
	if a == Sum([]byte("a"), []byte("bc")) {
		t.Error("part boundaries must change the digest")
	}
	if len(a) != 64 {
		t.Errorf("len = %d, want 64", len(a))
	}
}
