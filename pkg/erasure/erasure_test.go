// pkg/erasure/erasure_test.go
package erasure

import (
	"bytes"
	"errors"
	"testing"
)

func TestEncodeReconstructRoundTrip(t *testing.T) {
	c, err := New(3, 2, 16)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	input := []byte("The quick brown fox jumps over the lazy dog")
	data, err := Split(input, 3, 16)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	recovery, err := c.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(recovery) != 2 {
		t.Fatalf("expected 2 recovery shards, got %d", len(recovery))
	}

	// Simulate losing two shards: present only data[2] and both recovery.
	present := map[uint32][]byte{
		2: data[2],
		3: recovery[0],
		4: recovery[1],
	}
	got, err := c.Reconstruct(present)
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	recovered := Join(got, uint64(len(input)))
	if !bytes.Equal(recovered, input) {
		t.Errorf("recovered mismatch: got %q, want %q", recovered, input)
	}
}

func TestReconstructAnySubset(t *testing.T) {
	const k, r, size = 4, 2, 8
	c, err := New(k, r, size)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	blob := make([]byte, k*size)
	for i := range blob {
		blob[i] = byte(i * 7)
	}
	data, err := Split(blob, k, size)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	recovery, err := c.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	all := append(append([][]byte{}, data...), recovery...)

	// Drop every pair of shards in turn; any k of k+r must suffice.
	for a := 0; a < k+r; a++ {
		for b := a + 1; b < k+r; b++ {
			present := make(map[uint32][]byte)
			for i, sh := range all {
				if i != a && i != b {
					present[uint32(i)] = sh
				}
			}
			got, err := c.Reconstruct(present)
			if err != nil {
				t.Fatalf("Reconstruct without %d,%d: %v", a, b, err)
			}
			if !bytes.Equal(Join(got, uint64(len(blob))), blob) {
				t.Errorf("mismatch without shards %d,%d", a, b)
			}
		}
	}
}

func TestReconstructInsufficient(t *testing.T) {
	c, err := New(3, 1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	present := map[uint32][]byte{
		0: make([]byte, 4),
		3: make([]byte, 4),
	}
	if _, err := c.Reconstruct(present); !errors.Is(err, ErrInsufficient) {
		t.Errorf("expected ErrInsufficient, got %v", err)
	}
}

func TestReconstructIndexOutOfRange(t *testing.T) {
	c, err := New(2, 1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	present := map[uint32][]byte{
		0: make([]byte, 4),
		1: make([]byte, 4),
		7: make([]byte, 4),
	}
	if _, err := c.Reconstruct(present); !errors.Is(err, ErrIndexOutOfRange) {
		t.Errorf("expected ErrIndexOutOfRange, got %v", err)
	}
}

func TestShardSizeMismatch(t *testing.T) {
	c, err := New(2, 1, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	present := map[uint32][]byte{
		0: make([]byte, 4),
		1: make([]byte, 3),
	}
	if _, err := c.Reconstruct(present); !errors.Is(err, ErrShardSizeMismatch) {
		t.Errorf("expected ErrShardSizeMismatch, got %v", err)
	}
	if _, err := c.Encode([][]byte{make([]byte, 4), make([]byte, 5)}); !errors.Is(err, ErrShardSizeMismatch) {
		t.Errorf("expected ErrShardSizeMismatch from Encode, got %v", err)
	}
}

func TestZeroRecoveryShards(t *testing.T) {
	c, err := New(2, 0, 4)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	data := [][]byte{{1, 2, 3, 4}, {5, 6, 0, 0}}
	recovery, err := c.Encode(data)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if len(recovery) != 0 {
		t.Fatalf("expected no recovery shards, got %d", len(recovery))
	}
	got, err := c.Reconstruct(map[uint32][]byte{0: data[0], 1: data[1]})
	if err != nil {
		t.Fatalf("Reconstruct: %v", err)
	}
	if !bytes.Equal(Join(got, 6), []byte{1, 2, 3, 4, 5, 6}) {
		t.Errorf("round trip mismatch with r=0")
	}
}
