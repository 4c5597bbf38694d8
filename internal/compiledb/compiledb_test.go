package compiledb

import "testing"

func TestBatchesSplitsIntoChunksOfSize(t *testing.T) {
	cmds := make([]Command, 35)
	for i := range cmds {
		cmds[i].Filename = string(rune('a' + i%26))
	}
	batches := Batches(cmds, 16)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches, got %d", len(batches))
	}
	if len(batches[0]) != 16 || len(batches[1]) != 16 || len(batches[2]) != 3 {
		t.Fatalf("unexpected batch sizes: %d %d %d", len(batches[0]), len(batches[1]), len(batches[2]))
	}
}

func TestBatchesEmptyInput(t *testing.T) {
	if batches := Batches(nil, 16); batches != nil {
		t.Fatalf("expected no batches for empty input, got %v", batches)
	}
}

func TestBatchesNonPositiveSizeDefaultsToOne(t *testing.T) {
	cmds := make([]Command, 3)
	batches := Batches(cmds, 0)
	if len(batches) != 3 {
		t.Fatalf("expected 3 batches of size 1, got %d", len(batches))
	}
}
