// Copyright (C) 2024 Movielab.
// See LICENSE for copying information.

package etl

// SplitBatches partitions docs into groups of at most size, preserving
// order. It never emits an empty group.
func SplitBatches(docs []Document, size int) [][]Document {
	if len(docs) == 0 || size <= 0 {
		return nil
	}
	batches := make([][]Document, 0, (len(docs)+size-1)/size)
	for start := 0; start < len(docs); start += size {
		end := start + size
		if end > len(docs) {
			end = len(docs)
		}
		batches = append(batches, docs[start:end])
	}
	return batches
}
