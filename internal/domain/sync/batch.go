package sync

// DefaultBatchSize is a conservative batch size that keeps composite OR
// queries under remote query-length limits.
const DefaultBatchSize = 50

// SplitBatches splits skus into ordered groups of at most size elements.
// The concatenation of the result equals the input; no element is duplicated
// or dropped. A size below 1 falls back to DefaultBatchSize.
func SplitBatches(skus []string, size int) [][]string {
	if size < 1 {
		size = DefaultBatchSize
	}
	if len(skus) == 0 {
		return nil
	}

	batches := make([][]string, 0, (len(skus)+size-1)/size)
	for start := 0; start < len(skus); start += size {
		end := start + size
		if end > len(skus) {
			end = len(skus)
		}
		batches = append(batches, skus[start:end])
	}
	return batches
}
