package grid

// Frame geometry.
const (
	Width    = 624 // allocated subcarriers per OFDM symbol
	Rows     = 12  // OFDM symbols per frame
	SyncRows = 2   // leading symbols reserved for synchronisation
	RBSize   = 12  // subcarriers per resource block

	// FFTSize is the column count of a full-band matrix before the unused
	// subcarriers are trimmed.
	FFTSize = 1024
)

// Flatten converts a (row, col) position into a row-major index.
func Flatten(row, col, width int) int {
	return width*row + col
}

// Unflatten converts a row-major index back into (row, col).
func Unflatten(index, width int) (row, col int) {
	return index / width, index % width
}

// ResourceOffset returns the stream index where an allocation starting at
// OFDM symbol symbStart and resource block rbStart begins. Both are counted
// from the frame start with symbols offset by the sync rows plus one and
// resource blocks starting at 1.
func ResourceOffset(symbStart, rbStart int) int {
	return Flatten(symbStart-3, (rbStart-1)*RBSize, Width)
}
