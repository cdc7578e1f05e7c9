package protocol

import (
	"fmt"

	"github.com/jeongseonghan/nr-downlink/internal/bitutil"
	"github.com/jeongseonghan/nr-downlink/internal/fec"
	"github.com/jeongseonghan/nr-downlink/internal/grid"
	"github.com/jeongseonghan/nr-downlink/internal/modem"
)

// UserSpec describes one user of a synthetic frame.
type UserSpec struct {
	Ident int
	HARQ  int

	// PDCCHU placement and modulation (descriptor mcs 0-2).
	ControlMCS       int
	ControlSymbStart int
	ControlRBStart   int

	// PDSCH placement and format.
	MCS       int
	SymbStart int
	RBStart   int
	RBSize    int
	CRCFlag   int

	// Data is zero-padded to the allocation.
	Data []byte
}

// FrameSpec describes a synthetic frame.
type FrameSpec struct {
	CellIdent int
	Users     []UserSpec
}

type frameBuilder struct {
	g    *grid.Grid
	used []bool
}

// BuildFrame encodes spec into a resource-element grid that DecodeAll
// decodes back to spec.
func BuildFrame(spec FrameSpec) (*grid.Grid, error) {
	b := &frameBuilder{
		g:    grid.New(),
		used: make([]bool, (grid.Rows-grid.SyncRows)*grid.Width),
	}
	b.fillSync()

	header := append(bitutil.FromUint(uint64(spec.CellIdent), 18), bitutil.FromUint(uint64(len(spec.Users)), 6)...)
	if err := b.placeControl(0, header, modem.ModBPSK, PBCHBlockSamples); err != nil {
		return nil, fmt.Errorf("PBCH header: %w", err)
	}

	for u, us := range spec.Users {
		desc := bitutil.FromUint(uint64(us.Ident), 8)
		desc = append(desc, bitutil.FromUint(uint64(us.ControlMCS), 2)...)
		desc = append(desc, bitutil.FromUint(uint64(us.ControlSymbStart), 4)...)
		desc = append(desc, bitutil.FromUint(uint64(us.ControlRBStart), 6)...)
		desc = append(desc, bitutil.FromUint(uint64(us.HARQ), 4)...)
		if err := b.placeControl((u+1)*PBCHBlockSamples, desc, modem.ModBPSK, PBCHBlockSamples); err != nil {
			return nil, fmt.Errorf("PBCH user %d: %w", us.Ident, err)
		}
	}

	for _, us := range spec.Users {
		if err := b.placeGrant(us); err != nil {
			return nil, fmt.Errorf("PDCCHU user %d: %w", us.Ident, err)
		}
		if err := b.placePayload(us); err != nil {
			return nil, fmt.Errorf("PDSCH user %d: %w", us.Ident, err)
		}
	}
	return b.g, nil
}

// fillSync puts an alternating BPSK pattern on the sync symbols.
func (b *frameBuilder) fillSync() {
	for i := 0; i < grid.SyncRows; i++ {
		for j := 0; j < grid.Width; j++ {
			v := complex(1, 0)
			if (i+j)%2 == 1 {
				v = -v
			}
			b.g.Set(i, j, v)
		}
	}
}

func (b *frameBuilder) place(offset int, samples []complex128) error {
	if offset < 0 || offset+len(samples) > len(b.used) {
		return fmt.Errorf("%w: [%d, %d)", grid.ErrOutOfRange, offset, offset+len(samples))
	}
	for k := range samples {
		if b.used[offset+k] {
			return fmt.Errorf("%w at stream index %d", ErrOverlap, offset+k)
		}
	}
	for k := range samples {
		b.used[offset+k] = true
	}
	return b.g.WriteStream(offset, samples)
}

// placeControl Hamming-encodes fields padded with zeros to the capacity of
// n samples of mod.
func (b *frameBuilder) placeControl(offset int, fields []byte, mod modem.Modulation, n int) error {
	capacity := n * mod.BitsPerSymbol() / 2
	if len(fields) > capacity {
		return fmt.Errorf("%w: %d bits in %d", ErrPayloadTooLarge, len(fields), capacity)
	}
	data := make([]byte, capacity)
	copy(data, fields)

	coded, err := fec.EncodeHamming748(data)
	if err != nil {
		return err
	}
	samples, err := modem.Modulate(coded, mod)
	if err != nil {
		return err
	}
	return b.place(offset, samples)
}

func (b *frameBuilder) placeGrant(us UserSpec) error {
	mod, err := ControlModulation(us.ControlMCS)
	if err != nil {
		return err
	}
	fields := bitutil.FromUint(uint64(us.Ident), 8)
	fields = append(fields, bitutil.FromUint(uint64(us.MCS), 6)...)
	fields = append(fields, bitutil.FromUint(uint64(us.SymbStart), 4)...)
	fields = append(fields, bitutil.FromUint(uint64(us.RBStart), 6)...)
	fields = append(fields, bitutil.FromUint(uint64(us.RBSize), 10)...)
	fields = append(fields, bitutil.FromUint(uint64(us.CRCFlag), 2)...)

	offset := grid.ResourceOffset(us.ControlSymbStart, us.ControlRBStart)
	return b.placeControl(offset, fields, mod, GrantSamples(us.ControlMCS))
}

func (b *frameBuilder) placePayload(us UserSpec) error {
	m, err := ParseMCS(us.MCS)
	if err != nil {
		return err
	}
	total, err := m.DataBits(us.RBSize)
	if err != nil {
		return err
	}
	width := 8 * (us.CRCFlag + 1)
	if len(us.Data) > total-width {
		return fmt.Errorf("%w: %d data bits, room for %d", ErrPayloadTooLarge, len(us.Data), total-width)
	}

	data := make([]byte, total-width)
	copy(data, us.Data)
	withCRC, err := fec.AppendCRC(data, width)
	if err != nil {
		return err
	}
	coded, err := m.encode(withCRC)
	if err != nil {
		return err
	}
	samples, err := modem.Modulate(coded, m.Modulation)
	if err != nil {
		return err
	}
	return b.place(grid.ResourceOffset(us.SymbStart, us.RBStart), samples)
}
