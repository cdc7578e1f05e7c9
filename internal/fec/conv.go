package fec

import (
	"errors"
	"fmt"
	"math/bits"
)

// ErrUnsupportedCodingRate is returned for convolutional code rates other
// than 1/2.
var ErrUnsupportedCodingRate = errors.New("unsupported coding rate")

// CodeRate identifies a convolutional code rate.
type CodeRate int

const (
	RateHalf CodeRate = iota + 1
)

// String returns the rate as a fraction.
func (r CodeRate) String() string {
	switch r {
	case RateHalf:
		return "1/2"
	default:
		return fmt.Sprintf("Unknown(%d)", int(r))
	}
}

// Rate 1/2, K=7 code. Generator bit 6 taps the current input, bit 0 the
// oldest memory bit.
const (
	ConvConstraint = 7
	ConvMemory     = ConvConstraint - 1
	ConvStates     = 1 << ConvMemory

	ConvG0 = 0b1011011
	ConvG1 = 0b1111001
)

// convOutput returns the two coded bits for input bit b entering state s.
func convOutput(s int, b byte) (byte, byte) {
	reg := int(b&1)<<ConvMemory | s
	return byte(bits.OnesCount(uint(reg&ConvG0)) & 1),
		byte(bits.OnesCount(uint(reg&ConvG1)) & 1)
}

func convNext(s int, b byte) int {
	return (int(b&1)<<ConvMemory | s) >> 1
}

// EncodeConvolutional encodes bits at rate 1/2 and terminates the trellis
// with ConvMemory zero bits, so the output has 2*(len(bits)+ConvMemory) bits.
func EncodeConvolutional(in []byte) []byte {
	out := make([]byte, 0, 2*(len(in)+ConvMemory))
	state := 0
	emit := func(b byte) {
		o0, o1 := convOutput(state, b)
		out = append(out, o0, o1)
		state = convNext(state, b)
	}
	for _, b := range in {
		emit(b)
	}
	for i := 0; i < ConvMemory; i++ {
		emit(0)
	}
	return out
}

// DecodeConvolutional decodes a zero-tail terminated convolutional block.
func DecodeConvolutional(in []byte, rate CodeRate) ([]byte, error) {
	if rate != RateHalf {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedCodingRate, rate)
	}
	v := NewViterbi()
	return v.Decode(in)
}

// Viterbi is a hard-decision Viterbi decoder for the rate 1/2, K=7 code.
// A Viterbi value is not safe for concurrent use; create one per decode.
type Viterbi struct {
	prevMetrics []int
	currMetrics []int
	history     [][]uint8 // per step, surviving predecessor input bit of each state
}

// NewViterbi creates a decoder.
func NewViterbi() *Viterbi {
	return &Viterbi{
		prevMetrics: make([]int, ConvStates),
		currMetrics: make([]int, ConvStates),
	}
}

const unreachable = 1 << 30

// Decode runs the trellis over pairs of coded bits, traces back from the
// all-zero state and strips the ConvMemory tail bits.
func (v *Viterbi) Decode(in []byte) ([]byte, error) {
	if len(in)%2 != 0 {
		return nil, fmt.Errorf("%w: %d coded bits is odd", ErrInvalidLength, len(in))
	}
	steps := len(in) / 2
	if steps < ConvMemory {
		return nil, fmt.Errorf("%w: %d coded bits is shorter than the %d-bit tail", ErrInvalidLength, len(in), 2*ConvMemory)
	}

	for s := range v.prevMetrics {
		v.prevMetrics[s] = unreachable
	}
	v.prevMetrics[0] = 0
	v.history = make([][]uint8, steps)

	for t := 0; t < steps; t++ {
		v.step(in[2*t]&1, in[2*t+1]&1, t)
	}

	decoded := v.chainback(steps)
	return decoded[:steps-ConvMemory], nil
}

// step is one add-compare-select pass. Each next state n has two
// predecessors differing in their oldest memory bit.
func (v *Viterbi) step(r0, r1 byte, t int) {
	hist := make([]uint8, ConvStates)
	for n := 0; n < ConvStates; n++ {
		b := byte(n >> (ConvMemory - 1))
		base := (n << 1) & (ConvStates - 1)

		best := unreachable
		var choice uint8
		for low := 0; low < 2; low++ {
			p := base | low
			if v.prevMetrics[p] >= unreachable {
				continue
			}
			o0, o1 := convOutput(p, b)
			m := v.prevMetrics[p] + int(o0^r0) + int(o1^r1)
			if m < best {
				best = m
				choice = uint8(low)
			}
		}
		v.currMetrics[n] = best
		hist[n] = choice
	}
	v.history[t] = hist
	v.prevMetrics, v.currMetrics = v.currMetrics, v.prevMetrics
}

func (v *Viterbi) chainback(steps int) []byte {
	out := make([]byte, steps)
	state := 0
	for t := steps - 1; t >= 0; t-- {
		out[t] = byte(state >> (ConvMemory - 1))
		state = ((state << 1) & (ConvStates - 1)) | int(v.history[t][state])
	}
	return out
}

// Metric returns the path metric of the all-zero end state after Decode,
// i.e. the number of coded bits that disagreed with the decoded path.
func (v *Viterbi) Metric() int {
	return v.prevMetrics[0]
}
