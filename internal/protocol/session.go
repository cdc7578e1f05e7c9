package protocol

import (
	"context"
	"log"

	"golang.org/x/sync/errgroup"

	"github.com/jeongseonghan/nr-downlink/internal/grid"
)

// DecodeState is the last pipeline stage a user decode reached.
type DecodeState int

const (
	StateInitial DecodeState = iota
	StateHeaderDecoded
	StateUserLocated
	StateGrantDecoded
	StatePayloadValidated
)

// String returns the state name.
func (s DecodeState) String() string {
	switch s {
	case StateInitial:
		return "initial"
	case StateHeaderDecoded:
		return "header_decoded"
	case StateUserLocated:
		return "user_located"
	case StateGrantDecoded:
		return "grant_decoded"
	case StatePayloadValidated:
		return "payload_validated"
	default:
		return "unknown"
	}
}

// UserResult is the outcome of decoding one user. Slot is the PBCH
// descriptor slot, -1 when a lookup by identity located no slot. UserIdent is -1 when the descriptor itself could not be decoded.
type UserResult struct {
	Slot       int
	UserIdent  int
	State      DecodeState
	Descriptor UserDescriptor
	Grant      Grant
	Payload    Payload
	Err        error
}

// OK reports whether the payload was validated.
func (r UserResult) OK() bool {
	return r.Err == nil && r.State == StatePayloadValidated
}

// Session decodes the users of one frame. The stream and header are fixed
// at construction; every decode method is safe for concurrent use.
type Session struct {
	stream   grid.Stream
	header   Header
	workers  int
	onResult func(UserResult)
}

// Option configures a Session.
type Option func(*Session)

// WithWorkers bounds the number of users DecodeAll decodes at once.
func WithWorkers(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.workers = n
		}
	}
}

// WithResultHandler registers fn to receive every DecodeAll result as soon
// as it is ready. fn may be called from several goroutines.
func WithResultHandler(fn func(UserResult)) Option {
	return func(s *Session) {
		s.onResult = fn
	}
}

// NewSession decodes the PBCH header of g.
func NewSession(g *grid.Grid, opts ...Option) (*Session, error) {
	s := &Session{
		stream:  g.Stream(),
		workers: 4,
	}
	for _, opt := range opts {
		opt(s)
	}

	h, err := DecodeHeader(s.stream)
	if err != nil {
		return nil, err
	}
	s.header = h
	log.Printf("[DEBUG] PBCH header: cell %d, %d users", h.CellIdent, h.UserCount)
	return s, nil
}

// Header returns the decoded PBCH header.
func (s *Session) Header() Header {
	return s.header
}

// Users returns every PBCH user descriptor.
func (s *Session) Users() ([]UserDescriptor, error) {
	return DecodeUserDescriptors(s.stream, s.header)
}

// DecodeUser runs the pipeline for ident. The returned error is also
// stored in the result.
func (s *Session) DecodeUser(ident int) (UserResult, error) {
	d, err := FindUser(s.stream, s.header.UserCount, ident)
	if err != nil {
		r := UserResult{Slot: -1, UserIdent: ident, State: StateHeaderDecoded, Err: err}
		return r, err
	}
	r := s.decodeDescriptor(d)
	return r, r.Err
}

func (s *Session) decodeDescriptor(d UserDescriptor) UserResult {
	r := UserResult{
		Slot:       d.Index,
		UserIdent:  d.UserIdent,
		State:      StateUserLocated,
		Descriptor: d,
	}

	g, err := DecodeGrant(s.stream, d)
	if err != nil {
		r.Err = err
		log.Printf("[WARN] user %d: %v", d.UserIdent, err)
		return r
	}
	r.State = StateGrantDecoded
	r.Grant = g
	log.Printf("[DEBUG] user %d grant: mcs %d symb %d rb %d size %d crc %d",
		g.UserIdent, g.MCS, g.SymbStart, g.RBStart, g.RBSize, g.CRCWidth())

	p, err := DecodePayload(s.stream, g)
	if err != nil {
		r.Err = err
		log.Printf("[WARN] user %d: %v", d.UserIdent, err)
		return r
	}
	r.State = StatePayloadValidated
	r.Payload = p
	return r
}

// DecodeAll decodes every PBCH slot in order. Each slot decodes its own
// descriptor, so a failing slot never stops the others. When ctx is
// cancelled, slots not yet started carry ctx.Err().
func (s *Session) DecodeAll(ctx context.Context) ([]UserResult, error) {
	results := make([]UserResult, s.header.UserCount)
	g := new(errgroup.Group)
	g.SetLimit(s.workers)

	for i := range results {
		if err := ctx.Err(); err != nil {
			results[i] = cancelled(i, err)
			continue
		}
		i := i
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				results[i] = cancelled(i, err)
				return nil
			}
			results[i] = s.decodeSlot(i)
			if s.onResult != nil {
				s.onResult(results[i])
			}
			return nil
		})
	}
	_ = g.Wait()

	return results, ctx.Err()
}

func (s *Session) decodeSlot(slot int) UserResult {
	d, err := DecodeUserDescriptor(s.stream, slot)
	if err != nil {
		log.Printf("[WARN] %v", err)
		return UserResult{Slot: slot, UserIdent: -1, State: StateHeaderDecoded, Err: err}
	}
	return s.decodeDescriptor(d)
}

func cancelled(slot int, err error) UserResult {
	return UserResult{Slot: slot, UserIdent: -1, State: StateHeaderDecoded, Err: err}
}
