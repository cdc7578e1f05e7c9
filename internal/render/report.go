package render

import (
	"strings"

	"github.com/jeongseonghan/nr-downlink/internal/protocol"
)

// UserReport is the printable outcome of one user decode.
type UserReport struct {
	Slot      int    `json:"slot"`
	UserIdent int    `json:"user_ident"`
	State     string `json:"state"`
	OK        bool   `json:"ok"`
	Error     string `json:"error,omitempty"`
	MCS       string `json:"mcs,omitempty"`
	RBSize    int    `json:"rb_size,omitempty"`
	CRCWidth  int    `json:"crc_width,omitempty"`
	Bits      string `json:"bits,omitempty"`
	Text      string `json:"text,omitempty"`
}

// FrameReport is the printable outcome of one frame decode.
type FrameReport struct {
	Job       string       `json:"job,omitempty"`
	CellIdent int          `json:"cell_ident"`
	UserCount int          `json:"user_count"`
	Users     []UserReport `json:"users"`
}

// NewUserReport summarises r.
func NewUserReport(r protocol.UserResult) UserReport {
	rep := UserReport{
		Slot:      r.Slot,
		UserIdent: r.UserIdent,
		State:     r.State.String(),
		OK:        r.OK(),
	}
	if r.Err != nil {
		rep.Error = r.Err.Error()
	}
	if r.State >= protocol.StateGrantDecoded {
		rep.RBSize = r.Grant.RBSize
		rep.CRCWidth = r.Grant.CRCWidth()
	}
	if r.OK() {
		rep.MCS = r.Payload.MCS.String()
		rep.Bits = BitString(r.Payload.Bits)
		rep.Text = Text(r.Payload.Bits, r.UserIdent)
	}
	return rep
}

// NewFrameReport summarises a decoded frame.
func NewFrameReport(h protocol.Header, results []protocol.UserResult) FrameReport {
	rep := FrameReport{
		CellIdent: h.CellIdent,
		UserCount: h.UserCount,
		Users:     make([]UserReport, 0, len(results)),
	}
	for _, r := range results {
		rep.Users = append(rep.Users, NewUserReport(r))
	}
	return rep
}

// BitString renders bits as '0' and '1' characters.
func BitString(bits []byte) string {
	var sb strings.Builder
	sb.Grow(len(bits))
	for _, b := range bits {
		sb.WriteByte('0' + b&1)
	}
	return sb.String()
}
