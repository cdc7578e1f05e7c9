package main

import (
	"github.com/jeongseonghan/nr-downlink/internal/protocol"
	"github.com/jeongseonghan/nr-downlink/internal/render"
)

type demoUser struct {
	spec    protocol.UserSpec
	message string
}

// demoUsers exercises every control modulation and both codings.
func demoUsers() []demoUser {
	users := []demoUser{
		{
			spec: protocol.UserSpec{
				Ident: 1, HARQ: 0,
				ControlMCS: 0, ControlSymbStart: 4, ControlRBStart: 1,
				MCS: 25, SymbStart: 5, RBStart: 1, RBSize: 12, CRCFlag: 0,
			},
			message: "downlink",
		},
		{
			spec: protocol.UserSpec{
				Ident: 2, HARQ: 3,
				ControlMCS: 1, ControlSymbStart: 4, ControlRBStart: 7,
				MCS: 26, SymbStart: 6, RBStart: 1, RBSize: 6, CRCFlag: 1,
			},
			message: "decoded",
		},
		{
			spec: protocol.UserSpec{
				Ident: 3, HARQ: 7,
				ControlMCS: 2, ControlSymbStart: 4, ControlRBStart: 13,
				MCS: 7, SymbStart: 7, RBStart: 1, RBSize: 2, CRCFlag: 0,
			},
			message: "5G!!",
		},
	}
	for i := range users {
		users[i].spec.Data = render.Bits(users[i].message, users[i].spec.Ident)
	}
	return users
}

func demoSpec() protocol.FrameSpec {
	spec := protocol.FrameSpec{CellIdent: 1}
	for _, u := range demoUsers() {
		spec.Users = append(spec.Users, u.spec)
	}
	return spec
}
