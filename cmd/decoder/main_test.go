package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/jeongseonghan/nr-downlink/internal/render"
)

type failingWriter struct{}

func (failingWriter) Write(p []byte) (int, error) {
	return 0, errors.New("broken pipe")
}

func TestWriteJSONReport(t *testing.T) {
	rep := render.FrameReport{CellIdent: 5, UserCount: 1, Users: []render.UserReport{{Slot: 0, UserIdent: 3}}}

	var buf bytes.Buffer
	if err := writeJSONReport(&buf, rep); err != nil {
		t.Fatalf("writeJSONReport error: %v", err)
	}
	var got render.FrameReport
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	if got.CellIdent != 5 || len(got.Users) != 1 || got.Users[0].UserIdent != 3 {
		t.Errorf("report %+v", got)
	}

	if err := writeJSONReport(failingWriter{}, rep); err == nil {
		t.Error("expected error from a failing writer")
	}
}

func TestUserLabel(t *testing.T) {
	tests := []struct {
		u    render.UserReport
		want string
	}{
		{render.UserReport{Slot: 1, UserIdent: 42}, "user  42"},
		{render.UserReport{Slot: 1, UserIdent: -1}, "slot   1"},
	}
	for _, tt := range tests {
		if got := userLabel(tt.u); got != tt.want {
			t.Errorf("userLabel(%+v) = %q, want %q", tt.u, got, tt.want)
		}
	}
}
