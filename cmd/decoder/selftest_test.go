package main

import "testing"

func TestSelfTest(t *testing.T) {
	if failed := runSelfTest(2); failed != 0 {
		t.Errorf("%d self-test checks failed", failed)
	}
}
