package prompt

import (
	"bytes"
	"strings"
	"testing"
)

func TestConfirmDefaultsToYes(t *testing.T) {
	p := New(strings.NewReader("\n"), &bytes.Buffer{}, true)
	if !p.Confirm("Proceed?") {
		t.Fatalf("empty answer should mean yes")
	}
}

func TestConfirmNo(t *testing.T) {
	p := New(strings.NewReader("n\n"), &bytes.Buffer{}, true)
	if p.Confirm("Proceed?") {
		t.Fatalf("expected no")
	}
}

func TestConfirmEOFMeansNo(t *testing.T) {
	p := New(strings.NewReader(""), &bytes.Buffer{}, true)
	if p.Confirm("Proceed?") {
		t.Fatalf("expected no on closed input")
	}
}

func TestPressEnterDisabledDoesNotBlock(t *testing.T) {
	var out bytes.Buffer
	p := New(strings.NewReader(""), &out, false)
	p.PressEnter("checkpoint")
	if out.Len() != 0 {
		t.Fatalf("disabled pacing should write nothing, got %q", out.String())
	}
}
