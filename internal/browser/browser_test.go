package browser

import (
	"bytes"
	"encoding/base64"
	"io"
	"log"
	"os/exec"
	"testing"
	"time"
)

func TestAliveReportsFalseAfterProcessExit(t *testing.T) {
	cmd := exec.Command("true")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start helper process: %v", err)
	}

	m := NewManager(Config{}, log.New(io.Discard, "", 0))
	m.adopt(cmd)

	deadline := time.Now().Add(2 * time.Second)
	for m.alive() {
		if time.Now().After(deadline) {
			t.Fatalf("alive() still true after the process exited")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestAliveReportsTrueWhileProcessRuns(t *testing.T) {
	cmd := exec.Command("sleep", "5")
	if err := cmd.Start(); err != nil {
		t.Skipf("cannot start helper process: %v", err)
	}
	t.Cleanup(func() { _ = cmd.Process.Kill() })

	m := NewManager(Config{}, log.New(io.Discard, "", 0))
	m.adopt(cmd)

	time.Sleep(50 * time.Millisecond)
	if !m.alive() {
		t.Fatalf("alive() = false for a running process")
	}
}

func TestDecodeBase64PlainPayload(t *testing.T) {
	want := []byte("png-bytes")
	decoded, err := decodeBase64(base64.StdEncoding.EncodeToString(want))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, want) {
		t.Fatalf("decoded = %q", decoded)
	}
}

func TestDecodeBase64DataURL(t *testing.T) {
	want := []byte{0x89, 0x50, 0x4e, 0x47}
	payload := "data:image/png;base64," + base64.StdEncoding.EncodeToString(want)
	decoded, err := decodeBase64(payload)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !bytes.Equal(decoded, want) {
		t.Fatalf("decoded = %v", decoded)
	}
}

func TestDecodeBase64RejectsBadDataURL(t *testing.T) {
	if _, err := decodeBase64("data:image/png;base64"); err == nil {
		t.Fatalf("expected error for data url without payload")
	}
}

func TestCheckpointURLDetection(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://www.facebook.com/checkpoint/?next", true},
		{"https://www.facebook.com/login/checkpoint/", true},
		{"https://www.facebook.com/two_factor/remember_browser/", true},
		{"https://www.facebook.com/checkpoint/save-device/", true},
		{"https://www.facebook.com/marketplace/create/vehicle", false},
		{"https://www.facebook.com/", false},
	}
	for _, tc := range cases {
		if got := checkpointURL.MatchString(tc.url); got != tc.want {
			t.Fatalf("checkpoint(%q) = %v, want %v", tc.url, got, tc.want)
		}
	}
}
