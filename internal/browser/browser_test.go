package browser

import (
	"net"
	"strconv"
	"strings"
	"testing"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
)

func TestParseWindowSize(t *testing.T) {
	tests := []struct {
		in      string
		w, h    int
		wantErr bool
	}{
		{"1920,1080", 1920, 1080, false},
		{"1280x800", 1280, 800, false},
		{" 800 , 600 ", 800, 600, false},
		{"1920", 0, 0, true},
		{"0,600", 0, 0, true},
		{"wide,tall", 0, 0, true},
	}
	for _, tt := range tests {
		w, h, err := ParseWindowSize(tt.in)
		if tt.wantErr {
			if !page.HasCode(err, page.CodeValidation) {
				t.Fatalf("ParseWindowSize(%q) error = %v; want %s", tt.in, err, page.CodeValidation)
			}
			continue
		}
		if err != nil {
			t.Fatalf("ParseWindowSize(%q) error = %v", tt.in, err)
		}
		if w != tt.w || h != tt.h {
			t.Fatalf("ParseWindowSize(%q) = %d,%d; want %d,%d", tt.in, w, h, tt.w, tt.h)
		}
	}
}

func TestDecodeEnvelope(t *testing.T) {
	loc := page.CSS("#colophon a")

	var href string
	if err := decodeEnvelope(`{"ok":true,"data":"https://www.mozilla.org/en-US/"}`, loc, &href); err != nil {
		t.Fatalf("decodeEnvelope() error = %v", err)
	}
	if href != "https://www.mozilla.org/en-US/" {
		t.Fatalf("href = %q", href)
	}

	err := decodeEnvelope(`{"ok":false,"error_code":"ELEMENT_NOT_FOUND","error_message":"no visible element"}`, loc, &href)
	if !page.HasCode(err, page.CodeElementNotFound) {
		t.Fatalf("decodeEnvelope() error = %v; want %s", err, page.CodeElementNotFound)
	}
	if !strings.Contains(err.Error(), "css=#colophon a") {
		t.Fatalf("error %q does not name the locator", err)
	}

	err = decodeEnvelope(`{"ok":false,"error_code":"EVAL_FAILURE","error_message":"boom"}`, loc, nil)
	if !page.HasCode(err, page.CodeSessionUnavailable) {
		t.Fatalf("decodeEnvelope() error = %v; want %s", err, page.CodeSessionUnavailable)
	}

	if err := decodeEnvelope(`not json`, loc, nil); !page.HasCode(err, page.CodeSessionUnavailable) {
		t.Fatalf("decodeEnvelope(garbage) error = %v", err)
	}
}

func TestScriptsEmbedLocatorAsJSON(t *testing.T) {
	loc := page.CSS(`a[href*="wiki"]`)
	for name, js := range map[string]string{
		"visible": jsIsVisible(loc),
		"resolve": jsResolve(loc),
		"click":   jsClick(loc),
	} {
		if !strings.Contains(js, `"css", "a[href*=\"wiki\"]"`) {
			t.Fatalf("%s script does not quote the locator: %s", name, js)
		}
		if !strings.HasPrefix(js, "(function(){") || !strings.HasSuffix(js, "})()") {
			t.Fatalf("%s script is not an IIFE", name)
		}
	}
}

func TestLauncherCDPURLAndPortProbe(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer ln.Close()
	port := ln.Addr().(*net.TCPAddr).Port

	l := NewLauncher(LaunchConfig{CDPAddress: "127.0.0.1", CDPPort: port})
	if got, want := l.CDPURL(), "http://127.0.0.1:"+strconv.Itoa(port); got != want {
		t.Fatalf("CDPURL() = %q; want %q", got, want)
	}
	if !isPortInUse("127.0.0.1", port) {
		t.Fatal("isPortInUse() = false for a listening port")
	}
	if l.Running() {
		t.Fatal("Running() = true before Launch")
	}
}
