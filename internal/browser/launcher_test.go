package browser

import (
	"net"
	"strconv"
	"strings"
	"testing"
)

func TestNewLauncherDefaultWindowSize(t *testing.T) {
	l := NewLauncher(Config{CDPAddress: "127.0.0.1", CDPPort: 9222})
	if l.cfg.WindowSize != "1280,720" {
		t.Fatalf("WindowSize = %q; want default", l.cfg.WindowSize)
	}
}

func TestCDPURL(t *testing.T) {
	l := NewLauncher(Config{CDPAddress: "127.0.0.1", CDPPort: 9321})
	if got := l.CDPURL(); got != "http://127.0.0.1:9321" {
		t.Fatalf("CDPURL() = %q", got)
	}
}

func TestIsPortInUse(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer func() { _ = ln.Close() }()

	_, portStr, err := net.SplitHostPort(ln.Addr().String())
	if err != nil {
		t.Fatalf("split addr: %v", err)
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		t.Fatalf("parse port: %v", err)
	}

	if !isPortInUse("127.0.0.1", port) {
		t.Fatal("listening port reported as free")
	}

	_ = ln.Close()
	if isPortInUse("127.0.0.1", port) {
		t.Fatal("closed port reported as in use")
	}
}

func TestDetectBrowserErrorNamesCandidates(t *testing.T) {
	t.Setenv("PATH", t.TempDir())

	if _, err := detectBrowser(); err != nil {
		if !strings.Contains(err.Error(), "chromium") {
			t.Fatalf("error = %v; want candidate names", err)
		}
	}
	// A present system browser makes detection succeed; both outcomes are fine
	// on macOS where an absolute path is probed.
}
