package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestSessionHandlerStampsRecords(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(newSessionHandler(slog.NewJSONHandler(&buf, nil), "session-abc")).With("extra", "value")
	logger.Info("test message")

	output := buf.String()
	if !strings.Contains(output, `"session_id":"session-abc"`) {
		t.Errorf("expected session_id in output, got: %s", output)
	}
	if !strings.Contains(output, `"extra":"value"`) {
		t.Errorf("expected extra attr in output, got: %s", output)
	}
}

func TestSessionHandlerPassthrough(t *testing.T) {
	if _, ok := newSessionHandler(nil, "session-123").(NoopHandler); !ok {
		t.Error("expected NoopHandler when base is nil")
	}
	base := slog.NewJSONHandler(&bytes.Buffer{}, nil)
	if newSessionHandler(base, "") != base {
		t.Error("expected base handler when session id is empty")
	}
}

func TestFanoutHandlerRespectsPerHandlerLevel(t *testing.T) {
	var debugBuf, warnBuf bytes.Buffer
	debug := slog.NewTextHandler(&debugBuf, &slog.HandlerOptions{Level: slog.LevelDebug})
	warn := slog.NewTextHandler(&warnBuf, &slog.HandlerOptions{Level: slog.LevelWarn})
	logger := slog.New(newFanoutHandler(debug, nil, warn))

	logger.Info("info only")
	if !strings.Contains(debugBuf.String(), "info only") {
		t.Fatalf("expected debug handler to receive info record")
	}
	if warnBuf.Len() != 0 {
		t.Fatalf("expected warn handler to skip info record, got %q", warnBuf.String())
	}
}
