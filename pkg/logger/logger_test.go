package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevelFiltering(t *testing.T) {
	originalLogger := Logger
	t.Cleanup(func() {
		Logger = originalLogger
		SetLogLevel(INFO)
	})

	var buf bytes.Buffer
	Logger = slog.New(slog.NewTextHandler(&buf, nil))

	SetLogLevel(INFO)
	Debug("debug message should be filtered")
	Info("info message should appear")
	Warn("provider fell back to mock")

	output := buf.String()
	if strings.Contains(output, "debug message should be filtered") {
		t.Fatalf("debug message was logged at INFO level:\n%s", output)
	}
	if !strings.Contains(output, "info message should appear") {
		t.Fatalf("info message was not logged:\n%s", output)
	}
	if !strings.Contains(output, "provider fell back to mock") {
		t.Fatalf("warn message was not logged:\n%s", output)
	}

	buf.Reset()
	SetLogLevel(ERROR)
	Warn("warn filtered at error level")
	if buf.Len() != 0 {
		t.Fatalf("warn message was logged at ERROR level:\n%s", buf.String())
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := map[string]LogLevel{
		"debug":   DEBUG,
		" INFO ":  INFO,
		"warning": WARN,
		"error":   ERROR,
	}
	for input, want := range cases {
		got, err := ParseLogLevel(input)
		if err != nil {
			t.Fatalf("ParseLogLevel(%q) returned error: %v", input, err)
		}
		if got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
	if _, err := ParseLogLevel("loud"); err == nil {
		t.Fatal("expected error for unknown level")
	}
}
