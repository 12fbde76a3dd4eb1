package logger

import (
	"bytes"
	"log"
	"strings"
	"testing"
)

func TestWithComponentTagsLines(t *testing.T) {
	var buf bytes.Buffer
	parent := New("debug")
	parent.logger = log.New(&buf, "", 0)

	child := parent.WithComponent("nats-alerts")
	child.Info("Subscribed", "subject", "alerts.events.>")

	line := buf.String()
	if !strings.Contains(line, "[nats-alerts]") {
		t.Fatalf("expected component tag in line: %q", line)
	}
	if !strings.Contains(line, "subject=alerts.events.>") {
		t.Fatalf("expected key/value pair in line: %q", line)
	}
}

func TestWithComponentDoesNotMutateParent(t *testing.T) {
	var buf bytes.Buffer
	parent := New("info")
	parent.logger = log.New(&buf, "", 0)

	child := parent.WithComponent("mqtt-ingest")
	if child.level != parent.level {
		t.Fatalf("derived logger must keep the parent level, got %v", child.level)
	}

	parent.Info("plain line")
	if strings.Contains(buf.String(), "mqtt-ingest") {
		t.Fatalf("parent line must not carry the component tag: %q", buf.String())
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := New("warn")
	l.logger = log.New(&buf, "", 0)

	l.Debug("hidden")
	l.Info("hidden")
	l.Warn("visible")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("lines below the configured level must be dropped: %q", out)
	}
	if !strings.Contains(out, "visible") {
		t.Fatalf("warn line must pass the filter: %q", out)
	}
}
