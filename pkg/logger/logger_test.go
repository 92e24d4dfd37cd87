package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"testing"
	"time"
)

func TestLoggerInit(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatalf("failed to initialize logger: %v", err)
	}
	defer func() {
		if err := Sync(); err != nil {
			t.Errorf("failed to sync logger: %v", err)
		}
	}()

	if Get() == nil {
		t.Fatal("logger is nil after initialization")
	}
}

func TestInitWithFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	if err := InitWithFormat(FormatJSON, &buf); err != nil {
		t.Fatalf("failed to initialize json logger: %v", err)
	}

	Get().Info(context.Background(), "sale recorded", String("designer_id", "d-1"), Float64("payout", 65))

	var line map[string]any
	if err := json.Unmarshal(buf.Bytes(), &line); err != nil {
		t.Fatalf("output is not json: %v (%q)", err, buf.String())
	}
	if line["msg"] != "sale recorded" {
		t.Errorf("msg = %v, want %q", line["msg"], "sale recorded")
	}
	if line["designer_id"] != "d-1" {
		t.Errorf("designer_id = %v, want d-1", line["designer_id"])
	}
	if src, _ := line["source"].(string); !strings.Contains(src, "logger_test.go") {
		t.Errorf("source = %q, want it to point at the caller", src)
	}
}

func TestInitWithFormat_Unknown(t *testing.T) {
	if err := InitWithFormat("xml", &bytes.Buffer{}); err == nil {
		t.Fatal("expected error for unknown format")
	}
}

func TestLoggerNamedAndWith(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, nil)))

	l.Named("scheduler").With(String("project_id", "p-9")).Warn(context.Background(), "stale status", Error(errors.New("boom")))

	out := buf.String()
	for _, want := range []string{"component=scheduler", "project_id=p-9", "error=boom", "stale status"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestFieldTypes(t *testing.T) {
	var buf bytes.Buffer
	l := New(slog.New(slog.NewTextHandler(&buf, nil)))

	l.Info(context.Background(), "sweep finished",
		Int64("style_credits", 1500),
		Bool("founder", true),
		Duration("took", 1500*time.Millisecond),
		Time("deadline", time.Date(2026, 4, 3, 8, 0, 0, 0, time.UTC)),
	)

	out := buf.String()
	for _, want := range []string{"style_credits=1500", "founder=true", "took=1.5s", "deadline=2026-04-03T08:00:00"} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q missing %q", out, want)
		}
	}
}

func TestSetLevelString(t *testing.T) {
	if err := Init(); err != nil {
		t.Fatal(err)
	}
	for _, lvl := range []string{"debug", "info", "", "WARN", "warning", "error"} {
		if err := SetLevelString(lvl); err != nil {
			t.Errorf("SetLevelString(%q) error: %v", lvl, err)
		}
	}
	if err := SetLevelString("loud"); err == nil {
		t.Error("expected error for unknown level")
	}
	_ = SetLevelString("info")
}
