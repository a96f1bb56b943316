package main

import (
	"bytes"
	"flag"
	"log/slog"
	"strings"
	"testing"

	"github.com/erazemk/toolshed/internal/config"
	"github.com/erazemk/toolshed/internal/forms"
)

func TestLevelRouter(t *testing.T) {
	var out, errOut bytes.Buffer
	logger := slog.New(&levelRouter{
		min:    slog.LevelInfo,
		stdout: slog.NewTextHandler(&out, nil),
		stderr: slog.NewTextHandler(&errOut, nil),
	})

	logger.Debug("hidden")
	logger.Info("reloaded", "reservations", 2)
	logger.Warn("skipped")
	logger.With("tool_id", 3).Error("reserve failed")

	if strings.Contains(out.String(), "hidden") {
		t.Error("debug record should be dropped at info level")
	}
	if !strings.Contains(out.String(), "reloaded") || !strings.Contains(out.String(), "skipped") {
		t.Errorf("info and warn should go to stdout, got %q", out.String())
	}
	if strings.Contains(out.String(), "reserve failed") {
		t.Error("error record leaked to stdout")
	}
	if !strings.Contains(errOut.String(), "tool_id=3") {
		t.Errorf("error should go to stderr with attrs, got %q", errOut.String())
	}
}

func TestArgID(t *testing.T) {
	if id, err := argID([]string{"42"}, "tool"); err != nil || id != 42 {
		t.Errorf("argID(42) = %d, %v", id, err)
	}
	for _, args := range [][]string{nil, {"0"}, {"-1"}, {"drill"}} {
		if _, err := argID(args, "tool"); err == nil {
			t.Errorf("argID(%v): expected error", args)
		}
	}
}

func TestReturnFlagsCoverEveryField(t *testing.T) {
	returnForm, returnDetailed = forms.ReturnForm{}, false
	t.Cleanup(func() { returnForm, returnDetailed = forms.ReturnForm{}, false })

	cfg := &config.Config{}
	fs := flag.NewFlagSet("return", flag.ContinueOnError)
	returnFlags(fs, cfg)

	err := fs.Parse([]string{
		"-condition", "fair", "-reason", "done", "-damages", "scratched",
		"-feedback", "ok", "-cleaning", "wiped", "-used-for", "2 days",
		"-missing", "none", "-safety", "none", "-maintenance", "sharpen blade",
		"-notes", "charger in the bag", "-detailed", "-send-return-metadata", "7",
	})
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := forms.ReturnForm{
		Condition: "fair", ReturnReason: "done", Damages: "scratched", Feedback: "ok",
		CleaningStatus: "wiped", ActualUsageDuration: "2 days", MissingParts: "none",
		SafetyIssues: "none", MaintenanceNeeded: "sharpen blade", NotesForNextUser: "charger in the bag",
	}
	if returnForm != want {
		t.Errorf("unexpected form: %+v", returnForm)
	}
	if !returnDetailed || !cfg.SendReturnMetadata {
		t.Error("expected -detailed and -send-return-metadata to be set")
	}
	if fs.Arg(0) != "7" {
		t.Errorf("expected reservation id argument, got %q", fs.Arg(0))
	}
}
