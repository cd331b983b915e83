package pipeline_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"ahclip/internal/logging"
	"ahclip/internal/media/probe"
	"ahclip/internal/pipeline"
	"ahclip/internal/testsupport"
)

func TestPlanPredictsRowOutcomes(t *testing.T) {
	manifest := "Study Number,Start ah\n7,0.5\n8,1.5\n9,\n10,abc\n11,0.2\n12,3\n13,0.1\n"
	h := newHarness(t, manifest,
		"Study 007.m4a", "Study 008.m4a", "Study 012.m4a", "Study 0013.m4a")
	for _, subject := range []string{"0007", "0008", "0012"} {
		testsupport.WriteWAV(t, filepath.Join(h.inputDir, "Study "+subject+".wav"), fixtureRate, 1, testsupport.Ramp(2*fixtureRate))
	}

	entries, err := pipeline.Plan(context.Background(), h.options(1.0), probe.New("", logging.NewNop()))
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}

	want := []struct {
		status pipeline.PlanStatus
		fit    pipeline.Fit
		cached bool
	}{
		{pipeline.PlanReady, pipeline.FitOK, true},
		{pipeline.PlanReady, pipeline.FitShort, true},
		{pipeline.PlanSkip, pipeline.FitUnknown, false},
		{pipeline.PlanInvalid, pipeline.FitUnknown, false},
		{pipeline.PlanMissing, pipeline.FitUnknown, false},
		{pipeline.PlanReady, pipeline.FitPastEnd, true},
		{pipeline.PlanReady, pipeline.FitUnknown, false},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %d", len(want), len(entries))
	}
	for i, w := range want {
		got := entries[i]
		if got.Status != w.status || got.Fit != w.fit || got.Cached != w.cached {
			t.Fatalf("row %d (%s): got status=%s fit=%s cached=%v, want %s/%s/%v",
				i, got.Row.Subject, got.Status, got.Fit, got.Cached, w.status, w.fit, w.cached)
		}
	}

	if entries[0].Method != probe.MethodWAVHeader || entries[0].Length.Seconds() != 2 {
		t.Fatalf("unexpected measurement: %v via %q", entries[0].Length, entries[0].Method)
	}
	if filepath.Base(entries[6].Source) != "Study 0013.m4a" {
		t.Fatalf("unexpected source for row 13: %q", entries[6].Source)
	}
	if entries[2].Reason == "" || entries[4].Reason == "" {
		t.Fatalf("expected reasons for skipped and missing rows: %+v", entries)
	}
	if got := filepath.Base(entries[0].Output); got != "ah Study 0007 1.0 sec.wav" {
		t.Fatalf("unexpected output name: %q", got)
	}
	if _, err := os.Stat(h.outputDir); !os.IsNotExist(err) {
		t.Fatalf("plan must not create the output directory: %v", err)
	}
	if h.calls.Load() != 0 {
		t.Fatalf("plan must not transcode, got %d calls", h.calls.Load())
	}
}

func TestPlanWithoutOutputDirectory(t *testing.T) {
	h := newHarness(t, "Study Number,Start ah\n7,0.5\n", "Study 007.m4a")
	opts := h.options(3)
	opts.OutputDir = ""

	entries, err := pipeline.Plan(context.Background(), opts, nil)
	if err != nil {
		t.Fatalf("Plan returned error: %v", err)
	}
	if len(entries) != 1 || entries[0].Status != pipeline.PlanReady {
		t.Fatalf("unexpected entries: %+v", entries)
	}
	if entries[0].Output != "" || entries[0].Fit != pipeline.FitUnknown {
		t.Fatalf("expected no output or fit without an output dir and prober: %+v", entries[0])
	}
}

func TestPlanMissingManifest(t *testing.T) {
	h := newHarness(t, "Study Number,Start ah\n")
	opts := h.options(3)
	opts.ManifestPath = filepath.Join(t.TempDir(), "absent.csv")

	if _, err := pipeline.Plan(context.Background(), opts, nil); err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
