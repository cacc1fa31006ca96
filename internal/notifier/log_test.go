package notifier

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogNotifier_Notify_zeroJobs(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)), 5)
	if err := n.Notify(sampleResults()); err != nil {
		t.Errorf("Notify(empty) = %v, want nil", err)
	}
	if !strings.Contains(buf.String(), "run summary") {
		t.Error("summary line should always be logged")
	}
	if strings.Contains(buf.String(), "top job") {
		t.Error("no top jobs expected")
	}
}

func TestLogNotifier_Notify_topJobsInScoreOrder(t *testing.T) {
	var buf bytes.Buffer
	n := NewLogNotifier(slog.New(slog.NewTextHandler(&buf, nil)), 2)
	res := sampleResults(
		sampleJob("Third", "C", map[string]int{"ai": 60}),
		sampleJob("First", "A", map[string]int{"ai": 92}),
		sampleJob("Second", "B", map[string]int{"ai": 10, "sustainability": 75}),
	)
	if err := n.Notify(res); err != nil {
		t.Fatalf("Notify() = %v", err)
	}

	out := buf.String()
	if strings.Count(out, "top job") != 2 {
		t.Fatalf("expected 2 top job lines:\n%s", out)
	}
	if strings.Index(out, "title=First") > strings.Index(out, "title=Second") {
		t.Error("jobs should be logged best first")
	}
	if strings.Contains(out, "title=Third") {
		t.Error("only the top 2 jobs should be logged")
	}
	if !strings.Contains(out, `scores="ai: 10, sustainability: 75"`) {
		t.Errorf("per-track scores missing:\n%s", out)
	}
	if !strings.Contains(out, "fit=Exceptional") {
		t.Errorf("fit label missing:\n%s", out)
	}
}
