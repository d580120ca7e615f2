package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Out: &buf}

	r.Start(2, "Building site")
	r.Update(1, "index.md")
	r.Update(2, "guide.md")
	r.Finish("Build complete: 2 files copied, 0 files skipped")

	want := "Building site: 2 files\n[1/2] index.md\n[2/2] guide.md\nBuild complete: 2 files copied, 0 files skipped\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestTerminalReporterWritesSummary(t *testing.T) {
	var buf bytes.Buffer
	r := &TerminalReporter{Out: &buf}

	r.Start(1, "Building site")
	r.Update(1, "index.md")
	r.Finish("done")

	if !strings.HasSuffix(buf.String(), "done\n") {
		t.Errorf("output %q should end with the summary", buf.String())
	}
}

func TestNewReporterInCI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter().(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}

func TestNop(t *testing.T) {
	var r Reporter = Nop{}
	r.Start(1, "x")
	r.Update(1, "y")
	r.Finish("z")
}
