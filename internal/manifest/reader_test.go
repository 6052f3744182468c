package manifest

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"treesum/internal/runner"
)

func collectJobs(t *testing.T, manifestPath, root string) []runner.Job {
	t.Helper()

	jobs := make(chan runner.Job, 64)
	err := Jobs(manifestPath, root)(context.Background(), jobs)
	if err != nil {
		t.Fatalf("Jobs producer: %v", err)
	}
	close(jobs)

	var got []runner.Job
	for j := range jobs {
		got = append(got, j)
	}
	return got
}

func TestJobs(t *testing.T) {
	dir := t.TempDir()
	digest := strings.Repeat("ab", 16)

	content := strings.Join([]string{
		"# generated by treesum",
		digest + "  a.txt",
		"",
		"not a manifest line",
		digest + "  sub/b.txt",
	}, "\n") + "\n"

	p := filepath.Join(dir, "tree.md5")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	got := collectJobs(t, p, "/data")

	// comment and blank lines skipped; malformed line kept as pre-failed job
	if len(got) != 3 {
		t.Fatalf("got %d jobs, want 3", len(got))
	}

	if got[0].Path != "a.txt" || got[0].Expected != digest || got[0].Err != nil {
		t.Errorf("job 0 = %+v", got[0])
	}
	if got[0].AbsPath != filepath.Join("/data", "a.txt") {
		t.Errorf("job 0 AbsPath = %q", got[0].AbsPath)
	}

	if got[1].Err == nil {
		t.Error("malformed line did not produce a pre-failed job")
	}
	if !strings.Contains(got[1].Path, "tree.md5:4") {
		t.Errorf("malformed job attribution = %q, want file:line", got[1].Path)
	}

	if got[2].AbsPath != filepath.Join("/data", "sub", "b.txt") {
		t.Errorf("job 2 AbsPath = %q", got[2].AbsPath)
	}

	for _, j := range got {
		if j.Mode != runner.ModeVerify {
			t.Errorf("job %q mode = %v, want verify", j.Path, j.Mode)
		}
	}
}

func TestJobs_AbsolutePathKept(t *testing.T) {
	dir := t.TempDir()
	digest := strings.Repeat("cd", 16)

	p := filepath.Join(dir, "abs.md5")
	if err := os.WriteFile(p, []byte(digest+"  /srv/data/a.txt\n"), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	got := collectJobs(t, p, dir)
	if len(got) != 1 {
		t.Fatalf("got %d jobs, want 1", len(got))
	}
	if got[0].AbsPath != "/srv/data/a.txt" {
		t.Errorf("absolute path resolved to %q", got[0].AbsPath)
	}
}

func TestJobs_LongLineDoesNotEndRun(t *testing.T) {
	dir := t.TempDir()
	digest := strings.Repeat("ef", 16)
	longPath := strings.Repeat("p", 2<<20) // well past any scanner buffer cap

	content := digest + "  " + longPath + "\n" + digest + "  ok.txt\n"
	p := filepath.Join(dir, "long.md5")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	got := collectJobs(t, p, dir)
	if len(got) != 2 {
		t.Fatalf("got %d jobs, want 2", len(got))
	}
	if got[0].Path != longPath || got[0].Err != nil {
		t.Errorf("long line job = {Path len %d, Err %v}, want intact path and no error", len(got[0].Path), got[0].Err)
	}
	if got[1].Path != "ok.txt" {
		t.Errorf("line after long line = %q, want ok.txt", got[1].Path)
	}
}

func TestCountEntries(t *testing.T) {
	dir := t.TempDir()
	digest := strings.Repeat("ab", 16)

	content := strings.Join([]string{
		"# header",
		digest + "  a.txt",
		"",
		"not a manifest line",
		digest + "  b.txt",
	}, "\n") + "\n"

	p := filepath.Join(dir, "count.md5")
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("write manifest: %v", err)
	}

	// comment and blank skipped; malformed line still counts, matching the
	// jobs the producer emits
	n, err := CountEntries(p)
	if err != nil {
		t.Fatalf("CountEntries: %v", err)
	}
	if n != 3 {
		t.Errorf("CountEntries = %d, want 3", n)
	}

	if _, err := CountEntries(filepath.Join(dir, "nope.md5")); err == nil {
		t.Error("expected error for missing manifest")
	}
}

func TestJobs_MissingManifest(t *testing.T) {
	jobs := make(chan runner.Job, 1)
	err := Jobs(filepath.Join(t.TempDir(), "nope.md5"), ".")(context.Background(), jobs)
	if err == nil {
		t.Fatal("expected error for missing manifest")
	}
}
