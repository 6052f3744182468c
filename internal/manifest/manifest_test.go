package manifest

import (
	"strings"
	"testing"
)

func TestParseLine_TableDriven(t *testing.T) {
	const md5Digest = "5eb63bbbe01eeed093cb22bb8f5acdc3"

	tests := []struct {
		name       string
		line       string
		wantDigest string
		wantPath   string
		wantErr    bool
	}{
		{"md5 line", md5Digest + "  a.txt", md5Digest, "a.txt", false},
		{"sha256 line", strings.Repeat("ab", 32) + "  dir/b.txt", strings.Repeat("ab", 32), "dir/b.txt", false},
		{"uppercase digest accepted", strings.ToUpper(md5Digest) + "  a.txt", md5Digest, "a.txt", false},
		{"path with spaces", md5Digest + "  some dir/a file.txt", md5Digest, "some dir/a file.txt", false},
		{"dotslash path", md5Digest + "  ./a.txt", md5Digest, "./a.txt", false},
		{"single space separator", md5Digest + " a.txt", "", "", true},
		{"no separator", md5Digest, "", "", true},
		{"empty path", md5Digest + "  ", "", "", true},
		{"short digest", "abc123  a.txt", "", "", true},
		{"non-hex digest", strings.Repeat("zz", 16) + "  a.txt", "", "", true},
		{"empty line", "", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			digest, path, err := ParseLine(tt.line)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseLine(%q) = %q, %q; want error", tt.line, digest, path)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseLine(%q) error: %v", tt.line, err)
			}
			if digest != tt.wantDigest || path != tt.wantPath {
				t.Errorf("ParseLine(%q) = %q, %q; want %q, %q",
					tt.line, digest, path, tt.wantDigest, tt.wantPath)
			}
		})
	}
}

func TestFormatRoundTrip(t *testing.T) {
	digest := strings.Repeat("0f", 16)
	line := Format(digest, "x/y z.bin")

	gotDigest, gotPath, err := ParseLine(line)
	if err != nil {
		t.Fatalf("ParseLine(Format(...)): %v", err)
	}
	if gotDigest != digest || gotPath != "x/y z.bin" {
		t.Errorf("round trip = %q, %q", gotDigest, gotPath)
	}
}

func TestWriter(t *testing.T) {
	var sb strings.Builder
	w := NewWriter(&sb)

	if err := w.Add(strings.Repeat("aa", 16), "one.txt"); err != nil {
		t.Fatal(err)
	}
	if err := w.Add(strings.Repeat("bb", 16), "two.txt"); err != nil {
		t.Fatal(err)
	}
	if err := w.Flush(); err != nil {
		t.Fatal(err)
	}

	if w.Lines() != 2 {
		t.Errorf("Lines() = %d, want 2", w.Lines())
	}

	out := sb.String()
	if !strings.HasSuffix(out, "\n") {
		t.Error("output not newline-terminated")
	}
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2", len(lines))
	}
	for _, line := range lines {
		if _, _, err := ParseLine(line); err != nil {
			t.Errorf("written line %q does not parse: %v", line, err)
		}
	}
}

func TestIsManifestName(t *testing.T) {
	tests := []struct {
		name string
		want bool
	}{
		{"tree.md5", true},
		{"tree.md5sum", true},
		{"archive.tar", false},
		{"md5", false},
		{"notes.md", false},
	}
	for _, tt := range tests {
		if got := IsManifestName(tt.name); got != tt.want {
			t.Errorf("IsManifestName(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}
