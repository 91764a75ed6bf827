package tags

import (
	"os"
	"path/filepath"
	"testing"
)

func writeTagsFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "tags.txt")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write tags file: %v", err)
	}
	return path
}

func TestFromFile(t *testing.T) {
	path := writeTagsFile(t, "itcmd\nreforma-tributaria\nstf\n")
	tags, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	if tags[0] != "itcmd" || tags[1] != "reforma-tributaria" || tags[2] != "stf" {
		t.Fatalf("unexpected tags: %#v", tags)
	}
}

func TestFromFileSkipsCommentsAndBlanks(t *testing.T) {
	path := writeTagsFile(t, "itcmd\n# this is a comment\n\n\nstf\n\n")
	tags, err := FromFile(path)
	if err != nil {
		t.Fatalf("FromFile: %v", err)
	}
	if len(tags) != 2 || tags[0] != "itcmd" || tags[1] != "stf" {
		t.Fatalf("unexpected tags: %#v", tags)
	}
}

func TestFromFileMissing(t *testing.T) {
	if _, err := FromFile(filepath.Join(t.TempDir(), "nonexistent.txt")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("JOTA_TAGS", "itcmd, reforma-tributaria , stf")
	tags := FromEnv("JOTA_TAGS")
	if len(tags) != 3 {
		t.Fatalf("expected 3 tags, got %d", len(tags))
	}
	if tags[1] != "reforma-tributaria" {
		t.Fatalf("entries must be trimmed, got %q", tags[1])
	}
}

func TestFromEnvUnsetOrEmpty(t *testing.T) {
	t.Setenv("JOTA_TAGS", "")
	if tags := FromEnv("JOTA_TAGS"); tags != nil {
		t.Fatalf("expected nil for empty var, got %#v", tags)
	}
	if tags := FromEnv("JOTA_TAGS_DOES_NOT_EXIST"); tags != nil {
		t.Fatalf("expected nil for unset var, got %#v", tags)
	}
}

func TestNormalize(t *testing.T) {
	tags := Normalize([]string{" itcmd ", "", "stf"})
	if len(tags) != 2 || tags[0] != "itcmd" || tags[1] != "stf" {
		t.Fatalf("unexpected tags: %#v", tags)
	}
}
