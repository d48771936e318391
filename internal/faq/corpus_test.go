package faq

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeCorpusDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()

	files := map[string]string{
		"medicaid-coverage.md": "# Does Medicaid cover assisted living?\n\nMedicaid waivers can offset assisted living costs in many states, but waitlists are common.\n\n- Eligibility varies by state\n- Room and board is usually excluded\n",
		"memory-care-costs.md": "# What does memory care cost?\n\nMemory care communities charge a premium over standard assisted living because of secured units and higher staffing ratios.\n",
		"untitled.md":          "Just a paragraph with no heading at all.\n",
		"notes.txt":            "not markdown, must be ignored",
	}
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	if err := os.Mkdir(filepath.Join(dir, "drafts"), 0o755); err != nil {
		t.Fatal(err)
	}
	return dir
}

func TestLoadCorpus(t *testing.T) {
	docs, err := LoadCorpus(writeCorpusDir(t))
	if err != nil {
		t.Fatalf("LoadCorpus: %v", err)
	}

	if len(docs) != 3 {
		t.Fatalf("loaded %d documents, want 3 (.txt and subdir ignored)", len(docs))
	}

	// Directory order is name order.
	wantSlugs := []string{"medicaid-coverage", "memory-care-costs", "untitled"}
	for i, want := range wantSlugs {
		if docs[i].Slug != want {
			t.Errorf("docs[%d].Slug = %q, want %q", i, docs[i].Slug, want)
		}
	}

	first := docs[0]
	if first.Title != "Does Medicaid cover assisted living?" {
		t.Errorf("Title = %q, want the level-1 heading text", first.Title)
	}
	if !strings.Contains(first.HTML, "<h1>") || !strings.Contains(first.HTML, "<li>") {
		t.Errorf("HTML not rendered: %q", first.HTML)
	}
	if strings.ContainsAny(first.Content, "#<>") {
		t.Errorf("plain text still carries markup: %q", first.Content)
	}
	if !strings.Contains(first.Content, "Medicaid waivers can offset assisted living costs") {
		t.Errorf("plain text lost body prose: %q", first.Content)
	}
	if !strings.Contains(first.Content, "Eligibility varies by state") {
		t.Errorf("plain text lost list items: %q", first.Content)
	}

	// A document without a heading falls back to its slug.
	if docs[2].Title != "untitled" {
		t.Errorf("headingless Title = %q, want slug fallback", docs[2].Title)
	}
}

func TestLoadCorpusMissingDir(t *testing.T) {
	_, err := LoadCorpus(filepath.Join(t.TempDir(), "nope"))
	if !errors.Is(err, ErrCorpusMissing) {
		t.Fatalf("LoadCorpus = %v, want ErrCorpusMissing", err)
	}
}

func TestLoadCorpusEmptyDirIsLegal(t *testing.T) {
	docs, err := LoadCorpus(t.TempDir())
	if err != nil {
		t.Fatalf("LoadCorpus on empty dir: %v", err)
	}
	if len(docs) != 0 {
		t.Errorf("empty dir produced %d documents", len(docs))
	}
}
