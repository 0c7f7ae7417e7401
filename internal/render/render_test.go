package render

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/deep-research/internal/research"
)

func sampleReport() *research.Report {
	return &research.Report{
		Title:        "Electric Vehicle Market Outlook",
		Introduction: "This report surveys the EV market.",
		Sections: map[int]string{
			1: "Market size is growing.",
			2: "Competition is intense.",
		},
		Conclusion:   "The outlook is positive.",
		References:   []string{"Source A - https://example.com/a"},
		QualityNotes: "Coherent and well sourced.",
	}
}

func TestRenderWritesMarkdownAndSidecar(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	r := New(dir)
	r.now = func() time.Time { return time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC) }

	mdPath, err := r.Render("Electric Vehicles", sampleReport())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "electric-vehicles-20250601-120000.md"), mdPath)

	md, err := os.ReadFile(mdPath)
	require.NoError(t, err)
	text := string(md)
	assert.Contains(t, text, "# Electric Vehicle Market Outlook")
	assert.Contains(t, text, "## Section 1")
	assert.Contains(t, text, "1. Source A - https://example.com/a")

	sidecar, err := os.ReadFile(filepath.Join(dir, "electric-vehicles-20250601-120000.yaml"))
	require.NoError(t, err)

	var decoded research.Report
	require.NoError(t, yaml.Unmarshal(sidecar, &decoded))
	assert.Equal(t, "Electric Vehicle Market Outlook", decoded.Title)
	assert.Len(t, decoded.Sections, 2)
}

func TestRenderNilReport(t *testing.T) {
	t.Parallel()

	r := New(t.TempDir())
	_, err := r.Render("topic", nil)
	assert.Error(t, err)
}

func TestMarkdownSectionOrderAndSkips(t *testing.T) {
	t.Parallel()

	report := &research.Report{
		Sections: map[int]string{3: "third", 1: "first", 2: ""},
	}
	text := Markdown(report)

	assert.True(t, strings.Index(text, "## Section 1") < strings.Index(text, "## Section 3"))
	assert.NotContains(t, text, "## Section 2")
	assert.NotContains(t, text, "## Introduction")
	assert.Contains(t, text, "# Research Report")
}

func TestSlugify(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "electric-vehicles", Slugify("Electric Vehicles"))
	assert.Equal(t, "ev-2025-outlook", Slugify("  EV: 2025 Outlook!  "))
	assert.Equal(t, "", Slugify("!!!"))
}
