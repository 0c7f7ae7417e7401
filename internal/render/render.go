// Package render writes assembled reports to disk as markdown with a
// machine-readable YAML sidecar.
package render

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/deep-research/internal/research"
)

// Renderer writes reports into a target directory, one pair of files per
// run: <slug>.md and <slug>.yaml.
type Renderer struct {
	dir string
	now func() time.Time
}

// New creates a Renderer targeting dir. The directory is created on first
// render.
func New(dir string) *Renderer {
	return &Renderer{dir: dir, now: time.Now}
}

// Render writes the markdown report and its YAML sidecar and returns the
// path of the markdown file.
func (r *Renderer) Render(topic string, report *research.Report) (string, error) {
	if report == nil {
		return "", eris.New("render: nil report")
	}
	if err := os.MkdirAll(r.dir, 0o755); err != nil {
		return "", eris.Wrapf(err, "render: create output dir %s", r.dir)
	}

	slug := Slugify(topic)
	if slug == "" {
		slug = "report"
	}
	stamp := r.now().UTC().Format("20060102-150405")
	base := fmt.Sprintf("%s-%s", slug, stamp)

	mdPath := filepath.Join(r.dir, base+".md")
	if err := os.WriteFile(mdPath, []byte(Markdown(report)), 0o644); err != nil {
		return "", eris.Wrapf(err, "render: write %s", mdPath)
	}

	sidecar, err := yaml.Marshal(report)
	if err != nil {
		return "", eris.Wrap(err, "render: marshal sidecar")
	}
	yamlPath := filepath.Join(r.dir, base+".yaml")
	if err := os.WriteFile(yamlPath, sidecar, 0o644); err != nil {
		return "", eris.Wrapf(err, "render: write %s", yamlPath)
	}

	zap.L().Info("render: report written",
		zap.String("markdown", mdPath),
		zap.String("sidecar", yamlPath),
	)
	return mdPath, nil
}

// Markdown formats a report as a markdown document. Sections appear in key
// order; empty report fields are skipped rather than rendered as bare
// headings.
func Markdown(report *research.Report) string {
	var b strings.Builder

	title := report.Title
	if title == "" {
		title = "Research Report"
	}
	fmt.Fprintf(&b, "# %s\n", title)

	if report.Introduction != "" {
		fmt.Fprintf(&b, "\n## Introduction\n\n%s\n", report.Introduction)
	}

	keys := make([]int, 0, len(report.Sections))
	for k := range report.Sections {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	for _, k := range keys {
		body := report.Sections[k]
		if body == "" {
			continue
		}
		fmt.Fprintf(&b, "\n## Section %d\n\n%s\n", k, body)
	}

	if report.Conclusion != "" {
		fmt.Fprintf(&b, "\n## Conclusion\n\n%s\n", report.Conclusion)
	}

	if len(report.References) > 0 {
		b.WriteString("\n## References\n\n")
		for i, ref := range report.References {
			fmt.Fprintf(&b, "%d. %s\n", i+1, ref)
		}
	}

	if report.QualityNotes != "" {
		fmt.Fprintf(&b, "\n## Quality Notes\n\n%s\n", report.QualityNotes)
	}

	return b.String()
}

// Slugify converts a topic into a filesystem-safe lowercase slug.
func Slugify(s string) string {
	var b strings.Builder
	lastDash := true
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastDash = false
		default:
			if !lastDash {
				b.WriteByte('-')
				lastDash = true
			}
		}
	}
	return strings.TrimRight(b.String(), "-")
}
