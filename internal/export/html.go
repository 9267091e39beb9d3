package export

import (
	"bytes"
	"embed"
	"html/template"

	"github.com/shamash-asm/shamash/internal/finding"
)

//go:embed templates/report.html.tmpl
var templatesFS embed.FS

var reportTemplate = template.Must(template.ParseFS(templatesFS, "templates/report.html.tmpl"))

type htmlReport struct {
	ProjectName   string
	GeneratedAtMs int64
	ToolName      string
	ToolVersion   string
	Findings      []findingWire
}

// writeHTML renders a single self-contained page: no network fetches,
// every asset inlined via the embedded template's <style> block.
func writeHTML(path string, findings []finding.Finding, opts Options) error {
	var buf bytes.Buffer
	report := htmlReport{
		ProjectName: opts.ProjectName, GeneratedAtMs: opts.GeneratedAtMs,
		ToolName: ToolName, ToolVersion: opts.ToolVersion, Findings: toWireAll(findings),
	}
	if err := reportTemplate.Execute(&buf, report); err != nil {
		return err
	}
	return writeAtomic(path, buf.Bytes())
}
