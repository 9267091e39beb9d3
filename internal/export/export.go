// Package export implements the Exporter: JSON, SARIF 2.1.0, XML, HTML,
// and FACTS report generation to a configured output directory. Every
// writer is pre-flighted: when Overwrite is false and any requested
// artifact already exists, no export occurs at all.
package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
)

// Format names one exportable report kind.
type Format string

const (
	FormatJSON  Format = "JSON"
	FormatSARIF Format = "SARIF"
	FormatXML   Format = "XML"
	FormatHTML  Format = "HTML"
	FormatFACTS Format = "FACTS"
)

// FactsEncoding selects the FACTS export's on-disk encoding.
type FactsEncoding string

const (
	FactsEncodingJSON    FactsEncoding = "JSON"
	FactsEncodingJSONLGZ FactsEncoding = "JSONL_GZ"
)

const (
	SchemaID      = "shamash-asm.report"
	SchemaVersion = 1
	ToolName      = "shamash"
)

// Options configures one Export call.
type Options struct {
	OutputDir     string
	Formats       []Format
	Overwrite     bool
	FactsEncoding FactsEncoding
	ProjectName   string
	ToolVersion   string
	GeneratedAtMs int64
	RunID         string
}

func fileNameFor(format Format, factsEncoding FactsEncoding) string {
	switch format {
	case FormatJSON:
		return "report.json"
	case FormatSARIF:
		return "report.sarif"
	case FormatXML:
		return "report.xml"
	case FormatHTML:
		return "report.html"
	case FormatFACTS:
		if factsEncoding == FactsEncodingJSON {
			return "facts.json"
		}
		return "facts.jsonl.gz"
	default:
		return ""
	}
}

// Export writes every requested format under opts.OutputDir. When
// opts.Overwrite is false and any target artifact already exists, the
// call fails before writing anything (all-or-nothing pre-flight).
func Export(findings []finding.Finding, idx *factindex.Index, opts Options) error {
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return fmt.Errorf("creating output dir %s: %w", opts.OutputDir, err)
	}

	if !opts.Overwrite {
		for _, f := range opts.Formats {
			path := filepath.Join(opts.OutputDir, fileNameFor(f, opts.FactsEncoding))
			if _, err := os.Stat(path); err == nil {
				return fmt.Errorf("export target already exists and overwrite is false: %s", path)
			} else if !os.IsNotExist(err) {
				return fmt.Errorf("checking export target %s: %w", path, err)
			}
		}
	}

	sorted := append([]finding.Finding(nil), findings...)
	finding.Sort(sorted)

	for _, f := range opts.Formats {
		path := filepath.Join(opts.OutputDir, fileNameFor(f, opts.FactsEncoding))
		var err error
		switch f {
		case FormatJSON:
			err = writeJSON(path, sorted, opts)
		case FormatSARIF:
			err = writeSARIF(path, sorted, opts)
		case FormatXML:
			err = writeXML(path, sorted, opts)
		case FormatHTML:
			err = writeHTML(path, sorted, opts)
		case FormatFACTS:
			err = writeFacts(path, idx, opts)
		default:
			err = fmt.Errorf("unknown export format %q", f)
		}
		if err != nil {
			return fmt.Errorf("exporting %s: %w", f, err)
		}
	}
	return nil
}
