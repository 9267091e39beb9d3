package export

import (
	"encoding/json"
	"os"

	"github.com/shamash-asm/shamash/internal/finding"
)

type jsonReport struct {
	SchemaID      string        `json:"schemaId"`
	SchemaVersion int           `json:"schemaVersion"`
	ToolName      string        `json:"toolName"`
	ToolVersion   string        `json:"toolVersion"`
	GeneratedAtMs int64         `json:"generatedAtEpochMillis"`
	ProjectName   string        `json:"projectName"`
	Findings      []findingWire `json:"findings"`
}

func writeJSON(path string, findings []finding.Finding, opts Options) error {
	report := jsonReport{
		SchemaID: SchemaID, SchemaVersion: SchemaVersion, ToolName: ToolName,
		ToolVersion: opts.ToolVersion, GeneratedAtMs: opts.GeneratedAtMs, ProjectName: opts.ProjectName,
		Findings: toWireAll(findings),
	}
	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}

func writeAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		return os.WriteFile(path, data, 0o644)
	}
	return nil
}
