package export

import (
	"encoding/json"
	"sort"

	"github.com/shamash-asm/shamash/internal/finding"
)

type sarifReport struct {
	Schema  string     `json:"$schema"`
	Version string     `json:"version"`
	Runs    []sarifRun `json:"runs"`
}

type sarifRun struct {
	Tool    sarifTool     `json:"tool"`
	Results []sarifResult `json:"results"`
}

type sarifTool struct {
	Driver sarifDriver `json:"driver"`
}

type sarifDriver struct {
	Name    string      `json:"name"`
	Version string      `json:"version"`
	Rules   []sarifRule `json:"rules"`
}

type sarifRule struct {
	ID string `json:"id"`
}

type sarifResult struct {
	RuleID    string          `json:"ruleId"`
	Level     string          `json:"level"`
	Message   sarifMessage    `json:"message"`
	Locations []sarifLocation `json:"locations"`
}

type sarifMessage struct {
	Text string `json:"text"`
}

type sarifLocation struct {
	PhysicalLocation sarifPhysicalLocation `json:"physicalLocation"`
}

type sarifPhysicalLocation struct {
	ArtifactLocation sarifArtifactLocation `json:"artifactLocation"`
	Region           *sarifRegion          `json:"region,omitempty"`
}

type sarifArtifactLocation struct {
	URI string `json:"uri"`
}

type sarifRegion struct {
	ByteOffset int `json:"byteOffset,omitempty"`
	ByteLength int `json:"byteLength,omitempty"`
}

func sarifLevel(s finding.Severity) string {
	switch s.String() {
	case "ERROR":
		return "error"
	case "WARNING":
		return "warning"
	default:
		return "note"
	}
}

func writeSARIF(path string, findings []finding.Finding, opts Options) error {
	ruleSet := make(map[string]bool)
	results := make([]sarifResult, 0, len(findings))
	for _, f := range findings {
		ruleSet[f.RuleID] = true

		var region *sarifRegion
		if f.EndOffset > f.StartOffset {
			region = &sarifRegion{ByteOffset: f.StartOffset, ByteLength: f.EndOffset - f.StartOffset}
		}
		results = append(results, sarifResult{
			RuleID: f.RuleID, Level: sarifLevel(f.Severity), Message: sarifMessage{Text: f.Message},
			Locations: []sarifLocation{{PhysicalLocation: sarifPhysicalLocation{
				ArtifactLocation: sarifArtifactLocation{URI: f.FilePath}, Region: region,
			}}},
		})
	}

	ruleIDs := make([]string, 0, len(ruleSet))
	for id := range ruleSet {
		ruleIDs = append(ruleIDs, id)
	}
	sort.Strings(ruleIDs)
	rules := make([]sarifRule, 0, len(ruleIDs))
	for _, id := range ruleIDs {
		rules = append(rules, sarifRule{ID: id})
	}

	report := sarifReport{
		Schema: "https://raw.githubusercontent.com/oasis-tcs/sarif-spec/master/Schemata/sarif-schema-2.1.0.json",
		Version: "2.1.0",
		Runs: []sarifRun{{
			Tool:    sarifTool{Driver: sarifDriver{Name: ToolName, Version: opts.ToolVersion, Rules: rules}},
			Results: results,
		}},
	}

	data, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	return writeAtomic(path, data)
}
