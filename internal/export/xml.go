package export

import (
	"encoding/xml"

	"github.com/shamash-asm/shamash/internal/finding"
)

type xmlReport struct {
	XMLName       xml.Name     `xml:"report"`
	SchemaID      string       `xml:"schemaId,attr"`
	SchemaVersion int          `xml:"schemaVersion,attr"`
	ToolName      string       `xml:"toolName,attr"`
	ToolVersion   string       `xml:"toolVersion,attr"`
	GeneratedAtMs int64        `xml:"generatedAtEpochMillis,attr"`
	ProjectName   string       `xml:"projectName,attr"`
	Findings      []xmlFinding `xml:"findings>finding"`
}

type xmlFinding struct {
	RuleID      string        `xml:"ruleId,attr"`
	Severity    string        `xml:"severity,attr"`
	FilePath    string        `xml:"filePath,attr"`
	ClassFqn    string        `xml:"classFqn,attr,omitempty"`
	MemberName  string        `xml:"memberName,attr,omitempty"`
	StartOffset int           `xml:"startOffset,attr,omitempty"`
	EndOffset   int           `xml:"endOffset,attr,omitempty"`
	Message     string        `xml:"message"`
	Data        []xmlDataItem `xml:"data>entry,omitempty"`
}

type xmlDataItem struct {
	Key   string `xml:"key,attr"`
	Value string `xml:",chardata"`
}

func writeXML(path string, findings []finding.Finding, opts Options) error {
	report := xmlReport{
		SchemaID: SchemaID, SchemaVersion: SchemaVersion, ToolName: ToolName,
		ToolVersion: opts.ToolVersion, GeneratedAtMs: opts.GeneratedAtMs, ProjectName: opts.ProjectName,
	}
	for _, f := range findings {
		xf := xmlFinding{
			RuleID: f.RuleID, Severity: f.Severity.String(), FilePath: f.FilePath,
			ClassFqn: f.ClassFqn, MemberName: f.MemberName, StartOffset: f.StartOffset, EndOffset: f.EndOffset,
			Message: f.Message,
		}
		for _, k := range f.Data.Keys() {
			v, _ := f.Data.Get(k)
			xf.Data = append(xf.Data, xmlDataItem{Key: k, Value: v})
		}
		report.Findings = append(report.Findings, xf)
	}

	data, err := xml.MarshalIndent(report, "", "  ")
	if err != nil {
		return err
	}
	data = append([]byte(xml.Header), data...)
	return writeAtomic(path, data)
}
