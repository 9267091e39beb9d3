package liveexport

import (
	"encoding/json"

	"github.com/shamash-asm/shamash/internal/finding"
)

// Delta is one re-scan's worth of findings, pushed to every connected
// client after a scan --watch --live re-export. SequenceNumber is
// assigned by the Hub when the delta is published; publishers leave it
// zero.
type Delta struct {
	SequenceNumber int               `json:"sequenceNumber"`
	GeneratedAtMs  int64             `json:"generatedAtEpochMillis"`
	Findings       []finding.Finding `json:"findings"`
}

// deltaWire mirrors Delta but flattens Finding.Data into a plain map for
// JSON, matching the Exporter's JSON record shape.
type deltaWire struct {
	SequenceNumber int                    `json:"sequenceNumber"`
	GeneratedAtMs  int64                  `json:"generatedAtEpochMillis"`
	Findings       []findingWire          `json:"findings"`
}

type findingWire struct {
	RuleID      string            `json:"ruleId"`
	Message     string            `json:"message"`
	FilePath    string            `json:"filePath"`
	Severity    string            `json:"severity"`
	ClassFqn    string            `json:"classFqn,omitempty"`
	MemberName  string            `json:"memberName,omitempty"`
	StartOffset int               `json:"startOffset,omitempty"`
	EndOffset   int               `json:"endOffset,omitempty"`
	Data        map[string]string `json:"data,omitempty"`
}

// Marshal renders a Delta to the JSON wire form broadcast to clients.
func Marshal(d Delta) ([]byte, error) {
	wire := deltaWire{SequenceNumber: d.SequenceNumber, GeneratedAtMs: d.GeneratedAtMs}
	for _, f := range d.Findings {
		data := make(map[string]string, len(f.Data.Keys()))
		for _, k := range f.Data.Keys() {
			v, _ := f.Data.Get(k)
			data[k] = v
		}
		wire.Findings = append(wire.Findings, findingWire{
			RuleID: f.RuleID, Message: f.Message, FilePath: f.FilePath,
			Severity: f.Severity.String(), ClassFqn: f.ClassFqn, MemberName: f.MemberName,
			StartOffset: f.StartOffset, EndOffset: f.EndOffset, Data: data,
		})
	}
	return json.Marshal(wire)
}
