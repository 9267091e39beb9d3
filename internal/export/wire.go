package export

import "github.com/shamash-asm/shamash/internal/finding"

type findingWire struct {
	RuleID      string            `json:"ruleId" xml:"ruleId"`
	Message     string            `json:"message" xml:"message"`
	FilePath    string            `json:"filePath" xml:"filePath"`
	Severity    string            `json:"severity" xml:"severity"`
	ClassFqn    string            `json:"classFqn,omitempty" xml:"classFqn,omitempty"`
	MemberName  string            `json:"memberName,omitempty" xml:"memberName,omitempty"`
	StartOffset int               `json:"startOffset,omitempty" xml:"startOffset,omitempty"`
	EndOffset   int               `json:"endOffset,omitempty" xml:"endOffset,omitempty"`
	Data        map[string]string `json:"data,omitempty" xml:"-"`
}

func toWire(f finding.Finding) findingWire {
	data := make(map[string]string, len(f.Data.Keys()))
	for _, k := range f.Data.Keys() {
		v, _ := f.Data.Get(k)
		data[k] = v
	}
	return findingWire{
		RuleID: f.RuleID, Message: f.Message, FilePath: f.FilePath, Severity: f.Severity.String(),
		ClassFqn: f.ClassFqn, MemberName: f.MemberName, StartOffset: f.StartOffset, EndOffset: f.EndOffset,
		Data: data,
	}
}

func toWireAll(findings []finding.Finding) []findingWire {
	out := make([]findingWire, 0, len(findings))
	for _, f := range findings {
		out = append(out, toWire(f))
	}
	return out
}
