package liveexport

import (
	"encoding/json"
	"testing"

	"github.com/shamash-asm/shamash/internal/finding"
)

func TestHubStampsSequenceAndKeepsCatchUpSnapshot(t *testing.T) {
	h := NewHub()

	p1, ok := h.stampAndStore(Delta{GeneratedAtMs: 1000})
	if !ok {
		t.Fatal("stampAndStore failed")
	}
	p2, ok := h.stampAndStore(Delta{GeneratedAtMs: 2000})
	if !ok {
		t.Fatal("stampAndStore failed")
	}

	var first, second map[string]any
	if err := json.Unmarshal(p1, &first); err != nil {
		t.Fatalf("unmarshal first: %v", err)
	}
	if err := json.Unmarshal(p2, &second); err != nil {
		t.Fatalf("unmarshal second: %v", err)
	}
	if first["sequenceNumber"] != float64(1) || second["sequenceNumber"] != float64(2) {
		t.Errorf("sequence numbers = %v, %v; want 1, 2", first["sequenceNumber"], second["sequenceNumber"])
	}

	if string(h.last) != string(p2) {
		t.Error("catch-up snapshot should be the most recently published delta")
	}
}

func TestMarshalFlattensFindingData(t *testing.T) {
	d := Delta{
		SequenceNumber: 1,
		GeneratedAtMs:  1000,
		Findings: []finding.Finding{{
			RuleID: "arch.forbiddenRoleDependencies.controller", Message: "bad", FilePath: "a/B.class",
			Severity: finding.SeverityError, ClassFqn: "a.B",
			Data: finding.NewData([2]string{"fromRole", "controller"}),
		}},
	}
	raw, err := Marshal(d)
	if err != nil {
		t.Fatalf("Marshal error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("Unmarshal error: %v", err)
	}
	findings, ok := decoded["findings"].([]any)
	if !ok || len(findings) != 1 {
		t.Fatalf("findings = %v", decoded["findings"])
	}
	first := findings[0].(map[string]any)
	if first["ruleId"] != "arch.forbiddenRoleDependencies.controller" {
		t.Errorf("ruleId = %v", first["ruleId"])
	}
	data, ok := first["data"].(map[string]any)
	if !ok || data["fromRole"] != "controller" {
		t.Errorf("data = %v", first["data"])
	}
}
