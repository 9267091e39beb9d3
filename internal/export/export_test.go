package export

import (
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shamash-asm/shamash/internal/facts"
	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
)

func tref(fq string) facts.TypeRef {
	return facts.TypeRef{FQName: fq}
}

func buildFixtureIndex() *factindex.Index {
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{
		FQName: "com.a.web.UserController", PackageName: "com.a.web", SimpleName: "UserController",
		MethodCount: 3, FieldCount: 1,
	}, nil, nil, []facts.DependencyEdge{
		{From: tref("com.a.web.UserController"), To: tref("com.a.service.UserService"), Kind: facts.EdgeMethodCall, Detail: "find"},
	})
	b.AddClass(facts.ClassFact{
		FQName: "com.a.service.UserService", PackageName: "com.a.service", SimpleName: "UserService",
		MethodCount: 2, FieldCount: 0,
	}, nil, nil, nil)
	return b.Build()
}

func fixtureFindings() []finding.Finding {
	f1 := finding.Finding{
		RuleID: "arch.forbiddenRoleDependencies.controller", Message: "controller depends on repository directly",
		FilePath: "com/a/web/UserController.class", Severity: finding.SeverityError, ClassFqn: "com.a.web.UserController",
	}
	f1.Data.Set("targetRole", "repository")
	f2 := finding.Finding{
		RuleID: "metrics.maxMethods", Message: "too many methods", FilePath: "com/a/service/UserService.class",
		Severity: finding.SeverityWarning, ClassFqn: "com.a.service.UserService",
	}
	f2.Data.Set("count", "42")
	return []finding.Finding{f1, f2}
}

func testOptions(dir string, formats ...Format) Options {
	return Options{
		OutputDir: dir, Formats: formats, Overwrite: true, FactsEncoding: FactsEncodingJSON,
		ProjectName: "fixture", ToolVersion: "0.1.0-test", GeneratedAtMs: 1700000000000, RunID: "run-1",
	}
}

func TestExportJSONContainsSortedFindings(t *testing.T) {
	dir := t.TempDir()
	idx := buildFixtureIndex()
	opts := testOptions(dir, FormatJSON)
	if err := Export(fixtureFindings(), idx, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.json"))
	if err != nil {
		t.Fatalf("reading report.json: %v", err)
	}
	var report jsonReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("len(Findings) = %d, want 2", len(report.Findings))
	}
	// ERROR ranks before WARNING.
	if report.Findings[0].RuleID != "arch.forbiddenRoleDependencies.controller" {
		t.Errorf("Findings[0].RuleID = %q, want the ERROR finding first", report.Findings[0].RuleID)
	}
	if report.Findings[0].Data["targetRole"] != "repository" {
		t.Errorf("Findings[0].Data[targetRole] = %q", report.Findings[0].Data["targetRole"])
	}
	if report.SchemaID != SchemaID || report.ProjectName != "fixture" {
		t.Errorf("unexpected report header: %+v", report)
	}
}

func TestExportSARIFGroupsRuleIDsSorted(t *testing.T) {
	dir := t.TempDir()
	idx := buildFixtureIndex()
	opts := testOptions(dir, FormatSARIF)
	if err := Export(fixtureFindings(), idx, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.sarif"))
	if err != nil {
		t.Fatalf("reading report.sarif: %v", err)
	}
	var report sarifReport
	if err := json.Unmarshal(data, &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if report.Version != "2.1.0" {
		t.Errorf("Version = %q", report.Version)
	}
	run := report.Runs[0]
	if len(run.Tool.Driver.Rules) != 2 {
		t.Fatalf("len(Rules) = %d, want 2", len(run.Tool.Driver.Rules))
	}
	if run.Tool.Driver.Rules[0].ID != "arch.forbiddenRoleDependencies.controller" {
		t.Errorf("Rules[0].ID = %q, rules should sort lexicographically", run.Tool.Driver.Rules[0].ID)
	}
	if run.Results[0].Level != "error" || run.Results[1].Level != "warning" {
		t.Errorf("unexpected levels: %q, %q", run.Results[0].Level, run.Results[1].Level)
	}
}

func TestExportXMLRoundTrips(t *testing.T) {
	dir := t.TempDir()
	idx := buildFixtureIndex()
	opts := testOptions(dir, FormatXML)
	if err := Export(fixtureFindings(), idx, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.xml"))
	if err != nil {
		t.Fatalf("reading report.xml: %v", err)
	}
	var report xmlReport
	if err := xml.Unmarshal(data, &report); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(report.Findings) != 2 {
		t.Fatalf("len(Findings) = %d, want 2", len(report.Findings))
	}
	if report.Findings[0].Data[0].Key != "targetRole" || report.Findings[0].Data[0].Value != "repository" {
		t.Errorf("unexpected data entry: %+v", report.Findings[0].Data)
	}
}

func TestExportHTMLContainsFindingRows(t *testing.T) {
	dir := t.TempDir()
	idx := buildFixtureIndex()
	opts := testOptions(dir, FormatHTML)
	if err := Export(fixtureFindings(), idx, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "report.html"))
	if err != nil {
		t.Fatalf("reading report.html: %v", err)
	}
	html := string(data)
	for _, want := range []string{"UserController", "UserService", "<!DOCTYPE html>"} {
		if !strings.Contains(html, want) {
			t.Errorf("report.html missing %q:\n%s", want, html)
		}
	}
}

func TestExportOverwriteFalseFailsAllOrNothingWhenTargetExists(t *testing.T) {
	dir := t.TempDir()
	idx := buildFixtureIndex()

	if err := Export(fixtureFindings(), idx, testOptions(dir, FormatJSON)); err != nil {
		t.Fatalf("initial Export: %v", err)
	}

	opts := testOptions(dir, FormatJSON, FormatXML)
	opts.Overwrite = false
	err := Export(fixtureFindings(), idx, opts)
	if err == nil {
		t.Fatal("expected error when report.json already exists and Overwrite is false")
	}
	if _, statErr := os.Stat(filepath.Join(dir, "report.xml")); statErr == nil {
		t.Error("report.xml should not have been written: pre-flight must be all-or-nothing")
	}
}

func TestExportFactsJSONRoundTripsClassesAndEdges(t *testing.T) {
	dir := t.TempDir()
	idx := buildFixtureIndex()
	opts := testOptions(dir, FormatFACTS)
	opts.FactsEncoding = FactsEncodingJSON
	if err := Export(nil, idx, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}

	classes, edges, err := ReadFacts(filepath.Join(dir, "facts.json"), FactsEncodingJSON)
	if err != nil {
		t.Fatalf("ReadFacts: %v", err)
	}
	assertFactsRoundTrip(t, idx, classes, edges)
}

func TestExportFactsJSONLGZRoundTripsClassesAndEdges(t *testing.T) {
	dir := t.TempDir()
	idx := buildFixtureIndex()
	opts := testOptions(dir, FormatFACTS)
	opts.FactsEncoding = FactsEncodingJSONLGZ
	if err := Export(nil, idx, opts); err != nil {
		t.Fatalf("Export: %v", err)
	}

	classes, edges, err := ReadFacts(filepath.Join(dir, "facts.jsonl.gz"), FactsEncodingJSONLGZ)
	if err != nil {
		t.Fatalf("ReadFacts: %v", err)
	}
	assertFactsRoundTrip(t, idx, classes, edges)
}

func assertFactsRoundTrip(t *testing.T, idx *factindex.Index, classes []ClassRecord, edges []EdgeRecord) {
	t.Helper()
	if len(classes) != len(idx.Classes()) {
		t.Fatalf("len(classes) = %d, want %d", len(classes), len(idx.Classes()))
	}
	if len(edges) != len(idx.Edges()) {
		t.Fatalf("len(edges) = %d, want %d", len(edges), len(idx.Edges()))
	}

	gotClasses := make(map[string]bool, len(classes))
	for _, c := range classes {
		gotClasses[c.FQName] = true
	}
	for _, c := range idx.Classes() {
		if !gotClasses[c.FQName] {
			t.Errorf("missing class %q after round trip", c.FQName)
		}
	}

	gotEdges := make(map[string]bool, len(edges))
	for _, e := range edges {
		gotEdges[e.From+"\x00"+e.To+"\x00"+e.Edge+"\x00"+e.Detail] = true
	}
	for _, e := range idx.Edges() {
		key := e.From.FQName + "\x00" + e.To.FQName + "\x00" + string(e.Kind) + "\x00" + e.Detail
		if !gotEdges[key] {
			t.Errorf("missing edge %q after round trip", key)
		}
	}
}
