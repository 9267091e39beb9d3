package rules

import (
	"testing"

	"github.com/shamash-asm/shamash/internal/facts"
	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
)

func tref(fq string) facts.TypeRef { return facts.TypeRef{FQName: fq} }

func buildS1Index(t *testing.T) *factindex.Index {
	t.Helper()
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.web.UserController", PackageName: "com.a.web", SimpleName: "UserController"}, nil, nil, []facts.DependencyEdge{
		{From: tref("com.a.web.UserController"), To: tref("com.a.db.UserRepo"), Kind: facts.EdgeMethodCall},
	})
	b.AddClass(facts.ClassFact{FQName: "com.a.db.UserRepo", PackageName: "com.a.db", SimpleName: "UserRepo"}, nil, nil, nil)
	idx := b.Build()
	idx.AssignRoles(
		map[string]string{"com.a.web.UserController": "controller", "com.a.db.UserRepo": "repository"},
		map[string]map[string]bool{
			"controller": {"com.a.web.UserController": true},
			"repository": {"com.a.db.UserRepo": true},
		},
	)
	return idx
}

func TestForbiddenRoleDependenciesDirectMode(t *testing.T) {
	idx := buildS1Index(t)
	rule := &ForbiddenRoleDependenciesRule{}
	def := RuleDef{
		Type: "arch", Name: "forbiddenRoleDependencies", Enabled: true, Severity: finding.SeverityError,
		Params: map[string]any{"forbid": []string{"controller->repository"}, "mode": "direct"},
	}
	findings, err := rule.Evaluate(idx, def, NewParamReader(def.BaseID(), def.Params))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
	f := findings[0]
	if f.ClassFqn != "com.a.web.UserController" {
		t.Errorf("ClassFqn = %q", f.ClassFqn)
	}
	if v, _ := f.Data.Get("fromRole"); v != "controller" {
		t.Errorf("fromRole = %q", v)
	}
	if v, _ := f.Data.Get("toRole"); v != "repository" {
		t.Errorf("toRole = %q", v)
	}
	if v, _ := f.Data.Get("mode"); v != "direct" {
		t.Errorf("mode = %q", v)
	}
	if v, _ := f.Data.Get("examples"); v != "com.a.web.UserController->com.a.db.UserRepo" {
		t.Errorf("examples = %q", v)
	}
}

func TestForbiddenRoleDependenciesTransitiveMode(t *testing.T) {
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.web.UserController", PackageName: "com.a.web"}, nil, nil, []facts.DependencyEdge{
		{From: tref("com.a.web.UserController"), To: tref("com.a.svc.UserService"), Kind: facts.EdgeMethodCall},
	})
	b.AddClass(facts.ClassFact{FQName: "com.a.svc.UserService", PackageName: "com.a.svc"}, nil, nil, []facts.DependencyEdge{
		{From: tref("com.a.svc.UserService"), To: tref("com.a.db.UserRepo"), Kind: facts.EdgeMethodCall},
	})
	b.AddClass(facts.ClassFact{FQName: "com.a.db.UserRepo", PackageName: "com.a.db"}, nil, nil, nil)
	idx := b.Build()
	idx.AssignRoles(
		map[string]string{
			"com.a.web.UserController": "controller",
			"com.a.svc.UserService":    "service",
			"com.a.db.UserRepo":        "repository",
		},
		map[string]map[string]bool{
			"controller": {"com.a.web.UserController": true},
			"service":    {"com.a.svc.UserService": true},
			"repository": {"com.a.db.UserRepo": true},
		},
	)

	rule := &ForbiddenRoleDependenciesRule{}
	def := RuleDef{
		Type: "arch", Name: "forbiddenRoleDependencies", Enabled: true, Severity: finding.SeverityError,
		Params: map[string]any{"forbid": []string{"controller->repository"}, "mode": "transitive"},
	}
	findings, err := rule.Evaluate(idx, def, NewParamReader(def.BaseID(), def.Params))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
	if v, _ := findings[0].Data.Get("path"); v != "controller -> service -> repository" {
		t.Errorf("path = %q", v)
	}
}

func TestAllowedPackagesFlagsNonMatchingPackage(t *testing.T) {
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.web.Foo", PackageName: "com.a.web", SimpleName: "Foo"}, nil, nil, nil)
	b.AddClass(facts.ClassFact{FQName: "com.a.util.Bar", PackageName: "com.a.util", SimpleName: "Bar"}, nil, nil, nil)
	idx := b.Build()
	idx.AssignRoles(map[string]string{}, map[string]map[string]bool{})

	rule := &AllowedPackagesRule{}
	def := RuleDef{
		Type: "arch", Name: "allowedPackages", Enabled: true, Severity: finding.SeverityWarning,
		Params: map[string]any{"allowPackages": []string{`^com\.a\.(web|svc)$`}},
	}
	findings, err := rule.Evaluate(idx, def, NewParamReader(def.BaseID(), def.Params))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
	if findings[0].ClassFqn != "com.a.util.Bar" {
		t.Errorf("ClassFqn = %q, want com.a.util.Bar", findings[0].ClassFqn)
	}
}

func TestForbiddenPackagesFlagsMatchingPackage(t *testing.T) {
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.legacy.Foo", PackageName: "com.a.legacy"}, nil, nil, nil)
	idx := b.Build()
	idx.AssignRoles(map[string]string{}, map[string]map[string]bool{})

	rule := &ForbiddenPackagesRule{}
	def := RuleDef{
		Type: "arch", Name: "forbiddenPackages", Enabled: true, Severity: finding.SeverityError,
		Params: map[string]any{"forbidPackages": []string{`^com\.a\.legacy`}},
	}
	findings, err := rule.Evaluate(idx, def, NewParamReader(def.BaseID(), def.Params))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
}

func buildDenseIndex(t *testing.T, fanInTargetEdges int) *factindex.Index {
	t.Helper()
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.Target", PackageName: "com.a"}, nil, nil, nil)
	for i := 0; i < fanInTargetEdges; i++ {
		name := "com.a.Src" + string(rune('A'+i))
		b.AddClass(facts.ClassFact{FQName: name, PackageName: "com.a"}, nil, nil, []facts.DependencyEdge{
			{From: tref(name), To: tref("com.a.Target"), Kind: facts.EdgeMethodCall},
		})
	}
	idx := b.Build()
	idx.AssignRoles(map[string]string{}, map[string]map[string]bool{})
	return idx
}

func TestMaxFanInFlagsExceedingNode(t *testing.T) {
	idx := buildDenseIndex(t, 3)
	rule := &MaxFanInRule{}
	def := RuleDef{Type: "metrics", Name: "maxFanIn", Enabled: true, Severity: finding.SeverityWarning, Params: map[string]any{"max": 2}}
	findings, err := rule.Evaluate(idx, def, NewParamReader(def.BaseID(), def.Params))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(findings) != 1 || findings[0].ClassFqn != "com.a.Target" {
		t.Fatalf("findings = %+v", findings)
	}
}

func TestMaxMethodsFlagsOverThreshold(t *testing.T) {
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.Big", PackageName: "com.a", MethodCount: 50}, nil, nil, nil)
	idx := b.Build()
	idx.AssignRoles(map[string]string{}, map[string]map[string]bool{})

	rule := &MaxMethodsRule{}
	def := RuleDef{Type: "metrics", Name: "maxMethods", Enabled: true, Severity: finding.SeverityWarning, Params: map[string]any{"max": 20}}
	findings, err := rule.Evaluate(idx, def, NewParamReader(def.BaseID(), def.Params))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
}

func TestDeadcodeUnreachableSkipsMainAndEntryPoint(t *testing.T) {
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.Main", PackageName: "com.a", HasMainMethod: true}, nil, nil, nil)
	b.AddClass(facts.ClassFact{FQName: "com.a.Hook", PackageName: "com.a", Annotations: []string{"com.a.anno.EntryPoint"}}, nil, nil, nil)
	b.AddClass(facts.ClassFact{FQName: "com.a.Orphan", PackageName: "com.a"}, nil, nil, nil)
	idx := b.Build()
	idx.AssignRoles(map[string]string{}, map[string]map[string]bool{})

	rule := &DeadcodeUnreachableRule{}
	def := RuleDef{Type: "deadcode", Name: "unreachable", Enabled: true, Severity: finding.SeverityWarning}
	findings, err := rule.Evaluate(idx, def, NewParamReader(def.BaseID(), nil))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(findings) != 1 || findings[0].ClassFqn != "com.a.Orphan" {
		t.Fatalf("findings = %+v", findings)
	}
}

func TestBannedSuffixesFlagsMatch(t *testing.T) {
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.UserImpl", PackageName: "com.a", SimpleName: "UserImpl"}, nil, nil, nil)
	b.AddClass(facts.ClassFact{FQName: "com.a.User", PackageName: "com.a", SimpleName: "User"}, nil, nil, nil)
	idx := b.Build()
	idx.AssignRoles(map[string]string{}, map[string]map[string]bool{})

	rule := &BannedSuffixesRule{}
	def := RuleDef{Type: "naming", Name: "bannedSuffixes", Enabled: true, Severity: finding.SeverityWarning, Params: map[string]any{"banned": []string{"Impl"}}}
	findings, err := rule.Evaluate(idx, def, NewParamReader(def.BaseID(), def.Params))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(findings) != 1 || findings[0].ClassFqn != "com.a.UserImpl" {
		t.Fatalf("findings = %+v", findings)
	}
}

func TestRolePlacementFlagsMismatchedPackage(t *testing.T) {
	b := factindex.NewBuilder()
	b.AddClass(facts.ClassFact{FQName: "com.a.util.UserController", PackageName: "com.a.util"}, nil, nil, nil)
	idx := b.Build()
	idx.AssignRoles(
		map[string]string{"com.a.util.UserController": "controller"},
		map[string]map[string]bool{"controller": {"com.a.util.UserController": true}},
	)

	rule := &RolePlacementRule{}
	def := RuleDef{Type: "packages", Name: "rolePlacement", Enabled: true, Severity: finding.SeverityWarning, Params: map[string]any{
		"expected": map[string]any{
			"controller": map[string]any{"packageRegex": `^com\.a\.web`},
		},
	}}
	findings, err := rule.Evaluate(idx, def, NewParamReader(def.BaseID(), def.Params))
	if err != nil {
		t.Fatalf("Evaluate error: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1", len(findings))
	}
}

func TestEngineExpandsRoleInstancesAndDedups(t *testing.T) {
	idx := buildS1Index(t)
	engine := NewEngine(NewDefaultRegistry())
	defs := []RuleDef{{
		Type: "arch", Name: "forbiddenRoleDependencies", Enabled: true, Severity: finding.SeverityError,
		Roles: []string{"controller", "repository"},
		Params: map[string]any{"forbid": []string{"controller->repository"}, "mode": "direct"},
	}}
	findings, errs := engine.Run(idx, defs)
	if len(errs) != 0 {
		t.Fatalf("unexpected engine errors: %v", errs)
	}
	if len(findings) != 1 {
		t.Fatalf("len(findings) = %d, want 1 (instance for role repository has no outgoing edges to scope against)", len(findings))
	}
	if findings[0].RuleID != "arch.forbiddenRoleDependencies.controller" {
		t.Errorf("RuleID = %q", findings[0].RuleID)
	}
}

func TestEngineRecordsParamErrorWithoutAbortingOtherRules(t *testing.T) {
	idx := buildS1Index(t)
	engine := NewEngine(NewDefaultRegistry())
	defs := []RuleDef{
		{Type: "arch", Name: "forbiddenRoleDependencies", Enabled: true, Severity: finding.SeverityError, Params: map[string]any{"mode": "direct"}},
		{Type: "metrics", Name: "maxFanIn", Enabled: true, Severity: finding.SeverityWarning, Params: map[string]any{"max": 0}},
	}
	findings, errs := engine.Run(idx, defs)
	if len(errs) != 1 || errs[0].Kind != RuleParamError {
		t.Fatalf("errs = %+v, want one RuleParamError", errs)
	}
	if len(findings) == 0 {
		t.Fatalf("expected the second rule to still have run")
	}
}

func TestEngineRecordsUnregisteredRuleAsNotFound(t *testing.T) {
	idx := buildS1Index(t)
	engine := NewEngine(NewRegistry())
	defs := []RuleDef{{Type: "custom", Name: "doesNotExist", Enabled: true}}
	_, errs := engine.Run(idx, defs)
	if len(errs) != 1 || errs[0].Kind != RuleNotFound {
		t.Fatalf("errs = %+v", errs)
	}
}

func TestEngineSkipsDisabledRuleDefs(t *testing.T) {
	idx := buildS1Index(t)
	engine := NewEngine(NewDefaultRegistry())
	defs := []RuleDef{{Type: "metrics", Name: "maxFanIn", Enabled: false, Params: map[string]any{"max": 0}}}
	findings, errs := engine.Run(idx, defs)
	if len(findings) != 0 || len(errs) != 0 {
		t.Fatalf("findings=%v errs=%v, want none (disabled)", findings, errs)
	}
}
