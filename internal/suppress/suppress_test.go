package suppress

import (
	"testing"

	"github.com/shamash-asm/shamash/internal/finding"
)

func TestApplySuppressesExactRuleIDMatch(t *testing.T) {
	s, err := Compile([]ExceptionDef{
		{ID: "legacy", Enabled: true, Match: ExceptionMatch{RuleID: "arch.forbiddenRoleDependencies.controller"}},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	findings := []finding.Finding{
		{RuleID: "arch.forbiddenRoleDependencies.controller", FilePath: "a.class"},
		{RuleID: "arch.forbiddenRoleDependencies.service", FilePath: "b.class"},
	}

	out := s.Apply(findings, func(finding.Finding) Context { return Context{} })
	if len(out) != 1 || out[0].RuleID != "arch.forbiddenRoleDependencies.service" {
		t.Errorf("out = %+v", out)
	}
}

func TestApplyRequiresAllPopulatedFieldsToMatch(t *testing.T) {
	s, err := Compile([]ExceptionDef{
		{ID: "scoped", Enabled: true, Match: ExceptionMatch{
			RuleType:          "arch",
			ClassInternalName: "com/a/Legacy",
		}},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	matchCtx := Context{ClassInternalName: "com/a/Legacy"}
	noMatchCtx := Context{ClassInternalName: "com/a/Other"}

	f := finding.Finding{RuleID: "arch.allowedPackages", ClassFqn: "com.a.Legacy"}

	suppressed, _ := s.IsSuppressed(f, matchCtx)
	if !suppressed {
		t.Error("expected suppression when both fields match")
	}
	suppressed2, _ := s.IsSuppressed(f, noMatchCtx)
	if suppressed2 {
		t.Error("expected no suppression when classInternalName field doesn't match")
	}
}

func TestApplyDisabledExceptionNeverSuppresses(t *testing.T) {
	s, err := Compile([]ExceptionDef{
		{ID: "off", Enabled: false, Match: ExceptionMatch{RuleID: "arch.allowedPackages"}},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	f := finding.Finding{RuleID: "arch.allowedPackages"}
	suppressed, _ := s.IsSuppressed(f, Context{})
	if suppressed {
		t.Error("disabled exception must never suppress")
	}
}

func TestApplyRoleMatchesThirdCanonicalSegment(t *testing.T) {
	s, err := Compile([]ExceptionDef{
		{ID: "role-scoped", Enabled: true, Match: ExceptionMatch{Roles: []string{"controller"}}},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	controllerFinding := finding.Finding{RuleID: "arch.forbiddenRoleDependencies.controller"}
	serviceFinding := finding.Finding{RuleID: "arch.forbiddenRoleDependencies.service"}
	wildcardFinding := finding.Finding{RuleID: "arch.forbiddenRoleDependencies"}

	if s, _ := s.IsSuppressed(controllerFinding, Context{}); !s {
		t.Error("expected controller-role finding suppressed")
	}
	if s, _ := s.IsSuppressed(serviceFinding, Context{}); s {
		t.Error("expected service-role finding not suppressed")
	}
	if s, _ := s.IsSuppressed(wildcardFinding, Context{}); s {
		t.Error("expected role-less (2-segment) finding not suppressed when roles filter set")
	}
}

func TestApplyGlobMatchesFilePath(t *testing.T) {
	s, err := Compile([]ExceptionDef{
		{ID: "generated", Enabled: true, Match: ExceptionMatch{Glob: "**/generated/**"}},
	})
	if err != nil {
		t.Fatalf("Compile: %v", err)
	}

	genFinding := finding.Finding{RuleID: "x.y", FilePath: "build/generated/Foo.class"}
	srcFinding := finding.Finding{RuleID: "x.y", FilePath: "src/Foo.class"}

	if s, _ := s.IsSuppressed(genFinding, Context{}); !s {
		t.Error("expected generated-path finding suppressed")
	}
	if s, _ := s.IsSuppressed(srcFinding, Context{}); s {
		t.Error("expected src-path finding not suppressed")
	}
}

func TestCompileRejectsInvalidRegex(t *testing.T) {
	_, err := Compile([]ExceptionDef{
		{ID: "bad", Match: ExceptionMatch{ClassNameRegex: "(unterminated"}},
	})
	if err == nil {
		t.Fatal("expected error for invalid classNameRegex")
	}
}
