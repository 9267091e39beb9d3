package role

import (
	"testing"

	"github.com/shamash-asm/shamash/internal/facts"
)

func TestClassifyFirstMatchWins(t *testing.T) {
	defs := []RoleDef{
		{ID: "controller", Priority: 10, Match: MatcherDef{Kind: MatchPackageContainsSegment, PackageContainsSegment: "web"}},
		{ID: "service", Priority: 5, Match: MatcherDef{Kind: MatchClassNameEndsWith, ClassNameEndsWith: "Service"}},
	}
	c, err := NewClassifier(defs)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	classes := []facts.ClassFact{
		{FQName: "com.a.web.UserController", PackageName: "com.a.web", SimpleName: "UserController"},
		{FQName: "com.a.svc.UserService", PackageName: "com.a.svc", SimpleName: "UserService"},
		{FQName: "com.a.misc.Unrelated", PackageName: "com.a.misc", SimpleName: "Unrelated"},
	}

	res := c.Classify(classes)
	if res.ClassToRole["com.a.web.UserController"] != "controller" {
		t.Errorf("UserController role = %q", res.ClassToRole["com.a.web.UserController"])
	}
	if res.ClassToRole["com.a.svc.UserService"] != "service" {
		t.Errorf("UserService role = %q", res.ClassToRole["com.a.svc.UserService"])
	}
	if _, ok := res.ClassToRole["com.a.misc.Unrelated"]; ok {
		t.Error("Unrelated should not be classified")
	}
	if !res.RoleToClasses["controller"]["com.a.web.UserController"] {
		t.Error("RoleToClasses missing controller->UserController")
	}
}

func TestClassifyPriorityTieBreakByIDAscending(t *testing.T) {
	// Two roles both match at equal priority 10: "special" (id ascending) must win over "svc".
	defs := []RoleDef{
		{ID: "svc", Priority: 10, Match: MatcherDef{Kind: MatchClassNameEndsWith, ClassNameEndsWith: "Service"}},
		{ID: "special", Priority: 10, Match: MatcherDef{Kind: MatchClassNameEndsWith, ClassNameEndsWith: "Service"}},
	}
	c, err := NewClassifier(defs)
	if err != nil {
		t.Fatalf("NewClassifier: %v", err)
	}

	classes := []facts.ClassFact{{FQName: "com.a.UserService", SimpleName: "UserService"}}
	res := c.Classify(classes)
	if res.ClassToRole["com.a.UserService"] != "special" {
		t.Errorf("role = %q, want special (id ascending tie-break)", res.ClassToRole["com.a.UserService"])
	}
}

func TestMatcherAnyOfAllOfNot(t *testing.T) {
	def := MatcherDef{
		Kind: MatchAllOf,
		Children: []MatcherDef{
			{Kind: MatchPackageContainsSegment, PackageContainsSegment: "web"},
			{Kind: MatchNot, Child: &MatcherDef{Kind: MatchClassNameEndsWith, ClassNameEndsWith: "Test"}},
		},
	}
	cm, err := compile(def)
	if err != nil {
		t.Fatalf("compile: %v", err)
	}

	ok := cm.matches(facts.ClassFact{PackageName: "com.a.web", SimpleName: "UserController"})
	if !ok {
		t.Error("expected match")
	}
	bad := cm.matches(facts.ClassFact{PackageName: "com.a.web", SimpleName: "UserControllerTest"})
	if bad {
		t.Error("expected no match (Not clause excludes *Test)")
	}
}

func TestMatcherAnnotationAndPrefix(t *testing.T) {
	exact, _ := compile(MatcherDef{Kind: MatchAnnotation, Annotation: "org.springframework.stereotype.Controller"})
	prefix, _ := compile(MatcherDef{Kind: MatchAnnotationPrefix, Annotation: "org.springframework.web"})

	class := facts.ClassFact{Annotations: []string{"org.springframework.stereotype.Controller", "javax.inject.Singleton"}}

	if !exact.matches(class) {
		t.Error("expected exact annotation match")
	}
	if prefix.matches(class) {
		t.Error("expected no prefix match for org.springframework.web")
	}

	webClass := facts.ClassFact{Annotations: []string{"org.springframework.web.bind.annotation.RestController"}}
	if !prefix.matches(webClass) {
		t.Error("expected prefix match")
	}
}

func TestNewClassifierRejectsInvalidRegex(t *testing.T) {
	_, err := NewClassifier([]RoleDef{
		{ID: "broken", Match: MatcherDef{Kind: MatchPackageRegex, PackageRegex: "(unterminated"}},
	})
	if err == nil {
		t.Fatal("expected error for invalid packageRegex")
	}
}
