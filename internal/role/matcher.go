// Package role implements the RoleClassifier: it assigns at most one
// user-defined architectural role (controller, service, repository,
// …) to each scanned class, using a compiled tree of Matcher
// predicates evaluated in priority order. Classification runs once per
// engine invocation and its result (classToRole / roleToClasses) is
// installed on the shared factindex.Index before any rule executes.
package role

import (
	"fmt"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/shamash-asm/shamash/internal/facts"
)

// MatcherKind tags one node of the Matcher tree. Expressing the model
// as a tagged variant with one constructor per kind, rather than
// runtime type assertions on an arbitrary tree, keeps compilation and
// evaluation exhaustive and keeps the matcher immune to the addition of
// unrelated fields by later config changes.
type MatcherKind int

const (
	MatchAnyOf MatcherKind = iota
	MatchAllOf
	MatchNot
	MatchAnnotation
	MatchAnnotationPrefix
	MatchPackageRegex
	MatchPackageContainsSegment
	MatchClassNameEndsWith
)

var matcherKindNames = map[MatcherKind]string{
	MatchAnyOf:                  "anyOf",
	MatchAllOf:                  "allOf",
	MatchNot:                    "not",
	MatchAnnotation:             "annotation",
	MatchAnnotationPrefix:       "annotationPrefix",
	MatchPackageRegex:           "packageRegex",
	MatchPackageContainsSegment: "packageContainsSegment",
	MatchClassNameEndsWith:      "classNameEndsWith",
}

func (k MatcherKind) String() string { return matcherKindNames[k] }

// MarshalYAML renders a MatcherKind as its config-facing string name,
// so a written-out default configuration stays human-editable.
func (k MatcherKind) MarshalYAML() (any, error) {
	return k.String(), nil
}

// UnmarshalYAML accepts the config's string spelling of a matcher kind
// ("anyOf", "packageRegex", …) rather than a raw integer.
func (k *MatcherKind) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return fmt.Errorf("role: matcher kind must be a string: %w", err)
	}
	for kind, name := range matcherKindNames {
		if name == s {
			*k = kind
			return nil
		}
	}
	return fmt.Errorf("role: unknown matcher kind %q", s)
}

// MatcherDef is the uncompiled, YAML-decoded form of a Matcher tree
// node. Exactly one of the leaf fields, or Children (for AnyOf/AllOf),
// or Child (for Not) is populated per Kind.
type MatcherDef struct {
	Kind     MatcherKind  `yaml:"kind"`
	Children []MatcherDef `yaml:"children,omitempty"` // AnyOf, AllOf
	Child    *MatcherDef  `yaml:"child,omitempty"`    // Not

	Annotation             string `yaml:"annotation,omitempty"`             // Annotation, AnnotationPrefix
	PackageRegex           string `yaml:"packageRegex,omitempty"`           // PackageRegex
	PackageContainsSegment string `yaml:"packageContainsSegment,omitempty"` // PackageContainsSegment
	ClassNameEndsWith      string `yaml:"classNameEndsWith,omitempty"`      // ClassNameEndsWith
}

// compiledMatcher mirrors MatcherDef with regexes pre-compiled, built
// once at classifier construction and evaluated many times, so one
// compile pass is amortized across every scanned class.
type compiledMatcher struct {
	kind     MatcherKind
	children []*compiledMatcher
	child    *compiledMatcher

	annotation             string
	packageRegex           *regexp.Regexp
	packageContainsSegment string
	classNameEndsWith      string
}

// compile turns a MatcherDef tree into a compiledMatcher tree,
// compiling every PackageRegex node's pattern exactly once.
func compile(def MatcherDef) (*compiledMatcher, error) {
	m := &compiledMatcher{
		kind:                   def.Kind,
		annotation:             def.Annotation,
		packageContainsSegment: def.PackageContainsSegment,
		classNameEndsWith:      def.ClassNameEndsWith,
	}

	switch def.Kind {
	case MatchAnyOf, MatchAllOf:
		for _, c := range def.Children {
			cm, err := compile(c)
			if err != nil {
				return nil, err
			}
			m.children = append(m.children, cm)
		}
	case MatchNot:
		if def.Child == nil {
			return nil, fmt.Errorf("role: not matcher requires a child")
		}
		cm, err := compile(*def.Child)
		if err != nil {
			return nil, err
		}
		m.child = cm
	case MatchPackageRegex:
		re, err := regexp.Compile(def.PackageRegex)
		if err != nil {
			return nil, fmt.Errorf("role: invalid packageRegex %q: %w", def.PackageRegex, err)
		}
		m.packageRegex = re
	case MatchAnnotation, MatchAnnotationPrefix, MatchPackageContainsSegment, MatchClassNameEndsWith:
		// No compilation needed beyond copying the literal.
	default:
		return nil, fmt.Errorf("role: unknown matcher kind %d", def.Kind)
	}

	return m, nil
}

// matches evaluates the compiled tree against one class. anyOf
// short-circuits on the first true child, allOf on the first false
// child.
func (m *compiledMatcher) matches(c facts.ClassFact) bool {
	switch m.kind {
	case MatchAnyOf:
		for _, child := range m.children {
			if child.matches(c) {
				return true
			}
		}
		return false
	case MatchAllOf:
		for _, child := range m.children {
			if !child.matches(c) {
				return false
			}
		}
		return true
	case MatchNot:
		return !m.child.matches(c)
	case MatchAnnotation:
		for _, a := range c.Annotations {
			if a == m.annotation {
				return true
			}
		}
		return false
	case MatchAnnotationPrefix:
		for _, a := range c.Annotations {
			if strings.HasPrefix(a, m.annotation) {
				return true
			}
		}
		return false
	case MatchPackageRegex:
		return m.packageRegex.MatchString(c.PackageName)
	case MatchPackageContainsSegment:
		for _, seg := range strings.Split(c.PackageName, ".") {
			if seg == m.packageContainsSegment {
				return true
			}
		}
		return false
	case MatchClassNameEndsWith:
		return strings.HasSuffix(c.SimpleName, m.classNameEndsWith)
	default:
		return false
	}
}
