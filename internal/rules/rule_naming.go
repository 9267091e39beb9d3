package rules

import (
	"fmt"
	"strings"

	"github.com/shamash-asm/shamash/internal/factindex"
	"github.com/shamash-asm/shamash/internal/finding"
)

// BannedSuffixesRule implements naming.bannedSuffixes: a class whose
// simple name ends in any banned suffix gets a finding.
type BannedSuffixesRule struct{}

func (r *BannedSuffixesRule) ID() string { return "naming.bannedSuffixes" }

func (r *BannedSuffixesRule) Evaluate(idx *factindex.Index, def RuleDef, params ParamReader) ([]finding.Finding, error) {
	banned, err := params.StringSlice("banned", true)
	if err != nil {
		return nil, err
	}

	cs, err := compileScope(def.Scope)
	if err != nil {
		return nil, fmt.Errorf("compiling scope: %w", err)
	}

	var findings []finding.Finding
	for _, class := range inScopeClasses(idx, cs) {
		suffix, ok := matchedBannedSuffix(class.SimpleName, banned)
		if !ok {
			continue
		}
		findings = append(findings, finding.Finding{
			Message:  fmt.Sprintf("class name %q ends in banned suffix %q", class.SimpleName, suffix),
			ClassFqn: class.FQName, FilePath: class.Location.DisplayPath(), Severity: def.Severity,
			Data: finding.NewData([2]string{"suffix", suffix}),
		})
	}
	return findings, nil
}

func matchedBannedSuffix(name string, banned []string) (string, bool) {
	for _, suffix := range banned {
		if suffix != "" && strings.HasSuffix(name, suffix) {
			return suffix, true
		}
	}
	return "", false
}
