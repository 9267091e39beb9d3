// Package finding defines Finding, the common unit every rule emits
// and every later stage (suppression, baseline, analysis, export)
// consumes. It intentionally holds no behavior beyond ordering and
// dedup identity; those are cross-cutting concerns every consumer
// needs the same way.
package finding

import (
	"fmt"
	"sort"
	"strings"
)

// Severity ranks a Finding for sorting and for SARIF/export mapping.
type Severity int

const (
	SeverityInfo Severity = iota
	SeverityWarning
	SeverityError
)

func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "ERROR"
	case SeverityWarning:
		return "WARNING"
	default:
		return "INFO"
	}
}

// ParseSeverity parses the config-facing string form, defaulting to
// SeverityWarning for an unrecognized value.
func ParseSeverity(s string) Severity {
	switch strings.ToUpper(s) {
	case "ERROR":
		return SeverityError
	case "INFO":
		return SeverityInfo
	default:
		return SeverityWarning
	}
}

// Data is an insertion-ordered string→string map. Findings need
// reproducible key order (for fingerprinting and for the JSON/XML/SARIF
// exporters), which a plain Go map cannot provide.
type Data struct {
	keys   []string
	values map[string]string
}

// NewData builds a Data set from key/value pairs given in the order
// they should be retained; a repeated key overwrites the earlier value
// but keeps its original position.
func NewData(pairs ...[2]string) Data {
	d := Data{values: make(map[string]string, len(pairs))}
	for _, p := range pairs {
		d.Set(p[0], p[1])
	}
	return d
}

// Set inserts or overwrites one key, preserving first-insertion order.
func (d *Data) Set(key, value string) {
	if d.values == nil {
		d.values = make(map[string]string)
	}
	if _, exists := d.values[key]; !exists {
		d.keys = append(d.keys, key)
	}
	d.values[key] = value
}

// Get returns a key's value and whether it was present.
func (d Data) Get(key string) (string, bool) {
	v, ok := d.values[key]
	return v, ok
}

// Keys returns keys in insertion order.
func (d Data) Keys() []string { return d.keys }

// SortedKeyValuePairs returns "key=value" strings sorted by key, used
// by the baseline fingerprint.
func (d Data) SortedKeyValuePairs() []string {
	keys := append([]string{}, d.keys...)
	sort.Strings(keys)
	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, fmt.Sprintf("%s=%s", k, d.values[k]))
	}
	return out
}

// Finding is one rule violation. RuleID is canonical: "type.name" or
// "type.name.role".
type Finding struct {
	RuleID      string
	Message     string
	FilePath    string // forward-slash normalized
	Severity    Severity
	ClassFqn    string // "" if not class-scoped
	MemberName  string // "" if not member-scoped
	StartOffset int    // 0 if unknown
	EndOffset   int    // 0 if unknown
	Data        Data
}

// Role returns the finding's role scope: the canonical ruleId's third
// dot-separated segment, or "" if the id has only two segments.
func (f Finding) Role() string {
	parts := strings.SplitN(f.RuleID, ".", 3)
	if len(parts) < 3 {
		return ""
	}
	return parts[2]
}

// Type returns the canonical ruleId's first segment, e.g. "arch" for
// "arch.forbiddenRoleDependencies.controller".
func (f Finding) Type() string {
	parts := strings.SplitN(f.RuleID, ".", 2)
	return parts[0]
}

// Name returns the canonical ruleId's base name (second segment),
// without the role suffix.
func (f Finding) Name() string {
	parts := strings.SplitN(f.RuleID, ".", 3)
	if len(parts) < 2 {
		return ""
	}
	return parts[1]
}

// IdentityKey is the dedup identity used when accumulating findings
// across rule instances.
func (f Finding) IdentityKey() string {
	return strings.Join([]string{
		f.RuleID, f.FilePath, f.ClassFqn, f.MemberName,
		fmt.Sprintf("%d", f.StartOffset), fmt.Sprintf("%d", f.EndOffset), f.Message,
	}, "\x00")
}

// rank orders ERROR before WARNING before INFO for the
// canonical emission sort.
func (s Severity) rank() int {
	switch s {
	case SeverityError:
		return 0
	case SeverityWarning:
		return 1
	default:
		return 2
	}
}

// Sort orders findings by (severity-rank, filePath, classFqn,
// memberName, ruleId, message) and is stable.
func Sort(findings []Finding) {
	sort.SliceStable(findings, func(i, j int) bool {
		a, b := findings[i], findings[j]
		if a.Severity.rank() != b.Severity.rank() {
			return a.Severity.rank() < b.Severity.rank()
		}
		if a.FilePath != b.FilePath {
			return a.FilePath < b.FilePath
		}
		if a.ClassFqn != b.ClassFqn {
			return a.ClassFqn < b.ClassFqn
		}
		if a.MemberName != b.MemberName {
			return a.MemberName < b.MemberName
		}
		if a.RuleID != b.RuleID {
			return a.RuleID < b.RuleID
		}
		return a.Message < b.Message
	})
}

// Dedup removes findings with a duplicate IdentityKey, keeping the
// first occurrence, then applies Sort.
func Dedup(findings []Finding) []Finding {
	seen := make(map[string]bool, len(findings))
	out := make([]Finding, 0, len(findings))
	for _, f := range findings {
		k := f.IdentityKey()
		if seen[k] {
			continue
		}
		seen[k] = true
		out = append(out, f)
	}
	Sort(out)
	return out
}
