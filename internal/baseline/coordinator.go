package baseline

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/shamash-asm/shamash/internal/finding"
)

// Mode selects the BaselineCoordinator's behavior for one run.
type Mode int

const (
	ModeNone Mode = iota
	ModeGenerate
	ModeVerify
)

const baselineVersion = 1

// document is the on-disk baseline JSON shape: {"version":1,"fingerprints":[…sorted…]}.
type document struct {
	Version      int      `json:"version"`
	Fingerprints []string `json:"fingerprints"`
}

// Coordinator runs BaselineCoordinator's GENERATE/VERIFY/merge logic
// against a single baseline file path.
type Coordinator struct {
	Mode  Mode
	Path  string
	Merge bool
}

// Apply runs the coordinator against findings, returning the findings
// that survive (all of them for GENERATE/NONE; VERIFY drops anything
// whose fingerprint is already recorded).
func (c *Coordinator) Apply(findings []finding.Finding) ([]finding.Finding, error) {
	switch c.Mode {
	case ModeGenerate:
		return findings, c.generate(findings)
	case ModeVerify:
		return c.verify(findings)
	default:
		return findings, nil
	}
}

func (c *Coordinator) generate(findings []finding.Finding) error {
	fps := make(map[string]bool, len(findings))
	for _, f := range findings {
		fps[Fingerprint(f)] = true
	}

	if c.Merge {
		if existing, err := loadDocument(c.Path); err == nil {
			for _, fp := range existing.Fingerprints {
				fps[fp] = true
			}
		}
	}

	sorted := make([]string, 0, len(fps))
	for fp := range fps {
		sorted = append(sorted, fp)
	}
	sort.Strings(sorted)

	return writeDocument(c.Path, document{Version: baselineVersion, Fingerprints: sorted})
}

func (c *Coordinator) verify(findings []finding.Finding) ([]finding.Finding, error) {
	doc, err := loadDocument(c.Path)
	if os.IsNotExist(err) {
		return findings, nil
	}
	if err != nil {
		return nil, fmt.Errorf("baseline: %w", err)
	}
	if doc.Version != baselineVersion {
		return nil, fmt.Errorf("baseline: unsupported version %d (want %d)", doc.Version, baselineVersion)
	}

	known := make(map[string]bool, len(doc.Fingerprints))
	for _, fp := range doc.Fingerprints {
		known[fp] = true
	}

	out := make([]finding.Finding, 0, len(findings))
	for _, f := range findings {
		if known[Fingerprint(f)] {
			continue
		}
		out = append(out, f)
	}
	return out, nil
}

func loadDocument(path string) (document, error) {
	var doc document
	data, err := os.ReadFile(path)
	if err != nil {
		return doc, err
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		return doc, fmt.Errorf("parsing baseline %s: %w", path, err)
	}
	return doc, nil
}

// writeDocument persists doc via a temp-file-then-rename, so a reader
// never observes a partially-written baseline.
func writeDocument(path string, doc document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling baseline: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating baseline dir %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, ".baseline-*.tmp")
	if err != nil {
		return fmt.Errorf("creating temp baseline file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp baseline file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp baseline file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		// Fall back to a non-atomic replace on platforms where rename
		// across the temp file can't replace an existing target.
		if writeErr := os.WriteFile(path, data, 0o644); writeErr != nil {
			os.Remove(tmpPath)
			return fmt.Errorf("replacing baseline file: %w", writeErr)
		}
		os.Remove(tmpPath)
	}

	return nil
}
