// Package baseline implements the BaselineCoordinator: GENERATE mode
// fingerprints every current finding and persists them; VERIFY mode
// drops findings whose fingerprint was already recorded, so re-running
// the engine on unchanged code reports nothing new.
package baseline

import (
	"crypto/sha256"
	"encoding/hex"
	"strconv"
	"strings"

	"github.com/shamash-asm/shamash/internal/finding"
)

// Fingerprint computes a SHA-256 identity for f that deliberately
// excludes the human-readable message, so rewording a rule's message
// text never invalidates an existing baseline.
func Fingerprint(f finding.Finding) string {
	parts := []string{
		f.RuleID,
		f.Severity.String(),
		f.FilePath,
		f.ClassFqn,
		f.MemberName,
		strconv.Itoa(f.StartOffset),
		strconv.Itoa(f.EndOffset),
	}
	parts = append(parts, f.Data.SortedKeyValuePairs()...)

	h := sha256.New()
	h.Write([]byte(strings.Join(parts, "|")))
	return hex.EncodeToString(h.Sum(nil))
}
