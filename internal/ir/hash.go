package ir

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
)

// Domain prefixes for content-addressed identity.
// Version suffix enables future algorithm migration.
const (
	DomainSuggestion = "expo/suggestion/v1"
	DomainSequence   = "expo/sequence/v1"
)

// ShortIDLength is the display length of a suggestion id prefix.
const ShortIDLength = 12

// hashWithDomain computes SHA-256 hash with domain separation.
// Format: SHA256(domain + 0x00 + data)
// The null byte (0x00) separator prevents domain/data boundary ambiguity.
func hashWithDomain(domain string, data []byte) string {
	h := sha256.New()
	h.Write([]byte(domain))
	h.Write([]byte{0x00})
	h.Write(data)
	return hex.EncodeToString(h.Sum(nil))
}

// SuggestionID computes the content-addressed id of a suggestion.
//
// The id covers type, severity, the ordered table ids and the impact. The
// description and action text are excluded so rewording them never
// invalidates an id a host is holding. Two analyses of the same sequence
// yield the same ids; once the sequence changes enough that a suggestion is
// no longer produced, its id stops resolving (see engine.ErrCodeStaleSuggestion).
func SuggestionID(s Suggestion) (string, error) {
	obj := map[string]any{
		"type":      string(s.Type),
		"severity":  string(s.Severity),
		"table_ids": s.TableIDs,
	}
	if s.ImpactMinutes != nil {
		obj["impact_minutes"] = *s.ImpactMinutes
	}
	if s.TableIDs == nil {
		obj["table_ids"] = []string{}
	}

	canonical, err := MarshalCanonical(obj)
	if err != nil {
		return "", fmt.Errorf("SuggestionID: failed to marshal: %w", err)
	}

	return hashWithDomain(DomainSuggestion, canonical), nil
}

// MustSuggestionID is like SuggestionID but panics on error.
// Suggestions built by the analyzers always marshal; use it for those.
func MustSuggestionID(s Suggestion) string {
	id, err := SuggestionID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// SequenceHash fingerprints a firing sequence. Order matters.
func SequenceHash(seq Sequence) string {
	canonical, err := MarshalCanonical(seq.Clone())
	if err != nil {
		// []string always marshals; unreachable
		panic(err)
	}
	return hashWithDomain(DomainSequence, canonical)
}

// ShortID truncates an id for display.
func ShortID(id string) string {
	if len(id) <= ShortIDLength {
		return id
	}
	return id[:ShortIDLength]
}

// MatchID reports whether candidate is full id or a prefix of it (case-insensitive).
func MatchID(id, candidate string) bool {
	if candidate == "" {
		return false
	}
	return strings.HasPrefix(id, strings.ToLower(candidate))
}
