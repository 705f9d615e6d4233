// Package strain provides the concrete virus payload used by the CLI and the
// scenario harness: a strain identified by a normalized string ID.
package strain

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"

	"github.com/roach88/genealogy/internal/genealogy"
)

// DomainStrain is the hash domain for strain fingerprints.
// Version suffix enables future algorithm migration.
const DomainStrain = "genealogy/strain/v1"

// MaxIDLength bounds identifiers in bytes after normalization.
const MaxIDLength = 128

// ID identifies a strain. IDs compare and order as plain strings.
type ID string

// ParseID normalizes raw to NFC, trims surrounding whitespace and rejects
// empty, oversized or control-character identifiers.
//
// Two spellings of the same text (precomposed vs. combining marks) parse to
// the same ID, so they cannot coexist in one genealogy.
func ParseID(raw string) (ID, error) {
	s := norm.NFC.String(strings.TrimSpace(raw))
	if s == "" {
		return "", fmt.Errorf("strain id is empty")
	}
	if len(s) > MaxIDLength {
		return "", fmt.Errorf("strain id %q exceeds %d bytes", s, MaxIDLength)
	}
	for _, r := range s {
		if unicode.IsControl(r) {
			return "", fmt.Errorf("strain id %q contains control character %U", s, r)
		}
	}
	return ID(s), nil
}

// MustParseID is like ParseID but panics on error.
// Use only in tests or when inputs are known to be valid.
func MustParseID(raw string) ID {
	id, err := ParseID(raw)
	if err != nil {
		panic(err)
	}
	return id
}

// ParseIDs parses every element of raw, stopping at the first failure.
func ParseIDs(raw []string) ([]ID, error) {
	ids := make([]ID, 0, len(raw))
	for i, r := range raw {
		id, err := ParseID(r)
		if err != nil {
			return nil, fmt.Errorf("[%d]: %w", i, err)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// Strings converts ids back to plain strings.
func Strings(ids []ID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = string(id)
	}
	return out
}

// Strain is the payload stored for every node of a strain genealogy.
type Strain struct {
	id          ID
	fingerprint string
}

// New builds the strain for id. It is the constructor handed to
// genealogy.New.
func New(id ID) *Strain {
	return &Strain{id: id, fingerprint: fingerprint(id)}
}

// ID returns the strain's identifier.
func (s *Strain) ID() ID {
	return s.id
}

// Fingerprint returns the hex SHA-256 of the identifier under DomainStrain.
func (s *Strain) Fingerprint() string {
	return s.fingerprint
}

func (s *Strain) String() string {
	return string(s.id)
}

// fingerprint computes SHA256(domain + 0x00 + id).
// The null separator prevents domain/data boundary ambiguity.
func fingerprint(id ID) string {
	h := sha256.New()
	h.Write([]byte(DomainStrain))
	h.Write([]byte{0x00})
	h.Write([]byte(id))
	return hex.EncodeToString(h.Sum(nil))
}

// Genealogy is a lineage of *Strain payloads keyed by ID.
type Genealogy = genealogy.Genealogy[ID, *Strain]

// NewGenealogy creates a strain genealogy rooted at stem.
func NewGenealogy(stem ID, opts ...genealogy.Option) *Genealogy {
	return genealogy.New(stem, New, opts...)
}
