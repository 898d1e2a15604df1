package core

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"
	"strings"
)

// Hash represents a cryptographic hash
type Hash string

// NewHash creates a new hash from data
func NewHash(data []byte) Hash {
	sum := sha256.Sum256(data)
	return Hash(hex.EncodeToString(sum[:]))
}

// String returns the string representation
func (h Hash) String() string {
	return string(h)
}

// IsEmpty checks if the hash is empty
func (h Hash) IsEmpty() bool {
	return h == ""
}

// Equals checks if two hashes are equal
func (h Hash) Equals(other Hash) bool {
	return h == other
}

// TableHash fingerprints a dataset table
type TableHash Hash

func (h TableHash) String() string { return Hash(h).String() }

// ComputeTableHash fingerprints column-oriented table data. Column order is
// normalized so two tables with the same columns and values hash identically.
func ComputeTableHash(columns map[string][]any) TableHash {
	keys := make([]string, 0, len(columns))
	for k := range columns {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var data strings.Builder
	for _, key := range keys {
		data.WriteString(key)
		for _, v := range columns[key] {
			data.WriteString(fmt.Sprintf("%v", v))
		}
	}

	return TableHash(NewHash([]byte(data.String())))
}
