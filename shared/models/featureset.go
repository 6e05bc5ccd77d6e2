package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"sort"
)

// FeatureSet is a set of feature identifiers attached to a tenant.
// Stored as a jsonb column; order is irrelevant and duplicates are not kept.
type FeatureSet []string

// Contains reports whether the set includes the feature id
func (fs FeatureSet) Contains(featureID string) bool {
	for _, f := range fs {
		if f == featureID {
			return true
		}
	}
	return false
}

// With returns a new set including the feature id (no-op if present)
func (fs FeatureSet) With(featureID string) FeatureSet {
	if fs.Contains(featureID) {
		return fs.Clone()
	}
	out := fs.Clone()
	return append(out, featureID)
}

// Without returns a new set excluding the feature id (no-op if absent)
func (fs FeatureSet) Without(featureID string) FeatureSet {
	out := make(FeatureSet, 0, len(fs))
	for _, f := range fs {
		if f != featureID {
			out = append(out, f)
		}
	}
	return out
}

// ContainsAll reports whether every feature in other is present
func (fs FeatureSet) ContainsAll(other FeatureSet) bool {
	for _, f := range other {
		if !fs.Contains(f) {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the set
func (fs FeatureSet) Clone() FeatureSet {
	out := make(FeatureSet, len(fs))
	copy(out, fs)
	return out
}

// Sorted returns a sorted copy, used for stable comparisons and logging
func (fs FeatureSet) Sorted() FeatureSet {
	out := fs.Clone()
	sort.Strings(out)
	return out
}

// Value implements driver.Valuer for jsonb persistence
func (fs FeatureSet) Value() (driver.Value, error) {
	if fs == nil {
		fs = FeatureSet{}
	}
	return json.Marshal(fs)
}

// Scan implements sql.Scanner for jsonb persistence
func (fs *FeatureSet) Scan(value interface{}) error {
	if value == nil {
		*fs = FeatureSet{}
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, fs)
	case string:
		return json.Unmarshal([]byte(v), fs)
	default:
		return fmt.Errorf("unsupported feature set column type %T", value)
	}
}
