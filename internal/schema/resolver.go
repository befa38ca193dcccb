package schema

import (
	"strings"
)

// Mapping is the per-dataset resolution of canonical fields to actual
// column labels. A missing key means the field did not resolve. Built
// once per dataset and never mutated afterwards.
type Mapping map[Field]string

// Column returns the resolved raw column label for a field, with ok
// reporting whether the field resolved at all.
func (m Mapping) Column(f Field) (string, bool) {
	col, ok := m[f]
	return col, ok
}

// Resolver matches raw dataset headers against an alias table. The
// alias table is injected at construction and consulted read-only, so
// a single Resolver is safe for concurrent use across datasets.
type Resolver struct {
	aliases AliasTable
}

// NewResolver creates a resolver over the given alias table. A nil
// table falls back to the default configuration.
func NewResolver(aliases AliasTable) *Resolver {
	if aliases == nil {
		aliases = DefaultAliasTable()
	}
	return &Resolver{aliases: aliases}
}

// normalizeKeys produces the lookup keys for a raw header: the
// lowercase-trimmed form plus its underscore→space and
// space→underscore variants. All three map back to the original label
// so that "Order Date", "order_date" and "ORDER_DATE" resolve
// identically.
func normalizeKeys(columns []string) map[string]string {
	keys := make(map[string]string, len(columns)*3)
	add := func(key, original string) {
		if _, exists := keys[key]; !exists {
			keys[key] = original
		}
	}
	for _, c := range columns {
		base := strings.ToLower(strings.TrimSpace(c))
		add(base, c)
		add(strings.ReplaceAll(base, "_", " "), c)
		add(strings.ReplaceAll(base, " ", "_"), c)
	}
	return keys
}

// Resolve maps each canonical field to the first raw column label
// matched by its alias list. Unmatched fields are absent from the
// returned mapping. Resolve is a pure function of its input.
func (r *Resolver) Resolve(columns []string) Mapping {
	keys := normalizeKeys(columns)
	resolved := make(Mapping, len(r.aliases))

	for field, aliases := range r.aliases {
		for _, alias := range aliases {
			clean := strings.ToLower(strings.TrimSpace(alias))
			if col, ok := keys[clean]; ok {
				resolved[field] = col
				break
			}
			if col, ok := keys[strings.ReplaceAll(clean, " ", "_")]; ok {
				resolved[field] = col
				break
			}
			if col, ok := keys[strings.ReplaceAll(clean, "_", " ")]; ok {
				resolved[field] = col
				break
			}
		}
	}
	return resolved
}
