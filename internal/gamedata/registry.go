// Package gamedata holds the static game registry: crate definitions,
// mutation table, rarity bands, flashback roster and achievement
// definitions. A registry is immutable once built; overrides load into
// a fresh copy which is swapped in atomically.
package gamedata

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

// Registry is an immutable view of all configured game tables.
type Registry struct {
	crates        map[string]CrateDef
	crateOrder    []string
	crateAliases  map[string]string
	mutations     map[string]MutationDef
	mutationOrder []string
	flashbacks    map[string]FlashbackEntry
	achievements  []AchievementDef
}

// Default builds a registry from the built-in tables.
func Default() *Registry {
	r := &Registry{
		crates:       make(map[string]CrateDef),
		crateAliases: defaultCrateAliases,
		mutations:    make(map[string]MutationDef),
		flashbacks:   defaultFlashbacks(),
		achievements: defaultAchievements(),
	}
	for _, c := range defaultCrates() {
		r.crates[c.Key] = c
		r.crateOrder = append(r.crateOrder, c.Key)
	}
	for _, m := range defaultMutations() {
		r.mutations[m.Key] = m
		r.mutationOrder = append(r.mutationOrder, m.Key)
	}
	return r
}

// Crate resolves a crate by key or alias, case-insensitively.
func (r *Registry) Crate(key string) (CrateDef, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := r.crateAliases[k]; ok {
		k = alias
	}
	c, ok := r.crates[k]
	return c, ok
}

// Crates returns all crate definitions in declaration order.
func (r *Registry) Crates() []CrateDef {
	out := make([]CrateDef, 0, len(r.crateOrder))
	for _, k := range r.crateOrder {
		out = append(out, r.crates[k])
	}
	return out
}

// Mutation resolves a mutation by key, following legacy aliases.
func (r *Registry) Mutation(key string) (MutationDef, bool) {
	k := strings.ToLower(strings.TrimSpace(key))
	if alias, ok := legacyMutationAliases[k]; ok {
		k = alias
	}
	m, ok := r.mutations[k]
	return m, ok
}

// Mutations returns all mutation definitions in declaration order.
func (r *Registry) Mutations() []MutationDef {
	out := make([]MutationDef, 0, len(r.mutationOrder))
	for _, k := range r.mutationOrder {
		out = append(out, r.mutations[k])
	}
	return out
}

// MutationDisplay returns the display name for a mutation key found on
// an owned card. Unknown keys render as "Legacy" instead of failing;
// retired keys may survive on old cards indefinitely.
func (r *Registry) MutationDisplay(key string) string {
	if key == "" {
		return ""
	}
	if m, ok := r.Mutation(key); ok {
		return m.DisplayName
	}
	return LegacyMutationDisplay
}

// Flashback looks up a roster entry by canonical player name.
func (r *Registry) Flashback(name string) (FlashbackEntry, bool) {
	e, ok := r.flashbacks[canonicalName(name)]
	return e, ok
}

// Flashbacks returns the roster ordered by year then username, so
// uniform picks over the slice are reproducible under a seeded RNG.
func (r *Registry) Flashbacks() []FlashbackEntry {
	out := make([]FlashbackEntry, 0, len(r.flashbacks))
	for _, e := range r.flashbacks {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Year != out[j].Year {
			return out[i].Year < out[j].Year
		}
		return out[i].Player.Username < out[j].Player.Username
	})
	return out
}

// Achievements returns all achievement definitions.
func (r *Registry) Achievements() []AchievementDef {
	return r.achievements
}

// Validate checks the structural invariants of the loaded tables.
func (r *Registry) Validate() error {
	if len(r.crates) == 0 {
		return errors.New("gamedata: no crates configured")
	}
	for key, c := range r.crates {
		if c.Price <= 0 {
			return fmt.Errorf("gamedata: crate %s has non-positive price", key)
		}
		var positive bool
		for _, rr := range c.RankRanges {
			if rr.Weight < 0 {
				return fmt.Errorf("gamedata: crate %s has negative range weight", key)
			}
			if rr.Min < 1 || rr.Max < rr.Min {
				return fmt.Errorf("gamedata: crate %s has invalid range [%d,%d]", key, rr.Min, rr.Max)
			}
			if rr.Weight > 0 {
				positive = true
			}
		}
		if !positive {
			return fmt.Errorf("gamedata: crate %s has no positive-weight range", key)
		}
	}
	for key, m := range r.mutations {
		if m.Rarity <= 0 || m.Rarity > 1 {
			return fmt.Errorf("gamedata: mutation %s rarity %v outside (0,1]", key, m.Rarity)
		}
		if m.ValueMultiplier < 1 {
			return fmt.Errorf("gamedata: mutation %s multiplier %v below 1", key, m.ValueMultiplier)
		}
	}
	if _, ok := r.mutations[MutationKeyFlashback]; ok && len(r.flashbacks) == 0 {
		return errors.New("gamedata: flashback mutation configured with empty roster")
	}
	return nil
}

// Overrides is the TOML schema for operator-supplied table overrides.
// Crates and mutations replace the built-in definition with the same
// key, or append when the key is new.
type Overrides struct {
	Crates    []CrateDef    `toml:"crates"`
	Mutations []MutationDef `toml:"mutations"`
}

// Load builds a registry from the defaults plus an optional override
// file. A missing file is not an error; the defaults apply as-is.
func Load(overridePath string) (*Registry, error) {
	r := Default()
	if overridePath != "" {
		if err := r.applyOverrideFile(overridePath); err != nil {
			return nil, err
		}
	}
	if err := r.Validate(); err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Registry) applyOverrideFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("gamedata: read overrides: %w", err)
	}
	var ov Overrides
	if err := toml.Unmarshal(data, &ov); err != nil {
		return fmt.Errorf("gamedata: parse overrides: %w", err)
	}
	for _, c := range ov.Crates {
		c.Key = strings.ToLower(c.Key)
		if _, exists := r.crates[c.Key]; !exists {
			r.crateOrder = append(r.crateOrder, c.Key)
		}
		r.crates[c.Key] = c
	}
	for _, m := range ov.Mutations {
		m.Key = strings.ToLower(m.Key)
		if _, exists := r.mutations[m.Key]; !exists {
			r.mutationOrder = append(r.mutationOrder, m.Key)
		}
		r.mutations[m.Key] = m
	}
	return nil
}
