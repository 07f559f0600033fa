package gamedata

import (
	"os"
	"path/filepath"
	"testing"
)

func TestRarityForRank(t *testing.T) {
	tests := []struct {
		rank      int
		wantStars int
		wantName  string
	}{
		{1, 6, "Limit Breaker"},
		{2, 6, "Divine"},
		{5, 6, "Divine"},
		{6, 5, "Transcendent"},
		{10, 5, "Transcendent"},
		{11, 4, "Mythical"},
		{50, 4, "Mythical"},
		{51, 4, "Legend"},
		{100, 4, "Legend"},
		{101, 3, "Epic"},
		{500, 3, "Epic"},
		{501, 3, "Rare"},
		{2500, 3, "Rare"},
		{2501, 2, "Uncommon"},
		{5000, 2, "Uncommon"},
		{5001, 1, "Common"},
		{10000, 1, "Common"},
		{99999, 1, "Common"}, // clamps past the table
	}
	for _, tt := range tests {
		got := RarityForRank(tt.rank)
		if got.Stars != tt.wantStars || got.Name != tt.wantName {
			t.Errorf("RarityForRank(%d) = %d★ %q, want %d★ %q",
				tt.rank, got.Stars, got.Name, tt.wantStars, tt.wantName)
		}
	}
}

func TestCrateAliases(t *testing.T) {
	r := Default()
	tests := []struct {
		query string
		want  string
	}{
		{"common", "common"},
		{"c", "common"},
		{"COM", "common"},
		{"  Leg ", "legendary"},
		{"god", "divine"},
		{"div", "divine"},
	}
	for _, tt := range tests {
		crate, ok := r.Crate(tt.query)
		if !ok {
			t.Errorf("Crate(%q) not found", tt.query)
			continue
		}
		if crate.Key != tt.want {
			t.Errorf("Crate(%q) = %s, want %s", tt.query, crate.Key, tt.want)
		}
	}

	if _, ok := r.Crate("mystery"); ok {
		t.Error("Crate(mystery) resolved, want miss")
	}
}

func TestMutationLegacyAliases(t *testing.T) {
	r := Default()

	m, ok := r.Mutation("neon")
	if !ok || m.Key != "shocked" {
		t.Errorf("Mutation(neon) = %v %v, want shocked", m.Key, ok)
	}
	m, ok = r.Mutation("prismatic")
	if !ok || m.Key != "rainbow" {
		t.Errorf("Mutation(prismatic) = %v %v, want rainbow", m.Key, ok)
	}
}

func TestMutationDisplay(t *testing.T) {
	r := Default()

	if got := r.MutationDisplay(""); got != "" {
		t.Errorf("MutationDisplay(empty) = %q, want empty", got)
	}
	if got := r.MutationDisplay("golden"); got != "Golden" {
		t.Errorf("MutationDisplay(golden) = %q, want Golden", got)
	}
	// Retired keys on old cards render as Legacy rather than erroring.
	if got := r.MutationDisplay("vaporwave"); got != LegacyMutationDisplay {
		t.Errorf("MutationDisplay(vaporwave) = %q, want %q", got, LegacyMutationDisplay)
	}
}

func TestFlashbacksOrdering(t *testing.T) {
	r := Default()
	roster := r.Flashbacks()
	if len(roster) == 0 {
		t.Fatal("empty flashback roster")
	}
	for i := 1; i < len(roster); i++ {
		prev, cur := roster[i-1], roster[i]
		if cur.Year < prev.Year {
			t.Errorf("roster out of order: %s (%s) after %s (%s)",
				cur.Player.Username, cur.Year, prev.Player.Username, prev.Year)
		}
	}

	if _, ok := r.Flashback("  COOKIEZI  "); !ok {
		t.Error("Flashback lookup should be case and space insensitive")
	}
}

func TestDefaultRegistryValidates(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Fatalf("default registry invalid: %v", err)
	}
}

func TestLoadOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "overrides.toml")
	override := `
[[crates]]
key = "common"
display_name = "Cardboard Box"
emoji = "📦"
color = "#888888"
price = 750
rank_ranges = [{ min = 1, max = 10000, weight = 1.0 }]

[[crates]]
key = "event"
display_name = "Event Crate"
emoji = "🎉"
color = "#ff4081"
price = 2000
rank_ranges = [{ min = 1, max = 100, weight = 1.0 }]
`
	if err := os.WriteFile(path, []byte(override), 0o644); err != nil {
		t.Fatal(err)
	}

	r, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	common, ok := r.Crate("common")
	if !ok {
		t.Fatal("common crate missing after override")
	}
	if common.DisplayName != "Cardboard Box" || common.Price != 750 {
		t.Errorf("common override not applied: %+v", common)
	}
	if _, ok := r.Crate("event"); !ok {
		t.Error("appended crate missing")
	}
	// Untouched crates survive alongside the overrides.
	if _, ok := r.Crate("divine"); !ok {
		t.Error("divine crate lost by override")
	}
}

func TestLoadMissingOverrideFile(t *testing.T) {
	r, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load with missing file: %v", err)
	}
	if len(r.Crates()) == 0 {
		t.Fatal("defaults not applied")
	}
}

func TestLoadRejectsInvalidOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.toml")
	// Zero-weight crate violates the positive-weight invariant.
	bad := `
[[crates]]
key = "broken"
display_name = "Broken"
emoji = "x"
color = "#000"
price = 100
rank_ranges = [{ min = 1, max = 10, weight = 0.0 }]
`
	if err := os.WriteFile(path, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Error("Load accepted a crate with no positive-weight range")
	}
}
