package merge

import (
	"slices"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/ruminaider/confcascade/internal/config"
)

// Results combines the load results of several profiles into one.
//
// A single result is returned unchanged. Otherwise the first result's
// config is the base; the base is cloned so results held elsewhere are
// never mutated. If the base config is nil the first result is returned
// as-is and later results are not examined. Errors of every result are
// concatenated in input order. Later configs contribute their models role
// by role; a model whose title is already present under that role is
// dropped. Zero results yield the load-interrupted result.
func Results(results []config.LoadResult) config.LoadResult {
	switch len(results) {
	case 0:
		return config.Interrupted[config.Config]()
	case 1:
		return results[0]
	}

	first := results[0]
	if first.Config == nil {
		return first
	}

	base := first.Config.Clone()
	errs := slices.Clone(first.Errors)
	if errs == nil {
		errs = []config.ValidationError{}
	}

	for _, r := range results[1:] {
		errs = append(errs, r.Errors...)
		if r.Config != nil {
			mergeModels(base, r.Config)
		}
	}

	return config.LoadResult{
		Config:                base,
		Errors:                errs,
		ConfigLoadInterrupted: false,
	}
}

// mergeModels unions add's models into base, role by role, de-duplicating
// by title within each role.
func mergeModels(base, add *config.Config) {
	for _, role := range roles(add) {
		models := add.ModelsByRole[role]
		if len(models) == 0 {
			continue
		}
		seen := mapset.NewThreadUnsafeSet[string]()
		for _, m := range base.ModelsByRole[role] {
			seen.Add(m.Title)
		}
		for _, m := range models {
			if seen.Add(m.Title) {
				if base.ModelsByRole == nil {
					base.ModelsByRole = make(map[config.Role][]config.Model)
				}
				base.ModelsByRole[role] = append(base.ModelsByRole[role], m)
			}
		}
	}
}

// roles returns the roles of c in a stable order: known roles first, then
// any others sorted by name.
func roles(c *config.Config) []config.Role {
	out := make([]config.Role, 0, len(c.ModelsByRole))
	for _, r := range config.AllRoles {
		if _, ok := c.ModelsByRole[r]; ok {
			out = append(out, r)
		}
	}
	var extra []config.Role
	for r := range c.ModelsByRole {
		if !slices.Contains(config.AllRoles, r) {
			extra = append(extra, r)
		}
	}
	slices.Sort(extra)
	return append(out, extra...)
}
