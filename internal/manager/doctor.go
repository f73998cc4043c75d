package manager

import (
	"context"
	"fmt"
	"os"

	"github.com/galeproject/gale/internal/profile"
)

// DoctorFinding is one issue (or all-clear note) from a health check pass.
type DoctorFinding struct {
	Check   string
	OK      bool
	Message string
}

// Doctor runs read-only health checks over the persisted state: pending
// schema migrations, missing profile directories, dangling active-profile
// references, and installed mods whose cache entries are gone (meaning the
// next reinstall or update re-downloads them).
func (m *Manager) Doctor(ctx context.Context) ([]DoctorFinding, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var findings []DoctorFinding
	report := func(check string, ok bool, format string, args ...any) {
		findings = append(findings, DoctorFinding{
			Check:   check,
			OK:      ok,
			Message: fmt.Sprintf(format, args...),
		})
	}

	pending, err := m.store.HasPending(ctx)
	if err != nil {
		return nil, fmt.Errorf("manager: check migrations: %w", err)
	}
	if pending {
		report("database", false, "schema migrations are pending; they run on next open")
	} else {
		report("database", true, "schema is up to date")
	}

	stateProblems := 0
	for slug, mg := range m.mm.Games {
		if findProfile(mg, mg.ActiveProfileID) == nil {
			stateProblems++
			report("profiles", false, "%s: active profile id %d does not match any profile", slug, mg.ActiveProfileID)
		}

		rt, err := m.runtimeFor(slug)
		if err != nil {
			stateProblems++
			report("cache", false, "%s: cannot open package cache: %v", slug, err)
			continue
		}

		for i := range mg.Profiles {
			p := &mg.Profiles[i]

			if _, err := os.Stat(p.Path); err != nil {
				stateProblems++
				report("profiles", false, "%s/%s: profile directory %s is missing", slug, p.Name, p.Path)
				continue
			}

			for _, mod := range p.Mods {
				if mod.Variant != profile.VariantThunderstore {
					continue
				}
				if !rt.cache.Has(mod.Ident) {
					stateProblems++
					report("cache", false, "%s/%s: %s is not cached; updating or reinstalling it re-downloads",
						slug, p.Name, mod.Ident)
				}
			}
		}
	}

	if stateProblems == 0 {
		report("profiles", true, "all profile directories and cache entries are present")
	}

	return findings, nil
}
