// Package scenario defines the Contribute smoke scenarios and the runner that
// executes each of them in its own page session.
package scenario

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/dgnsrekt/contribute_smoke/internal/linkcheck"
	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
	"github.com/dgnsrekt/contribute_smoke/internal/site"
)

const (
	TagNondestructive = "nondestructive"
	TagLinkCheck      = "link_check"
)

// Env is everything a scenario may touch. Session is owned by the runner.
type Env struct {
	Session     page.Session
	Registry    *registry.Registry
	PageOptions page.Options
	Fetcher     linkcheck.Fetcher
}

// Contribute returns an unloaded Contribute page bound to the session.
func (e *Env) Contribute() *site.Contribute {
	return site.NewContribute(e.Session, e.Registry, e.PageOptions)
}

// Signup returns an unloaded Signup page bound to the session.
func (e *Env) Signup() *site.Signup {
	return site.NewSignup(e.Session, e.Registry, e.PageOptions)
}

// Scenario is one independently runnable check.
type Scenario struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`

	Run func(ctx context.Context, env *Env) error `json:"-"`
}

func (s Scenario) HasTag(tag string) bool { return slices.Contains(s.Tags, tag) }

// Filter narrows a scenario list. Empty fields match everything.
type Filter struct {
	Names       []string
	Tags        []string
	ExcludeTags []string
}

// Select returns the scenarios matching f in their declared order. Unknown
// names are rejected.
func Select(all []Scenario, f Filter) ([]Scenario, error) {
	known := make(map[string]bool, len(all))
	for _, sc := range all {
		known[sc.Name] = true
	}
	var unknown []string
	for _, name := range f.Names {
		if !known[name] {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		return nil, page.NewError(page.CodeValidation, fmt.Sprintf("unknown scenario(s): %s", strings.Join(unknown, ", ")), nil)
	}

	var out []Scenario
	for _, sc := range all {
		if len(f.Names) > 0 && !slices.Contains(f.Names, sc.Name) {
			continue
		}
		if len(f.Tags) > 0 && !slices.ContainsFunc(f.Tags, sc.HasTag) {
			continue
		}
		if slices.ContainsFunc(f.ExcludeTags, sc.HasTag) {
			continue
		}
		out = append(out, sc)
	}
	return out, nil
}

// Names returns the scenario names in order.
func Names(scenarios []Scenario) []string {
	names := make([]string, len(scenarios))
	for i, sc := range scenarios {
		names[i] = sc.Name
	}
	return names
}
