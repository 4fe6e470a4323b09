package registry

import (
	"fmt"
	"os"
	"strings"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"gopkg.in/yaml.v3"
)

// LinkSpec identifies one link whose destination must be validated.
type LinkSpec struct {
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Locator page.Locator `json:"locator" yaml:"locator"`
	Suffix  string       `json:"url_suffix" yaml:"url_suffix"`
}

// FieldSpec identifies a form field expected to be visible.
type FieldSpec struct {
	Name    string       `json:"name,omitempty" yaml:"name,omitempty"`
	Locator page.Locator `json:"locator" yaml:"locator"`
}

// Header describes the tabzilla header region.
type Header struct {
	Tab   page.Locator `json:"tab" yaml:"tab"`
	Links []LinkSpec   `json:"links" yaml:"links"`
}

// Contribute is the static data of the Contribute page.
type Contribute struct {
	Page       page.Definition `json:"page" yaml:"page"`
	Header     Header          `json:"header" yaml:"header"`
	Footer     []LinkSpec      `json:"footer" yaml:"footer"`
	MajorLinks []LinkSpec      `json:"major_links" yaml:"major_links"`
	SignupLink page.Locator    `json:"signup_link" yaml:"signup_link"`
}

// Signup is the static data of the Signup page.
type Signup struct {
	Page   page.Definition `json:"page" yaml:"page"`
	Form   page.Locator    `json:"form" yaml:"form"`
	Fields []FieldSpec     `json:"fields" yaml:"fields"`
}

// Registry holds every locator and expectation the scenarios consume.
type Registry struct {
	Contribute Contribute `json:"contribute" yaml:"contribute"`
	Signup     Signup     `json:"signup" yaml:"signup"`
}

// LoadFile reads a registry from a YAML file and validates it.
func LoadFile(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	return Parse(data)
}

// Parse decodes a YAML registry and validates it.
func Parse(data []byte) (*Registry, error) {
	var reg Registry
	if err := yaml.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("registry: %w", err)
	}
	if err := reg.Validate(); err != nil {
		return nil, err
	}
	return &reg, nil
}

// Validate enforces that every locator is usable and every suffix non-empty.
func (r *Registry) Validate() error {
	var problems []string
	checkLoc := func(where string, loc page.Locator) {
		if err := loc.Validate(); err != nil {
			problems = append(problems, fmt.Sprintf("%s: %v", where, err))
		}
	}
	checkLinks := func(section string, links []LinkSpec) {
		for i, l := range links {
			where := fmt.Sprintf("%s[%d]", section, i)
			checkLoc(where+".locator", l.Locator)
			if l.Suffix == "" {
				problems = append(problems, where+": url_suffix is required")
			}
		}
	}
	checkPage := func(section string, def page.Definition) {
		if strings.TrimSpace(def.Path) == "" {
			problems = append(problems, section+".page: path is required")
		}
		checkLoc(section+".page.ready", def.Ready)
	}

	checkPage("contribute", r.Contribute.Page)
	checkLoc("contribute.header.tab", r.Contribute.Header.Tab)
	checkLinks("contribute.header.links", r.Contribute.Header.Links)
	checkLinks("contribute.footer", r.Contribute.Footer)
	checkLinks("contribute.major_links", r.Contribute.MajorLinks)
	checkLoc("contribute.signup_link", r.Contribute.SignupLink)

	checkPage("signup", r.Signup.Page)
	checkLoc("signup.form", r.Signup.Form)
	for i, f := range r.Signup.Fields {
		checkLoc(fmt.Sprintf("signup.fields[%d].locator", i), f.Locator)
	}

	if len(problems) > 0 {
		return page.NewError(page.CodeValidation, "invalid registry: "+strings.Join(problems, "; "), nil)
	}
	return nil
}
