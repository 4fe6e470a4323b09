package registry

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
)

func TestDefaultRegistryIsValid(t *testing.T) {
	reg := Default()
	if err := reg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error = %v", err)
	}
	if got, want := len(reg.Signup.Fields), 5; got != want {
		t.Fatalf("signup fields = %d; want %d", got, want)
	}
	for _, l := range reg.Contribute.Footer {
		if l.Suffix == "" {
			t.Fatalf("footer link %q has empty suffix", l.Name)
		}
	}
}

func TestDefaultReturnsIndependentCopies(t *testing.T) {
	a := Default()
	b := Default()
	a.Contribute.Footer[0].Suffix = "/changed/"
	if b.Contribute.Footer[0].Suffix == "/changed/" {
		t.Fatal("Default() shares link slices between calls")
	}
}

func TestValidateRejectsEmptySuffix(t *testing.T) {
	reg := Default()
	reg.Contribute.MajorLinks[1].Suffix = ""

	err := reg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil; want error for empty suffix")
	}
	if !page.HasCode(err, page.CodeValidation) {
		t.Fatalf("Validate() error = %v; want %s", err, page.CodeValidation)
	}
	if !strings.Contains(err.Error(), "contribute.major_links[1]: url_suffix is required") {
		t.Fatalf("Validate() error = %q; want it to name the offending link", err)
	}
}

func TestValidateRejectsUnknownStrategy(t *testing.T) {
	reg := Default()
	reg.Signup.Fields[2].Locator = page.Locator{By: "tag", Value: "textarea"}

	err := reg.Validate()
	if err == nil {
		t.Fatal("Validate() = nil; want error for unknown strategy")
	}
	if !strings.Contains(err.Error(), `signup.fields[2].locator`) {
		t.Fatalf("Validate() error = %q; want field path", err)
	}
}

func TestLoadFile(t *testing.T) {
	doc := `
contribute:
  page:
    name: contribute
    path: /en-US/contribute/
    ready: {by: id, value: main-feature}
  header:
    tab: {by: id, value: tabzilla}
    links:
      - locator: {by: css, value: "#tabzilla-nav a.mission"}
        url_suffix: /en-US/mission/
  footer:
    - name: privacy
      locator: {by: link_text, value: Privacy Policy}
      url_suffix: /en-US/privacy/
  major_links: []
  signup_link: {by: css, value: "a.signup"}
signup:
  page:
    name: signup
    path: /en-US/contribute/signup/
    ready: {by: id, value: help-form}
  form: {by: id, value: help-form}
  fields:
    - locator: {by: name, value: email}
`
	path := filepath.Join(t.TempDir(), "registry.yaml")
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	reg, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if got, want := reg.Contribute.Footer[0].Locator.By, page.ByLinkText; got != want {
		t.Fatalf("footer strategy = %q; want %q", got, want)
	}
	if got, want := reg.Signup.Fields[0].Locator.Value, "email"; got != want {
		t.Fatalf("field locator = %q; want %q", got, want)
	}
	if got, want := reg.Contribute.Header.Links[0].Suffix, "/en-US/mission/"; got != want {
		t.Fatalf("header suffix = %q; want %q", got, want)
	}
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	if err == nil {
		t.Fatal("LoadFile() = nil error; want error for missing file")
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("LoadFile() error = %v; want not-exist", err)
	}
}
