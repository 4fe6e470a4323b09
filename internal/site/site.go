// Package site composes the Contribute and Signup page objects from the link
// registry and a page session.
package site

import (
	"context"

	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
)

// Contribute is the Contribute page as seen through one session.
type Contribute struct {
	*page.Page
	reg *registry.Registry
}

// NewContribute returns a Contribute page handle. Nothing is loaded yet.
func NewContribute(s page.Session, reg *registry.Registry, opts page.Options) *Contribute {
	return &Contribute{Page: page.New(s, reg.Contribute.Page, opts), reg: reg}
}

// Open navigates to the Contribute page and waits for its ready marker.
func (c *Contribute) Open(ctx context.Context) (*Contribute, error) {
	if err := c.GoTo(ctx); err != nil {
		return nil, err
	}
	return c, nil
}

func (c *Contribute) HeaderLinks() []registry.LinkSpec { return c.reg.Contribute.Header.Links }

func (c *Contribute) FooterLinks() []registry.LinkSpec { return c.reg.Contribute.Footer }

func (c *Contribute) MajorLinks() []registry.LinkSpec { return c.reg.Contribute.MajorLinks }

// IsTabzillaVisible reports whether the header tab is shown.
func (c *Contribute) IsTabzillaVisible(ctx context.Context) (bool, error) {
	return c.IsVisible(ctx, c.reg.Contribute.Header.Tab)
}

// ToggleTabzilla opens or closes the header dropdown.
func (c *Contribute) ToggleTabzilla(ctx context.Context) error {
	return c.Toggle(ctx, c.reg.Contribute.Header.Tab)
}

// OpenTabzilla clicks the header tab and waits up to the element timeout for
// the first header link to show. A dropdown that never opens is left for the
// link checks to report.
func (c *Contribute) OpenTabzilla(ctx context.Context) error {
	if err := c.ToggleTabzilla(ctx); err != nil {
		return err
	}
	links := c.HeaderLinks()
	if len(links) == 0 {
		return nil
	}
	_, err := c.WaitVisible(ctx, links[0].Locator, 0)
	if page.HasCode(err, page.CodeElementNotFound) {
		return nil
	}
	return err
}

// ClickSignup follows the signup link and returns the loaded Signup page.
func (c *Contribute) ClickSignup(ctx context.Context) (*Signup, error) {
	next, err := c.Click(ctx, c.reg.Contribute.SignupLink, c.reg.Signup.Page)
	if err != nil {
		return nil, err
	}
	return &Signup{Page: next, reg: c.reg}, nil
}

// Signup is the Signup page as seen through one session.
type Signup struct {
	*page.Page
	reg *registry.Registry
}

func NewSignup(s page.Session, reg *registry.Registry, opts page.Options) *Signup {
	return &Signup{Page: page.New(s, reg.Signup.Page, opts), reg: reg}
}

// Open navigates directly to the Signup page and waits for its ready marker.
func (s *Signup) Open(ctx context.Context) (*Signup, error) {
	if err := s.GoTo(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// Visit navigates directly to the Signup page without waiting for the form,
// so a missing form can be reported rather than timing out.
func (s *Signup) Visit(ctx context.Context) (*Signup, error) {
	if err := s.Load(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// IsFormPresent waits up to the element timeout for the signup form.
func (s *Signup) IsFormPresent(ctx context.Context) (bool, error) {
	visible, err := s.WaitVisible(ctx, s.reg.Signup.Form, 0)
	if page.HasCode(err, page.CodeElementNotFound) {
		return false, nil
	}
	return visible, err
}

func (s *Signup) Fields() []registry.FieldSpec { return s.reg.Signup.Fields }
