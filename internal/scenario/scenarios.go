package scenario

import (
	"context"

	"github.com/dgnsrekt/contribute_smoke/internal/formcheck"
	"github.com/dgnsrekt/contribute_smoke/internal/linkcheck"
	"github.com/dgnsrekt/contribute_smoke/internal/page"
	"github.com/dgnsrekt/contribute_smoke/internal/registry"
	"github.com/dgnsrekt/contribute_smoke/internal/verify"
)

const (
	FooterSection           = "footer-section"
	TabzillaLinks           = "tabzilla-links"
	MajorLinkDestinations   = "major-link-destinations"
	MajorLinkURLsValid      = "major-link-urls-valid"
	SignupFormFieldsVisible = "signup-form-fields-visible"
	SignupFormVisible       = "signup-form-visible"
)

// All returns the built-in scenarios in execution order.
func All() []Scenario {
	return []Scenario{
		{
			Name:        FooterSection,
			Description: "Every footer link resolves to a URL ending with its expected suffix.",
			Tags:        []string{TagNondestructive},
			Run:         runFooterSection,
		},
		{
			Name:        TabzillaLinks,
			Description: "The tabzilla tab is visible and every dropdown link contains its expected suffix.",
			Tags:        []string{TagNondestructive},
			Run:         runTabzillaLinks,
		},
		{
			Name:        MajorLinkDestinations,
			Description: "Every major content link resolves to a URL ending with its expected suffix.",
			Tags:        []string{TagNondestructive},
			Run:         runMajorLinkDestinations,
		},
		{
			Name:        MajorLinkURLsValid,
			Description: "Every major content link answers an HTTP GET with status 200.",
			Tags:        []string{TagNondestructive, TagLinkCheck},
			Run:         runMajorLinkURLsValid,
		},
		{
			Name:        SignupFormFieldsVisible,
			Description: "Following the signup link shows every signup form field.",
			Tags:        []string{TagNondestructive},
			Run:         runSignupFormFieldsVisible,
		},
		{
			Name:        SignupFormVisible,
			Description: "The signup page shows its form.",
			Tags:        []string{TagNondestructive},
			Run:         runSignupFormVisible,
		},
	}
}

func checkLinks(ctx context.Context, env *Env, links func(*Env) []registry.LinkSpec, mode linkcheck.Mode) error {
	contribute, err := env.Contribute().Open(ctx)
	if err != nil {
		return err
	}
	failures, err := linkcheck.CheckDestinations(ctx, contribute, links(env), mode)
	if err != nil {
		return err
	}
	bad := verify.New("links")
	bad.AddAll(failures)
	return bad.Err()
}

func runFooterSection(ctx context.Context, env *Env) error {
	return checkLinks(ctx, env, func(e *Env) []registry.LinkSpec { return e.Registry.Contribute.Footer }, linkcheck.MatchSuffix)
}

func runMajorLinkDestinations(ctx context.Context, env *Env) error {
	return checkLinks(ctx, env, func(e *Env) []registry.LinkSpec { return e.Registry.Contribute.MajorLinks }, linkcheck.MatchSuffix)
}

func runTabzillaLinks(ctx context.Context, env *Env) error {
	contribute, err := env.Contribute().Open(ctx)
	if err != nil {
		return err
	}
	visible, err := contribute.IsTabzillaVisible(ctx)
	if err != nil && !page.HasCode(err, page.CodeElementNotFound) {
		return err
	}
	if err := verify.True(visible, "The tabzilla panel is not visible."); err != nil {
		return err
	}
	if err := contribute.OpenTabzilla(ctx); err != nil {
		return err
	}

	failures, err := linkcheck.CheckDestinations(ctx, contribute, contribute.HeaderLinks(), linkcheck.MatchContains)
	if err != nil {
		return err
	}
	bad := verify.New("links")
	bad.AddAll(failures)
	return bad.Err()
}

func runMajorLinkURLsValid(ctx context.Context, env *Env) error {
	if env.Fetcher == nil {
		return page.NewError(page.CodeValidation, "no status fetcher configured", nil)
	}
	contribute, err := env.Contribute().Open(ctx)
	if err != nil {
		return err
	}
	failures, err := linkcheck.CheckStatuses(ctx, contribute, env.Fetcher, contribute.MajorLinks())
	if err != nil {
		return err
	}
	bad := verify.New("urls")
	bad.AddAll(failures)
	return bad.Err()
}

func runSignupFormFieldsVisible(ctx context.Context, env *Env) error {
	contribute, err := env.Contribute().Open(ctx)
	if err != nil {
		return err
	}
	signup, err := contribute.ClickSignup(ctx)
	if err != nil {
		return err
	}
	failures, err := formcheck.CheckAll(ctx, signup, signup.Fields())
	if err != nil {
		return err
	}
	bad := verify.New("fields")
	bad.AddAll(failures)
	return bad.Err()
}

func runSignupFormVisible(ctx context.Context, env *Env) error {
	signup, err := env.Signup().Visit(ctx)
	if err != nil {
		return err
	}
	present, err := signup.IsFormPresent(ctx)
	if err != nil {
		return err
	}
	return verify.True(present, "The sign up form is not present on the page.")
}
