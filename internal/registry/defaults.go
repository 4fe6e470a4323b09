package registry

import "github.com/dgnsrekt/contribute_smoke/internal/page"

// Default returns the built-in registry for the en-US Contribute pages.
// A fresh value is returned on every call so callers may not alias each other.
func Default() *Registry {
	return &Registry{
		Contribute: Contribute{
			Page: page.Definition{
				Name:  "contribute",
				Path:  "/en-US/contribute/",
				Ready: page.ID("main-feature"),
			},
			Header: Header{
				Tab: page.ID("tabzilla"),
				Links: []LinkSpec{
					{Name: "mission", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(1) li:nth-child(1) > a"), Suffix: "/en-US/mission/"},
					{Name: "about", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(1) li:nth-child(2) > a"), Suffix: "/en-US/about/"},
					{Name: "projects", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(1) li:nth-child(3) > a"), Suffix: "/en-US/projects/"},
					{Name: "support", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(1) li:nth-child(4) > a"), Suffix: "support.mozilla.org/"},
					{Name: "developer-network", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(1) li:nth-child(5) > a"), Suffix: "developer.mozilla.org/"},
					{Name: "firefox", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(2) li:nth-child(1) > a"), Suffix: "/en-US/firefox/"},
					{Name: "thunderbird", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(2) li:nth-child(2) > a"), Suffix: "/en-US/thunderbird/"},
					{Name: "firefox-os", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(2) li:nth-child(3) > a"), Suffix: "/en-US/firefox/os/"},
					{Name: "volunteer", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(3) li:nth-child(1) > a"), Suffix: "/en-US/contribute/"},
					{Name: "careers", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(3) li:nth-child(2) > a"), Suffix: "/en-US/about/careers.html"},
					{Name: "find-us", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(3) li:nth-child(3) > a"), Suffix: "/en-US/about/mozilla-spaces/"},
					{Name: "addons", Locator: page.CSS("#tabzilla-nav ul > li:nth-child(4) li:nth-child(1) > a"), Suffix: "addons.mozilla.org/"},
				},
			},
			Footer: []LinkSpec{
				{Name: "logo", Locator: page.CSS("#colophon .footer-logo > a"), Suffix: "/en-US/"},
				{Name: "privacy-policy", Locator: page.CSS("#colophon .footer-license a[href*='/privacy/']"), Suffix: "/en-US/privacy/"},
				{Name: "legal-notices", Locator: page.CSS("#colophon .footer-license a[href*='legal.html']"), Suffix: "/en-US/about/legal.html"},
				{Name: "report-trademark-abuse", Locator: page.CSS("#colophon .footer-license a[href*='fraud-report']"), Suffix: "/en-US/legal/fraud-report/index.html"},
				{Name: "contact-us", Locator: page.CSS("#colophon .footer-nav a[href*='contact']"), Suffix: "/en-US/about/contact.html"},
				{Name: "partner", Locator: page.CSS("#colophon .footer-nav a[href*='partnerships']"), Suffix: "/en-US/about/partnerships/"},
				{Name: "twitter", Locator: page.CSS("#colophon .footer-nav .twitter > a"), Suffix: "twitter.com/firefox"},
				{Name: "facebook", Locator: page.CSS("#colophon .footer-nav .facebook > a"), Suffix: "facebook.com/Firefox"},
				{Name: "affiliates", Locator: page.CSS("#colophon .footer-nav .affiliates > a"), Suffix: "affiliates.mozilla.org/"},
			},
			MajorLinks: []LinkSpec{
				{Name: "university-ambassadors", Locator: page.CSS("#main-content a[href$='/contribute/universityambassadors/']"), Suffix: "/en-US/contribute/universityambassadors/"},
				{Name: "contribute-wiki", Locator: page.CSS("#main-content a[href*='wiki.mozilla.org/Contribute']"), Suffix: "wiki.mozilla.org/Contribute"},
				{Name: "mozilla-reps", Locator: page.CSS("#main-content a[href*='reps.mozilla.org']"), Suffix: "reps.mozilla.org/"},
				{Name: "events", Locator: page.CSS("#main-content a[href$='/contribute/events/']"), Suffix: "/en-US/contribute/events/"},
				{Name: "stories", Locator: page.CSS("#main-content a[href$='/contribute/stories/']"), Suffix: "/en-US/contribute/stories/"},
			},
			SignupLink: page.CSS("#main-feature a.signup"),
		},
		Signup: Signup{
			Page: page.Definition{
				Name:  "signup",
				Path:  "/en-US/contribute/signup/",
				Ready: page.ID("help-form"),
			},
			Form: page.ID("help-form"),
			Fields: []FieldSpec{
				{Name: "email", Locator: page.ID("id_email")},
				{Name: "interest", Locator: page.ID("id_interest")},
				{Name: "comments", Locator: page.ID("id_comments")},
				{Name: "privacy", Locator: page.ID("id_privacy")},
				{Name: "submit", Locator: page.ID("form-submit")},
			},
		},
	}
}
