// Package sitefixture serves a local copy of the Contribute and Signup pages
// for tests. Every link points back at the fixture server with the expected
// suffix as its path, so destinations can be both matched and fetched.
package sitefixture

import (
	"fmt"
	"html"
	"net/http"
	"net/http/httptest"
	"strings"
)

const (
	ContributePath = "/en-US/contribute/"
	SignupPath     = "/en-US/contribute/signup/"
)

// Options breaks parts of the fixture on purpose.
type Options struct {
	// Rewrite replaces the href of the link whose suffix matches a key.
	Rewrite map[string]string
	// HiddenFields lists signup field ids rendered with display:none.
	HiddenFields []string
	// Missing lists paths answered with 404.
	Missing []string
	// OmitForm drops the signup form from the signup page.
	OmitForm bool
}

// NewServer starts the fixture. Callers must Close it.
func NewServer(opts Options) *httptest.Server {
	return httptest.NewServer(Handler(opts))
}

// Handler returns the fixture's http.Handler.
func Handler(opts Options) http.Handler {
	missing := make(map[string]bool, len(opts.Missing))
	for _, p := range opts.Missing {
		missing[p] = true
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if missing[r.URL.Path] {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		switch r.URL.Path {
		case ContributePath:
			_, _ = w.Write([]byte(contributeHTML(opts)))
		case SignupPath:
			_, _ = w.Write([]byte(signupHTML(opts)))
		default:
			_, _ = fmt.Fprintf(w, "<!doctype html><title>%s</title><p>ok</p>", html.EscapeString(r.URL.Path))
		}
	})
}

func href(opts Options, suffix string) string {
	if v, ok := opts.Rewrite[suffix]; ok {
		return html.EscapeString(v)
	}
	if strings.HasPrefix(suffix, "/") {
		return html.EscapeString(suffix)
	}
	return html.EscapeString("/" + suffix)
}

func contributeHTML(opts Options) string {
	a := func(suffix, text string) string {
		return fmt.Sprintf(`<a href="%s">%s</a>`, href(opts, suffix), text)
	}
	li := func(suffix, text string) string { return "<li>" + a(suffix, text) + "</li>" }

	var b strings.Builder
	b.WriteString(`<!doctype html><html lang="en-US"><head><title>Volunteer Opportunities at Mozilla</title></head><body>`)
	b.WriteString(`<header><a href="#tabzilla-panel" id="tabzilla" aria-controls="tabzilla-panel" aria-expanded="false">Mozilla</a>`)
	b.WriteString(`<div id="tabzilla-panel" hidden><nav id="tabzilla-nav"><ul>`)
	b.WriteString(`<li><h2>Mozilla</h2><ul>` +
		li("/en-US/mission/", "Mission") +
		li("/en-US/about/", "About") +
		li("/en-US/projects/", "Projects") +
		li("support.mozilla.org/", "Support") +
		li("developer.mozilla.org/", "Developer Network") +
		`</ul></li>`)
	b.WriteString(`<li><h2>Products</h2><ul>` +
		li("/en-US/firefox/", "Firefox") +
		li("/en-US/thunderbird/", "Thunderbird") +
		li("/en-US/firefox/os/", "Firefox OS") +
		`</ul></li>`)
	b.WriteString(`<li><h2>Get Involved</h2><ul>` +
		li("/en-US/contribute/", "Volunteer") +
		li("/en-US/about/careers.html", "Careers") +
		li("/en-US/about/mozilla-spaces/", "Find us") +
		`</ul></li>`)
	b.WriteString(`<li><h2>Add-ons</h2><ul>` + li("addons.mozilla.org/", "Add-ons") + `</ul></li>`)
	b.WriteString(`</ul></nav></div></header>`)

	b.WriteString(`<section id="main-feature"><h1>Volunteer Opportunities</h1>`)
	fmt.Fprintf(&b, `<a class="signup" href="%s">Want to help?</a></section>`, href(opts, SignupPath))

	b.WriteString(`<main id="main-content"><ul>` +
		li("/en-US/contribute/universityambassadors/", "Student Ambassadors") +
		li("wiki.mozilla.org/Contribute", "Contribute wiki") +
		li("reps.mozilla.org/", "Mozilla Reps") +
		li("/en-US/contribute/events/", "Events") +
		li("/en-US/contribute/stories/", "Stories") +
		`</ul></main>`)

	b.WriteString(`<footer id="colophon">`)
	b.WriteString(`<div class="footer-logo">` + a("/en-US/", "mozilla") + `</div>`)
	b.WriteString(`<div class="footer-license">` +
		a("/en-US/privacy/", "Privacy Policy") +
		a("/en-US/about/legal.html", "Legal Notices") +
		a("/en-US/legal/fraud-report/index.html", "Report Trademark Abuse") +
		`</div>`)
	b.WriteString(`<ul class="footer-nav">` +
		li("/en-US/about/contact.html", "Contact Us") +
		li("/en-US/about/partnerships/", "Partner with Us") +
		`<li class="twitter">` + a("twitter.com/firefox", "Twitter") + `</li>` +
		`<li class="facebook">` + a("facebook.com/Firefox", "Facebook") + `</li>` +
		`<li class="affiliates">` + a("affiliates.mozilla.org/", "Firefox Affiliates") + `</li>` +
		`</ul></footer>`)

	b.WriteString(`<script>
document.getElementById('tabzilla').addEventListener('click', function (e) {
  e.preventDefault();
  var panel = document.getElementById('tabzilla-panel');
  panel.hidden = !panel.hidden;
  this.setAttribute('aria-expanded', String(!panel.hidden));
});
</script>`)
	b.WriteString(`</body></html>`)
	return b.String()
}

func signupHTML(opts Options) string {
	hidden := make(map[string]bool, len(opts.HiddenFields))
	for _, id := range opts.HiddenFields {
		hidden[id] = true
	}
	style := func(id string) string {
		if hidden[id] {
			return ` style="display: none"`
		}
		return ""
	}

	var b strings.Builder
	b.WriteString(`<!doctype html><html lang="en-US"><head><title>Sign up</title></head><body>`)
	if opts.OmitForm {
		b.WriteString(`<p>Sign up is closed.</p></body></html>`)
		return b.String()
	}
	b.WriteString(`<form id="help-form" method="post" action="#">`)
	fmt.Fprintf(&b, `<input type="email" id="id_email" name="email"%s>`, style("id_email"))
	fmt.Fprintf(&b, `<select id="id_interest" name="interest"%s><option>Coding</option><option>Testing</option></select>`, style("id_interest"))
	fmt.Fprintf(&b, `<textarea id="id_comments" name="comments"%s></textarea>`, style("id_comments"))
	fmt.Fprintf(&b, `<input type="checkbox" id="id_privacy" name="privacy"%s>`, style("id_privacy"))
	fmt.Fprintf(&b, `<button type="submit" id="form-submit"%s>Submit</button>`, style("form-submit"))
	b.WriteString(`</form></body></html>`)
	return b.String()
}
