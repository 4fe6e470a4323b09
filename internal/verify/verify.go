// Package verify implements the aggregate-then-report policy shared by every
// check: per-item failures are collected, and only the final count decides
// whether a scenario fails.
package verify

import (
	"fmt"
	"strings"
)

// AssertionError is the single terminal failure of a scenario. It carries the
// full ordered list of per-item failures.
type AssertionError struct {
	Subject  string
	Failures []string
}

func (e *AssertionError) Error() string {
	if e.Subject == "" {
		return strings.Join(e.Failures, ", ")
	}
	return fmt.Sprintf("%d bad %s found: %s", len(e.Failures), e.Subject, strings.Join(e.Failures, ", "))
}

// Count returns the number of failed items.
func (e *AssertionError) Count() int { return len(e.Failures) }

// Failures accumulates per-item failure messages for one scenario.
type Failures struct {
	subject string
	items   []string
}

// New creates a collector whose aggregate error reads "<n> bad <subject> found".
func New(subject string) *Failures {
	return &Failures{subject: subject}
}

// Add records one failure.
func (f *Failures) Add(msg string) {
	f.items = append(f.items, msg)
}

// Addf records one formatted failure.
func (f *Failures) Addf(format string, args ...any) {
	f.items = append(f.items, fmt.Sprintf(format, args...))
}

// AddAll records every message in msgs, preserving order.
func (f *Failures) AddAll(msgs []string) {
	f.items = append(f.items, msgs...)
}

func (f *Failures) Len() int { return len(f.items) }

// Items returns a copy of the recorded failures.
func (f *Failures) Items() []string {
	out := make([]string, len(f.items))
	copy(out, f.items)
	return out
}

// Err returns nil when nothing failed, otherwise an *AssertionError.
func (f *Failures) Err() error {
	if len(f.items) == 0 {
		return nil
	}
	return &AssertionError{Subject: f.subject, Failures: f.Items()}
}

// True fails with msg unless cond holds.
func True(cond bool, msg string) error {
	if cond {
		return nil
	}
	return &AssertionError{Failures: []string{msg}}
}
