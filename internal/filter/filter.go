// Package filter defines pre-navigation interceptors. Filters run in
// registration order before any controller is touched; each may let the
// navigation continue, redirect it to another token or abort it with an error.
//
// Filters must not mutate controller or composite caches.
package filter

import "view-router/internal/routing"

// Decision is the outcome of one filter.
type Decision struct {
	redirect string
}

// Continue lets the navigation proceed to the next filter.
func Continue() Decision {
	return Decision{}
}

// RedirectTo restarts the navigation with token.
func RedirectTo(token string) Decision {
	return Decision{redirect: token}
}

// IsRedirect reports whether the decision redirects.
func (d Decision) IsRedirect() bool {
	return d.redirect != ""
}

// Redirect returns the redirect token, empty when the decision continues.
func (d Decision) Redirect() string {
	return d.redirect
}

// Filter inspects a navigation before activation. A returned error aborts
// the navigation as a routing interception.
type Filter interface {
	Execute(token routing.NavigationToken) (Decision, error)
}

// Named is implemented by filters that report a name in logs.
type Named interface {
	Name() string
}

// Func adapts a function to Filter.
type Func func(token routing.NavigationToken) (Decision, error)

// Execute implements Filter.
func (f Func) Execute(token routing.NavigationToken) (Decision, error) {
	return f(token)
}

// NameOf returns the name of f, or "filter" when it reports none.
func NameOf(f Filter) string {
	if n, ok := f.(Named); ok {
		return n.Name()
	}
	return "filter"
}
