// Package web serves the dashboard: the navigation shell, the two chat
// panels, the agent configuration screen, the search sources screen and a
// handful of fixed pages.
//
// Every page is rendered server-side from embedded templates. Browsers get an
// anonymous signed session cookie on first visit; chat panels and one-shot
// notifications are keyed by it. All POST forms carry a double-submit CSRF
// token, and forms that trigger side effects also carry a single-use nonce so
// a resubmitted form is applied once.
//
// Sending a chat message returns immediately with a redirect. The reply
// settles in the background and the page polls the panel's message fragment
// until the loading flag clears.
package web
