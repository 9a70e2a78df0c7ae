// Package dedupe remembers form submission nonces for a short window so a
// repeated POST of the same form is applied once.
package dedupe
