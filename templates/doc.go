// Package templates holds the HTML views rendered by the handlers. The views
// are written in templ; run `templ generate` after editing a .templ file.
package templates
