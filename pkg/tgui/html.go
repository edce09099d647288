// Package tgui holds small helpers for composing Telegram HTML messages.
package tgui

import (
	"html"
	"strings"
)

// H represents HTML that is safe to pass to Telegram when ParseMode="HTML".
// Values of type H should be treated as already-escaped.
type H string

func (h H) String() string { return string(h) }

// Esc escapes text for Telegram HTML parse mode.
func Esc(s string) H { return H(html.EscapeString(s)) }

// Raw marks a string as already-safe HTML. Use sparingly.
func Raw(s string) H { return H(s) }

func wrap(tag string, inner H) H { return H("<" + tag + ">" + inner.String() + "</" + tag + ">") }

// B renders bold escaped text.
func B(s string) H { return wrap("b", Esc(s)) }

// I renders italic escaped text.
func I(s string) H { return wrap("i", Esc(s)) }

// Code renders inline monospace escaped text.
func Code(s string) H { return wrap("code", Esc(s)) }

// Lines joins safe HTML parts with newlines, skipping blank parts.
func Lines(parts ...H) H {
	ss := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p.String()) == "" {
			continue
		}
		ss = append(ss, p.String())
	}
	return H(strings.Join(ss, "\n"))
}
