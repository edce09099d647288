package tgui

import "testing"

func TestEscape(t *testing.T) {
	t.Parallel()

	if got := Esc(`a < b & "c"`).String(); got != `a &lt; b &amp; &#34;c&#34;` {
		t.Errorf("Esc() = %q", got)
	}
	if got := B("x<y").String(); got != "<b>x&lt;y</b>" {
		t.Errorf("B() = %q", got)
	}
	if got := Code("rm -rf").String(); got != "<code>rm -rf</code>" {
		t.Errorf("Code() = %q", got)
	}
}

func TestLinesSkipsBlanks(t *testing.T) {
	t.Parallel()

	got := Lines(Raw("a"), Raw("  "), Raw(""), B("b")).String()
	if got != "a\n<b>b</b>" {
		t.Errorf("Lines() = %q", got)
	}
}
