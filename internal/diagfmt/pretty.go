package diagfmt

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"

	"stracetui/internal/diag"
	"stracetui/internal/source"
)

// Pretty форматирует диагностики в человекочитаемый вид.
// Идёт по bag.Items() (ожидается bag.Sort() заранее).
// Для каждого diag печатает:
// <path>:<line>: <SEV> <CODE>: <Message>
// затем, если включено ShowRaw, исходную строку трассы.
// Цвет включается опцией.
func Pretty(w io.Writer, bag *diag.Bag, path string, opts PrettyOpts) {
	var (
		errColor  = color.New(color.FgRed, color.Bold)
		warnColor = color.New(color.FgYellow, color.Bold)
		infoColor = color.New(color.FgCyan, color.Bold)
		locColor  = color.New(color.Bold)
		rawColor  = color.New(color.Faint)
	)
	for _, c := range []*color.Color{errColor, warnColor, infoColor, locColor, rawColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	name := "<stdin>"
	if path != "" {
		name = source.FormatPath(path, opts.PathMode.String())
	}

	items := bag.Items()
	shown := len(items)
	if opts.Max > 0 && opts.Max < shown {
		shown = opts.Max
	}

	for _, d := range items[:shown] {
		loc := name
		if d.Line > 0 {
			loc += ":" + strconv.Itoa(d.Line)
		}

		sev := infoColor
		switch d.Severity {
		case diag.SevError:
			sev = errColor
		case diag.SevWarning:
			sev = warnColor
		}

		fmt.Fprintf(w, "%s: %s %s: %s\n",
			locColor.Sprint(loc), sev.Sprint(d.Severity.String()), d.Code.ID(), d.Message)

		if opts.ShowRaw && d.Raw != "" {
			raw := d.Raw
			if opts.Width > 0 {
				raw = runewidth.Truncate(raw, int(opts.Width)-6, "…")
			}
			fmt.Fprintf(w, "    %s %s\n", rawColor.Sprint("|"), rawColor.Sprint(raw))
		}
	}

	if hidden := len(items) - shown + bag.Dropped(); hidden > 0 {
		fmt.Fprintf(w, "... %d more diagnostic%s not shown\n", hidden, plural(hidden))
	}
}

// Summary prints a one-line count of diagnostics by severity, e.g.
// "2 errors, 1 warning".
func Summary(w io.Writer, bag *diag.Bag) {
	var errs, warns, infos int
	for _, d := range bag.Items() {
		switch d.Severity {
		case diag.SevError:
			errs++
		case diag.SevWarning:
			warns++
		default:
			infos++
		}
	}
	var parts []string
	if errs > 0 {
		parts = append(parts, fmt.Sprintf("%d error%s", errs, plural(errs)))
	}
	if warns > 0 {
		parts = append(parts, fmt.Sprintf("%d warning%s", warns, plural(warns)))
	}
	if infos > 0 {
		parts = append(parts, fmt.Sprintf("%d note%s", infos, plural(infos)))
	}
	if len(parts) == 0 {
		fmt.Fprintln(w, "no diagnostics")
		return
	}
	fmt.Fprintln(w, strings.Join(parts, ", "))
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
