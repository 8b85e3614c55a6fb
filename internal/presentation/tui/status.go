package tui

import (
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/tablewatch/pkg/domain"
	"github.com/muesli/termenv"
)

// StatusLine renders one evaluation as a single coloured line:
// green for a successful reload, red for a failed one, plain for no change.
func StatusLine(w io.Writer, e domain.Evaluation) string {
	out := termenv.NewOutput(w)
	label := out.String(strings.ToUpper(string(e.Status.Kind)))
	switch {
	case e.Reloaded:
		label = label.Foreground(out.Color("#22c55e")).Bold()
	case e.ReloadIssued():
		label = label.Foreground(out.Color("#ef4444")).Bold()
	default:
		label = label.Faint()
	}
	return fmt.Sprintf("%s [%s] %s", label, e.Sensor, e.Status.Message)
}

// UnitsMarkdown renders the unit catalog as a markdown table.
func UnitsMarkdown(units []domain.ProcessingUnit, external []domain.ExternalSpec) string {
	var b strings.Builder
	b.WriteString("# Units\n\n")
	if len(units) == 0 {
		b.WriteString("_No units defined._\n")
	} else {
		b.WriteString("| Name | Source table | Deps | Kinds |\n")
		b.WriteString("|---|---|---|---|\n")
		for _, u := range units {
			fmt.Fprintf(&b, "| %s | %s | %s | %s |\n",
				escape(u.Name), escape(u.SourceTable),
				escape(strings.Join(u.Deps, ", ")), escape(strings.Join(u.Kinds, ", ")))
		}
	}

	if len(external) > 0 {
		b.WriteString("\n## External sources\n\n")
		for _, e := range external {
			fmt.Fprintf(&b, "- %s\n", escape(e.Name))
		}
	}
	return b.String()
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
