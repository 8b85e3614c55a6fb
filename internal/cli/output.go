package cli

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/aretw0/tablewatch/internal/presentation/tui"
	"github.com/aretw0/tablewatch/pkg/domain"
)

// PrintSystemMessage prints a standardized system message to w.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// PrintJSON writes v as indented JSON.
func PrintJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// PrintEvaluation writes a tick result, as JSON or as a coloured status line.
func PrintEvaluation(w io.Writer, eval domain.Evaluation, asJSON bool) error {
	if asJSON {
		return PrintJSON(w, eval)
	}
	_, err := fmt.Fprintln(w, tui.StatusLine(w, eval))
	return err
}

// PrintUnits writes the unit catalog, as JSON or as rendered markdown.
func PrintUnits(w io.Writer, units []domain.ProcessingUnit, external []domain.ExternalSpec, asJSON bool) error {
	if asJSON {
		return PrintJSON(w, map[string]any{"units": units, "external": external})
	}
	out, err := tui.NewRenderer()(tui.UnitsMarkdown(units, external))
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, out)
	return err
}

func decodeEvaluation(msg string, eval *domain.Evaluation) error {
	return json.Unmarshal([]byte(msg), eval)
}
