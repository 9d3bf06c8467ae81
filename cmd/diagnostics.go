package cmd

import (
	"github.com/fatih/color"

	"github.com/Rana718/pgdiagram/internal/convert"
	"github.com/Rana718/pgdiagram/internal/schema"
)

func printDiagnostics(diags []schema.Diagnostic) {
	for _, d := range diags {
		switch d.Severity {
		case schema.SeverityWarning:
			color.Yellow("⚠️  %s", d)
		default:
			if verbose {
				color.White("ℹ️  %s", d)
			}
		}
	}
}

func printSummary(result *convert.Result, outPath string) {
	unresolved := len(result.Schema.UnresolvedForeignKeys())

	color.Green("✅ Diagram written to %s", outPath)
	color.Cyan("   %d tables, %d relationships", result.Schema.Len(), len(result.Diagram.Edges))
	if unresolved > 0 {
		color.Yellow("   %d foreign keys could not be resolved and were not drawn", unresolved)
	}
}
