package ui

import (
	"fmt"
	"io"

	"github.com/pterm/pterm"
)

// PrintTable renders data as a boxed table whose first row is the header.
func PrintTable(data [][]string, writer io.Writer) {
	table := pterm.DefaultTable
	table.Boxed = true

	str, err := table.WithHasHeader().WithData(data).Srender()
	if err != nil {
		pterm.Error.Printfln("Failed to output table: %s", err.Error())
		return
	}

	fmt.Fprintln(writer, str)
}

// Field is one labelled line of PrintFields output.
type Field struct {
	Label string
	Value string
}

// PrintFields prints label: value lines with the labels aligned. Fields with
// an empty value are skipped.
func PrintFields(fields []Field, writer io.Writer) {
	width := 0

	for _, f := range fields {
		if f.Value != "" {
			width = max(width, len(f.Label))
		}
	}

	for _, f := range fields {
		if f.Value == "" {
			continue
		}

		fmt.Fprintf(writer, "%-*s  %s\n", width+1, f.Label+":", f.Value)
	}
}
