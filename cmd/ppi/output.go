package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Colors for human output.
var (
	headerColor  = color.New(color.FgHiGreen, color.Bold)
	subtleColor  = color.New(color.FgHiBlack)
	proteinColor = color.New(color.FgBlue)
	ppiColor     = color.New(color.FgMagenta)
	paperColor   = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
)

// TitleMaxLen is the title truncation length for literature listings.
const TitleMaxLen = 70

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// outputHuman writes a human-readable string to stdout.
func outputHuman(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// exitWithError outputs an error in the appropriate format (human or JSON) and exits.
func exitWithError(code int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if humanOutput {
		fmt.Fprintf(os.Stderr, "%s %s\n", errorColor.Sprint("error:"), msg)
	} else {
		outputJSON(ErrorResponse{Error: msg})
	}
	os.Exit(code)
}

// ErrorResponse is a JSON error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// OutputResponse reports a file written by a command.
type OutputResponse struct {
	Output string `json:"output"`
}

// kindColor returns the color used for a node kind.
func kindColor(kind string) *color.Color {
	switch kind {
	case "protein":
		return proteinColor
	case "ppi":
		return ppiColor
	case "paper":
		return paperColor
	default:
		return subtleColor
	}
}

// printTable prints rows aligned under headers.
func printTable(headers []string, rows [][]string) {
	if len(rows) == 0 {
		return
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = len(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) && len(cell) > widths[i] {
				widths[i] = len(cell)
			}
		}
	}

	var header []string
	for i, h := range headers {
		header = append(header, fmt.Sprintf("%-*s", widths[i], h))
	}
	headerColor.Println(strings.Join(header, "  "))

	for _, row := range rows {
		var cells []string
		for i, cell := range row {
			cells = append(cells, fmt.Sprintf("%-*s", widths[i], cell))
		}
		fmt.Println(strings.Join(cells, "  "))
	}
}

// truncateString truncates a string to maxLen, adding "..." if truncated.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
