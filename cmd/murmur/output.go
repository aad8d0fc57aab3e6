package main

import (
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/olekukonko/tablewriter"

	"github.com/kalambet/murmur/internal/emotion"
	"github.com/kalambet/murmur/internal/match"
	"github.com/kalambet/murmur/internal/wellness"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
	colorBold   = "\033[1m"
)

func colorize(color, text string) string {
	if noColor {
		return text
	}
	return color + text + colorReset
}

func printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorGreen, "✓ "+msg))
}

func printError(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorRed, "✗ "+msg))
}

func printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorYellow, "⚠ "+msg))
}

func printStatus(label string, format string, args ...any) {
	val := fmt.Sprintf(format, args...)
	l := colorize(colorBold, label+":")
	fmt.Fprintf(os.Stderr, "  %s %s\n", l, val)
}

func printStep(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(os.Stderr, colorize(colorCyan, "→ "+msg))
}

func renderResult(out io.Writer, r emotion.Result) {
	fmt.Fprintf(out, "%s %s\n", colorize(colorBold, "Emotion:"), string(r.Emotion))
	fmt.Fprintf(out, "%s %.2f\n", colorize(colorBold, "Intensity:"), r.Intensity)
	fmt.Fprintf(out, "%s %.2f\n", colorize(colorBold, "Confidence:"), r.Confidence)
	fmt.Fprintf(out, "%s %s\n", colorize(colorBold, "Provenance:"), r.Provenance)
	if r.Reasoning != "" {
		fmt.Fprintf(out, "%s %s\n", colorize(colorBold, "Reasoning:"), r.Reasoning)
	}
}

// renderScore prints a match score with the per-factor breakdown as a
// table, factors in canonical weight order.
func renderScore(out io.Writer, s match.Score) {
	fmt.Fprintf(out, "%s %.3f (%s)\n\n", colorize(colorBold, "Compatibility:"), s.Total, string(s.Tier))

	table := tablewriter.NewWriter(out)
	table.Header([]string{"Factor", "Score"})
	for _, f := range []match.Factor{
		match.FactorLocation,
		match.FactorMood,
		match.FactorInterests,
		match.FactorAge,
		match.FactorActivity,
	} {
		table.Append([]string{string(f), strconv.FormatFloat(s.Breakdown[f], 'f', 3, 64)})
	}
	table.Render()

	for _, line := range s.Reasoning {
		fmt.Fprintf(out, "  %s\n", line)
	}
}

func renderReport(out io.Writer, r wellness.Report) {
	fmt.Fprintf(out, "%s %d / 100\n", colorize(colorBold, "Wellness score:"), r.WellnessScore)
	fmt.Fprintf(out, "%s %s\n", colorize(colorBold, "Dominant emotion:"), string(r.DominantEmotion))
	fmt.Fprintf(out, "%s %s\n\n", colorize(colorBold, "Message:"), r.Message)

	printRecommendations(out, "Immediate", r.Recommendations.Immediate)
	printRecommendations(out, "Daily", r.Recommendations.Daily)
	printRecommendations(out, "Weekly", r.Recommendations.Weekly)
	printRecommendations(out, "Professional", r.Recommendations.Professional)

	if len(r.Places) > 0 {
		fmt.Fprintf(out, "\n%s\n", colorize(colorBold, "Places nearby"))
		table := tablewriter.NewWriter(out)
		table.Header([]string{"Name", "Type", "Description"})
		for _, p := range r.Places {
			table.Append([]string{p.Icon + " " + p.Name, p.Type, p.Description})
		}
		table.Render()
	}

	if len(r.Communities) > 0 {
		fmt.Fprintf(out, "\n%s\n", colorize(colorBold, "Communities"))
		for _, c := range r.Communities {
			fmt.Fprintf(out, "  %s %s: %s\n", c.Icon, colorize(colorCyan, c.Name), c.Description)
		}
	}
}

func printRecommendations(out io.Writer, label string, recs []wellness.Recommendation) {
	if len(recs) == 0 {
		return
	}
	fmt.Fprintf(out, "%s\n", colorize(colorBold, label))
	for _, rec := range recs {
		marker := "  "
		if rec.Urgent {
			marker = colorize(colorRed, "! ")
		}
		fmt.Fprintf(out, "%s%s %s: %s\n", marker, rec.Icon, rec.Title, rec.Description)
	}
}
