// internal/output/output.go
package output

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"lovefi-matcher/internal/compatibility"
)

const (
	FormatTable = "table"
	FormatJSON  = "json"
)

// factorOrder fixes the row order of the factor table.
var factorOrder = []compatibility.Factor{
	compatibility.FactorAge,
	compatibility.FactorInterests,
	compatibility.FactorLocation,
}

// Write renders data in the named format.
func Write(w io.Writer, format string, data interface{}) error {
	switch format {
	case FormatJSON:
		return JSONTo(w, data)
	case FormatTable, "":
		return TableTo(w, data)
	default:
		return fmt.Errorf("unsupported output format %q (use table or json)", format)
	}
}

// JSONTo writes data as indented JSON.
func JSONTo(w io.Writer, data interface{}) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

func TableTo(w io.Writer, data interface{}) error {
	switch v := data.(type) {
	case *compatibility.ScoreResult:
		return scoreTable(w, v)
	case []compatibility.Configuration:
		return modesTable(w, v)
	default:
		return fmt.Errorf("unsupported data type for table output: %T", data)
	}
}

func scoreTable(w io.Writer, r *compatibility.ScoreResult) error {
	fmt.Fprintf(w, "Mode:    %s\n", r.Mode)
	fmt.Fprintf(w, "Overall: %.1f/100\n\n", r.OverallScore)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "FACTOR\tSCORE\tREASON")
	fmt.Fprintln(tw, "------\t-----\t------")
	for _, f := range factorOrder {
		res, ok := r.Factors[f]
		if !ok {
			continue
		}
		fmt.Fprintf(tw, "%s\t%.0f\t%s\n", f, res.CompatibilityScore*100, res.Reason)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(r.Recommendations) > 0 {
		fmt.Fprintln(w, "\nRecommendations:")
		for _, rec := range r.Recommendations {
			fmt.Fprintf(w, "  - %s\n", rec)
		}
	}
	return nil
}

func modesTable(w io.Writer, cfgs []compatibility.Configuration) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MODE\tAGE CURVE\tWEIGHTS (AGE/INTERESTS/LOCATION)")
	fmt.Fprintln(tw, "----\t---------\t--------------------------------")
	for _, c := range cfgs {
		weights := strings.Join([]string{
			fmt.Sprintf("%.2f", c.Weights.Age),
			fmt.Sprintf("%.2f", c.Weights.Interests),
			fmt.Sprintf("%.2f", c.Weights.Location),
		}, "/")
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Mode, c.AgeCurve, weights)
	}
	return tw.Flush()
}
