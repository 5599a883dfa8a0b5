package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/canary-hr/attendance-reconciler/internal/application/service"
	"github.com/canary-hr/attendance-reconciler/internal/domain/attendance"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
)

// PrintHeader prints the application header
func PrintHeader(w io.Writer, primary, secondary string) {
	fmt.Fprintf(w, "attendance-reconciler: %s vs %s\n", primary, secondary)
}

// PrintConfiguration prints the effective policy
func PrintConfiguration(w io.Writer, p reconciler.Policy) {
	fmt.Fprintf(w, "Key: %s | Threshold: %.2f | Tolerance: %s | Bucket: %s",
		p.KeyStrategy, p.NameThreshold, strconv.FormatFloat(p.Tolerance, 'f', -1, 64), p.IncompleteBucket)
	if p.EmitOrphans {
		fmt.Fprint(w, " | Orphans: true")
	}
	if p.StrictHeaders {
		fmt.Fprint(w, " | Strict headers: true")
	}
	fmt.Fprint(w, "\n\n")
}

// PrintSummary prints the run counts
func PrintSummary(w io.Writer, snap *service.RunSnapshot) {
	fmt.Fprintln(w, strings.Repeat("-", 60))
	fmt.Fprintf(w, "Summary: Total=%d Matched=%d Mismatched=%d Incomplete=%d\n",
		snap.Counts.Total,
		snap.Counts.Matched,
		snap.Counts.Mismatched,
		snap.Counts.Incomplete)
	fmt.Fprintf(w, "Rows: primary=%d secondary=%d | Run: %s\n",
		snap.Run.PrimaryCount,
		snap.Run.SecondaryCount,
		snap.ID)
}

// PrintResults prints results as an aligned table
func PrintResults(w io.Writer, results []reconciler.Result) {
	if len(results) == 0 {
		fmt.Fprintln(w, "No rows.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "#\tCODE\tNAME\tG\tR\tG (manual)\tR (manual)\tG RESULT\tR RESULT\tNOTE")
	for _, r := range results {
		code, name := sideKey(r)
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			r.Index,
			code,
			name,
			counter(r.Primary, true),
			counter(r.Primary, false),
			counter(r.Secondary, true),
			counter(r.Secondary, false),
			r.GStatus.Label(),
			r.RStatus.Label(),
			r.Note,
		)
	}
	_ = tw.Flush()
}

func sideKey(r reconciler.Result) (string, string) {
	if r.Primary != nil {
		return r.Primary.Code, r.Primary.Name
	}
	if r.Secondary != nil {
		return r.Secondary.Code, r.Secondary.Name
	}
	return "", ""
}

func counter(rec *attendance.Record, g bool) string {
	if rec == nil {
		return "-"
	}
	v := rec.R
	if g {
		v = rec.G
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
