package cli

import (
	"errors"
	"flag"
	"io"

	"github.com/canary-hr/attendance-reconciler/internal/domain/matcher"
	"github.com/canary-hr/attendance-reconciler/internal/domain/reconciler"
)

// ReconcileFlags are the flags of the reconcile command
type ReconcileFlags struct {
	Primary   string
	Secondary string
	Out       string
	Config    string

	KeyStrategy      string
	NameThreshold    float64
	Tolerance        float64
	EmitOrphans      bool
	StrictHeaders    bool
	IncompleteBucket string
	CodeDigitsOnly   bool

	Kind     string
	Query    string
	NoLedger bool
	Verbose  bool

	set map[string]bool
}

// ParseReconcileFlags parses reconcile flags from args (without the program name).
func ParseReconcileFlags(args []string, output io.Writer) (*ReconcileFlags, error) {
	fs := flag.NewFlagSet("reconcile", flag.ContinueOnError)
	fs.SetOutput(output)

	flags := &ReconcileFlags{set: make(map[string]bool)}
	fs.StringVar(&flags.Primary, "primary", "", "Fingerprint export (.xlsx or .csv)")
	fs.StringVar(&flags.Secondary, "secondary", "", "Manual ledger (.xlsx or .csv)")
	fs.StringVar(&flags.Out, "out", "", "Report path (default from config export.file_name)")
	fs.StringVar(&flags.Config, "config", "config.yaml", "Config file")

	fs.StringVar(&flags.KeyStrategy, "key", string(matcher.StrategyCode), "Key strategy: code or code_name")
	fs.Float64Var(&flags.NameThreshold, "threshold", 0, "Fuzzy name threshold (0 = config default)")
	fs.Float64Var(&flags.Tolerance, "tolerance", 0, "Counter tolerance (0 = exact)")
	fs.BoolVar(&flags.EmitOrphans, "orphans", false, "List manual-only employees after the main rows")
	fs.BoolVar(&flags.StrictHeaders, "strict-headers", false, "Require code, name, G and R headers")
	fs.StringVar(&flags.IncompleteBucket, "bucket", string(reconciler.BucketBoth), "Incomplete count: both or either")
	fs.BoolVar(&flags.CodeDigitsOnly, "digits-only", false, "Strip non-digits from codes")

	fs.StringVar(&flags.Kind, "kind", "all", "Rows to print: all, match, diff, missing")
	fs.StringVar(&flags.Query, "q", "", "Only print rows whose name or code contains this text")
	fs.BoolVar(&flags.NoLedger, "no-ledger", false, "Do not record the run")
	fs.BoolVar(&flags.Verbose, "verbose", false, "Verbose output")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}
	fs.Visit(func(f *flag.Flag) { flags.set[f.Name] = true })

	if flags.Primary == "" || flags.Secondary == "" {
		fs.Usage()
		return nil, errors.New("both -primary and -secondary are required")
	}

	return flags, nil
}

// ApplyTo overrides policy with the flags given explicitly on the command line
func (f *ReconcileFlags) ApplyTo(policy reconciler.Policy) reconciler.Policy {
	if f.set["key"] {
		policy.KeyStrategy = matcher.KeyStrategy(f.KeyStrategy)
	}
	if f.set["threshold"] {
		policy.NameThreshold = f.NameThreshold
	}
	if f.set["tolerance"] {
		policy.Tolerance = f.Tolerance
	}
	if f.set["orphans"] {
		policy.EmitOrphans = f.EmitOrphans
	}
	if f.set["strict-headers"] {
		policy.StrictHeaders = f.StrictHeaders
	}
	if f.set["bucket"] {
		policy.IncompleteBucket = reconciler.IncompleteBucket(f.IncompleteBucket)
	}
	if f.set["digits-only"] {
		policy.CodeDigitsOnly = f.CodeDigitsOnly
	}
	return policy
}
