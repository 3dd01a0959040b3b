package commands

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync/atomic"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gopkg.in/yaml.v3"

	"github.com/Sumatoshi-tech/treediff/pkg/config"
	"github.com/Sumatoshi-tech/treediff/pkg/gitobj"
	"github.com/Sumatoshi-tech/treediff/pkg/observability"
	"github.com/Sumatoshi-tech/treediff/pkg/odb"
	"github.com/Sumatoshi-tech/treediff/pkg/treediff"
)

// Output formats for the diff command.
const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// DiffCommand holds configuration and dependencies for the diff command.
type DiffCommand struct {
	configPath string
	gitDir     string
	format     string
	limit      int
	stat       bool
	noColor    bool
}

// NewDiffCommand creates the diff command.
func NewDiffCommand() *cobra.Command {
	dc := &DiffCommand{format: formatText}

	cmd := &cobra.Command{
		Use:   "diff <from-tree> <to-tree>",
		Short: "Compare two tree objects",
		Long: `Compare two tree objects and print one line per structural change.

Tree arguments are full hex hashes; the literal "empty" diffs against nothing,
which lists every entry of the other tree.`,
		Args: cobra.ExactArgs(2),
		RunE: dc.run,
	}

	cmd.Flags().StringVar(&dc.configPath, "config", "", "Config file path (default: ./treediff.yaml)")
	cmd.Flags().StringVar(&dc.gitDir, "git-dir", "", "Repository metadata directory (default from config)")
	cmd.Flags().StringVar(&dc.format, "format", formatText, "Output format: text, json, yaml")
	cmd.Flags().IntVar(&dc.limit, "limit", 0, "Stop after this many changes (0 = no limit)")
	cmd.Flags().BoolVar(&dc.stat, "stat", false, "Append a change summary table")
	cmd.Flags().BoolVar(&dc.noColor, "no-color", false, "Disable colored output")

	return cmd
}

func (d *DiffCommand) run(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(d.configPath)
	if err != nil {
		return err
	}

	providers, err := initObservability(cfg)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	defer func() {
		if shutdownErr := providers.Shutdown(context.WithoutCancel(ctx)); shutdownErr != nil {
			providers.Logger.Warn("telemetry shutdown failed", "error", shutdownErr)
		}
	}()

	metrics, err := observability.NewDiffMetrics(providers.Meter)
	if err != nil {
		return fmt.Errorf("create metrics: %w", err)
	}

	store, cached, err := openStore(cfg, d.gitDir)
	if err != nil {
		return err
	}

	// Each root tree keeps its own buffer alive for the whole traversal.
	var fromBuf, toBuf []byte

	from, err := resolveTreeArg(store, args[0], &fromBuf)
	if err != nil {
		return err
	}

	to, err := resolveTreeArg(store, args[1], &toBuf)
	if err != nil {
		return err
	}

	ctx, span := providers.Tracer.Start(ctx, "treediff.diff", trace.WithAttributes(
		attribute.String("diff.from", args[0]),
		attribute.String("diff.to", args[1]),
	))
	defer span.End()

	recorder := treediff.NewRecorder()
	if d.limit > 0 {
		limit := d.limit
		recorder.CancelAt = func(treediff.RecordedChange) bool {
			limit--

			return limit <= 0
		}
	}

	counted := &countingStore{inner: store}

	start := time.Now()
	diffErr := treediff.NewDiffer(odb.TreeSource(counted)).Diff(from, to, recorder)
	elapsed := time.Since(start)

	for _, rc := range recorder.Changes {
		metrics.RecordChange(ctx, rc.Change.Action.String())
	}

	metrics.RecordFetch(ctx, counted.fetches.Load())
	metrics.RecordDiff(ctx, elapsed, diffStatus(diffErr))

	providers.Logger.InfoContext(ctx, "diff finished",
		"changes", len(recorder.Changes),
		"elapsed", elapsed,
		"cancelled", errors.Is(diffErr, treediff.ErrCancelled),
	)

	if diffErr != nil && !errors.Is(diffErr, treediff.ErrCancelled) {
		return fmt.Errorf("diff trees: %w", diffErr)
	}

	out := cmd.OutOrStdout()

	if err := d.writeChanges(out, recorder.Changes); err != nil {
		return err
	}

	if d.stat {
		d.writeStat(out, recorder.Changes, elapsed, cached)
	}

	return nil
}

// countingStore tallies sub-tree fetches issued during recursion.
type countingStore struct {
	inner   odb.Store
	fetches atomic.Int64
}

func (s *countingStore) Object(hash gitobj.Hash, buf *[]byte) (odb.Object, error) {
	s.fetches.Add(1)

	return s.inner.Object(hash, buf)
}

func diffStatus(err error) observability.DiffStatus {
	switch {
	case err == nil:
		return observability.DiffOK
	case errors.Is(err, treediff.ErrCancelled):
		return observability.DiffCancelled
	default:
		return observability.DiffError
	}
}

// changeRow is the machine-readable form of one change.
type changeRow struct {
	Status   string `json:"status"              yaml:"status"`
	Path     string `json:"path"                yaml:"path"`
	FromMode string `json:"from_mode,omitempty" yaml:"from_mode,omitempty"`
	FromHash string `json:"from_hash,omitempty" yaml:"from_hash,omitempty"`
	ToMode   string `json:"to_mode,omitempty"   yaml:"to_mode,omitempty"`
	ToHash   string `json:"to_hash,omitempty"   yaml:"to_hash,omitempty"`
}

func toRows(changes []treediff.RecordedChange) []changeRow {
	rows := make([]changeRow, 0, len(changes))

	for _, rc := range changes {
		row := changeRow{
			Status: rc.Change.Action.String(),
			Path:   rc.Path,
		}

		if rc.Change.Action != treediff.Insert {
			row.FromMode = rc.Change.From.Mode.String()
			row.FromHash = rc.Change.From.Hash.String()
		}

		if rc.Change.Action != treediff.Delete {
			row.ToMode = rc.Change.To.Mode.String()
			row.ToHash = rc.Change.To.Hash.String()
		}

		rows = append(rows, row)
	}

	return rows
}

func (d *DiffCommand) writeChanges(out io.Writer, changes []treediff.RecordedChange) error {
	switch strings.ToLower(d.format) {
	case formatText:
		d.writeText(out, changes)

		return nil
	case formatJSON:
		encoder := json.NewEncoder(out)
		encoder.SetIndent("", "  ")

		if err := encoder.Encode(toRows(changes)); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}

		return nil
	case formatYAML:
		if err := yaml.NewEncoder(out).Encode(toRows(changes)); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}

		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, d.format)
	}
}

func (d *DiffCommand) writeText(out io.Writer, changes []treediff.RecordedChange) {
	paint := d.statusPainter()

	for _, rc := range changes {
		fmt.Fprintf(out, "%s\t%s\n", paint(rc.Change.Action), rc.Path)
	}
}

// statusPainter returns a colorizer for change statuses, honoring --no-color.
func (d *DiffCommand) statusPainter() func(treediff.ChangeAction) string {
	if d.noColor {
		return func(action treediff.ChangeAction) string { return action.String() }
	}

	added := color.New(color.FgGreen).SprintFunc()
	deleted := color.New(color.FgRed).SprintFunc()
	modified := color.New(color.FgYellow).SprintFunc()

	return func(action treediff.ChangeAction) string {
		switch action {
		case treediff.Insert:
			return added(action.String())
		case treediff.Delete:
			return deleted(action.String())
		case treediff.Modify:
			return modified(action.String())
		default:
			return action.String()
		}
	}
}

func (d *DiffCommand) writeStat(
	out io.Writer,
	changes []treediff.RecordedChange,
	elapsed time.Duration,
	cached *odb.CachedStore,
) {
	var added, deleted, modified int

	for _, rc := range changes {
		switch rc.Change.Action {
		case treediff.Insert:
			added++
		case treediff.Delete:
			deleted++
		case treediff.Modify:
			modified++
		}
	}

	writer := table.NewWriter()
	writer.SetOutputMirror(out)
	writer.AppendHeader(table.Row{"Added", "Deleted", "Modified", "Total", "Elapsed"})
	writer.AppendRow(table.Row{added, deleted, modified, len(changes), elapsed.Round(time.Microsecond)})
	writer.Render()

	if cached == nil {
		return
	}

	stats := cached.Stats()
	fmt.Fprintf(out, "object cache: %d hits, %d misses, %d entries, %s of %s\n",
		stats.Hits, stats.Misses, stats.Entries,
		humanize.Bytes(uint64(stats.CurrentSize)), //nolint:gosec // sizes are non-negative.
		humanize.Bytes(uint64(stats.MaxSize)),     //nolint:gosec // sizes are non-negative.
	)
}
