package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/timeframe"
	"github.com/yourorg/dca-backtest-platform/services/historical-data-service/internal/utils"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
	"github.com/spf13/cobra"
)

// inputError marks bad flags or arguments
type inputError struct {
	err error
}

func (e *inputError) Error() string { return e.err.Error() }

func (e *inputError) Unwrap() error { return e.err }

func badInput(format string, args ...interface{}) error {
	return &inputError{err: fmt.Errorf(format, args...)}
}

func newRootCmd() *cobra.Command {
	var output string

	root := &cobra.Command{
		Use:           "timeframe-limits",
		Short:         "Inspect candle history limits per timeframe",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&output, "output", "o", "table", "Output format (table, json)")

	root.AddCommand(newListCmd(&output), newCheckCmd(&output))
	return root
}

func newListCmd(output *string) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the limits table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			switch *output {
			case "json":
				return writeJSON(cmd.OutOrStdout(), limitsByKey())
			case "table":
				renderLimits(cmd.OutOrStdout())
				return nil
			default:
				return badInput("unknown output format %q", *output)
			}
		},
	}
}

func newCheckCmd(output *string) *cobra.Command {
	var tf, start, end string

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Check a date range against the limit of a timeframe",
		Example: `  timeframe-limits check --timeframe 1h --start 2020-01-01 --end 2024-01-01
  timeframe-limits check --timeframe 1d --start 2023-01-01 --end 2024-01-01 -o json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if tf == "" || start == "" || end == "" {
				return badInput("--timeframe, --start and --end are required")
			}

			startDate, err := utils.ParseDate(start)
			if err != nil {
				return badInput("start: %v", err)
			}
			endDate, err := utils.ParseDate(end)
			if err != nil {
				return badInput("end: %v", err)
			}

			result := timeframe.Validate(startDate, endDate, tf)

			switch *output {
			case "json":
				return writeJSON(cmd.OutOrStdout(), result)
			case "table":
				renderCheck(cmd.OutOrStdout(), tf, result)
				return nil
			default:
				return badInput("unknown output format %q", *output)
			}
		},
	}

	cmd.Flags().StringVarP(&tf, "timeframe", "t", "", "Timeframe key (1h, 4h, 1d, 1w, 1m)")
	cmd.Flags().StringVar(&start, "start", "", "Start date YYYY-MM-DD or RFC3339")
	cmd.Flags().StringVar(&end, "end", "", "End date YYYY-MM-DD or RFC3339")
	return cmd
}

type keyedLimit struct {
	Timeframe string `json:"timeframe"`
	Label     string `json:"label"`
	timeframe.Limit
}

func limitsByKey() []keyedLimit {
	keys := timeframe.Keys()
	limits := make([]keyedLimit, 0, len(keys))
	for _, key := range keys {
		limit, _ := timeframe.Lookup(key)
		limits = append(limits, keyedLimit{Timeframe: key, Label: timeframe.Label(key), Limit: limit})
	}
	return limits
}

func renderLimits(w io.Writer) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("TIMEFRAME LIMITS")
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Timeframe", "Label", "Max Months", "Span", "Suggested", "Max Points", "Visible Days"})

	for _, l := range limitsByKey() {
		suggested := "-"
		if l.SuggestedTimeframe != "" {
			suggested = timeframe.DisplayKey(l.SuggestedTimeframe)
		}
		t.AppendRow(table.Row{
			timeframe.DisplayKey(l.Timeframe),
			l.Label,
			l.MaxMonths,
			l.Description,
			suggested,
			l.MaxDataPoints,
			l.DefaultVisibleDays,
		})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 3, Align: text.AlignRight},
		{Number: 6, Align: text.AlignRight},
		{Number: 7, Align: text.AlignRight},
	})
	t.Render()
}

func renderCheck(w io.Writer, tf string, result timeframe.DateRangeValidation) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetTitle("RANGE CHECK " + timeframe.DisplayKey(tf))
	t.SetStyle(table.StyleRounded)

	t.AppendRows([]table.Row{
		{"Valid", strconv.FormatBool(result.IsValid)},
		{"Requested", utils.FormatDate(result.OriginalStart) + " .. " + utils.FormatDate(result.OriginalEnd)},
		{"Applied", utils.FormatDate(result.AdjustedStart) + " .. " + utils.FormatDate(result.AdjustedEnd)},
		{"Selected months", result.SelectedMonths},
		{"Max months", result.Limit.MaxMonths},
	})
	if result.Message != "" {
		t.AppendRow(table.Row{"Message", result.Message})
	}

	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, WidthMax: 60},
	})
	t.Render()
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
