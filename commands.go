package main

import (
	"context"
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	ltable "github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kennygrant/codash/overview"
	"github.com/kennygrant/codash/series"
	"github.com/kennygrant/codash/table"
)

var (
	// table flags
	tableMode     string
	tableMetric   string
	tableSelected bool
	tableOffline  bool

	// fetch flags
	fetchTop int
)

// fetchCmd fetches records once and shows a summary
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch records, archive them and show the top regions",
	Args:  cobra.NoArgs,
	RunE:  runFetch,
}

// tableCmd prints the table or a ranking for the current data
var tableCmd = &cobra.Command{
	Use:   "table",
	Short: "Print region metrics for a date filter",
	Long: `Prints one row per region with metrics over the date filter.

Example:
  codash table --mode LAST_7_DAYS --metric deathsPerCapita --selected`,
	Args: cobra.NoArgs,
	RunE: runTable,
}

// importCmd archives records from a file
var importCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import records in the api json format into the archive",
	Args:  cobra.ExactArgs(1),
	RunE:  runImport,
}

func init() {
	tableCmd.Flags().StringVar(&tableMode, "mode", string(overview.DateFilterLast14Days), "date filter mode")
	tableCmd.Flags().StringVar(&tableMetric, "metric", "", "rank regions by this metric")
	tableCmd.Flags().BoolVar(&tableSelected, "selected", false, "show only preselected regions")
	tableCmd.Flags().BoolVar(&tableOffline, "offline", false, "use the archived records only")

	fetchCmd.Flags().IntVar(&fetchTop, "top", 10, "number of regions to show")
}

func runFetch(cmd *cobra.Command, args []string) error {
	if fetchTop < 1 {
		return fmt.Errorf("fetch: invalid top:%d", fetchTop)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := a.fetcher.Fetch(cmd.Context())
	if err != nil {
		return err
	}

	dataset, err := series.Parse(records, series.DefaultParseOptions())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%d records, %s\n", len(records), dataset)
	for i, r := range dataset.TopRegions(fetchTop) {
		fmt.Fprintf(out, "%2d. %s deaths:%s cases:%s\n", i+1, r, table.Format(r.TotalDeaths()), table.Format(r.TotalCases()))
	}
	return nil
}

func runTable(cmd *cobra.Command, args []string) error {
	mode := overview.DateFilterMode(tableMode)
	if !mode.Valid() || mode.Explicit() {
		return fmt.Errorf("table: invalid mode:%s", tableMode)
	}
	metric := table.Metric(tableMetric)
	if metric != "" && !metric.Valid() {
		return fmt.Errorf("table: invalid metric:%s", tableMetric)
	}

	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	records, err := tableRecords(cmd.Context(), a)
	if err != nil {
		return err
	}

	a.store.Dispatch(overview.GetDataSuccess{Records: records})
	state := a.store.Dispatch(overview.ChangeDateFilterMode{Mode: mode})
	if state.LoadingStatus != overview.StatusSuccess {
		return fmt.Errorf("table: %s", state.Notification.Message)
	}

	rows := table.ProjectState(state, cfg.Scale)
	if tableSelected {
		rows = table.SelectedRows(rows)
	}
	if metric != "" {
		rows = table.Rank(rows, metric)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s %s..%s\n", mode, formatDate(state.DateFilter.StartDate), formatDate(state.DateFilter.EndDate))
	fmt.Fprintln(cmd.OutOrStdout(), renderTable(rows, metric != ""))
	return nil
}

// tableRecords returns the archived records if offline, otherwise fetches them
func tableRecords(ctx context.Context, a *app) ([]series.Record, error) {
	if tableOffline {
		records, _, err := a.archive.Latest(ctx)
		return records, err
	}
	return a.fetcher.Fetch(ctx)
}

func runImport(cmd *cobra.Command, args []string) error {
	a, err := newApp(cfg, logger)
	if err != nil {
		return err
	}
	defer a.Close()

	f, err := os.Open(args[0])
	if err != nil {
		return fmt.Errorf("import: %w", err)
	}
	defer f.Close()

	records, err := a.fetcher.Import(cmd.Context(), f)
	if err != nil {
		return err
	}

	logger.Info("import: archived records", zap.String("file", args[0]), zap.Int("records", len(records)), zap.String("archive", a.archive.Path()))
	return nil
}

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

// renderTable renders rows with a column per metric, and a rank column if ranked
func renderTable(rows []table.Row, ranked bool) string {
	var headers []string
	if ranked {
		headers = append(headers, "#")
	}
	headers = append(headers, "Region", "Population")
	for _, m := range table.Metrics() {
		headers = append(headers, m.Name())
	}

	t := ltable.New().
		Border(lipgloss.NormalBorder()).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == ltable.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	for _, r := range rows {
		var cells []string
		if ranked {
			cells = append(cells, strconv.Itoa(r.Rank))
		}
		cells = append(cells, r.Name, table.Format(r.Population))
		values := r.Cells()
		for _, m := range table.Metrics() {
			cells = append(cells, values[m])
		}
		t.Row(cells...)
	}

	return t.String()
}
