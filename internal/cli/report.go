package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/monitor"
	"github.com/spf13/cobra"
)

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Show current cost totals from every provider",
	Long:  `Collect once from every configured provider and print month-to-date cost per service with last month for comparison.`,
	RunE:  runReport,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.Flags().StringP("provider", "p", "", "Filter by provider")
}

func runReport(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	providerFilter, _ := cmd.Flags().GetString("provider")
	logger := newLogger(cfg)

	rt, err := buildRuntime(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	collector := monitor.NewCollector(rt.Engine.Providers, cfg.Monitor.ProviderTimeout, nil)
	results := collector.Collect(cmd.Context())

	fmt.Printf("=== Cloud Cost Report ===\n")
	fmt.Printf("Collected at: %s\n\n", time.Now().Format("2006-01-02 15:04"))
	writeReport(os.Stdout, results, providerFilter)

	return nil
}

// writeReport prints every collected service, not just the top drivers.
func writeReport(out io.Writer, results []monitor.ProviderResult, providerFilter string) {
	var thisMonth, lastMonth float64
	var rows int

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  PROVIDER\tSERVICE\tMONTH TO DATE\tLAST MONTH\n")
	for _, r := range results {
		if providerFilter != "" && r.Provider != providerFilter {
			continue
		}
		for _, p := range r.Points {
			last := "-"
			if v, ok := p.Metadata[model.MetaLastMonth].(float64); ok {
				last = fmt.Sprintf("$%.2f", v)
				lastMonth += v
			}
			fmt.Fprintf(w, "  %s\t%s\t$%.2f\t%s\n", p.Provider, p.Service, p.Cost, last)
			thisMonth += p.Cost
			rows++
		}
	}
	w.Flush()

	fmt.Fprintf(out, "\nMonth-to-date total: $%.2f\n", thisMonth)
	fmt.Fprintf(out, "Last month total:    $%.2f\n", lastMonth)
	fmt.Fprintf(out, "Services:            %d\n", rows)

	for _, r := range results {
		if providerFilter != "" && r.Provider != providerFilter {
			continue
		}
		if r.Err != nil {
			fmt.Fprintf(out, "  [ERROR] %s: %v\n", r.Provider, r.Err)
		}
		if len(r.Rejected) > 0 {
			fmt.Fprintf(out, "  [SKIPPED] %s: invalid cost for %v\n", r.Provider, r.Rejected)
		}
	}
}
