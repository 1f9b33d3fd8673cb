package cli

import (
	"fmt"
	"maps"
	"os"
	"slices"
	"text/tabwriter"
	"time"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/spf13/cobra"
)

var ledgerCmd = &cobra.Command{
	Use:   "ledger",
	Short: "Manage the local cost ledger",
	Long:  `The ledger stores cost line items for accounts without a billing API. Ledger providers read from it.`,
}

var ledgerRecordCmd = &cobra.Command{
	Use:   "record",
	Short: "Record a cost line item",
	RunE:  runLedgerRecord,
}

var ledgerShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show per-service totals for a period",
	RunE:  runLedgerShow,
}

func init() {
	rootCmd.AddCommand(ledgerCmd)
	ledgerCmd.AddCommand(ledgerRecordCmd)
	ledgerCmd.AddCommand(ledgerShowCmd)

	ledgerRecordCmd.Flags().StringP("provider", "p", "", "Provider name the item belongs to")
	ledgerRecordCmd.Flags().StringP("service", "s", "", "Service name (e.g., EC2, BigQuery)")
	ledgerRecordCmd.Flags().Float64P("cost", "c", 0, "Cost in USD")
	ledgerRecordCmd.Flags().Int("resources", 0, "Number of resources billed")
	ledgerRecordCmd.Flags().String("at", "", "Timestamp in RFC3339 (default now)")
	_ = ledgerRecordCmd.MarkFlagRequired("provider")
	_ = ledgerRecordCmd.MarkFlagRequired("service")
	_ = ledgerRecordCmd.MarkFlagRequired("cost")

	ledgerShowCmd.Flags().StringP("provider", "p", "", "Filter by provider")
	ledgerShowCmd.Flags().StringP("period", "P", "this_month", "Period (today, yesterday, last_7_days, this_month, last_month)")
}

func runLedgerRecord(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider, _ := cmd.Flags().GetString("provider")
	service, _ := cmd.Flags().GetString("service")
	cost, _ := cmd.Flags().GetFloat64("cost")
	resources, _ := cmd.Flags().GetInt("resources")
	at, _ := cmd.Flags().GetString("at")

	record := &model.CostRecord{
		Provider:      provider,
		Service:       service,
		CostUSD:       cost,
		ResourceCount: resources,
	}
	if at != "" {
		ts, err := time.Parse(time.RFC3339, at)
		if err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
		record.Timestamp = ts
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.RecordCost(cmd.Context(), record); err != nil {
		return fmt.Errorf("record cost: %w", err)
	}

	fmt.Printf("Recorded cost:\n")
	fmt.Printf("  ID:         %s\n", record.ID)
	fmt.Printf("  Provider:   %s\n", record.Provider)
	fmt.Printf("  Service:    %s\n", record.Service)
	fmt.Printf("  Cost:       $%.4f\n", record.CostUSD)
	fmt.Printf("  Resources:  %d\n", record.ResourceCount)
	fmt.Printf("  Timestamp:  %s\n", record.Timestamp.Format(time.RFC3339))

	return nil
}

func runLedgerShow(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	provider, _ := cmd.Flags().GetString("provider")
	period, _ := cmd.Flags().GetString("period")

	p, err := model.ParsePeriod(period)
	if err != nil {
		return err
	}

	store, err := initStorage(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	start, end := model.PeriodBounds(p, time.Now())
	totals, err := store.TotalsByService(cmd.Context(), model.CostFilter{
		Provider:  provider,
		StartTime: start,
		EndTime:   end,
	})
	if err != nil {
		return fmt.Errorf("query ledger: %w", err)
	}

	fmt.Printf("=== Ledger: %s ===\n", p)
	fmt.Printf("Period: %s to %s\n\n", start.Format("2006-01-02"), end.Format("2006-01-02"))

	if len(totals) == 0 {
		fmt.Println("No cost records in this period. Use 'ccm ledger record' to add one.")
		return nil
	}

	var total float64
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  SERVICE\tCOST\n")
	for _, svc := range slices.Sorted(maps.Keys(totals)) {
		fmt.Fprintf(w, "  %s\t$%.4f\n", svc, totals[svc])
		total += totals[svc]
	}
	w.Flush()
	fmt.Printf("\nTotal: $%.4f\n", total)

	return nil
}
