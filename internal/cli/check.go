package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Run one monitoring cycle and print triggered alerts",
	Long: `Collect from every configured provider once, evaluate all thresholds and
dispatch notifications for anything that breaches. Useful from cron or CI.`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().Bool("fail-on-alert", false, "Exit non-zero when any alert is triggered")
}

func runCheck(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	failOnAlert, _ := cmd.Flags().GetBool("fail-on-alert")
	logger := newLogger(cfg)

	engine, rt, err := initEngine(cmd.Context(), cfg, logger)
	if err != nil {
		return err
	}
	defer rt.Close()

	if err := engine.RunTick(cmd.Context()); err != nil {
		return fmt.Errorf("run check: %w", err)
	}

	health := engine.GetHealthStatus()
	fmt.Printf("Status:        %s\n", health.Status)
	fmt.Printf("Health score:  %.0f\n", health.HealthScore)
	fmt.Printf("Providers:     %d\n", health.Providers)
	fmt.Printf("Thresholds:    %d\n", health.Thresholds)

	active := engine.GetActiveAlerts()
	if len(active) == 0 {
		fmt.Println("\nNo thresholds breached.")
		return nil
	}

	fmt.Printf("\nTriggered Alerts:\n")
	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "  SEVERITY\tTHRESHOLD\tPROVIDER\tSERVICE\tCURRENT\tLIMIT\tMESSAGE\n")
	for _, a := range active {
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%.2f\t%.2f\t%s\n",
			a.Severity, a.ThresholdID, a.Provider, a.Service,
			a.CurrentValue, a.ThresholdValue, a.Message,
		)
	}
	w.Flush()

	if failOnAlert {
		return fmt.Errorf("%d threshold(s) breached", len(active))
	}
	return nil
}
