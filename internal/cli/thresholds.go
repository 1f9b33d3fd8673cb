package cli

import (
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/ogulcanaydogan/cloud-cost-monitor/pkg/model"
	"github.com/spf13/cobra"
)

var thresholdsCmd = &cobra.Command{
	Use:   "thresholds",
	Short: "Inspect configured alert thresholds",
}

var thresholdsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List thresholds and notification channels from config",
	RunE:  runThresholdsList,
}

var thresholdsValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate thresholds and channels without starting the engine",
	RunE:  runThresholdsValidate,
}

func init() {
	rootCmd.AddCommand(thresholdsCmd)
	thresholdsCmd.AddCommand(thresholdsListCmd)
	thresholdsCmd.AddCommand(thresholdsValidateCmd)
}

func runThresholdsList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(cfg.Thresholds) == 0 {
		fmt.Println("No thresholds configured. Add a 'thresholds' section to the config file.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "ID\tTYPE\tCONDITION\tVALUE\tSCOPE\tWINDOW\tCOOLDOWN\tSEVERITY\tENABLED\n")
	for _, t := range cfg.Thresholds {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%s\t%dm\t%dm\t%s\t%t\n",
			t.ID, t.Type, t.Condition, t.Value, scopeOf(t.Provider, t.Service),
			t.TimeWindowMinutes, t.CooldownPeriodMinutes, t.Severity, t.Enabled,
		)
	}
	w.Flush()

	if len(cfg.Channels) > 0 {
		fmt.Printf("\nChannels:\n")
		w = tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "  ID\tTYPE\tMIN SEVERITY\tENABLED\n")
		for _, c := range cfg.Channels {
			minSev := string(c.Filters.MinSeverity)
			if minSev == "" {
				minSev = "-"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%t\n", c.ID, c.Type, minSev, c.Enabled)
		}
		w.Flush()
	}

	return nil
}

func runThresholdsValidate(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if failed := validateDefinitions(os.Stdout, cfg.Thresholds, cfg.Channels); failed > 0 {
		return fmt.Errorf("%d invalid definition(s)", failed)
	}
	return nil
}

// validateDefinitions reports each threshold and channel and returns the
// number that failed. Disabled entries pass with a warning, since a missing
// enabled key decodes as false and the entry would silently never run.
func validateDefinitions(out io.Writer, thresholds []model.AlertThreshold, channels []model.NotificationChannel) int {
	var failed int
	for _, t := range thresholds {
		if err := model.ValidateThreshold(t); err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			failed++
			continue
		}
		if !t.Enabled {
			fmt.Fprintf(out, "  [WARN] threshold %s is disabled and will not be evaluated (set enabled: true)\n", t.ID)
			continue
		}
		fmt.Fprintf(out, "  [OK]   threshold %s\n", t.ID)
	}
	for _, c := range channels {
		if err := model.ValidateChannel(c); err != nil {
			fmt.Fprintf(out, "  [FAIL] %v\n", err)
			failed++
			continue
		}
		if !c.Enabled {
			fmt.Fprintf(out, "  [WARN] channel %s is disabled and will not be notified (set enabled: true)\n", c.ID)
			continue
		}
		fmt.Fprintf(out, "  [OK]   channel %s\n", c.ID)
	}
	return failed
}

func scopeOf(provider, service string) string {
	switch {
	case provider == "" && service == "":
		return "*"
	case service == "":
		return provider
	case provider == "":
		return "*/" + service
	default:
		return provider + "/" + service
	}
}
