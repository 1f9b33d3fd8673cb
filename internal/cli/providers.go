package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/ogulcanaydogan/cloud-cost-monitor/internal/config"
	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "Manage cloud cost providers",
}

var providersListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured providers",
	RunE:  runProvidersList,
}

func init() {
	rootCmd.AddCommand(providersCmd)
	providersCmd.AddCommand(providersListCmd)
}

func runProvidersList(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if len(cfg.Providers) == 0 {
		fmt.Println("No providers configured. Add a 'providers' section to the config file.")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "NAME\tTYPE\tSOURCE\n")
	for _, p := range cfg.Providers {
		source := p.Path
		switch {
		case p.Type == config.ProviderLedger && source == "":
			source = cfg.Storage.Path
		case p.Type == config.ProviderAWS && p.Profile != "":
			source = "profile " + p.Profile
		case p.Type == config.ProviderAWS:
			source = "default credentials"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Name, p.Type, source)
	}
	w.Flush()

	return nil
}
