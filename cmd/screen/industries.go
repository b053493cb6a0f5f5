package main

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"resume-screener/internal/taxonomy"
)

var industriesCmd = &cobra.Command{
	Use:   "industries [NAME]",
	Short: "List taxonomy industries, or the skills of one industry",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndustries,
}

func init() {
	rootCmd.AddCommand(industriesCmd)
}

func runIndustries(cmd *cobra.Command, args []string) error {
	cfg, err := getConfig()
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	tax, err := loadTaxonomy(cfg)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	if len(args) == 1 {
		ind, ok := tax.Lookup(args[0])
		if !ok {
			return fmt.Errorf("unknown industry %q: known industries are %s", args[0], strings.Join(tax.Names(), ", "))
		}
		for _, category := range taxonomy.Categories {
			fmt.Fprintf(out, "%s: %s\n", category, strings.Join(ind.Skills.Category(category), ", "))
		}
		return nil
	}

	tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "NAME\tLABEL\tTECH\tSOFT\tCERTS\tDEFAULT")
	for _, ind := range tax.Industries() {
		def := ""
		if ind.Name == tax.DefaultIndustry() {
			def = "*"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\t%s\n", ind.Name, ind.Label,
			len(ind.Skills.Technical), len(ind.Skills.Soft), len(ind.Skills.Certifications), def)
	}
	return tw.Flush()
}
