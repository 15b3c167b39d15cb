package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List exclusion categories",
	Long: `List the categories that can be passed to sync -x.

Categories from the config file are merged with the built-in ones.`,
	Args: cobra.NoArgs,
	RunE: runCategories,
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
}

// runCategories prints the merged category table.
func runCategories(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	table := cfg.CategoryTable()

	switch viper.GetString("output") {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(table)
	case "yaml":
		enc := yaml.NewEncoder(os.Stdout)
		enc.SetIndent(2)
		if err := enc.Encode(table); err != nil {
			return err
		}
		return enc.Close()
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KEY\tLABEL\tNAMES")
	for _, c := range table {
		fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Key, c.Label, strings.Join(c.Names, ", "))
	}
	return tw.Flush()
}
