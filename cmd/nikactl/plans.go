package main

import (
	"fmt"
	"io"

	"nika.id/pkg/plans"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

type planRow struct {
	plans.Limits `yaml:",inline"`
	Price        string `yaml:"price"`
}

func plansCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Print the effective plan table as YAML",
		Long: `Print the plan table the server would use. With --file the given overrides are applied
on top of the built-in table, exactly as PLANS_FILE does at startup.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			registry := plans.NewStaticRegistry()
			if file != "" {
				var err error
				if registry, err = plans.LoadRegistryYAML(file); err != nil {
					return err
				}
			}
			return writePlans(cmd.OutOrStdout(), registry)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "plan override YAML file")
	return cmd
}

func writePlans(w io.Writer, registry *plans.Registry) error {
	out := make(map[string]planRow)
	for _, tier := range registry.Tiers() {
		l := registry.Get(tier)
		out[string(tier)] = planRow{Limits: l, Price: l.Price.StringFixed(0)}
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("encode plans: %w", err)
	}
	return enc.Close()
}
