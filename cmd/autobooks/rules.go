package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/autobooks/autobooks/internal/cli"
)

func rulesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rules",
		Short: "Inspect learned vendor rules",
	}

	cmd.AddCommand(rulesListCmd())
	return cmd
}

func rulesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List all learned vendor rules",
		Long:  `List every learned vendor rule with its accounts and usage count.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := newApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			learned := a.rules.LoadAll()
			if len(learned) == 0 {
				fmt.Println(cli.SubtleStyle.Render("No vendor rules learned yet"))
				return nil
			}

			fmt.Println(cli.FormatTitle(fmt.Sprintf("%d vendor rules", len(learned))))
			for _, rule := range learned {
				fmt.Printf("%-28s %-24s used %d\n",
					rule.Vendor, rule.DebitAccount, rule.AppliedCount)
				detail := fmt.Sprintf("    keywords: %s", strings.Join(rule.Keywords, ", "))
				if rule.TDSApplicable {
					detail += "  (tds)"
				}
				fmt.Println(cli.SubtleStyle.Render(detail))
			}
			return nil
		},
	}
}
