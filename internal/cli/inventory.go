package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/piwi3910/ReelCut/internal/project"
)

func newInventoryCommand(a *app) *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:   "inventory",
		Short: "Manage saved filler widths and machine profiles",
		Long: `The inventory (~/.reelcut/inventory.json) supplies filler widths and
machine specs when no catalog or specs file is found.

Examples:
  reelcut inventory list
  reelcut inventory export backup.json
  reelcut inventory import backup.json`,
	}
	cmd.PersistentFlags().StringVar(&path, "file", "", "Inventory file (default ~/.reelcut/inventory.json)")

	inventoryPath := func() string {
		return firstNonEmpty(path, project.DefaultInventoryPath())
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "list",
		Short: "Show stock presets and machine profiles",
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadInventory(inventoryPath())
			if err != nil {
				return err
			}
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "STOCK\tID\tINCH\tMM")
			for _, s := range inv.Stocks {
				fmt.Fprintf(w, "%s\t%s\t%g\t%g\n", s.Name, s.ID, s.Inch, s.MM)
			}
			fmt.Fprintln(w)
			fmt.Fprintln(w, "MACHINE\tUNIT\tLB\tUB")
			for _, m := range inv.Machines {
				fmt.Fprintf(w, "%s\t%s\t%g\t%g\n", m.Name, m.Unit, m.LB, m.UB)
			}
			return w.Flush()
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "export <backup.json>",
		Short: "Write the inventory to a versioned backup file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			inv, err := project.LoadInventory(inventoryPath())
			if err != nil {
				return err
			}
			if err := project.ExportAllData(args[0], inv); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %d stock presets and %d machines to %s\n",
				len(inv.Stocks), len(inv.Machines), args[0])
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "import <backup.json>",
		Short: "Merge a backup file into the inventory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			backup, err := project.ImportAllData(args[0])
			if err != nil {
				return err
			}
			inv, err := project.LoadInventory(inventoryPath())
			if err != nil {
				return err
			}
			before := len(inv.Stocks) + len(inv.Machines)
			inv = project.MergeInventory(inv, backup.Inventory)
			if err := project.SaveInventory(inventoryPath(), inv); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %d new entries\n", len(inv.Stocks)+len(inv.Machines)-before)
			return nil
		},
	})

	return cmd
}
