package cmd

import (
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/VectorBits/clearsign/src/internal/registry"
)

func (c *cli) newHistoryCommand() *cobra.Command {
	var (
		contract string
		limit    int
		driver   string
		dsn      string
		showSigs bool
	)
	cmd := &cobra.Command{
		Use:   "history",
		Short: "List descriptors recorded in the registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("registry-driver") {
				driver = c.cfg.Registry.Driver
			}
			if !cmd.Flags().Changed("registry-dsn") {
				dsn = c.cfg.Registry.DSN
			}
			if dsn == "" {
				return errors.New("no registry configured: set registry.dsn or --registry-dsn")
			}

			store, err := registry.Open(driver, dsn)
			if err != nil {
				return err
			}
			defer store.Close()

			records, err := store.List(cmd.Context(), contract, limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(records) == 0 {
				fmt.Fprintln(out, "No descriptors recorded.")
				return nil
			}
			w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "CREATED\tCONTRACT\tCHAIN\tFUNCTIONS\tPRAGMA\tSOURCE")
			for _, r := range records {
				fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%s\t%s\n",
					r.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					r.Contract, r.ChainID, r.FunctionCount, r.Pragma, r.SourcePath)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if showSigs {
				for _, r := range records {
					fmt.Fprintf(out, "\n%s (%s):\n", r.Contract, r.ID)
					for _, entry := range r.SignatureList() {
						fmt.Fprintf(out, "  %s\n", entry)
					}
				}
			}
			return nil
		},
	}

	fl := cmd.Flags()
	fl.StringVar(&contract, "contract", "", "only show this contract")
	fl.IntVar(&limit, "limit", 20, "maximum rows (0 for all)")
	fl.StringVar(&driver, "registry-driver", "sqlite", "registry driver: sqlite, postgres or mysql")
	fl.StringVar(&dsn, "registry-dsn", "", "registry database")
	fl.BoolVarP(&showSigs, "signatures", "s", false, "list each record's signatures and selectors")
	return cmd
}
