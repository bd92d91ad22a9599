package cli

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rbarros/sentex/internal/model"
)

// modelsCmd lists the static model catalog.
var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "List the callable model catalog",
	Long:  `List every model key the extract command accepts, with its provider and per-million-token prices.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tNAME\tPROVIDER\tIN $/MTok\tOUT $/MTok")

		for _, key := range model.ModelKeys() {
			mc, err := model.LookupModel(key)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%.2f\t%.2f\n",
				mc.Key, mc.Name, mc.Provider, mc.PriceInPerMTok, mc.PriceOutPerMTok)
		}

		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(modelsCmd)
}
