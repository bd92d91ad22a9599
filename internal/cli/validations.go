package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/rbarros/sentex/internal/store"
)

// validationsCmd manages the Postgres table the review tooling writes to.
var validationsCmd = &cobra.Command{
	Use:   "validations",
	Short: "Manage the validation record store",
	Long: `Manage the Postgres store of human validation judgments.

The connection string comes from SENTEX_DATABASE_URL or the database.url
config key.`,
}

var validationsInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the validations table if it does not exist",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, pool, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer pool.Close()

		return s.Init(cmd.Context())
	},
}

var validationsCountCmd = &cobra.Command{
	Use:   "count",
	Short: "Print the number of validation records",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, pool, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer pool.Close()

		count, err := s.Count(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%d validation records\n", count)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validationsCmd)
	validationsCmd.AddCommand(validationsInitCmd)
	validationsCmd.AddCommand(validationsCountCmd)
}

func openStore(cmd *cobra.Command) (*store.ValidationStore, interface{ Close() }, error) {
	dsn := os.Getenv("SENTEX_DATABASE_URL")
	if dsn == "" {
		dsn = viper.GetString("database.url")
	}
	if dsn == "" {
		return nil, nil, fmt.Errorf("no database configured: set SENTEX_DATABASE_URL or database.url")
	}

	s, pool, err := store.Open(cmd.Context(), dsn, newLogger())
	if err != nil {
		return nil, nil, err
	}
	return s, pool, nil
}
