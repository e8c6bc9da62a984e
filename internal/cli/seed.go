package cli

import (
	"fmt"

	"disciple-assessment-service/internal/bank"
	"disciple-assessment-service/internal/domain"
	"disciple-assessment-service/internal/infra/postgres"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// NewSeedBankCmd stores the question bank in Postgres.
func NewSeedBankCmd() *cobra.Command {
	var file string
	cmd := &cobra.Command{
		Use:   "seed-bank",
		Short: "Validate the question bank and upsert it into Postgres",
		RunE: func(cmd *cobra.Command, args []string) error {
			if cfg.Postgres.URL == "" {
				return fmt.Errorf("postgres url not configured")
			}
			if file == "" {
				file = cfg.Assessment.BankPath
			}
			b, err := localBank(file)
			if err != nil {
				return err
			}
			if err := runMigrationsWithConfig(cmd.Context(), cfg, logger); err != nil {
				return err
			}

			pool, err := pgxpool.Connect(cmd.Context(), cfg.Postgres.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := postgres.NewBankLoader(pool).SaveBank(cmd.Context(), b); err != nil {
				return err
			}
			logger.Info("question bank stored",
				zap.String("bank_id", b.ID),
				zap.Int("sections", len(b.Sections)),
				zap.Int("items", b.ItemCount()))
			return nil
		},
	}
	cmd.Flags().StringVar(&file, "file", "", "bank JSON file (defaults to assessment.bank_path, then the embedded bank)")
	return cmd
}

// localBank reads the bank from path, or the embedded default when path is empty.
func localBank(path string) (domain.Bank, error) {
	if path == "" {
		return bank.Default()
	}
	return bank.Load(path)
}
