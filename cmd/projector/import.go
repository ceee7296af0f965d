package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dafibh/mpwr/portal-backend/internal/repository/postgres"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func importCmd(v *viper.Viper) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Import servicing loan documents into the portal database",
		Long: `Validate servicing documents through ingestion and upsert them into the loans
table for a customer. Stored documents are kept exactly as read.

Examples:
  projector import --file loan.json --customer cus_123 --database-url postgres://...
  PROJECTOR_DATABASE_URL=postgres://... projector import --customer cus_123 exports/*.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, v, args)
		},
	}

	cmd.Flags().StringP("file", "f", "", "loan document (JSON)")
	cmd.Flags().String("id", "", "loan ID for a single document (default: the document's id)")
	cmd.Flags().String("database-url", "", "portal database URL")
	cmd.Flags().Bool("dry-run", false, "validate documents without writing them")

	return cmd
}

// importFiles expands the --file flag and positional globs
func importFiles(file string, patterns []string) ([]string, error) {
	var files []string
	if file != "" {
		files = append(files, file)
	}
	for _, pattern := range patterns {
		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("invalid pattern %s: %w", pattern, err)
		}
		if len(matches) == 0 {
			if _, err := os.Stat(pattern); err != nil {
				log.Warn().Str("pattern", pattern).Msg("No files found matching pattern")
				continue
			}
			matches = []string{pattern}
		}
		files = append(files, matches...)
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("--file is required")
	}
	return files, nil
}

// pendingImport is a validated document waiting to be written
type pendingImport struct {
	path string
	id   string
	name string
	raw  []byte
}

func runImport(cmd *cobra.Command, v *viper.Viper, args []string) error {
	customerID := v.GetString("customer")
	if customerID == "" {
		return fmt.Errorf("--customer is required for import")
	}

	files, err := importFiles(v.GetString("file"), args)
	if err != nil {
		return err
	}
	explicitID := v.GetString("id")
	if explicitID != "" && len(files) > 1 {
		return fmt.Errorf("--id can only be used with a single document")
	}

	// Validate everything before touching the database
	pending := make([]pendingImport, 0, len(files))
	for _, path := range files {
		loan, raw, err := readLoan(path, customerID)
		if err != nil {
			return err
		}
		id := explicitID
		if id == "" {
			id = loan.ID
		}
		if id == "" {
			return fmt.Errorf("%s: loan document has no id, pass --id", path)
		}
		pending = append(pending, pendingImport{path: path, id: id, name: loan.Name, raw: raw})
	}

	out := cmd.OutOrStdout()
	if v.GetBool("dry-run") {
		for _, p := range pending {
			fmt.Fprintf(out, "Loan %s (%s) is valid for customer %s\n", p.id, p.name, customerID)
		}
		return nil
	}

	databaseURL := v.GetString("database-url")
	if databaseURL == "" {
		return fmt.Errorf("--database-url is required")
	}

	ctx := cmd.Context()
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	repo := postgres.NewLoanRepository(pool)

	var bar *progressbar.ProgressBar
	if len(pending) > 1 {
		bar = progressbar.NewOptions(len(pending),
			progressbar.OptionSetWriter(cmd.ErrOrStderr()),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWidth(40),
			progressbar.OptionSetDescription("Importing loans"),
		)
	}

	var failed []error
	imported := 0
	for _, p := range pending {
		if err := ctx.Err(); err != nil {
			return err
		}

		stored, err := repo.Upsert(customerID, p.id, p.raw)
		if err != nil {
			log.Error().Err(err).Str("file", p.path).Str("loan_id", p.id).Msg("Failed to import loan")
			failed = append(failed, fmt.Errorf("%s: %w", p.path, err))
		} else {
			imported++
			log.Debug().Str("customer_id", customerID).Str("loan_id", stored.ID).Msg("Imported loan")
		}

		if bar != nil {
			_ = bar.Add(1)
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	fmt.Fprintf(out, "Imported %d of %d loans for customer %s\n", imported, len(pending), customerID)
	if len(failed) > 0 {
		return fmt.Errorf("failed to import %d loans: %w", len(failed), errors.Join(failed...))
	}
	return nil
}
