// Command lifebook-import analyzes and imports lifebook spreadsheet exports.
//
// Analyze mode prints the workbook structure without touching the database;
// import mode writes the selected modules through PostgreSQL.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/lifebook-app/lifebook/internal/domain/importer/analyzer"
	"github.com/lifebook-app/lifebook/internal/domain/importer/service"
	"github.com/lifebook-app/lifebook/internal/domain/ledger/repository"
	"github.com/lifebook-app/lifebook/pkg/config"
)

func main() {
	var (
		file           = flag.String("file", "", "path to the workbook to import")
		user           = flag.String("user", "", "user ID to import records for")
		analyzeOnly    = flag.Bool("analyze", false, "print the workbook structure and exit")
		modules        = flag.String("modules", "", "comma-separated modules to import (default all)")
		merge          = flag.String("merge", "skip", "duplicate handling: skip, replace or merge")
		ignoreBalances = flag.Bool("ignore-balance-errors", false, "import transactions even when balance snapshots disagree")
		checkNegative  = flag.Bool("check-negative", false, "report negative running balances")
		failFast       = flag.Bool("fail-fast", false, "abort a module at the first row failure")
	)
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
	slog.SetDefault(logger)

	if err := run(context.Background(), logger, *file, *user, *analyzeOnly, *modules, *merge, *ignoreBalances, *checkNegative, *failFast); err != nil {
		logger.Error("import failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, logger *slog.Logger, file, user string, analyzeOnly bool, modules, merge string, ignoreBalances, checkNegative, failFast bool) error {
	if file == "" {
		return fmt.Errorf("-file is required")
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("read %s: %w", file, err)
	}

	if analyzeOnly {
		return analyze(file, data)
	}

	userID, err := uuid.Parse(user)
	if err != nil {
		return fmt.Errorf("-user must be a valid UUID: %w", err)
	}

	// .env is optional; the environment wins either way.
	_ = godotenv.Load()
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	pool, err := pgxpool.New(ctx, dsn(cfg.Database))
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer pool.Close()

	svc := service.NewService(repository.NewStores(pool), logger, cfg.Importer)

	opts := service.Options{
		Merge:                service.MergeStrategy(merge),
		IgnoreBalanceErrors:  ignoreBalances,
		CheckNegativeBalance: checkNegative,
		FailOnError:          failFast,
	}
	for _, m := range strings.Split(modules, ",") {
		if m = strings.TrimSpace(m); m != "" {
			opts.Modules = append(opts.Modules, service.Module(m))
		}
	}

	result, err := svc.Import(ctx, userID, file, data, opts, func(ev service.ProgressEvent) {
		switch ev.State {
		case service.StateImporting:
			logger.Info("importing module", "module", ev.Module)
		case service.StateModuleCompleted:
			logger.Info("module completed",
				"module", ev.Module,
				"imported", ev.Result.Imported,
				"skipped", ev.Result.Skipped,
				"errors", len(ev.Result.Errors))
		}
	})
	if err != nil {
		return err
	}

	for _, issue := range result.Errors {
		fmt.Fprintln(os.Stderr, issue.String())
	}
	fmt.Printf("imported %d/%d rows (%d skipped, %d errors)\n",
		result.Imported, result.Total, result.Skipped, len(result.Errors))
	if !result.Success {
		return fmt.Errorf("one or more modules failed")
	}
	return nil
}

func analyze(file string, data []byte) error {
	structure, err := analyzer.Analyze(file, data)
	if err != nil {
		return err
	}
	fmt.Printf("%s: %d sheets, %d data rows, %d bytes\n",
		structure.FileName, len(structure.Sheets), structure.TotalRows, structure.FileSize)
	for _, sheet := range structure.Sheets {
		fmt.Printf("  %s: %d rows x %d columns\n", sheet.Name, sheet.RowCount, sheet.ColumnCount)
		if len(sheet.Headers) > 0 {
			fmt.Printf("    headers: %s\n", strings.Join(sheet.Headers, " | "))
		}
		for _, row := range sheet.Preview {
			fmt.Printf("    %s\n", strings.Join(row, " | "))
		}
	}
	return nil
}

func dsn(db config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		db.User, db.Password, db.Host, db.Port, db.Database, db.SSLMode)
}
