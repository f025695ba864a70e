package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/princinho/climaquote/config"
	"github.com/princinho/climaquote/database"
	"github.com/princinho/climaquote/quote"
	"github.com/princinho/climaquote/utils"
)

// runHashSecret hashes the argument, or the first line of stdin.
func runHashSecret(cmd *cobra.Command, args []string) error {
	var secret string
	if len(args) == 1 {
		secret = args[0]
	} else {
		line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
		if err != nil && line == "" {
			return fmt.Errorf("read secret: %w", err)
		}
		secret = strings.TrimRight(line, "\r\n")
	}
	if secret == "" {
		return fmt.Errorf("secret must not be empty")
	}

	hash, err := utils.HashPassword(secret)
	if err != nil {
		return fmt.Errorf("hash secret: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), hash)
	return nil
}

func runExportQuotes(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}
	log := config.NewLogger(cfg.Logging)
	if cfg.Database.Driver == "memory" {
		return fmt.Errorf("export-quotes needs a persistent record store (database.driver=mongo)")
	}

	ctx := cmd.Context()
	st, err := openStores(ctx, cfg.Database, log)
	if err != nil {
		return fmt.Errorf("open record store: %w", err)
	}
	defer st.close(context.Background())

	quotes, err := st.quotes.List(ctx, database.Filter{
		Deleted: database.Bool(exportDeleted),
		Status:  exportStatus,
		Limit:   exportLimit,
	})
	if err != nil {
		return fmt.Errorf("list quotes: %w", err)
	}

	out := exportOut
	if out == "" {
		info, err := utils.LoadCompany(ctx, st.company, time.Now())
		if err != nil {
			return err
		}
		out = quote.ExportFilename(info.Name, time.Now())
	}

	f, err := os.Create(out)
	if err != nil {
		return fmt.Errorf("create %s: %w", out, err)
	}
	if err := quote.ExportXLSX(f, quotes); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close %s: %w", out, err)
	}

	log.Info().Int("quotes", len(quotes)).Str("file", out).Msg("quote history exported")
	return nil
}
