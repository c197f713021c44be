package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsamuelsen/quotesync/internal/adapters/http/dto"
	"github.com/jsamuelsen/quotesync/internal/domain"
)

func (a *App) newListCommand() *cobra.Command {
	var category string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored quotes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := a.wire(ctx, nil)
			if err != nil {
				return err
			}
			defer c.close(a.logger)

			if !cmd.Flags().Changed("category") {
				category = c.service.SelectedCategory(ctx)
			}

			quotes := c.service.List(ctx, category)
			out := cmd.OutOrStdout()

			if a.format == FormatJSON {
				return writeJSON(out, dto.ToQuoteResponses(quotes))
			}

			if len(quotes) == 0 {
				_, _ = fmt.Fprintln(out, "No quotes found.")
				return nil
			}

			for _, q := range quotes {
				_, _ = fmt.Fprintf(out, "[%s] %s\n", q.Category, q.Text)
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&category, "category", "c", "",
		`only quotes in this category, "all" for every quote (default: the selected category)`)

	return cmd
}

func (a *App) newAddCommand() *cobra.Command {
	var text, category string

	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a quote",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := a.wire(ctx, nil)
			if err != nil {
				return err
			}
			defer c.close(a.logger)

			q, err := c.service.AddQuote(ctx, text, category)
			if err != nil {
				return err
			}

			if a.format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), dto.ToQuoteResponse(q))
			}

			printNotices(cmd.OutOrStdout(), c.hub)

			return nil
		},
	}

	cmd.Flags().StringVarP(&text, "text", "t", "", "quote text")
	cmd.Flags().StringVarP(&category, "category", "c", "", "quote category")
	_ = cmd.MarkFlagRequired("text")
	_ = cmd.MarkFlagRequired("category")

	return cmd
}

func (a *App) newExportCommand() *cobra.Command {
	var out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write every quote as a JSON array",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			c, err := a.wire(ctx, nil)
			if err != nil {
				return err
			}
			defer c.close(a.logger)

			data, err := c.service.Export(ctx)
			if err != nil {
				return err
			}

			if out == "" || out == "-" {
				_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
				return err
			}

			if err := os.WriteFile(out, data, 0o600); err != nil {
				return fmt.Errorf("writing %s: %w", out, err)
			}

			_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "exported %d quotes to %s\n", c.store.Len(), out)

			return nil
		},
	}

	cmd.Flags().StringVar(&out, "out", "", `output file, "-" or empty for stdout`)

	return cmd
}

func (a *App) newImportCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "import <file>",
		Short: "Import quotes from a JSON array file",
		Long: `Import reads a JSON array of {"text", "category"} records, as written by
export. Quotes whose text already exists are skipped. One invalid record
rejects the whole file. Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			data, err := readInput(cmd.InOrStdin(), args[0])
			if err != nil {
				return err
			}

			c, err := a.wire(ctx, nil)
			if err != nil {
				return err
			}
			defer c.close(a.logger)

			res, err := c.service.Import(ctx, data)
			if err != nil {
				return err
			}

			if a.format == FormatJSON {
				return writeJSON(cmd.OutOrStdout(), res)
			}

			if res.Added == 0 {
				_, _ = fmt.Fprintln(cmd.OutOrStdout(), "No new quotes to import.")
				return nil
			}

			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "imported %d, skipped %d\n", res.Added, res.Skipped)
			printNotices(cmd.OutOrStdout(), c.hub)

			return nil
		},
	}
}

func readInput(stdin io.Reader, path string) ([]byte, error) {
	if path == "-" {
		data, err := io.ReadAll(stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}

		return data, nil
	}

	data, err := os.ReadFile(path) //nolint:gosec // user-supplied path is the point
	if err != nil {
		if os.IsNotExist(err) {
			return nil, domain.NewNotFoundError("file", path)
		}

		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")

	return enc.Encode(v)
}
