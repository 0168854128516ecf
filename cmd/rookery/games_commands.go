package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"rookery/internal/ipc"
)

func newGamesCommand(ctx *commandContext) *cobra.Command {
	gamesCmd := &cobra.Command{
		Use:   "games",
		Short: "Inspect the unified game catalog",
	}

	gamesCmd.AddCommand(newGamesListCommand(ctx))
	gamesCmd.AddCommand(newGamesCatalogCommand(ctx))

	return gamesCmd
}

func newGamesListCommand(ctx *commandContext) *cobra.Command {
	var excludeCompleted bool
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List games across sources with evaluation status",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.GamesList(excludeCompleted)
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				for _, warning := range resp.Warnings {
					fmt.Fprintf(cmd.ErrOrStderr(), "warning: %s: %s\n", warning.Source, warning.Error)
				}
				if len(resp.Games) == 0 {
					fmt.Fprintln(stdout, "No games found")
					return nil
				}

				rows := make([][]string, 0, len(resp.Games))
				for _, game := range resp.Games {
					rows = append(rows, []string{
						formatTimestamp(game.PlayedAt),
						game.White,
						game.Black,
						game.Result,
						game.Source,
						game.Status,
						truncateID(game.GameID),
					})
				}
				fmt.Fprintln(stdout, renderTable(gameColumns, rows, shouldColorize(stdout)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&excludeCompleted, "exclude-completed", false, "Hide games whose evaluation is complete")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newGamesCatalogCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "List persisted games without fetching from sources",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.CatalogList()
				if err != nil {
					return err
				}
				if jsonOutput {
					return writeJSON(cmd, resp)
				}

				stdout := cmd.OutOrStdout()
				if len(resp.Games) == 0 {
					fmt.Fprintln(stdout, "Catalog is empty")
					return nil
				}
				rows := make([][]string, 0, len(resp.Games))
				for _, game := range resp.Games {
					rows = append(rows, []string{
						formatTimestamp(game.PlayedAt),
						game.White,
						game.Black,
						game.Result,
						game.Source,
						game.Status,
						truncateID(game.ID),
					})
				}
				fmt.Fprintln(stdout, renderTable(gameColumns, rows, shouldColorize(stdout)))
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func newImportCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <file|->",
		Short: "Import games from a PGN file (use - for stdin)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text, err := readImportInput(cmd, args[0])
			if err != nil {
				return err
			}

			return ctx.withClient(func(client *ipc.Client) error {
				resp, err := client.Import(text)
				if err != nil {
					return err
				}

				stdout := cmd.OutOrStdout()
				fmt.Fprintf(stdout, "Imported %d game(s), rejected %d\n", resp.Report.Accepted, resp.Report.Rejected)
				for _, sample := range resp.Report.Errors {
					fmt.Fprintf(stdout, "  %s\n", sample)
				}
				return nil
			})
		},
	}
	return cmd
}

func readImportInput(cmd *cobra.Command, path string) (string, error) {
	if strings.TrimSpace(path) == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return "", fmt.Errorf("read stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("read pgn file: %w", err)
	}
	return string(data), nil
}
