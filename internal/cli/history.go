package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"ordinal-quest-service/internal/app"
	"ordinal-quest-service/internal/domain"
)

// NewHistoryCmd prints the most recent finished sessions.
func NewHistoryCmd(configPath *string) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print recent game sessions, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runHistory(cmd.Context(), cmd.OutOrStdout(), *configPath, limit)
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 0, "number of sessions to show (default: history.defaultLimit)")
	return cmd
}

func runHistory(ctx context.Context, out io.Writer, configPath string, limit int) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	stores, err := openBackends(ctx, cfg)
	if err != nil {
		return err
	}
	defer stores.Close()

	service := app.NewGameService(stores.sessions, nil, cfg.ServiceConfig())
	records, err := service.Recent(ctx, limit)
	if err != nil {
		return err
	}
	return printHistory(out, records)
}

func printHistory(out io.Writer, records []domain.GameSession) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(out, "no games recorded yet")
		return err
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tCOMPLETED\tMODE\tDIFFICULTY\tP1\tP2")
	for _, r := range records {
		p2 := "-"
		if r.Player2Score != nil {
			p2 = strconv.Itoa(*r.Player2Score)
		}
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%d\t%s\n",
			r.ID, r.CompletedAt.Local().Format(time.DateTime), r.Mode, r.Difficulty, r.Player1Score, p2)
	}
	return w.Flush()
}
