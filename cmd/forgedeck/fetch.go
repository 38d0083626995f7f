package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/jpalmerr/forgedeck"
	"github.com/jpalmerr/forgedeck/internal/poller"
)

// fetchCmd polls the API once and prints the server list.
var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch the server list once and print it",
	Long: `Fetch the server list from the configured API and print it with the
index to use as serverIdx in the dial's settings.

Output is a table on a terminal and tab-separated values otherwise.

Example:
  forgedeck fetch
  forgedeck fetch -c forgedeck.yaml --plain | cut -f2`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)

	fetchCmd.Flags().Bool("plain", false, "print tab-separated values even on a terminal")
}

func runFetch(cmd *cobra.Command, args []string) error {
	cfg, _, err := loadConfig()
	if err != nil {
		return err
	}

	headers := make(map[string]string, len(cfg.Headers)+1)
	headers["User-Agent"] = "forgedeck/" + version
	for k, v := range cfg.Headers {
		headers[k] = v
	}
	if cfg.UserAgent != "" {
		headers["User-Agent"] = cfg.UserAgent
	}

	fetcher := poller.NewFetcher(nil, cfg.APIURL, cfg.FetchTimeout.Duration(), headers)
	defer fetcher.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	body, _, err := fetcher.Fetch(ctx)
	if err != nil {
		return fmt.Errorf("fetch %s: %w", cfg.APIURL, err)
	}
	servers, err := forgedeck.DecodeServers(body)
	if err != nil {
		return err
	}

	plain, _ := cmd.Flags().GetBool("plain")
	out := cmd.OutOrStdout()
	if plain || !isTerminal(out) {
		return printPlain(out, servers)
	}
	fmt.Fprintln(out, serverTable(servers))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// serverRow is the printed form of one record, shared by both outputs.
func serverRow(i int, s forgedeck.Server) []string {
	return []string{
		strconv.Itoa(i),
		s.Name,
		strconv.Itoa(s.Online),
		strconv.Itoa(s.Max),
		forgedeck.NewFeedback(s).Value,
	}
}

var serverHeaders = []string{"IDX", "NAME", "ONLINE", "MAX", "DIAL"}

func printPlain(w io.Writer, servers []forgedeck.Server) error {
	for i, s := range servers {
		row := serverRow(i, s)
		if _, err := fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", row[0], row[1], row[2], row[3], row[4]); err != nil {
			return err
		}
	}
	return nil
}

func serverTable(servers []forgedeck.Server) string {
	headerStyle := lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle := lipgloss.NewStyle().Padding(0, 1)
	emptyStyle := cellStyle.Foreground(lipgloss.Color("241"))

	rows := make([][]string, len(servers))
	for i, s := range servers {
		rows[i] = serverRow(i, s)
	}

	return table.New().
		Border(lipgloss.RoundedBorder()).
		Headers(serverHeaders...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(servers) && servers[row].Online == 0 {
				return emptyStyle
			}
			return cellStyle
		}).
		String()
}
