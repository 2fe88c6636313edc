package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"fisski-backend/lib/scrapers/fis"
	"fisski-backend/lib/telemetry"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

var flagBaseUrl string
var flagSeason string
var flagCategory string
var flagVerbose bool

func newClient() (*fis.Client, error) {
	return fis.NewClient(fis.ClientOptions{
		BaseUrl:    flagBaseUrl,
		SeasonCode: flagSeason,
	})
}

func newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)
	return t
}

func disciplineList(disciplines []fis.Discipline) string {
	out := make([]string, len(disciplines))
	for i, d := range disciplines {
		out[i] = string(d)
	}
	return strings.Join(out, " ")
}

var rootCmd = &cobra.Command{
	Use:   "fis-cli",
	Short: "Scrape fis-ski.com alpine calendar/results from the terminal.",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		telemetry.InitSlog(flagVerbose)
	},
}

var calendarCmd = &cobra.Command{
	Use:   "calendar",
	Short: "List the competitions of a category (WC, WSC, OWG, ...).",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		competitions, err := client.Calendar(cmd.Context(), flagCategory)
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"ID", "DATE", "LOCATION", "COUNTRY", "CATEGORY", "DISCIPLINES", "GENDER", "LIVE"})
		for _, c := range competitions {
			live := ""
			if c.IsLive {
				live = "live"
			}
			t.AppendRow(table.Row{
				c.EventID, c.Date, c.Location, c.Country,
				c.Category, disciplineList(c.Discipline), c.Gender, live,
			})
		}
		t.Render()
		return nil
	},
}

var eventCmd = &cobra.Command{
	Use:   "event <eventId>",
	Short: "Show the races, delegates and documents of a competition.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		detail, err := client.EventDetail(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		if detail.Competition != nil {
			fmt.Printf(
				"%s (%s) - %s, %s\n",
				detail.Competition.Location,
				detail.Competition.Country,
				detail.Competition.Category,
				detail.Competition.Date,
			)
		}

		t := newTable()
		t.AppendHeader(table.Row{"RACE", "CODEX", "DATE", "DISCIPLINE", "GENDER", "RUNS", "RESULTS", "LIVE TIMING"})
		for _, race := range detail.Races {
			t.AppendRow(table.Row{
				race.RaceID, race.Codex,
				race.Date.Format(time.DateTime),
				race.Discipline, race.Gender,
				len(race.Runs), len(race.Results),
				race.LiveTimingURL,
			})
		}
		t.Render()

		if len(detail.TechnicalDelegates) > 0 {
			t = newTable()
			t.AppendHeader(table.Row{"CODEX", "TECHNICAL DELEGATE", "NATION", "ID"})
			for _, td := range detail.TechnicalDelegates {
				t.AppendRow(table.Row{td.Codex, td.Name, td.Nation, td.TdID})
			}
			t.Render()
		}

		for name, url := range detail.Documents {
			fmt.Printf("%s: %s\n", name, url)
		}
		return nil
	},
}

var resultsCmd = &cobra.Command{
	Use:   "results <raceId> <discipline>",
	Short: "Show the result list of a race.",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newClient()
		if err != nil {
			return err
		}
		results, err := client.RaceResults(cmd.Context(), args[0], fis.Discipline(args[1]))
		if err != nil {
			return err
		}

		t := newTable()
		t.AppendHeader(table.Row{"RANK", "NAME", "NATION", "RUN 1", "RUN 2", "TOTAL", "DIFF", "FIS PTS", "CUP PTS"})
		for _, r := range results {
			cup := ""
			if r.CupPoints != nil {
				cup = fmt.Sprintf("%d", *r.CupPoints)
			}
			t.AppendRow(table.Row{
				r.Rank, r.Name, r.Nation,
				r.Run1, r.Run2, r.Total, r.Diff,
				r.FisPoints, cup,
			})
		}
		t.Render()
		return nil
	},
}

func main() {
	rootCmd.PersistentFlags().StringVar(&flagBaseUrl, "base-url", "", "Override the fis-ski.com base url.")
	rootCmd.PersistentFlags().StringVar(&flagSeason, "season", "", "Season code, e.g. 2025.")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable verbose logging.")
	calendarCmd.Flags().StringVar(&flagCategory, "category", "WC", "Calendar category code.")

	rootCmd.AddCommand(calendarCmd)
	rootCmd.AddCommand(eventCmd)
	rootCmd.AddCommand(resultsCmd)

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}
