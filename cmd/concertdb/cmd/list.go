package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/theakshaypant/concertdb/internal/core"
	"github.com/theakshaypant/concertdb/internal/util"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "List events",
	Long: `List events with their performer, venue and date.

Example:
  concertdb events --sort performer --desc
  concertdb events --filter "red rocks"`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

var performersCmd = &cobra.Command{
	Use:   "performers",
	Short: "List performers with their number of concerts",
	Args:  cobra.NoArgs,
	RunE:  runPerformers,
}

var venuesCmd = &cobra.Command{
	Use:   "venues",
	Short: "List venues with their number of concerts",
	Args:  cobra.NoArgs,
	RunE:  runVenues,
}

func init() {
	rootCmd.AddCommand(eventsCmd)
	rootCmd.AddCommand(performersCmd)
	rootCmd.AddCommand(venuesCmd)

	eventsCmd.Flags().String("sort", "date", "sort column: performer, venue or date")
	eventsCmd.Flags().Bool("desc", false, "sort descending")
	eventsCmd.Flags().StringP("filter", "f", "", "only show events whose performer, venue or date contains this text")
}

func parseSortColumn(s string) (core.SortColumn, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "performer":
		return core.SortPerformer, nil
	case "venue":
		return core.SortVenue, nil
	case "date", "":
		return core.SortDate, nil
	default:
		return 0, fmt.Errorf("unknown sort column %q (supported: performer, venue, date)", s)
	}
}

func runEvents(cmd *cobra.Command, args []string) error {
	sortFlag, _ := cmd.Flags().GetString("sort")
	desc, _ := cmd.Flags().GetBool("desc")
	filter, _ := cmd.Flags().GetString("filter")

	column, err := parseSortColumn(sortFlag)
	if err != nil {
		return err
	}
	q := core.EventQuery{Sort: core.EventSort{Column: column, Direction: core.Ascending}, Filter: filter}
	if desc {
		q.Sort.Direction = core.Descending
	}

	rows, err := store.ListEvents(cmd.Context(), q)
	if err != nil {
		return fmt.Errorf("failed to load events: %w", err)
	}

	fmt.Printf("🎫 Events (%s):\n", store.Location())
	fmt.Println(util.Rule(0))

	if len(rows) == 0 {
		fmt.Println("No events found.")
		return nil
	}

	for _, r := range rows {
		fmt.Printf("%5d  %-24s  %-28s  %s\n",
			r.EventID,
			util.TruncateText(r.PerformerName, 24),
			util.TruncateText(r.VenueName, 28),
			r.DateOrPlaceholder())
	}

	fmt.Println(util.Rule(0))
	fmt.Printf("Total: %d events\n", len(rows))
	return nil
}

func runPerformers(cmd *cobra.Command, args []string) error {
	rows, err := store.ListPerformers(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load performers: %w", err)
	}
	items := make([]listItem, len(rows))
	for i, r := range rows {
		items[i] = listItem{r.ID, r.Name, r.Genre, r.EventCount}
	}
	printRecords("🎤 Performers", items)
	return nil
}

func runVenues(cmd *cobra.Command, args []string) error {
	rows, err := store.ListVenues(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to load venues: %w", err)
	}
	items := make([]listItem, len(rows))
	for i, r := range rows {
		items[i] = listItem{r.ID, r.Name, r.Location, r.EventCount}
	}
	printRecords("🏟️  Venues", items)
	return nil
}

type listItem struct {
	id     int64
	name   string
	detail string
	count  int
}

func printRecords(title string, items []listItem) {
	fmt.Printf("%s (%s):\n", title, store.Location())
	fmt.Println(util.Rule(0))

	if len(items) == 0 {
		fmt.Println("Nothing here yet.")
		return
	}

	for _, it := range items {
		fmt.Printf("%5d  %-26s  %-22s  %3d concerts\n",
			it.id,
			util.TruncateText(it.name, 26),
			util.TruncateText(it.detail, 22),
			it.count)
	}

	fmt.Println(util.Rule(0))
	fmt.Printf("Total: %d\n", len(items))
}
