package cmd

import (
	"fmt"
	"os"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theakshaypant/concertdb/internal/core"
)

var addCmd = &cobra.Command{
	Use:   "add",
	Short: "Add a performer, venue or event",
}

var editCmd = &cobra.Command{
	Use:   "edit",
	Short: "Edit a performer, venue or event by id",
	Long: `Edit a record by id. Only the flags you pass are changed.

Example:
  concertdb edit venue 3 --location "CHICAGO, IL"
  concertdb edit event 12 --date ""`,
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete a performer (with its events) or an unused venue",
}

func init() {
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(editCmd)
	rootCmd.AddCommand(deleteCmd)

	for _, parent := range []*cobra.Command{addCmd, editCmd} {
		verb := parent.Name()
		withID := verb == "edit"

		performer := &cobra.Command{
			Use:   recordUse("performer", withID),
			Short: verb + " a performer",
			Args:  recordArgs(withID),
			RunE:  runSavePerformer,
		}
		performer.Flags().String("name", "", "performer name")
		performer.Flags().String("genre", "", "genre")

		venue := &cobra.Command{
			Use:   recordUse("venue", withID),
			Short: verb + " a venue",
			Args:  recordArgs(withID),
			RunE:  runSaveVenue,
		}
		venue.Flags().String("name", "", "venue name")
		venue.Flags().String("location", "", `location as "City, ST"`)

		event := &cobra.Command{
			Use:   recordUse("event", withID),
			Short: verb + " an event",
			Args:  recordArgs(withID),
			RunE:  runSaveEvent,
		}
		event.Flags().Int64("performer", 0, "performer id")
		event.Flags().Int64("venue", 0, "venue id")
		event.Flags().String("date", "", "date as YYYY-MM-DD, empty for unscheduled")

		if !withID {
			performer.MarkFlagRequired("name")
			performer.MarkFlagRequired("genre")
			venue.MarkFlagRequired("name")
			venue.MarkFlagRequired("location")
			event.MarkFlagRequired("performer")
			event.MarkFlagRequired("venue")
		}
		parent.AddCommand(performer, venue, event)
	}

	deleteCmd.AddCommand(&cobra.Command{
		Use:   "performer <id>",
		Short: "Delete a performer and all of its events",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeletePerformer,
	})
	deleteCmd.AddCommand(&cobra.Command{
		Use:   "venue <id>",
		Short: "Delete a venue that no event references",
		Args:  cobra.ExactArgs(1),
		RunE:  runDeleteVenue,
	})
}

func recordUse(name string, withID bool) string {
	if withID {
		return name + " <id>"
	}
	return name
}

func recordArgs(withID bool) cobra.PositionalArgs {
	if withID {
		return cobra.ExactArgs(1)
	}
	return cobra.NoArgs
}

func parseID(args []string) (int64, error) {
	if len(args) == 0 {
		return 0, nil
	}
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid id %q", args[0])
	}
	return id, nil
}

// stringFlag returns the flag value when it was set, otherwise current.
func stringFlag(cmd *cobra.Command, name, current string) string {
	if !cmd.Flags().Changed(name) {
		return current
	}
	v, _ := cmd.Flags().GetString(name)
	return v
}

var cliNotifier = core.NotifyFunc(func(message string, severity core.Severity) {
	switch severity {
	case core.SeverityError:
		fmt.Fprintln(os.Stderr, "✗ "+message)
	case core.SeverityWarning:
		fmt.Fprintln(os.Stderr, "⚠️  "+message)
	default:
		fmt.Println("✓ " + message)
	}
})

func runSavePerformer(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args)
	if err != nil {
		return err
	}
	target := &core.Performer{}
	if id != 0 {
		if target, err = store.Performer(ctx, id); err != nil {
			return err
		}
	}

	p, err := core.NormalizePerformer(stringFlag(cmd, "name", target.Name), stringFlag(cmd, "genre", target.Genre))
	if err != nil {
		return err
	}
	target.Name, target.Genre = p.Name, p.Genre

	if err := core.SaveAndNotify(ctx, store, cliNotifier, target); err != nil {
		return err
	}
	fmt.Printf("Performer %d: %s (%s)\n", target.ID, target.Name, target.Genre)
	return nil
}

func runSaveVenue(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args)
	if err != nil {
		return err
	}
	target := &core.Venue{}
	if id != 0 {
		if target, err = store.Venue(ctx, id); err != nil {
			return err
		}
	}

	v, err := core.NormalizeVenue(stringFlag(cmd, "name", target.Name), stringFlag(cmd, "location", target.Location))
	if err != nil {
		return err
	}
	target.Name, target.Location = v.Name, v.Location

	if err := core.SaveAndNotify(ctx, store, cliNotifier, target); err != nil {
		return err
	}
	fmt.Printf("Venue %d: %s (%s)\n", target.ID, target.Name, target.Location)
	return nil
}

func runSaveEvent(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	id, err := parseID(args)
	if err != nil {
		return err
	}
	target := &core.Event{}
	if id != 0 {
		if target, err = store.Event(ctx, id); err != nil {
			return err
		}
	}

	if cmd.Flags().Changed("performer") {
		pid, _ := cmd.Flags().GetInt64("performer")
		p, err := store.Performer(ctx, pid)
		if err != nil {
			return err
		}
		target.Performer, target.PerformerID = p, p.ID
	}
	if cmd.Flags().Changed("venue") {
		vid, _ := cmd.Flags().GetInt64("venue")
		v, err := store.Venue(ctx, vid)
		if err != nil {
			return err
		}
		target.Venue, target.VenueID = v, v.ID
	}
	if cmd.Flags().Changed("date") {
		raw, _ := cmd.Flags().GetString("date")
		date, err := core.NormalizeDate(raw)
		if err != nil {
			return err
		}
		target.Date = date
	}

	if err := core.SaveAndNotify(ctx, store, cliNotifier, target); err != nil {
		return err
	}
	fmt.Printf("Event %d: %s at %s on %s\n", target.ID, target.Performer.Name, target.Venue.Name, target.DateOrPlaceholder())
	return nil
}

func runDeletePerformer(cmd *cobra.Command, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := store.DeletePerformer(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("✓ Performer %d deleted along with its events\n", id)
	return nil
}

func runDeleteVenue(cmd *cobra.Command, args []string) error {
	id, err := parseID(args)
	if err != nil {
		return err
	}
	if err := store.DeleteVenue(cmd.Context(), id); err != nil {
		return fmt.Errorf("delete venue %d (is it still used by an event?): %w", id, err)
	}
	fmt.Printf("✓ Venue %d deleted\n", id)
	return nil
}
