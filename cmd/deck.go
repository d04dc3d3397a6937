package cmd

import (
	"fmt"
	"strconv"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/arcanaland/cardoracle/internal/config"
	"github.com/arcanaland/cardoracle/internal/deck"
	"github.com/arcanaland/cardoracle/internal/validator"
)

// deckCmd represents the deck command group
var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage the readings in your catalog",
	Long:  `Commands for importing, listing and removing readings.`,
}

// deckImportCmd represents the deck import command
var deckImportCmd = &cobra.Command{
	Use:   "import [deck-file]",
	Short: "Validate a deck file and import it into the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		results, err := validator.NewValidator(args[0]).Validate()
		if err != nil {
			return err
		}
		if !results.Valid() {
			for i, e := range results.Errors {
				fmt.Printf("%d. %s\n", i+1, e)
			}
			return fmt.Errorf("deck file has %d validation errors, run 'cardoracle validate %s' for details", len(results.Errors), args[0])
		}

		d, err := deck.Load(args[0])
		if err != nil {
			return err
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		res, err := d.Import(cmd.Context(), a.store)
		if err != nil {
			return fmt.Errorf("error importing deck: %v", err)
		}
		a.log.Info("Imported deck", "path", args[0], "readings", res.Readings, "cards", res.Cards)

		fmt.Printf("Imported %d readings, %d positions, %d cards and %d descriptions.\n",
			res.Readings, res.Positions, res.Cards, res.Descriptions)
		for _, r := range d.Readings {
			fmt.Printf("  %s → reading %d\n", colorize.HiWhiteString(r.Title), res.ReadingIDs[r.Key])
		}
		return nil
	},
}

// deckListCmd represents the deck list command
var deckListCmd = &cobra.Command{
	Use:   "ls",
	Short: "List readings with their position, card and description counts",
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		summaries, err := a.catalog.Summaries(cmd.Context())
		if err != nil {
			return err
		}
		if len(summaries) == 0 {
			fmt.Println("No readings found in your catalog.")
			fmt.Println("Run 'cardoracle deck import [deck-file]' to add some.")
			return nil
		}

		for _, s := range summaries {
			marker := "  "
			if s.Reading.ID == a.cfg.Display.DefaultReading {
				marker = "* "
			}
			line := fmt.Sprintf("%s%-4d %s (%d positions, %d cards, %d descriptions)",
				marker, s.Reading.ID, s.Reading.Title, s.Positions, s.Cards, s.Descriptions)
			if !s.Reading.Published() {
				line += colorize.YellowString(" [%s]", s.Reading.Status)
			}
			if marker == "* " {
				line += colorize.GreenString(" [DEFAULT]")
			}
			fmt.Println(line)
		}
		return nil
	},
}

// deckSetDefaultCmd represents the deck set-default command
var deckSetDefaultCmd = &cobra.Command{
	Use:   "set-default [reading-id]",
	Short: "Set the reading used when no reading id is given",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		id, err := a.readingArg(args)
		if err != nil {
			return err
		}

		// Make sure the reading can actually be drawn from
		r, err := a.catalog.Reading(cmd.Context(), id)
		if err != nil {
			return fmt.Errorf("error: not a published reading - %v", err)
		}

		if err := config.SetDefaultReading(configPath, id); err != nil {
			return fmt.Errorf("error setting default reading: %v", err)
		}

		fmt.Printf("Default reading set to: %d (%s)\n", id, r.Title)
		return nil
	},
}

// deckRemoveCmd represents the deck rm command
var deckRemoveCmd = &cobra.Command{
	Use:   "rm [reading-id]",
	Short: "Delete a reading with its positions, descriptions and unshared cards",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := strconv.ParseUint(args[0], 10, 64)
		if err != nil || id == 0 {
			return fmt.Errorf("invalid reading id: %s", args[0])
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		r, err := a.store.GetReading(cmd.Context(), uint(id))
		if err != nil {
			return err
		}
		if err := a.store.PurgeReading(cmd.Context(), uint(id)); err != nil {
			return fmt.Errorf("error removing reading: %v", err)
		}
		a.log.Info("Removed reading", "reading_id", id)

		fmt.Printf("Removed reading %d (%s)\n", id, r.Title)
		if a.cfg.Display.DefaultReading == uint(id) {
			fmt.Println(colorize.YellowString("This was your default reading. Run 'cardoracle deck set-default' to pick another."))
		}
		return nil
	},
}

func init() {
	RootCmd.AddCommand(deckCmd)
	deckCmd.AddCommand(deckImportCmd)
	deckCmd.AddCommand(deckListCmd)
	deckCmd.AddCommand(deckSetDefaultCmd)
	deckCmd.AddCommand(deckRemoveCmd)
}
