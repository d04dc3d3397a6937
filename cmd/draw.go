package cmd

import (
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"time"

	colorize "github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/arcanaland/cardoracle/internal/ansiart"
	"github.com/arcanaland/cardoracle/internal/config"
	"github.com/arcanaland/cardoracle/internal/oracle"
	"github.com/arcanaland/cardoracle/internal/session"
)

var drawCmd = &cobra.Command{
	Use:   "draw",
	Short: "Draw a single card in the terminal",
	Long: `Draw shows one card from a reading's pool, with ANSI art when the card image
is a local file.

Examples:
  cardoracle draw day 3
  cardoracle draw day --date 2026-12-25
  cardoracle draw random`,
}

var drawDayCmd = &cobra.Command{
	Use:   "day [reading-id]",
	Short: "Show the card of the day",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		date := time.Now()
		if s, _ := cmd.Flags().GetString("date"); s != "" {
			d, err := time.ParseInLocation(time.DateOnly, s, time.Local)
			if err != nil {
				return fmt.Errorf("invalid date %q, expecting YYYY-MM-DD", s)
			}
			date = d
		}

		return drawSingle(cmd, args, func(b *session.Builder, id uint) (*session.Single, error) {
			return b.CardOfDay(cmd.Context(), id, date)
		})
	},
}

var drawRandomCmd = &cobra.Command{
	Use:   "random [reading-id]",
	Short: "Show a random card",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return drawSingle(cmd, args, func(b *session.Builder, id uint) (*session.Single, error) {
			return b.RandomCard(cmd.Context(), id)
		})
	},
}

func init() {
	RootCmd.AddCommand(drawCmd)
	drawCmd.AddCommand(drawDayCmd)
	drawCmd.AddCommand(drawRandomCmd)

	drawDayCmd.Flags().String("date", "", "show the card for another day (YYYY-MM-DD)")
	drawCmd.PersistentFlags().Bool("no-art", false, "skip ANSI art")
}

func drawSingle(cmd *cobra.Command, args []string, draw func(*session.Builder, uint) (*session.Single, error)) error {
	a, err := openApp()
	if err != nil {
		return err
	}
	defer a.Close()

	id, err := a.readingArg(args)
	if err != nil {
		return err
	}

	single, err := draw(session.NewBuilder(a.catalog), id)
	if err != nil {
		return err
	}

	var art string
	if noArt, _ := cmd.Flags().GetBool("no-art"); !noArt {
		art = cardArt(single.Card.Image)
	}
	displayCard(single, art)
	return nil
}

// cardArt converts an imported local card image to ANSI art. Remote images
// and conversion failures give no art.
func cardArt(image string) string {
	path, ok := oracle.LocalImagePath(image)
	if !ok {
		return ""
	}
	if _, err := os.Stat(path); err != nil {
		return ""
	}
	conv := ansiart.NewConverter(config.GetCacheDir())
	conv.TrueColor = trueColorTerminal()
	art, err := conv.Art(path)
	if err != nil {
		return ""
	}
	return art
}

// trueColorTerminal follows the COLORTERM convention. Other terminals get
// the 256 color palette.
func trueColorTerminal() bool {
	switch os.Getenv("COLORTERM") {
	case "truecolor", "24bit":
		return true
	}
	return false
}

// displayCard displays the card information next to its ANSI art
func displayCard(s *session.Single, art string) {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		width = 80
	}

	artWidth := 0
	if art != "" {
		artWidth = ansiart.DefaultWidth + 4
	}
	infoWidth := max(width-artWidth-4, 20)

	var info []string
	info = append(info, colorize.CyanString("Card:    ")+colorize.HiWhiteString("%s", s.Card.Title))
	info = append(info, colorize.CyanString("Reading: ")+colorize.HiWhiteString("%s", s.Reading.Title))
	info = append(info, colorize.CyanString("ID:      ")+colorize.HiWhiteString("%d", s.Card.ID))

	if body := plainText(s.Card.Body); body != "" {
		info = append(info, "")
		info = append(info, ansiart.Wrap(body, infoWidth)...)
	}
	if footer := plainText(s.Reading.FooterText); footer != "" {
		info = append(info, "")
		for _, line := range ansiart.Wrap(footer, infoWidth) {
			info = append(info, colorize.New(colorize.Faint).Sprint(line))
		}
	}

	fmt.Println()
	fmt.Print(ansiart.SideBySide(art, info, 4))
	fmt.Println()
}

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// plainText flattens trusted card HTML for the terminal
func plainText(s string) string {
	s = strings.NewReplacer("<br>", "\n", "<br />", "\n", "</p>", "\n").Replace(s)
	return strings.TrimSpace(html.UnescapeString(tagPattern.ReplaceAllString(s, "")))
}
