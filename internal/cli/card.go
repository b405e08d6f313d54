package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/revisehq/revise/internal/store"
)

var (
	addDeck   string
	addBody   string
	listDeck  string
	listAll   bool
	listSusp  bool
	editDeck  string
	editTitle string
	editBody  string
)

var addCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Add a card",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		c, err := st.AddCard(cmd.Context(), addDeck, args[0], addBody)
		if err != nil {
			exitErr("add card", err)
		}
		fmt.Printf("%s\t[%s] %s\n", c.ID, c.Deck, c.Title)
	},
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List cards (due cards by default)",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		f := store.ListFilter{Deck: listDeck, SuspendedOnly: listSusp}
		if !listAll && !listSusp {
			f.DueBefore = time.Now()
		}
		cards, err := st.ListCards(cmd.Context(), f)
		if err != nil {
			exitErr("list cards", err)
		}
		for _, c := range cards {
			printCardLine(c)
		}
	},
}

var showCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a card",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		c, err := st.GetCard(cmd.Context(), args[0])
		if err != nil {
			exitErr("show card", err)
		}
		printCardLine(c)
		if c.Body != "" {
			fmt.Println(c.Body)
		}
		fmt.Printf("state: %s  lapses: %d", c.State, c.Lapses)
		if c.Stability != nil && c.Difficulty != nil {
			fmt.Printf("  stability: %.2fd  difficulty: %.2f", *c.Stability, *c.Difficulty)
		}
		fmt.Println()
	},
}

var editCmd = &cobra.Command{
	Use:   "edit <id>",
	Short: "Edit a card's title, body, or deck",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		c, err := st.GetCard(ctx, args[0])
		if err != nil {
			exitErr("edit card", err)
		}

		// Flags not passed keep the current value.
		deck, title, body := c.Deck, c.Title, c.Body
		if cmd.Flags().Changed("deck") {
			deck = editDeck
		}
		if cmd.Flags().Changed("title") {
			title = editTitle
		}
		if cmd.Flags().Changed("body") {
			body = editBody
		}

		if err := st.UpdateCardDetails(ctx, c.ID, deck, title, body); err != nil {
			exitErr("edit card", err)
		}
		if err := st.RemoveOrphanDecks(ctx); err != nil {
			exitErr("edit card", err)
		}
		fmt.Printf("%s\t[%s] %s\n", c.ID, deck, title)
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <id>",
	Short: "Remove a card",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		ctx := cmd.Context()
		if err := st.RemoveCard(ctx, args[0]); err != nil {
			exitErr("remove card", err)
		}
		if err := st.RemoveOrphanDecks(ctx); err != nil {
			exitErr("remove card", err)
		}
	},
}

func printCardLine(c store.Card) {
	deck := color.New(color.FgWhite, color.Faint).Sprintf("[%s]", c.Deck)
	title := color.New(color.FgHiGreen, color.Bold).Sprint(c.Title)
	due := color.YellowString(humanize.Time(c.Due))
	fmt.Printf("%s %s %s  due %s\n", c.ID, deck, title, due)
}

func init() {
	addCmd.Flags().StringVar(&addDeck, "deck", "default", "Deck to add the card to")
	addCmd.Flags().StringVar(&addBody, "body", "", "Card body")
	listCmd.Flags().StringVar(&listDeck, "deck", "", "Only cards in this deck")
	listCmd.Flags().BoolVar(&listAll, "all", false, "Include cards that are not due yet")
	listCmd.Flags().BoolVar(&listSusp, "suspended", false, "Only suspended cards")
	editCmd.Flags().StringVar(&editDeck, "deck", "", "Move the card to this deck")
	editCmd.Flags().StringVar(&editTitle, "title", "", "New title")
	editCmd.Flags().StringVar(&editBody, "body", "", "New body")
	RootCmd.AddCommand(addCmd, listCmd, showCmd, editCmd, rmCmd)
}
