package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var deckCmd = &cobra.Command{
	Use:   "deck",
	Short: "Manage decks",
}

var deckAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a deck",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		d, err := st.AddDeck(cmd.Context(), args[0])
		if err != nil {
			exitErr("add deck", err)
		}
		fmt.Printf("%d\t%s\n", d.ID, d.Name)
	},
}

var deckListCmd = &cobra.Command{
	Use:   "list",
	Short: "List decks",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, args []string) {
		st, err := openStore()
		if err != nil {
			exitErr("open store", err)
		}
		defer st.Close()

		decks, err := st.ListDecks(cmd.Context())
		if err != nil {
			exitErr("list decks", err)
		}
		for _, d := range decks {
			fmt.Printf("%d\t%s\n", d.ID, d.Name)
		}
	},
}

func init() {
	deckCmd.AddCommand(deckAddCmd, deckListCmd)
	RootCmd.AddCommand(deckCmd)
}
