package router_test

import (
	"fmt"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
	"github.com/BrandonKowalski/navstack/pkg/navstack/router"
)

// Destination keys - one per screen
type GameListKey struct{}

func (GameListKey) Kind() string { return "game_list" }

type GameDetailKey struct {
	Game Game
}

func (GameDetailKey) Kind() string { return "game_detail" }

type ConfirmKey struct {
	Question string
}

func (ConfirmKey) Kind() string { return "confirm" }

// Domain types
type Game struct {
	ID   int
	Name string
}

// Resume types - position state for back navigation
type GameListResume struct {
	SelectedIndex  int
	ScrollPosition int
}

// Example demonstrates basic router usage: list -> detail -> back -> exit.
func Example() {
	games := []Game{{ID: 1, Name: "Portal"}}
	main := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	r := router.New(main)

	r.Register("game_list", func(in navstack.Instruction) (router.Outcome, error) {
		resume, returning := router.Resume[GameListResume](in)
		if !returning {
			// First visit: select a game
			fmt.Println("List: selecting game")
			return router.Open(navstack.Push(GameDetailKey{Game: games[0]})).
				WithResume(GameListResume{SelectedIndex: 0}), nil
		}
		// Second visit: leave
		fmt.Printf("List: restored to index %d, exiting\n", resume.SelectedIndex)
		return router.Back(), nil
	})

	r.Register("game_detail", func(in navstack.Instruction) (router.Outcome, error) {
		key := in.Key().(GameDetailKey)
		fmt.Printf("Detail: showing %s, going back\n", key.Game.Name)
		return router.Back(), nil
	})

	_ = r.Run(navstack.Push(GameListKey{}))
	fmt.Println("Backstack:", main.Backstack().Len())

	// Output:
	// List: selecting game
	// Detail: showing Portal, going back
	// List: restored to index 0, exiting
	// Backstack: 0
}

// Example_backNavigation demonstrates resume state surviving a round trip.
func Example_backNavigation() {
	main := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	r := router.New(main)

	r.Register("game_list", func(in navstack.Instruction) (router.Outcome, error) {
		resume, returning := router.Resume[GameListResume](in)
		if !returning {
			fmt.Println("First visit: selecting game at index 2")
			return router.Open(navstack.Push(GameDetailKey{Game: Game{ID: 1, Name: "Half-Life"}})).
				WithResume(GameListResume{SelectedIndex: 2, ScrollPosition: 100}), nil
		}

		// Returning from detail
		fmt.Printf("Returned: index=%d, scroll=%d\n", resume.SelectedIndex, resume.ScrollPosition)
		return router.Exit(), nil
	})

	r.Register("game_detail", func(in navstack.Instruction) (router.Outcome, error) {
		fmt.Printf("Viewing: %s\n", in.Key().(GameDetailKey).Game.Name)
		return router.Back(), nil
	})

	_ = r.Run(navstack.Push(GameListKey{}))

	// Output:
	// First visit: selecting game at index 2
	// Viewing: Half-Life
	// Returned: index=2, scroll=100
}

// Example_results demonstrates a confirmation dialog returning its answer to
// the screen that opened it.
func Example_results() {
	main := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
	r := router.New(main)

	main.Results().Register("list", func(binding navstack.ResultBinding, result any) {
		fmt.Printf("Answer for %s: %v\n", binding.ResultKeyID, result)
	})

	asked := false
	r.Register("game_list", func(in navstack.Instruction) (router.Outcome, error) {
		if asked {
			return router.Exit(), nil
		}
		asked = true
		return router.Open(navstack.Present(ConfirmKey{Question: "Delete save?"},
			navstack.WithResultBinding(navstack.ResultBinding{OwnerID: "list", ResultKeyID: "delete"}),
		)), nil
	})

	r.Register("confirm", func(in navstack.Instruction) (router.Outcome, error) {
		fmt.Println("Confirm:", in.Key().(ConfirmKey).Question)
		return router.Complete(true), nil
	})

	_ = r.Run(navstack.Push(GameListKey{}))
	fmt.Println("Backstack:", main.Backstack().Len())

	// Output:
	// Confirm: Delete save?
	// Answer for delete: true
	// Backstack: 1
}
