package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/alecgard/fiveplanner/internal/planner"
	"github.com/alecgard/fiveplanner/internal/roster"
)

var seedDemo bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed default groups and pitches, optionally demo players",
	RunE:  withApp(runSeed),
}

func init() {
	seedCmd.Flags().BoolVar(&seedDemo, "demo", false, "also add demo players and an upcoming session")
	rootCmd.AddCommand(seedCmd)
}

var demoPlayers = []roster.CreatePlayerInput{
	{Name: "Karim Benali", Group: "1"},
	{Name: "Julien Moreau", Group: "1"},
	{Name: "Sofiane Haddad", Group: "1"},
	{Name: "Thomas Lefèvre", Group: "2"},
	{Name: "Mehdi Ouali", Group: "2"},
	{Name: "Antoine Girard", Group: "3"},
	{Name: "Yanis Bouzid", Group: "4"},
}

func runSeed(ctx context.Context, a *app, args []string) error {
	// Opening the roster already seeded missing groups and pitches.
	r := a.planner.Roster()
	slog.Info("roster ready", "groups", len(r.Groups()), "pitches", len(r.Pitches()))

	if !seedDemo {
		return nil
	}
	if len(r.Players()) > 0 {
		slog.Info("players already exist, skipping demo data")
		return nil
	}

	players, err := r.BulkAddPlayers(ctx, demoPlayers)
	if err != nil {
		return fmt.Errorf("adding demo players: %w", err)
	}

	pitches := r.Pitches()
	in := planner.CreateSessionInput{
		Date: time.Now().AddDate(0, 0, 7).Format("2006-01-02"),
		Time: "19:30",
	}
	if len(pitches) > 0 {
		in.PitchID = pitches[0].ID
	} else {
		in.Location = "Terrain du quartier"
	}
	s, err := a.planner.CreateSession(ctx, in)
	if err != nil {
		return fmt.Errorf("creating demo session: %w", err)
	}

	fmt.Printf("\n=== Demo Data Seeded ===\n")
	fmt.Printf("Players:   %d added\n", len(players))
	fmt.Printf("Session:   %s %s at %s (%s)\n", s.Date, s.Time, s.Location, s.ID)
	fmt.Printf("\nTry it:\n")
	fmt.Printf("  fiveplanner session respond %s coming\n", players[0].ID)
	fmt.Printf("  fiveplanner session summary %s\n", s.ID)
	return nil
}
