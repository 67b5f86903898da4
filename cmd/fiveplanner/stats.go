package main

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats [player-id]",
	Short: "Show the attendance leaderboard, or one player's stats",
	Args:  cobra.MaximumNArgs(1),
	RunE:  withApp(runStats),
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(ctx context.Context, a *app, args []string) error {
	if len(args) == 1 {
		st, err := a.planner.PlayerStats(args[0])
		if err != nil {
			return err
		}
		fmt.Printf("Sessions:   %d\n", st.TotalSessions)
		fmt.Printf("Attended:   %d\n", st.AttendedSessions)
		fmt.Printf("Attendance: %.0f%%\n", st.AttendanceRate)
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RANK\tPLAYER\tATTENDED\tSESSIONS\tRATE")
	for _, e := range a.planner.Leaderboard() {
		fmt.Fprintf(tw, "%d\t%s\t%d\t%d\t%.0f%%\n", e.Rank, e.Name, e.AttendedSessions, e.TotalSessions, e.AttendanceRate)
	}
	return tw.Flush()
}
