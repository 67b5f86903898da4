package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alecgard/fiveplanner/internal/planner"
	"github.com/alecgard/fiveplanner/internal/session"
)

// selectedArg targets the selected session wherever a session id is expected.
const selectedArg = "selected"

func sessionArg(args []string, i int) string {
	if i >= len(args) || args[i] == selectedArg {
		return ""
	}
	return args[i]
}

var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "Plan sessions and collect answers",
}

var sessionCreateIn planner.CreateSessionInput

var sessionCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an upcoming session and select it",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		s, err := a.planner.CreateSession(ctx, sessionCreateIn)
		if err != nil {
			return err
		}
		fmt.Println(s.ID)
		return nil
	}),
}

var sessionFromEmailCmd = &cobra.Command{
	Use:   "from-email [file]",
	Short: "Create an indoor session from a booking confirmation email (stdin by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		var in io.Reader = os.Stdin
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		text, err := io.ReadAll(in)
		if err != nil {
			return err
		}
		out, err := a.planner.CreateSessionFromEmail(ctx, string(text))
		if err != nil {
			return err
		}
		if out.AddedPitch != nil {
			fmt.Printf("added pitch %s (%s)\n", out.AddedPitch.Name, out.AddedPitch.ID)
		}
		fmt.Printf("%s\t%s %s\t%s\n", out.Session.ID, out.Session.Date, out.Session.Time, out.Session.Location)
		return nil
	}),
}

var sessionListCmd = &cobra.Command{
	Use:   "list",
	Short: "List upcoming sessions (* marks the selected one)",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return printSessions(a, a.planner.Sessions().Active(), a.planner.Sessions().SelectedID())
	}),
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List completed and cancelled sessions",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return printSessions(a, a.planner.Sessions().History(), "")
	}),
}

func printSessions(a *app, list []session.Session, selected string) error {
	tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, " \tID\tDATE\tTIME\tEND\tLOCATION\tSTATUS\tCOMING\tSCORE")
	for _, s := range list {
		mark := ""
		if s.ID == selected {
			mark = "*"
		}
		end, err := a.planner.EndTime(s)
		if err != nil {
			end = "?"
		}
		score := ""
		if s.Score != nil {
			score = fmt.Sprintf("%d-%d", s.Score.Team1, s.Score.Team2)
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			mark, s.ID, s.Date, s.Time, end, s.Location, s.Status,
			s.Count(session.ResponseComing), s.MaxPlayers, score)
	}
	return tw.Flush()
}

var sessionSelectCmd = &cobra.Command{
	Use:   "select <id>",
	Short: "Select an upcoming session",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.planner.Sessions().Select(ctx, args[0])
	}),
}

var sessionRespondID string

var sessionRespondCmd = &cobra.Command{
	Use:   "respond <player-id> <coming|not-coming|optional|pending>",
	Short: "Record a player's answer on the selected session (or --session)",
	Args:  cobra.ExactArgs(2),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		id := sessionRespondID
		if id == selectedArg {
			id = ""
		}
		s, err := a.planner.Respond(ctx, id, args[0], session.ResponseStatus(args[1]))
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d/%d coming\n", s.ID, s.Count(session.ResponseComing), s.MaxPlayers)
		return nil
	}),
}

var sessionScore string

var sessionCompleteCmd = &cobra.Command{
	Use:   "complete [id]",
	Short: "Complete a session, optionally with --score 3-2",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		var score *session.Score
		if sessionScore != "" {
			sc, err := parseScore(sessionScore)
			if err != nil {
				return err
			}
			score = &sc
		}
		s, err := a.planner.Complete(ctx, sessionArg(args, 0), score)
		if err != nil {
			return err
		}
		fmt.Printf("%s completed\n", s.ID)
		return nil
	}),
}

// parseScore reads "team1-team2", e.g. "3-2".
func parseScore(v string) (session.Score, error) {
	left, right, ok := strings.Cut(v, "-")
	if !ok {
		return session.Score{}, fmt.Errorf("score %q: expected team1-team2", v)
	}
	t1, err := strconv.Atoi(strings.TrimSpace(left))
	if err != nil {
		return session.Score{}, fmt.Errorf("score %q: %w", v, err)
	}
	t2, err := strconv.Atoi(strings.TrimSpace(right))
	if err != nil {
		return session.Score{}, fmt.Errorf("score %q: %w", v, err)
	}
	return session.Score{Team1: t1, Team2: t2}, nil
}

var sessionCancelCmd = &cobra.Command{
	Use:   "cancel [id]",
	Short: "Cancel a session and archive it",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		s, err := a.planner.Cancel(ctx, sessionArg(args, 0))
		if err != nil {
			return err
		}
		fmt.Printf("%s cancelled\n", s.ID)
		return nil
	}),
}

var sessionClearCmd = &cobra.Command{
	Use:   "clear [id]",
	Short: "Delete an upcoming session without archiving it",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.planner.Clear(ctx, sessionArg(args, 0))
	}),
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a session from the history",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.planner.DeleteHistory(ctx, args[0])
	}),
}

var sessionSummaryCmd = &cobra.Command{
	Use:   "summary [id]",
	Short: "Print the share text of a session",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		id, err := resolveSessionID(a, sessionArg(args, 0))
		if err != nil {
			return err
		}
		_, text, err := a.planner.Summary(id)
		if err != nil {
			return err
		}
		fmt.Println(text)
		return nil
	}),
}

var sessionMinimal bool

var sessionCalendarCmd = &cobra.Command{
	Use:   "calendar [id]",
	Short: "Print a calendar link for a session",
	Args:  cobra.MaximumNArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		id, err := resolveSessionID(a, sessionArg(args, 0))
		if err != nil {
			return err
		}
		u, err := a.planner.CalendarURL(id, sessionMinimal)
		if err != nil {
			return err
		}
		fmt.Println(u)
		return nil
	}),
}

// resolveSessionID maps an empty id to the selected session.
func resolveSessionID(a *app, id string) (string, error) {
	if id != "" {
		return id, nil
	}
	s, err := a.planner.Sessions().Selected()
	if err != nil {
		return "", err
	}
	return s.ID, nil
}

func init() {
	f := sessionCreateCmd.Flags()
	f.StringVar(&sessionCreateIn.Date, "date", "", "date, YYYY-MM-DD")
	f.StringVar(&sessionCreateIn.Time, "time", "", "kick-off time, HH:MM")
	f.IntVar(&sessionCreateIn.Duration, "duration", 0, "duration in minutes (default from config)")
	f.StringVar(&sessionCreateIn.PitchID, "pitch", "", "pitch id")
	f.StringVar(&sessionCreateIn.Location, "location", "", "location, required without --pitch")
	f.StringVar((*string)(&sessionCreateIn.SessionType), "type", "", "indoor or outdoor (default from config)")
	f.StringVar(&sessionCreateIn.PaymentLink, "payment-link", "", "payment link")
	f.IntVar(&sessionCreateIn.MaxPlayers, "max-players", 0, "maximum confirmed players (default from config)")

	sessionRespondCmd.Flags().StringVar(&sessionRespondID, "session", selectedArg, "session id")
	sessionCompleteCmd.Flags().StringVar(&sessionScore, "score", "", "final score, e.g. 3-2")
	sessionCalendarCmd.Flags().BoolVar(&sessionMinimal, "minimal", false, "omit the description")

	sessionCmd.AddCommand(
		sessionCreateCmd, sessionFromEmailCmd, sessionListCmd, sessionHistoryCmd,
		sessionSelectCmd, sessionRespondCmd, sessionCompleteCmd, sessionCancelCmd,
		sessionClearCmd, sessionDeleteCmd, sessionSummaryCmd, sessionCalendarCmd,
	)
	rootCmd.AddCommand(sessionCmd)
}
