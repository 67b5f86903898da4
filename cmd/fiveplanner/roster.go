package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/alecgard/fiveplanner/internal/opt"
	"github.com/alecgard/fiveplanner/internal/roster"
)

// --- players ---

var playerCmd = &cobra.Command{
	Use:   "player",
	Short: "Manage players",
}

var (
	playerEmail string
	playerPhone string
	playerGroup string
	playerName  string
	playerClear []string
)

var playerAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a player",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		p, err := a.planner.Roster().AddPlayer(ctx, roster.CreatePlayerInput{
			Name:  args[0],
			Email: playerEmail,
			Phone: playerPhone,
			Group: playerGroup,
		})
		if err != nil {
			return err
		}
		fmt.Println(p.ID)
		return nil
	}),
}

var playerBulkCmd = &cobra.Command{
	Use:   "bulk [name...]",
	Short: "Add several players at once (names from arguments, else one per stdin line)",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		names := args
		if len(names) == 0 {
			sc := bufio.NewScanner(os.Stdin)
			for sc.Scan() {
				if line := strings.TrimSpace(sc.Text()); line != "" {
					names = append(names, line)
				}
			}
			if err := sc.Err(); err != nil {
				return err
			}
		}
		in := make([]roster.CreatePlayerInput, len(names))
		for i, n := range names {
			in[i] = roster.CreatePlayerInput{Name: n, Group: playerGroup}
		}
		added, err := a.planner.Roster().BulkAddPlayers(ctx, in)
		if err != nil {
			return err
		}
		for _, p := range added {
			fmt.Println(p.ID)
		}
		return nil
	}),
}

var playerListCmd = &cobra.Command{
	Use:   "list",
	Short: "List players",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		r := a.planner.Roster()
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tGROUP\tEMAIL\tPHONE")
		for _, p := range r.Players() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Name, r.GroupName(p), p.Email, p.Phone)
		}
		return tw.Flush()
	}),
}

var playerUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Update a player; --clear email,phone,group removes optional fields",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		flags := cmd.Flags()
		u := roster.PlayerUpdate{
			Name:  stringField(flags.Changed("name"), playerName, false),
			Email: stringField(flags.Changed("email"), playerEmail, clears(playerClear, "email")),
			Phone: stringField(flags.Changed("phone"), playerPhone, clears(playerClear, "phone")),
			Group: stringField(flags.Changed("group"), playerGroup, clears(playerClear, "group")),
		}
		return withApp(func(ctx context.Context, a *app, args []string) error {
			p, err := a.planner.Roster().UpdatePlayer(ctx, args[0], u)
			if err != nil {
				return err
			}
			fmt.Printf("%s\t%s\n", p.ID, p.Name)
			return nil
		})(cmd, args)
	},
}

var playerRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a player (their past responses are kept)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.planner.RemovePlayer(ctx, args[0])
	}),
}

// stringField builds an update field from a flag: cleared wins over a value.
func stringField(changed bool, v string, clear bool) opt.Field[string] {
	switch {
	case clear:
		return opt.Clear[string]()
	case changed:
		return opt.Some(v)
	}
	return opt.Field[string]{}
}

func clears(list []string, field string) bool {
	for _, f := range list {
		if strings.EqualFold(strings.TrimSpace(f), field) {
			return true
		}
	}
	return false
}

// --- groups ---

var groupCmd = &cobra.Command{
	Use:   "group",
	Short: "Manage player groups",
}

var groupColor string

var groupAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a group",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		g, err := a.planner.Roster().AddGroup(ctx, roster.CreateGroupInput{Name: args[0], Color: groupColor})
		if err != nil {
			return err
		}
		fmt.Println(g.ID)
		return nil
	}),
}

var groupListCmd = &cobra.Command{
	Use:   "list",
	Short: "List groups",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tCOLOR")
		for _, g := range a.planner.Roster().Groups() {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", g.ID, g.Name, g.Color)
		}
		return tw.Flush()
	}),
}

var groupRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a group (players keep the reference)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.planner.Roster().RemoveGroup(ctx, args[0])
	}),
}

// --- pitches ---

var pitchCmd = &cobra.Command{
	Use:   "pitch",
	Short: "Manage pitches",
}

var (
	pitchAddress     string
	pitchSurface     string
	pitchFilmed      bool
	pitchPrice       string
	pitchDescription string
)

var pitchAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a pitch",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		p, err := a.planner.Roster().AddPitch(ctx, roster.CreatePitchInput{
			Name:        args[0],
			Address:     pitchAddress,
			SurfaceType: roster.SurfaceType(pitchSurface),
			IsFilmed:    pitchFilmed,
			PriceRange:  pitchPrice,
			Description: pitchDescription,
		})
		if err != nil {
			return err
		}
		fmt.Println(p.ID)
		return nil
	}),
}

var pitchListCmd = &cobra.Command{
	Use:   "list",
	Short: "List pitches",
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		tw := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "ID\tNAME\tSURFACE\tFILMED\tPRICE\tADDRESS")
		for _, p := range a.planner.Roster().Pitches() {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%t\t%s\t%s\n", p.ID, p.Name, p.SurfaceType.Label(), p.IsFilmed, p.PriceRange, p.Address)
		}
		return tw.Flush()
	}),
}

var pitchRemoveCmd = &cobra.Command{
	Use:   "remove <id>",
	Short: "Remove a pitch (sessions keep their snapshot)",
	Args:  cobra.ExactArgs(1),
	RunE: withApp(func(ctx context.Context, a *app, args []string) error {
		return a.planner.Roster().RemovePitch(ctx, args[0])
	}),
}

func init() {
	for _, c := range []*cobra.Command{playerAddCmd, playerUpdateCmd} {
		c.Flags().StringVar(&playerEmail, "email", "", "email address")
		c.Flags().StringVar(&playerPhone, "phone", "", "phone number")
		c.Flags().StringVar(&playerGroup, "group", "", "group id")
	}
	playerBulkCmd.Flags().StringVar(&playerGroup, "group", "", "group id for every player")
	playerUpdateCmd.Flags().StringVar(&playerName, "name", "", "new name")
	playerUpdateCmd.Flags().StringSliceVar(&playerClear, "clear", nil, "optional fields to clear: email, phone, group")
	playerCmd.AddCommand(playerAddCmd, playerBulkCmd, playerListCmd, playerUpdateCmd, playerRemoveCmd)

	groupAddCmd.Flags().StringVar(&groupColor, "color", roster.GroupPalette[0], "palette colour, e.g. bg-teal-500")
	groupCmd.AddCommand(groupAddCmd, groupListCmd, groupRemoveCmd)

	pitchAddCmd.Flags().StringVar(&pitchAddress, "address", "", "street address")
	pitchAddCmd.Flags().StringVar(&pitchSurface, "surface", string(roster.SurfaceSynthetic), "synthetic, grass, indoor or concrete")
	pitchAddCmd.Flags().BoolVar(&pitchFilmed, "filmed", false, "matches are filmed")
	pitchAddCmd.Flags().StringVar(&pitchPrice, "price", "", "price range, e.g. €€")
	pitchAddCmd.Flags().StringVar(&pitchDescription, "description", "", "free text")
	pitchCmd.AddCommand(pitchAddCmd, pitchListCmd, pitchRemoveCmd)

	rootCmd.AddCommand(playerCmd, groupCmd, pitchCmd)
}
