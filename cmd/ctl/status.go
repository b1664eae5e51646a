package main

import (
	"fmt"
	"io"
	"slices"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"downtime-panel-bot/internal/models"
	"downtime-panel-bot/internal/status"
)

var (
	maintenanceColor = color.New(color.FgRed, color.Bold)
	upcomingColor    = color.New(color.FgYellow)
	onlineColor      = color.New(color.FgGreen)
	noneColor        = color.New(color.Faint)
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show every guild's downtime window and panels",
	RunE: func(cmd *cobra.Command, args []string) error {
		persister, err := openBackend(cmd.Context())
		if err != nil {
			return err
		}
		defer persister.Close()

		snap, err := persister.Load(cmd.Context())
		if err != nil {
			return err
		}
		renderStatus(cmd.OutOrStdout(), snap, time.Now())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func stateColor(s status.State) *color.Color {
	switch s {
	case status.InMaintenance:
		return maintenanceColor
	case status.Upcoming:
		return upcomingColor
	case status.Online:
		return onlineColor
	default:
		return noneColor
	}
}

// renderStatus prints one block per guild that has a window or a panel.
func renderStatus(w io.Writer, snap *models.Snapshot, now time.Time) {
	panelCount := make(map[int64]int)
	eventCount := make(map[int64]int)
	guilds := make([]int64, 0, len(snap.Downtime))
	for id := range snap.Downtime {
		guilds = append(guilds, id)
	}
	for _, p := range snap.Panels {
		panelCount[p.GuildID]++
		guilds = append(guilds, p.GuildID)
	}
	for _, p := range snap.EventPanels {
		eventCount[p.GuildID]++
		guilds = append(guilds, p.GuildID)
	}
	slices.Sort(guilds)
	guilds = slices.Compact(guilds)

	if len(guilds) == 0 {
		fmt.Fprintln(w, "No guilds in state.")
		return
	}

	for _, id := range guilds {
		p := status.Project(snap.Downtime[id], now, status.PlainStyle{})
		fmt.Fprintf(w, "%d  %s\n", id, stateColor(p.State).Sprint(p.State.String()))
		if p.State != status.NoSchedule {
			fmt.Fprintf(w, "    %s\n", p.Title)
			fmt.Fprintf(w, "    %s  →  %s\n", status.PlainStyle{}.Absolute(p.Start), status.PlainStyle{}.Absolute(p.End))
		}
		if p.Remaining > 0 {
			fmt.Fprintf(w, "    back online in %s\n", status.FormatRemaining(p.Remaining))
		}
		fmt.Fprintf(w, "    panels: %d  event panels: %d\n", panelCount[id], eventCount[id])
	}
}
