package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/adam-palmer1/calview/internal/appointment"
	"github.com/adam-palmer1/calview/internal/calendar"
	"github.com/adam-palmer1/calview/internal/config"
	appLog "github.com/adam-palmer1/calview/internal/log"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Print the laid-out appointments of a day and exit",
	Long: `List the appointments of a day (or, with --week, of its week) with the
column each one was placed in. --json adds the geometry of every block.`,
	RunE: runList,
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "print placements and geometry as JSON")
	rootCmd.AddCommand(listCmd)
}

type listedAppointment struct {
	ID       string    `json:"id"`
	Title    string    `json:"title"`
	Start    time.Time `json:"start"`
	End      time.Time `json:"end"`
	Location string    `json:"location,omitempty"`
	Source   string    `json:"source,omitempty"`
}

type listedPlacement struct {
	listedAppointment
	Column       int          `json:"column"`
	TotalColumns int          `json:"totalColumns"`
	Geometry     calendar.Box `json:"geometry"`
}

type listedDay struct {
	Date   string              `json:"date"`
	AllDay []listedAppointment `json:"allDay"`
	Timed  []listedPlacement   `json:"timed"`
}

func runList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	flush, err := appLog.Init(appLog.Options{Level: cfg.LogLevel, Path: cfg.LogFile})
	if err != nil {
		return fmt.Errorf("cannot open log file: %w", err)
	}
	defer flush()

	target, err := resolveDate(dateExpr, time.Now())
	if err != nil {
		return err
	}

	source, err := newSource(cfg)
	if err != nil {
		return err
	}

	days, err := layoutDays(source, cfg, target.Date, weekView)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if listJSON {
		return writeJSON(out, days, cfg)
	}
	writeText(out, days, cfg)
	return nil
}

// layoutDays reads the appointments of day, or of its week, and lays out
// each day on its own.
func layoutDays(source appointment.Source, cfg *config.Config, day time.Time, week bool) ([]calendar.Day, error) {
	from := calendar.StartOfDay(day)
	to := from.AddDate(0, 0, 1)
	if week {
		from = calendar.WeekStart(day, cfg.WeekStartDay)
		to = from.AddDate(0, 0, 7)
	}

	appts, err := source.Appointments(from, to)
	if err != nil {
		return nil, fmt.Errorf("error getting appointments: %w", err)
	}
	appLog.Debug("appointments read", "count", len(appts), "from", from, "to", to)

	if !week {
		return []calendar.Day{calendar.DayLayout(appts, day)}, nil
	}
	w := calendar.WeekLayout(appts, day, cfg.WeekStartDay)
	return w.Days[:], nil
}

func listed(a appointment.Appointment) listedAppointment {
	return listedAppointment{
		ID:       a.ID,
		Title:    a.Title,
		Start:    a.Start,
		End:      a.End,
		Location: a.Location,
		Source:   a.Source,
	}
}

func writeJSON(w io.Writer, days []calendar.Day, cfg *config.Config) error {
	metrics := calendar.Metrics{
		SlotHeight: float64(cfg.SlotHeight*60) / float64(cfg.TimeIncrement),
		Gutter:     cfg.Gutter,
	}

	out := make([]listedDay, 0, len(days))
	for _, d := range days {
		ld := listedDay{
			Date:   d.Date.Format("2006-01-02"),
			AllDay: []listedAppointment{},
			Timed:  []listedPlacement{},
		}
		for _, a := range d.AllDay {
			ld.AllDay = append(ld.AllDay, listed(a))
		}
		for _, p := range d.Timed {
			ld.Timed = append(ld.Timed, listedPlacement{
				listedAppointment: listed(p.Item.Appt),
				Column:            p.Column,
				TotalColumns:      p.TotalColumns,
				Geometry:          metrics.Geometry(p),
			})
		}
		out = append(out, ld)
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeText(w io.Writer, days []calendar.Day, cfg *config.Config) {
	for i, d := range days {
		if i > 0 {
			fmt.Fprintln(w)
		}
		fmt.Fprintf(w, "%s:\n", d.Date.Format(cfg.DateFormat))
		if len(d.AllDay) == 0 && len(d.Timed) == 0 {
			fmt.Fprintln(w, "  No appointments.")
			continue
		}

		for _, a := range d.AllDay {
			fmt.Fprintf(w, "  All day  %s\n", a.Title)
		}
		for _, p := range d.Timed {
			a := p.Item.Appt
			fmt.Fprintf(w, "  %s-%s  [%d/%d]  %s\n",
				a.Start.In(d.Date.Location()).Format(cfg.TimeFormat),
				a.End.In(d.Date.Location()).Format(cfg.TimeFormat),
				p.Column+1, p.TotalColumns, a.Title)
			if a.Location != "" {
				fmt.Fprintf(w, "    @ %s\n", a.Location)
			}
		}
	}
}
