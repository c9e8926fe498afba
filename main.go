package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/sadopc/ganttr/internal/config"
	"github.com/sadopc/ganttr/internal/dates"
	"github.com/sadopc/ganttr/internal/export"
	"github.com/sadopc/ganttr/internal/gantt"
	"github.com/sadopc/ganttr/internal/store"
	"github.com/sadopc/ganttr/internal/tui"
)

var exporters = map[string]func(*gantt.Chart, string) error{
	".csv":  export.ToCSV,
	".json": export.ToJSON,
	".svg":  export.ToSVG,
}

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "config file (default ~/.config/ganttr/config.yaml)")
	dbFlag := flag.String("db", "", "database file (default ~/.config/ganttr/ganttr.db)")
	importPath := flag.String("import", "", "import tasks and holidays from a YAML file")
	exportPath := flag.String("export", "", "write the chart to a .csv, .json or .svg file and exit")
	viewMode := flag.String("view", "", "initial view mode")
	writeConfig := flag.Bool("write-config", false, "print the effective config and exit")
	flag.Parse()

	if os.Getenv("GANTTR_DEBUG") != "" {
		f, err := tea.LogToFile("ganttr.log", "ganttr")
		if err != nil {
			return err
		}
		defer f.Close()
	} else {
		log.SetOutput(io.Discard)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *writeConfig {
		return cfg.Write(os.Stdout)
	}

	dbPath := *dbFlag
	if dbPath == "" {
		dbPath = cfg.DBPath
	}
	if dbPath == "" {
		if dbPath, err = store.DefaultDBPath(); err != nil {
			return err
		}
	}
	s, err := store.New(dbPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer s.Close()

	opts, err := cfg.Options()
	if err != nil {
		return err
	}

	if *importPath != "" {
		if err := importFile(s, *importPath, opts.Location); err != nil {
			return err
		}
	} else if _, err := s.SeedDemo(time.Now()); err != nil {
		return fmt.Errorf("seed: %w", err)
	}

	// The flag wins over the last view used, which wins over the config.
	switch {
	case *viewMode != "":
		opts.ViewMode = *viewMode
	default:
		if v, err := s.GetSetting("view_mode"); err == nil && v != "" {
			opts.ViewMode = v
		}
	}
	opts.MoveDependencies = s.GetBoolSetting("move_dependencies", opts.MoveDependencies)

	if *exportPath != "" {
		return exportFile(s, opts, *exportPath)
	}

	app, err := tui.NewApp(s, tui.Options{Chart: opts, CellsPerColumn: cfg.CellsPerColumn})
	if err != nil {
		return err
	}
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithMouseAllMotion())
	_, err = p.Run()
	return err
}

func importFile(s *store.Store, path string, loc *time.Location) error {
	f, err := config.LoadTasks(path)
	if err != nil {
		return err
	}
	rows := make([]store.Task, 0, len(f.Tasks))
	for _, t := range f.ChartTasks() {
		rows = append(rows, store.FromChartTask(t))
	}
	if err := s.ImportTasks(rows); err != nil {
		return fmt.Errorf("import: %w", err)
	}
	for _, h := range f.Holidays {
		d, err := dates.Parse(h, loc)
		if err != nil {
			return fmt.Errorf("import holiday %q: %w", h, err)
		}
		if err := s.AddHoliday(d, ""); err != nil {
			return err
		}
	}
	return nil
}

// exportFile builds a chart from the store and writes it in the format
// named by the file extension.
func exportFile(s *store.Store, opts gantt.Options, path string) error {
	write, ok := exporters[strings.ToLower(filepath.Ext(path))]
	if !ok {
		return fmt.Errorf("export %s: unknown format, want .csv, .json or .svg", path)
	}
	rows, err := s.ListTasks()
	if err != nil {
		return err
	}
	tasks := make([]gantt.Task, len(rows))
	for i, r := range rows {
		tasks[i] = r.ChartTask()
	}
	ignored, err := s.ListIgnoredDates()
	if err != nil {
		return err
	}
	holidays, err := s.ListHolidays()
	if err != nil {
		return err
	}
	opts.Ignore.Dates = append(opts.Ignore.Dates, store.Dates(ignored)...)
	opts.Holidays = append(opts.Holidays, store.Dates(holidays)...)

	c, err := gantt.New(tasks, opts)
	if err != nil {
		return err
	}
	if err := write(c, path); err != nil {
		return err
	}
	fmt.Printf("Exported %d tasks to %s\n", len(c.Tasks()), path)
	return nil
}
