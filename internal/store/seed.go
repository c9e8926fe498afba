package store

import (
	"fmt"
	"time"

	"github.com/sadopc/ganttr/internal/dates"
)

// SeedDemo fills an empty store with a small project plan starting on the
// Monday of today's week. It reports whether anything was written.
func (s *Store) SeedDemo(today time.Time) (bool, error) {
	n, err := s.CountTasks()
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}

	day := time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	monday := day.AddDate(0, 0, -((int(day.Weekday()) + 6) % 7))
	at := func(offset int) string { return dates.Canonical(monday.AddDate(0, 0, offset)) }

	tasks := []Task{
		{ID: "research", Name: "Research", Start: at(0), End: at(4), Progress: 100},
		{ID: "design", Name: "Design", Start: at(4), Duration: "5d", Progress: 60, Dependencies: []string{"research"}},
		{ID: "api", Name: "Build API", Start: at(9), Duration: "2w", Progress: 20, Dependencies: []string{"design"}},
		{ID: "ui", Name: "Build UI", Start: at(11), Duration: "10d", Dependencies: []string{"design"}},
		{ID: "qa", Name: "Testing", Start: at(23), Duration: "1w", Dependencies: []string{"api", "ui"}},
		{ID: "launch", Name: "Launch", Start: at(30), Duration: "1d", Dependencies: []string{"qa"}, CustomClass: "milestone"},
	}
	if err := s.ImportTasks(tasks); err != nil {
		return false, fmt.Errorf("seed demo: %w", err)
	}
	if err := s.AddHoliday(monday.AddDate(0, 0, 16), "Company offsite"); err != nil {
		return false, fmt.Errorf("seed demo: %w", err)
	}
	return true, nil
}
