package store

import (
	"fmt"
	"time"
)

// Calendar tables share one shape; table names are constants, never input.
const (
	ignoredTable = "ignored_dates"
	holidayTable = "holidays"
)

func (s *Store) addDate(table string, d time.Time, label string) error {
	_, err := s.db.Exec(
		`INSERT INTO `+table+` (date, label) VALUES (?, ?) ON CONFLICT(date) DO UPDATE SET label = excluded.label`,
		d.Format("2006-01-02"), label,
	)
	if err != nil {
		return fmt.Errorf("add %s %s: %w", table, d.Format("2006-01-02"), err)
	}
	return nil
}

func (s *Store) removeDate(table string, d time.Time) error {
	_, err := s.db.Exec(`DELETE FROM `+table+` WHERE date = ?`, d.Format("2006-01-02"))
	if err != nil {
		return fmt.Errorf("remove %s %s: %w", table, d.Format("2006-01-02"), err)
	}
	return nil
}

func (s *Store) listDates(table string) ([]CalendarDate, error) {
	rows, err := s.db.Query(`SELECT date, label FROM ` + table + ` ORDER BY date`)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", table, err)
	}
	defer rows.Close()

	var out []CalendarDate
	for rows.Next() {
		var raw string
		var c CalendarDate
		if err := rows.Scan(&raw, &c.Label); err != nil {
			return nil, err
		}
		c.Date, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return nil, fmt.Errorf("parse %s %q: %w", table, raw, err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// AddIgnoredDate excludes a day from durations and progress.
func (s *Store) AddIgnoredDate(d time.Time, label string) error {
	return s.addDate(ignoredTable, d, label)
}

func (s *Store) RemoveIgnoredDate(d time.Time) error { return s.removeDate(ignoredTable, d) }

func (s *Store) ListIgnoredDates() ([]CalendarDate, error) { return s.listDates(ignoredTable) }

// AddHoliday highlights a day without excluding it.
func (s *Store) AddHoliday(d time.Time, label string) error {
	return s.addDate(holidayTable, d, label)
}

func (s *Store) RemoveHoliday(d time.Time) error { return s.removeDate(holidayTable, d) }

func (s *Store) ListHolidays() ([]CalendarDate, error) { return s.listDates(holidayTable) }

// Dates returns the days of a calendar list.
func Dates(list []CalendarDate) []time.Time {
	out := make([]time.Time, len(list))
	for i, c := range list {
		out[i] = c.Date
	}
	return out
}
