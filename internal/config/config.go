// Package config loads the YAML settings file and turns it into chart
// options.
package config

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/sadopc/ganttr/internal/dates"
	"github.com/sadopc/ganttr/internal/gantt"
)

// Config mirrors config.yaml. Zero values fall back to the chart defaults.
type Config struct {
	ViewMode        string   `yaml:"view_mode"`        // one of Hour, Quarter Day, Half Day, Day, Week, Month, Year
	Language        string   `yaml:"language"`         // BCP 47 tag for date labels
	Timezone        string   `yaml:"timezone"`         // IANA zone; empty means UTC
	ColumnWidth     float64  `yaml:"column_width"`     // overrides the view mode's column width
	BarHeight       float64  `yaml:"bar_height"`
	BarCornerRadius float64  `yaml:"bar_corner_radius"`
	Padding         float64  `yaml:"padding"`
	ArrowCurve      float64  `yaml:"arrow_curve"`
	SnapAt          string   `yaml:"snap_at"`      // e.g. "1d", "6h"
	DatePadding     string   `yaml:"date_padding"` // e.g. "7d"
	MoveDeps        *bool    `yaml:"move_dependencies"`
	Readonly        bool     `yaml:"readonly"`
	ReadonlyDates   bool     `yaml:"readonly_dates"`
	ReadonlyProg    bool     `yaml:"readonly_progress"`
	InfinitePadding bool     `yaml:"infinite_padding"`
	ExtendByUnits   int      `yaml:"extend_by_units"`
	InclusiveEnd    bool     `yaml:"inclusive_end"`
	Ignore          []string `yaml:"ignore"`   // "weekend" or dates
	Holidays        []string `yaml:"holidays"` // highlighted only
	PopupOn         string   `yaml:"popup_on"` // click or hover
	HoverDelay      string   `yaml:"hover_delay"`
	CellsPerColumn  int      `yaml:"cells_per_column"` // terminal cells per chart column
	DBPath          string   `yaml:"db_path"`
}

// Default returns the configuration used when no file exists.
func Default() Config {
	return Config{
		ViewMode:       "Day",
		Ignore:         []string{"weekend"},
		PopupOn:        string(gantt.PopupOnClick),
		CellsPerColumn: 3,
	}
}

// DefaultPath returns ~/.config/ganttr/config.yaml
func DefaultPath() (string, error) {
	cfg, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cfg, "ganttr", "config.yaml"), nil
}

// Load reads path. An empty path loads the default location, where a
// missing file yields the defaults.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if !explicit && errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML over the defaults.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if cfg.CellsPerColumn <= 0 {
		cfg.CellsPerColumn = Default().CellsPerColumn
	}
	return cfg, nil
}

func configErr(field, value string, err error) error {
	return &gantt.ConfigurationError{Field: field, Value: value, Err: err}
}

// Location resolves the timezone.
func (c Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, configErr("timezone", c.Timezone, err)
	}
	return loc, nil
}

// Options converts the file into chart options. Unparsable values are
// reported as *gantt.ConfigurationError.
func (c Config) Options() (gantt.Options, error) {
	o := gantt.DefaultOptions()

	if c.ViewMode != "" {
		mode, err := gantt.ResolveViewMode(c.ViewMode, gantt.DefaultViewModes())
		if err != nil {
			return o, err
		}
		o.ViewMode = mode.Name
	}
	tag, err := dates.ParseLanguage(c.Language)
	if err != nil {
		return o, configErr("language", c.Language, err)
	}
	o.Language = tag
	if o.Location, err = c.Location(); err != nil {
		return o, err
	}

	for field, v := range map[string]string{"snap_at": c.SnapAt, "date_padding": c.DatePadding} {
		if v == "" {
			continue
		}
		if _, err := dates.ParseDuration(v); err != nil {
			return o, configErr(field, v, err)
		}
	}
	o.SnapAt = c.SnapAt
	o.DatePadding = c.DatePadding

	o.ColumnWidth = c.ColumnWidth
	if c.BarHeight > 0 {
		o.BarHeight = c.BarHeight
	}
	if c.BarCornerRadius > 0 {
		o.BarCornerRadius = c.BarCornerRadius
	}
	if c.Padding > 0 {
		o.Padding = c.Padding
	}
	if c.ArrowCurve > 0 {
		o.ArrowCurve = c.ArrowCurve
	}
	if c.MoveDeps != nil {
		o.MoveDependencies = *c.MoveDeps
	}
	o.Readonly = c.Readonly
	o.ReadonlyDates = c.ReadonlyDates
	o.ReadonlyProgress = c.ReadonlyProg
	o.InfinitePadding = c.InfinitePadding
	if c.ExtendByUnits > 0 {
		o.ExtendByUnits = c.ExtendByUnits
	}
	o.InclusiveEnd = c.InclusiveEnd

	for _, s := range c.Ignore {
		switch strings.ToLower(strings.TrimSpace(s)) {
		case "weekend", "weekends":
			o.Ignore.Weekends = true
		default:
			d, err := dates.Parse(s, o.Location)
			if err != nil {
				return o, configErr("ignore", s, err)
			}
			o.Ignore.Dates = append(o.Ignore.Dates, d)
		}
	}
	for _, s := range c.Holidays {
		d, err := dates.Parse(s, o.Location)
		if err != nil {
			return o, configErr("holidays", s, err)
		}
		o.Holidays = append(o.Holidays, d)
	}

	switch gantt.PopupMode(strings.ToLower(c.PopupOn)) {
	case "", gantt.PopupOnClick:
		o.PopupOn = gantt.PopupOnClick
	case gantt.PopupOnHover:
		o.PopupOn = gantt.PopupOnHover
	default:
		return o, configErr("popup_on", c.PopupOn, errors.New("want click or hover"))
	}
	if c.HoverDelay != "" {
		d, err := time.ParseDuration(c.HoverDelay)
		if err != nil || d <= 0 {
			if err == nil {
				err = errors.New("must be positive")
			}
			return o, configErr("hover_delay", c.HoverDelay, err)
		}
		o.HoverDelay = d
	}
	o.Logger = log.Default()
	return o, nil
}

// Write encodes c as YAML.
func (c Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return enc.Close()
}
