package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vancomm/peachsweeper/internal/game"
)

const (
	MaxRows = 100
	MaxCols = 100
)

var ErrUnknownDifficulty = errors.New("unknown difficulty")

type Difficulties struct {
	presets []game.Difficulty
}

func defaultPresets() []game.Difficulty {
	return []game.Difficulty{
		{Name: "beginner", Rows: 9, Cols: 9, Mines: 10},
		{Name: "intermediate", Rows: 16, Cols: 16, Mines: 40},
		{Name: "expert", Rows: 16, Cols: 30, Mines: 99},
	}
}

func DefaultDifficulties() *Difficulties {
	return &Difficulties{presets: defaultPresets()}
}

// NewDifficulties returns the built-in presets, replaced or extended by the
// entries of the YAML file named by DIFFICULTIES_FILE:
//
//	difficulties:
//	  - name: expert
//	    rows: 20
//	    cols: 40
//	    mines: 160
func NewDifficulties() (*Difficulties, error) {
	d := DefaultDifficulties()

	path, ok := os.LookupEnv("DIFFICULTIES_FILE")
	if !ok {
		return d, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("unable to read difficulties file: %w", err)
	}
	if err := d.merge(data); err != nil {
		return nil, fmt.Errorf("unable to load %s: %w", path, err)
	}

	return d, nil
}

func (d *Difficulties) merge(data []byte) error {
	var file struct {
		Difficulties []game.Difficulty `yaml:"difficulties"`
	}
	if err := yaml.Unmarshal(data, &file); err != nil {
		return err
	}
	for _, preset := range file.Difficulties {
		preset.Name = strings.ToLower(strings.TrimSpace(preset.Name))
		if preset.Name == "" {
			return fmt.Errorf("difficulty without a name")
		}
		if err := ValidateDifficulty(preset); err != nil {
			return err
		}
		i := slices.IndexFunc(d.presets, func(p game.Difficulty) bool {
			return p.Name == preset.Name
		})
		if i >= 0 {
			d.presets[i] = preset
		} else {
			d.presets = append(d.presets, preset)
		}
	}
	return nil
}

func (d Difficulties) List() []game.Difficulty {
	return slices.Clone(d.presets)
}

func (d Difficulties) Lookup(name string) (game.Difficulty, error) {
	name = strings.ToLower(name)
	for _, p := range d.presets {
		if p.Name == name {
			return p, nil
		}
	}
	return game.Difficulty{}, fmt.Errorf("%w: %q", ErrUnknownDifficulty, name)
}

// ValidateDifficulty checks the board parameters and the size limits the
// server accepts.
func ValidateDifficulty(d game.Difficulty) error {
	if err := d.Validate(); err != nil {
		return err
	}
	if d.Rows > MaxRows || d.Cols > MaxCols {
		return fmt.Errorf("difficulty %q exceeds %dx%d", d.Name, MaxRows, MaxCols)
	}
	return nil
}
