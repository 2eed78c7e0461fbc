package game

import (
	"fmt"
	"strings"

	"github.com/vancomm/peachsweeper/internal/board"
)

type Phase int

const (
	Idle Phase = iota
	Playing
	Won
	Lost
)

var phaseNames = [...]string{
	Idle:    "idle",
	Playing: "playing",
	Won:     "won",
	Lost:    "lost",
}

func (p Phase) Over() bool {
	return p == Won || p == Lost
}

func (p Phase) String() string {
	if p < 0 || int(p) >= len(phaseNames) {
		return fmt.Sprintf("Phase(%d)", int(p))
	}
	return phaseNames[p]
}

// [Phase] implements [encoding.TextMarshaler]
func (p Phase) MarshalText() ([]byte, error) {
	return []byte(p.String()), nil
}

func (p *Phase) UnmarshalText(text []byte) error {
	for i, name := range phaseNames {
		if strings.EqualFold(name, string(text)) {
			*p = Phase(i)
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

type Difficulty struct {
	Name  string `json:"name" yaml:"name"`
	Rows  int    `json:"rows" yaml:"rows"`
	Cols  int    `json:"cols" yaml:"cols"`
	Mines int    `json:"mines" yaml:"mines"`
}

func (d Difficulty) Validate() error {
	if err := board.ValidateParams(d.Rows, d.Cols, d.Mines); err != nil {
		return fmt.Errorf("difficulty %q (%dx%d, %d mines): %w",
			d.Name, d.Rows, d.Cols, d.Mines, err)
	}
	return nil
}
