// Package combat implements the single-enemy turn-based battle: the battle
// state, the player and enemy turn resolvers, and the victory level-up loop.
package combat

import (
	"fmt"
	"strings"
)

// PlayerCombatant is the player's transient combat copy of the user record.
//
// Invariant: 0 <= CurrentHP <= MaxHP; Level >= 1; Experience >= 0.
type PlayerCombatant struct {
	Name       string `json:"name"`
	Level      int    `json:"level"`
	Experience int    `json:"experience"`
	CurrentHP  int    `json:"current_hp"`
	MaxHP      int    `json:"max_hp"`
	Attack     int    `json:"attack"`
	Defense    int    `json:"defense"`
}

// IsDead reports whether the player has no hit points left.
func (p *PlayerCombatant) IsDead() bool { return p.CurrentHP <= 0 }

// ApplyDamage reduces CurrentHP by dmg, flooring at 0.
//
// Postcondition: CurrentHP == max(0, previous - dmg).
func (p *PlayerCombatant) ApplyDamage(dmg int) {
	p.CurrentHP = floorHP(p.CurrentHP, dmg)
}

// EnemyCombatant is the monster the player is fighting.
//
// Invariant: 0 <= CurrentHP <= MaxHP.
type EnemyCombatant struct {
	Name             string `json:"name"`
	CurrentHP        int    `json:"current_hp"`
	MaxHP            int    `json:"max_hp"`
	Attack           int    `json:"attack"`
	ExperienceReward int    `json:"experience_reward"`
	CoinReward       int    `json:"coin_reward"`
}

// IsDead reports whether the enemy has no hit points left.
func (e *EnemyCombatant) IsDead() bool { return e.CurrentHP <= 0 }

// ApplyDamage reduces CurrentHP by dmg, flooring at 0.
//
// Postcondition: CurrentHP == max(0, previous - dmg).
func (e *EnemyCombatant) ApplyDamage(dmg int) {
	e.CurrentHP = floorHP(e.CurrentHP, dmg)
}

func floorHP(hp, dmg int) int {
	if dmg < 0 {
		dmg = 0
	}
	hp -= dmg
	if hp < 0 {
		return 0
	}
	return hp
}

// Phase is the position of a battle in its turn cycle.
type Phase int

const (
	PhaseAwaitingPlayerCommand Phase = iota
	PhaseAwaitingEnemyTurn
	PhaseVictory
	PhaseDefeat
	PhaseFled
	PhaseDismissed
)

var phaseNames = map[Phase]string{
	PhaseAwaitingPlayerCommand: "awaiting_player_command",
	PhaseAwaitingEnemyTurn:     "awaiting_enemy_turn",
	PhaseVictory:               "victory",
	PhaseDefeat:                "defeat",
	PhaseFled:                  "fled",
	PhaseDismissed:             "dismissed",
}

func (p Phase) String() string {
	if s, ok := phaseNames[p]; ok {
		return s
	}
	return "unknown"
}

// Terminal reports whether p ends gameplay. Dismissed counts as terminal.
func (p Phase) Terminal() bool {
	return p >= PhaseVictory
}

// MarshalText encodes the phase by name.
func (p Phase) MarshalText() ([]byte, error) { return []byte(p.String()), nil }

// UnmarshalText decodes a phase name written by MarshalText.
func (p *Phase) UnmarshalText(text []byte) error {
	for k, v := range phaseNames {
		if v == string(text) {
			*p = k
			return nil
		}
	}
	return fmt.Errorf("unknown phase %q", text)
}

// Result is the terminal outcome of a battle.
type Result int

const (
	ResultNone Result = iota
	ResultVictory
	ResultDefeat
	ResultFled
)

func (r Result) String() string {
	switch r {
	case ResultVictory:
		return "victory"
	case ResultDefeat:
		return "defeat"
	case ResultFled:
		return "fled"
	default:
		return "none"
	}
}

// MarshalText encodes the result by name.
func (r Result) MarshalText() ([]byte, error) { return []byte(r.String()), nil }

// UnmarshalText decodes a result name written by MarshalText.
func (r *Result) UnmarshalText(text []byte) error {
	for _, c := range []Result{ResultNone, ResultVictory, ResultDefeat, ResultFled} {
		if c.String() == string(text) {
			*r = c
			return nil
		}
	}
	return fmt.Errorf("unknown result %q", text)
}

// CommandKind identifies a player command.
type CommandKind int

const (
	CommandUnknown CommandKind = iota
	CommandAttack
	CommandDefend
	CommandFlee
)

func (k CommandKind) String() string {
	switch k {
	case CommandAttack:
		return "attack"
	case CommandDefend:
		return "defend"
	case CommandFlee:
		return "flee"
	default:
		return "unknown"
	}
}

var commandAliases = map[string]CommandKind{
	"attack": CommandAttack,
	"a":      CommandAttack,
	"たたかう":   CommandAttack,
	"defend": CommandDefend,
	"d":      CommandDefend,
	"ぼうぎょ":   CommandDefend,
	"flee":   CommandFlee,
	"run":    CommandFlee,
	"f":      CommandFlee,
	"にげる":    CommandFlee,
}

// ParseCommand maps raw player input to a CommandKind. Matching ignores case
// and surrounding whitespace. Unrecognized input yields CommandUnknown.
func ParseCommand(input string) CommandKind {
	if k, ok := commandAliases[strings.ToLower(strings.TrimSpace(input))]; ok {
		return k
	}
	return CommandUnknown
}

// Commands lists the commands a player may issue, in menu order.
func Commands() []string {
	return []string{CommandAttack.String(), CommandDefend.String(), CommandFlee.String()}
}

// State is an immutable snapshot of a battle.
type State struct {
	Floor       int             `json:"floor"`
	DungeonName string          `json:"dungeon_name"`
	Player      PlayerCombatant `json:"player"`
	// Enemy is nil once the enemy has been defeated.
	Enemy     *EnemyCombatant `json:"enemy,omitempty"`
	Log       []string        `json:"log"`
	Phase     Phase           `json:"phase"`
	Result    Result          `json:"result"`
	Defending bool            `json:"defending"`
}

// PlayerTurn reports whether the battle is waiting on a player command.
func (s State) PlayerTurn() bool { return s.Phase == PhaseAwaitingPlayerCommand }

// clone returns a deep copy safe to hand to observers.
func (s State) clone() State {
	cp := s
	cp.Log = append([]string(nil), s.Log...)
	if s.Enemy != nil {
		e := *s.Enemy
		cp.Enemy = &e
	}
	return cp
}
