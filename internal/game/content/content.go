// Package content loads the static game definitions: cat breeds, dungeons,
// and monsters. Files may be JSON or YAML; both are parsed with yaml.v3.
package content

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/game/combat"
)

// Breed is a selectable cat breed. The chosen breed names the player in battle.
type Breed struct {
	ID    int    `yaml:"id" json:"id"`
	Name  string `yaml:"name" json:"name"`
	Image string `yaml:"imageName" json:"image"`
}

// Validate checks that the breed has an id and a name.
//
// Postcondition: Returns nil iff ID >= 1 and Name is non-empty.
func (b Breed) Validate() error {
	if b.ID < 1 {
		return fmt.Errorf("breed %q: id must be >= 1", b.Name)
	}
	if b.Name == "" {
		return fmt.Errorf("breed %d: name must not be empty", b.ID)
	}
	return nil
}

// Monster is an enemy definition.
type Monster struct {
	ID          int    `yaml:"id" json:"id"`
	Name        string `yaml:"name" json:"name"`
	Type        string `yaml:"type" json:"type"`
	Image       string `yaml:"imageResName" json:"image"`
	HP          int    `yaml:"hp" json:"hp"`
	Attack      int    `yaml:"attack" json:"attack"`
	Defense     int    `yaml:"defense" json:"defense"`
	Experience  int    `yaml:"experience" json:"experience"`
	Gold        int    `yaml:"gold" json:"gold"`
	Description string `yaml:"description" json:"description"`
}

// Validate checks monster invariants.
//
// Postcondition: Returns nil iff ID >= 1, Name is non-empty, HP >= 1, and
// Attack, Defense, Experience, Gold are all >= 0.
func (m Monster) Validate() error {
	if m.ID < 1 {
		return fmt.Errorf("monster %q: id must be >= 1", m.Name)
	}
	if m.Name == "" {
		return fmt.Errorf("monster %d: name must not be empty", m.ID)
	}
	if m.HP < 1 {
		return fmt.Errorf("monster %d: hp must be >= 1", m.ID)
	}
	if m.Attack < 0 || m.Defense < 0 || m.Experience < 0 || m.Gold < 0 {
		return fmt.Errorf("monster %d: attack, defense, experience and gold must be >= 0", m.ID)
	}
	return nil
}

// Combatant returns a fresh, full-health enemy for a battle.
func (m Monster) Combatant() combat.EnemyCombatant {
	return combat.EnemyCombatant{
		Name:             m.Name,
		CurrentHP:        m.HP,
		MaxHP:            m.HP,
		Attack:           m.Attack,
		ExperienceReward: m.Experience,
		CoinReward:       m.Gold,
	}
}

// Dungeon is a selectable dungeon and the monsters it spawns.
type Dungeon struct {
	ID       string `yaml:"id" json:"id"`
	Name     string `yaml:"name" json:"name"`
	Image    string `yaml:"image" json:"image"`
	Floors   int    `yaml:"floors" json:"floors"`
	Monsters []int  `yaml:"monsters" json:"monsters"`
}

// Validate checks dungeon invariants.
//
// Postcondition: Returns nil iff ID and Name are non-empty and Floors >= 1.
func (d Dungeon) Validate() error {
	if d.ID == "" {
		return fmt.Errorf("dungeon: id must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("dungeon %q: name must not be empty", d.ID)
	}
	if d.Floors < 1 {
		return fmt.Errorf("dungeon %q: floors must be >= 1", d.ID)
	}
	return nil
}

// Goblin is the stock enemy used when a dungeon has nothing else to offer.
var Goblin = Monster{
	ID:          1,
	Name:        "Goblin",
	Type:        "goblin",
	Image:       "goblin",
	HP:          40,
	Attack:      8,
	Defense:     2,
	Experience:  10,
	Gold:        5,
	Description: "A small, grumpy cave dweller.",
}

// MysteriousDungeon is the fallback for unknown dungeon ids.
var MysteriousDungeon = Dungeon{
	ID:     "mysterious",
	Name:   "Mysterious Dungeon",
	Floors: 1,
}

// ErrMonsterNotFound is returned by MonsterStore.Get for unknown ids.
var ErrMonsterNotFound = errors.New("monster not found")

// MonsterStore persists monster definitions.
type MonsterStore interface {
	// UpsertAll inserts or replaces every monster in one transaction.
	UpsertAll(ctx context.Context, monsters []Monster) error
	// List returns all monsters ordered by id.
	List(ctx context.Context) ([]Monster, error)
	// Get returns the monster with id, or ErrMonsterNotFound.
	Get(ctx context.Context, id int) (Monster, error)
}

// SyncMonsters writes the catalog's monsters to store.
//
// Postcondition: store holds every catalog monster; an empty catalog writes nothing.
func SyncMonsters(ctx context.Context, c *Catalog, store MonsterStore) error {
	if len(c.monsters) == 0 {
		c.logger.Warn("no monsters to sync")
		return nil
	}
	if err := store.UpsertAll(ctx, c.monsters); err != nil {
		return fmt.Errorf("syncing monsters: %w", err)
	}
	c.logger.Info("monsters synced", zap.Int("count", len(c.monsters)))
	return nil
}
