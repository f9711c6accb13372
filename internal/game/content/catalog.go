package content

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/cory-johannsen/catquest/internal/config"
	"github.com/cory-johannsen/catquest/internal/game/dice"
)

// ErrUnknownDungeon is returned for dungeon ids missing from the catalog.
var ErrUnknownDungeon = errors.New("unknown dungeon")

// Catalog is the read-only set of loaded definitions.
type Catalog struct {
	breeds   []Breed
	dungeons []Dungeon
	monsters []Monster
	byID     map[int]Monster
	logger   *zap.Logger
}

// NewCatalog builds a Catalog from already-parsed definitions.
//
// Precondition: logger must be non-nil.
func NewCatalog(breeds []Breed, dungeons []Dungeon, monsters []Monster, logger *zap.Logger) *Catalog {
	c := &Catalog{
		breeds:   breeds,
		dungeons: dungeons,
		monsters: monsters,
		byID:     make(map[int]Monster, len(monsters)),
		logger:   logger,
	}
	for _, m := range monsters {
		c.byID[m.ID] = m
	}
	return c
}

// LoadCatalog reads all content files named in cfg. A file that cannot be
// read or parsed is logged and contributes an empty list.
//
// Postcondition: Returns a non-nil Catalog.
func LoadCatalog(cfg config.ContentConfig, logger *zap.Logger) *Catalog {
	breeds, err := LoadBreeds(cfg.Breeds)
	if err != nil {
		logger.Error("loading breeds", zap.String("path", cfg.Breeds), zap.Error(err))
		breeds = []Breed{}
	}
	dungeons, err := LoadDungeons(cfg.Dungeons)
	if err != nil {
		logger.Error("loading dungeons", zap.String("path", cfg.Dungeons), zap.Error(err))
		dungeons = []Dungeon{}
	}
	monsters, err := LoadMonsters(cfg.Monsters)
	if err != nil {
		logger.Error("loading monsters", zap.String("path", cfg.Monsters), zap.Error(err))
		monsters = []Monster{}
	}
	logger.Info("content loaded",
		zap.Int("breeds", len(breeds)),
		zap.Int("dungeons", len(dungeons)),
		zap.Int("monsters", len(monsters)),
	)
	return NewCatalog(breeds, dungeons, monsters, logger)
}

// Breeds returns a copy of the breed list.
func (c *Catalog) Breeds() []Breed { return append([]Breed{}, c.breeds...) }

// Dungeons returns a copy of the dungeon list.
func (c *Catalog) Dungeons() []Dungeon { return append([]Dungeon{}, c.dungeons...) }

// Monsters returns a copy of the monster list.
func (c *Catalog) Monsters() []Monster { return append([]Monster{}, c.monsters...) }

// Monster looks up a monster by id.
func (c *Catalog) Monster(id int) (Monster, bool) {
	m, ok := c.byID[id]
	return m, ok
}

// Breed looks up a breed by name.
func (c *Catalog) Breed(name string) (Breed, bool) {
	for _, b := range c.breeds {
		if b.Name == name {
			return b, true
		}
	}
	return Breed{}, false
}

// Dungeon looks up a dungeon by id.
//
// Postcondition: Returns the dungeon or an error wrapping ErrUnknownDungeon.
func (c *Catalog) Dungeon(id string) (Dungeon, error) {
	for _, d := range c.dungeons {
		if d.ID == id {
			return d, nil
		}
	}
	return Dungeon{}, fmt.Errorf("dungeon %q: %w", id, ErrUnknownDungeon)
}

// Encounter is the dungeon and monster chosen for a new battle.
type Encounter struct {
	Dungeon Dungeon
	Floor   int
	Monster Monster
}

// Encounter picks the first-floor monster for dungeonID. Unknown ids fall back
// to the Mysterious Dungeon; dungeons without resolvable monsters spawn the Goblin.
//
// Postcondition: Always returns a usable Encounter; err wraps ErrUnknownDungeon
// when the fallback dungeon was used.
func (c *Catalog) Encounter(dungeonID string, src dice.Source) (Encounter, error) {
	d, err := c.Dungeon(dungeonID)
	if err != nil {
		c.logger.Warn("unknown dungeon, using fallback", zap.String("dungeon_id", dungeonID))
		return Encounter{Dungeon: MysteriousDungeon, Floor: 1, Monster: Goblin}, err
	}

	var pool []Monster
	for _, id := range d.Monsters {
		if m, ok := c.byID[id]; ok {
			pool = append(pool, m)
		} else {
			c.logger.Warn("dungeon references unknown monster",
				zap.String("dungeon_id", d.ID), zap.Int("monster_id", id))
		}
	}
	if len(pool) == 0 {
		return Encounter{Dungeon: d, Floor: 1, Monster: Goblin}, nil
	}
	roller := dice.NewLoggedRoller(src, c.logger)
	return Encounter{Dungeon: d, Floor: 1, Monster: pool[roller.Pick("encounter", len(pool))]}, nil
}

// At returns list[i] when i is in range. Out-of-range access is logged as a
// warning and reported with ok == false.
func At[T any](list []T, i int, logger *zap.Logger) (T, bool) {
	if i < 0 || i >= len(list) {
		var zero T
		logger.Warn("index out of range", zap.Int("index", i), zap.Int("len", len(list)))
		return zero, false
	}
	return list[i], true
}
