package content

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// monsterFile is the wrapped form of a monster list: {version, monsters}.
type monsterFile struct {
	Version  int       `yaml:"version"`
	Monsters []Monster `yaml:"monsters"`
}

// LoadBreedsFromBytes parses a list of breeds.
//
// Postcondition: Returns validated breeds or an error on the first violation.
func LoadBreedsFromBytes(data []byte) ([]Breed, error) {
	var breeds []Breed
	if err := yaml.Unmarshal(data, &breeds); err != nil {
		return nil, fmt.Errorf("parsing breeds: %w", err)
	}
	seen := make(map[int]bool, len(breeds))
	for _, b := range breeds {
		if err := b.Validate(); err != nil {
			return nil, err
		}
		if seen[b.ID] {
			return nil, fmt.Errorf("breed %d: duplicate id", b.ID)
		}
		seen[b.ID] = true
	}
	return breeds, nil
}

// LoadMonstersFromBytes parses monsters given either as a bare list or as a
// {version, monsters} document.
//
// Postcondition: Returns validated monsters or an error on the first violation.
func LoadMonstersFromBytes(data []byte) ([]Monster, error) {
	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, fmt.Errorf("parsing monsters: %w", err)
	}

	if len(root.Content) == 0 {
		return []Monster{}, nil
	}
	var monsters []Monster
	if root.Content[0].Kind == yaml.MappingNode {
		var f monsterFile
		if err := root.Decode(&f); err != nil {
			return nil, fmt.Errorf("decoding monsters: %w", err)
		}
		monsters = f.Monsters
	} else if err := root.Decode(&monsters); err != nil {
		return nil, fmt.Errorf("decoding monsters: %w", err)
	}

	seen := make(map[int]bool, len(monsters))
	for _, m := range monsters {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if seen[m.ID] {
			return nil, fmt.Errorf("monster %d: duplicate id", m.ID)
		}
		seen[m.ID] = true
	}
	return monsters, nil
}

// LoadDungeonsFromBytes parses a list of dungeons.
//
// Postcondition: Returns validated dungeons or an error on the first violation.
func LoadDungeonsFromBytes(data []byte) ([]Dungeon, error) {
	var dungeons []Dungeon
	if err := yaml.Unmarshal(data, &dungeons); err != nil {
		return nil, fmt.Errorf("parsing dungeons: %w", err)
	}
	seen := make(map[string]bool, len(dungeons))
	for _, d := range dungeons {
		if err := d.Validate(); err != nil {
			return nil, err
		}
		if seen[d.ID] {
			return nil, fmt.Errorf("dungeon %q: duplicate id", d.ID)
		}
		seen[d.ID] = true
	}
	return dungeons, nil
}

func loadFile[T any](path string, parse func([]byte) ([]T, error)) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %q: %w", path, err)
	}
	items, err := parse(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return items, nil
}

// LoadBreeds reads breeds from path.
func LoadBreeds(path string) ([]Breed, error) { return loadFile(path, LoadBreedsFromBytes) }

// LoadMonsters reads monsters from path.
func LoadMonsters(path string) ([]Monster, error) { return loadFile(path, LoadMonstersFromBytes) }

// LoadDungeons reads dungeons from path.
func LoadDungeons(path string) ([]Dungeon, error) { return loadFile(path, LoadDungeonsFromBytes) }
