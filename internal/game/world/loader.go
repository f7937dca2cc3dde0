package world

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/verdict/internal/game/geom"
)

// yamlLevelFile is the top-level YAML structure for level files.
type yamlLevelFile struct {
	Level yamlLevel `yaml:"level"`
}

type yamlLevel struct {
	ID      string      `yaml:"id"`
	Name    string      `yaml:"name"`
	Next    string      `yaml:"next"`
	Player  yamlSpawn   `yaml:"player"`
	Enemies []yamlSpawn `yaml:"enemies"`
}

type yamlSpawn struct {
	Template    string  `yaml:"template"`
	Position    yamlVec `yaml:"position"`
	Yaw         float64 `yaml:"yaw"`
	LeashRadius float64 `yaml:"leash_radius"`
	// Count repeats the spawn; 0 means 1.
	Count int `yaml:"count"`
	// Spacing offsets each repeat along +X.
	Spacing float64 `yaml:"spacing"`
}

type yamlVec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
	Z float64 `yaml:"z"`
}

func (v yamlVec) vec() geom.Vec3 { return geom.Vec3{X: v.X, Y: v.Y, Z: v.Z} }

// LoadLevelFromFile reads and validates a single level YAML file.
//
// Precondition: path must point to a valid YAML level file.
// Postcondition: Returns a validated Level or a non-nil error.
func LoadLevelFromFile(path string) (*Level, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading level file %s: %w", path, err)
	}
	return LoadLevelFromBytes(data)
}

// LoadLevelFromBytes parses and validates a level from YAML bytes.
//
// Precondition: data must be valid YAML conforming to the level schema.
// Postcondition: Returns a validated Level or a non-nil error.
func LoadLevelFromBytes(data []byte) (*Level, error) {
	var file yamlLevelFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parsing level YAML: %w", err)
	}
	level, err := convertYAMLLevel(file.Level)
	if err != nil {
		return nil, err
	}
	if err := level.Validate(); err != nil {
		return nil, fmt.Errorf("validating level: %w", err)
	}
	return level, nil
}

// LoadLevelsFromDir loads all YAML files in a directory as levels.
//
// Precondition: dir must be a valid directory path.
// Postcondition: Returns all validated levels or the first error encountered.
func LoadLevelsFromDir(dir string) ([]*Level, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading level directory %s: %w", dir, err)
	}

	var levels []*Level
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !strings.HasSuffix(name, ".yaml") && !strings.HasSuffix(name, ".yml") {
			continue
		}
		level, err := LoadLevelFromFile(filepath.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("loading level from %s: %w", name, err)
		}
		levels = append(levels, level)
	}

	if len(levels) == 0 {
		return nil, fmt.Errorf("no level files found in %s", dir)
	}
	return levels, nil
}

// convertYAMLLevel converts the parsed YAML structures into domain types,
// expanding counted spawns.
func convertYAMLLevel(yl yamlLevel) (*Level, error) {
	level := &Level{
		ID:   yl.ID,
		Name: yl.Name,
		Next: yl.Next,
		Player: Spawn{
			Template: yl.Player.Template,
			Position: yl.Player.Position.vec(),
			Yaw:      yl.Player.Yaw,
		},
	}
	for i, ys := range yl.Enemies {
		if ys.Count < 0 {
			return nil, fmt.Errorf("level %q: enemy %d: count must be >= 0", yl.ID, i)
		}
		n := max(1, ys.Count)
		for j := 0; j < n; j++ {
			level.Enemies = append(level.Enemies, Spawn{
				Template:    ys.Template,
				Position:    ys.Position.vec().Add(geom.Vec3{X: ys.Spacing * float64(j)}),
				Yaw:         ys.Yaw,
				LeashRadius: ys.LeashRadius,
			})
		}
	}
	return level, nil
}
