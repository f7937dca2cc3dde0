package entity

import (
	"fmt"

	"gopkg.in/yaml.v3"
)

// Kind is the closed set of entity variants.
type Kind int

const (
	// KindUnknown is the zero value; templates must name a kind explicitly.
	KindUnknown Kind = iota
	KindPlayer
	KindEnemy
	// KindProp is a non-combat object such as a door or a weapon part.
	KindProp
)

// String returns the YAML name of the kind.
func (k Kind) String() string {
	switch k {
	case KindPlayer:
		return "player"
	case KindEnemy:
		return "enemy"
	case KindProp:
		return "prop"
	default:
		return "unknown"
	}
}

// Valid reports whether k is one of the declared kinds.
func (k Kind) Valid() bool {
	return k >= KindPlayer && k <= KindProp
}

// Combatant reports whether entities of this kind take part in combat.
func (k Kind) Combatant() bool {
	switch k {
	case KindPlayer, KindEnemy:
		return true
	default:
		return false
	}
}

// ParseKind maps a YAML name to a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "player":
		return KindPlayer, nil
	case "enemy":
		return KindEnemy, nil
	case "prop":
		return KindProp, nil
	default:
		return 0, fmt.Errorf("entity: unknown kind %q", s)
	}
}

// UnmarshalYAML decodes a kind from its string name.
func (k *Kind) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := ParseKind(s)
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
