package games

import (
	"fmt"
	"strings"
)

// Role identifies a role a player can hold.
type Role int

// Roles in catalog order. RoleRatMafia only appears as a runtime mutation of a bound Rat.
const (
	RoleNone Role = iota
	RoleBoss
	RoleDoctor
	RoleCourtesan
	RoleMafia
	RoleAvenger
	RoleImmortal
	RoleRat
	RoleCommissioner
	RoleDuke
	RoleBanshee
	RoleManiac
	RoleMonk
	RoleSeer
	RoleCivilian
	RoleRatMafia
)

// Alignment is the side a role wins with.
type Alignment int

const (
	AlignmentPeace Alignment = iota
	AlignmentMafia
	AlignmentNeutralKiller
)

func (a Alignment) String() string {
	switch a {
	case AlignmentMafia:
		return "mafia"
	case AlignmentNeutralKiller:
		return "neutral_killer"
	default:
		return "peace"
	}
}

// Cardinality is how many copies of a role a distribution may contain.
type Cardinality int

const (
	CardinalityFixedOne   Cardinality = iota // exactly one
	CardinalityOptional                      // zero or one
	CardinalityAtLeastOne                    // one or more
	CardinalityUnbounded                     // any number
	CardinalityDerived                       // never selectable
)

func (c Cardinality) String() string {
	switch c {
	case CardinalityFixedOne:
		return "exactly_one"
	case CardinalityOptional:
		return "optional"
	case CardinalityAtLeastOne:
		return "at_least_one"
	case CardinalityUnbounded:
		return "any"
	default:
		return "derived"
	}
}

type roleInfo struct {
	key         string
	name        string
	short       string
	alignment   Alignment
	cardinality Cardinality
}

var roleTable = map[Role]roleInfo{
	RoleBoss:         {"boss", "Mafia Boss", "Boss", AlignmentMafia, CardinalityFixedOne},
	RoleDoctor:       {"doctor", "Doctor", "Doctor", AlignmentPeace, CardinalityFixedOne},
	RoleCourtesan:    {"courtesan", "Courtesan", "Court", AlignmentPeace, CardinalityFixedOne},
	RoleMafia:        {"mafia", "Mafia", "Mafia", AlignmentMafia, CardinalityAtLeastOne},
	RoleAvenger:      {"avenger", "Avenger", "Avenger", AlignmentPeace, CardinalityOptional},
	RoleImmortal:     {"immortal", "Immortal", "Immort", AlignmentPeace, CardinalityOptional},
	RoleRat:          {"rat", "Rat", "Rat", AlignmentPeace, CardinalityOptional},
	RoleCommissioner: {"commissioner", "Commissioner", "Comm", AlignmentPeace, CardinalityOptional},
	RoleDuke:         {"duke", "Duke", "Duke", AlignmentPeace, CardinalityOptional},
	RoleBanshee:      {"banshee", "Banshee", "Banshee", AlignmentPeace, CardinalityOptional},
	RoleManiac:       {"maniac", "Maniac", "Maniac", AlignmentNeutralKiller, CardinalityOptional},
	RoleMonk:         {"monk", "Monk", "Monk", AlignmentPeace, CardinalityOptional},
	RoleSeer:         {"seer", "Seer", "Seer", AlignmentPeace, CardinalityOptional},
	RoleCivilian:     {"civilian", "Civilian", "Civil", AlignmentPeace, CardinalityUnbounded},
	RoleRatMafia:     {"rat_mafia", "Mafia (Rat)", "Mafia(Rat)", AlignmentMafia, CardinalityDerived},
}

// SelectableRoles lists the roles a host can put into a distribution, in display order.
var SelectableRoles = []Role{
	RoleBoss, RoleDoctor, RoleCourtesan, RoleMafia,
	RoleAvenger, RoleImmortal, RoleRat, RoleCommissioner,
	RoleDuke, RoleBanshee, RoleManiac, RoleMonk,
	RoleSeer, RoleCivilian,
}

// ParseRole resolves a role key such as "boss" or "rat_mafia".
func ParseRole(s string) (Role, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for r, info := range roleTable {
		if info.key == key {
			return r, nil
		}
	}
	return RoleNone, fmt.Errorf("%w: unknown role %q", ErrNotFound, s)
}

func (r Role) String() string {
	if info, ok := roleTable[r]; ok {
		return info.key
	}
	return ""
}

// DisplayName is the human readable role name used in the narrated log.
func (r Role) DisplayName() string {
	if info, ok := roleTable[r]; ok {
		return info.name
	}
	return "unknown"
}

// ShortName is the compact label used in role lists.
func (r Role) ShortName() string {
	if info, ok := roleTable[r]; ok {
		return info.short
	}
	return "?"
}

func (r Role) Alignment() Alignment { return roleTable[r].alignment }

func (r Role) Cardinality() Cardinality { return roleTable[r].cardinality }

// IsMafia reports whether the role is mafia-aligned (Boss, Mafia, transformed Rat).
func (r Role) IsMafia() bool {
	return r != RoleNone && roleTable[r].alignment == AlignmentMafia
}

// IsPeace reports whether the role is bound and neither mafia-aligned nor the neutral killer.
func (r Role) IsPeace() bool {
	return r != RoleNone && roleTable[r].alignment == AlignmentPeace
}

// IsNeutralKiller reports whether the role is the Maniac.
func (r Role) IsNeutralKiller() bool {
	return r != RoleNone && roleTable[r].alignment == AlignmentNeutralKiller
}

// MarshalText encodes the role as its key so Role works as a JSON value and map key.
func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// UnmarshalText decodes a role key; the empty string is RoleNone.
func (r *Role) UnmarshalText(b []byte) error {
	if len(b) == 0 {
		*r = RoleNone
		return nil
	}
	parsed, err := ParseRole(string(b))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}

// RoleCounts maps a role to the number of seats it occupies.
type RoleCounts map[Role]int

// DefaultRoleCounts is the distribution a new match starts with.
func DefaultRoleCounts() RoleCounts {
	return RoleCounts{
		RoleBoss:         1,
		RoleMafia:        2,
		RoleDoctor:       1,
		RoleCourtesan:    1,
		RoleCommissioner: 1,
		RoleCivilian:     4,
	}
}

// Total returns the number of seats in the distribution.
func (c RoleCounts) Total() int {
	n := 0
	for _, v := range c {
		n += v
	}
	return n
}

// Clone copies the distribution.
func (c RoleCounts) Clone() RoleCounts {
	if c == nil {
		return nil
	}
	out := make(RoleCounts, len(c))
	for k, v := range c {
		out[k] = v
	}
	return out
}

// checkRoleCount validates a single role's count against its cardinality class.
func checkRoleCount(r Role, n int) error {
	info, ok := roleTable[r]
	if !ok {
		return fmt.Errorf("%w: unknown role", ErrNotFound)
	}
	if n < 0 {
		return fmt.Errorf("%w: count for %s cannot be negative", ErrValidation, info.name)
	}
	switch info.cardinality {
	case CardinalityDerived:
		if n != 0 {
			return fmt.Errorf("%w: %s cannot be selected", ErrValidation, info.name)
		}
	case CardinalityFixedOne, CardinalityOptional:
		if n > 1 {
			return fmt.Errorf("%w: at most one %s allowed, got %d", ErrValidation, info.name, n)
		}
	}
	return nil
}

// ValidateStart checks a role distribution against a roster size. It returns nil
// when the match may start, otherwise an ErrValidation naming the first violated rule.
func ValidateStart(counts RoleCounts, playerCount int) error {
	if playerCount < 1 {
		return fmt.Errorf("%w: at least one player is required", ErrValidation)
	}
	for _, r := range append(append([]Role{}, SelectableRoles...), RoleRatMafia) {
		if err := checkRoleCount(r, counts[r]); err != nil {
			return err
		}
		switch r.Cardinality() {
		case CardinalityFixedOne:
			if counts[r] != 1 {
				return fmt.Errorf("%w: exactly one %s is required, got %d", ErrValidation, r.DisplayName(), counts[r])
			}
		case CardinalityAtLeastOne:
			if counts[r] < 1 {
				return fmt.Errorf("%w: at least one %s is required", ErrValidation, r.DisplayName())
			}
		}
	}
	for r := range counts {
		if _, ok := roleTable[r]; !ok {
			return fmt.Errorf("%w: unknown role in distribution", ErrValidation)
		}
	}
	if total := counts.Total(); total != playerCount {
		return fmt.Errorf("%w: role count (%d) does not match player count (%d)", ErrValidation, total, playerCount)
	}
	return nil
}

// CommissionerAnswer reports whether the Commissioner is told the role is mafia.
// The base Rat always reads as not mafia, even though it may later turn.
func CommissionerAnswer(r Role) bool {
	if r == RoleRat {
		return false
	}
	return r.IsMafia()
}
