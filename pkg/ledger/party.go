package ledger

// PartyType discriminates the affected-party tagged union.
type PartyType int

const (
	PartyPlayer PartyType = iota
	PartyClub
	PartyAgent
	PartyPlatform
)

func (t PartyType) String() string {
	switch t {
	case PartyPlayer:
		return "player"
	case PartyClub:
		return "club"
	case PartyAgent:
		return "agent"
	case PartyPlatform:
		return "platform"
	default:
		return "unknown"
	}
}

// AffectedParty is the tagged union `{Player(player_id) | Club(club_id) |
// Agent(agent_id) | Platform(platform_id)}`. Fields are unexported so a value
// can only be built through the constructors below, which keep the type/id
// pair consistent; reconstruct a stringly-typed partyType only at an external
// boundary (e.g. serialising for a caller).
type AffectedParty struct {
	partyType PartyType
	id        string
}

func PlayerParty(id string) AffectedParty   { return AffectedParty{PartyPlayer, id} }
func ClubParty(id string) AffectedParty     { return AffectedParty{PartyClub, id} }
func AgentParty(id string) AffectedParty    { return AffectedParty{PartyAgent, id} }
func PlatformParty(id string) AffectedParty { return AffectedParty{PartyPlatform, id} }

func (p AffectedParty) Type() PartyType { return p.partyType }
func (p AffectedParty) ID() string      { return p.id }

// IsPlayer, IsClub, IsAgent, IsPlatform let callers branch without comparing
// PartyType constants directly.
func (p AffectedParty) IsPlayer() bool   { return p.partyType == PartyPlayer }
func (p AffectedParty) IsClub() bool     { return p.partyType == PartyClub }
func (p AffectedParty) IsAgent() bool    { return p.partyType == PartyAgent }
func (p AffectedParty) IsPlatform() bool { return p.partyType == PartyPlatform }

// Key renders the party as "<party_type>:<id>", the grouping key used by the
// per-party running balance (I1) and several view aggregations.
func (p AffectedParty) Key() string { return p.partyType.String() + ":" + p.id }

// NewAffectedParty reconstructs a party from its rendered type string and id,
// the inverse of PartyType.String()/Key() — used by adapters that round-trip
// entries through external storage.
func NewAffectedParty(partyType, id string) (AffectedParty, error) {
	switch partyType {
	case "player":
		return PlayerParty(id), nil
	case "club":
		return ClubParty(id), nil
	case "agent":
		return AgentParty(id), nil
	case "platform":
		return PlatformParty(id), nil
	default:
		return AffectedParty{}, ErrUnknownPartyType
	}
}

func (p AffectedParty) canonical() map[string]any {
	return map[string]any{
		"partyType": p.partyType.String(),
		"id":        p.id,
	}
}
