package domain

// MembershipStatus is the upstream account tier for a player.
type MembershipStatus string

const (
	StatusBasic   MembershipStatus = "basic"
	StatusPremium MembershipStatus = "premium"
	StatusMod     MembershipStatus = "mod"
	StatusStaff   MembershipStatus = "staff"
)

// PlayerProfile is the account metadata for a single player. Only
// Username is guaranteed; every other field is best-effort and takes
// its documented default when the upstream source omits it.
type PlayerProfile struct {
	ID         string           `json:"@id,omitempty"`
	Avatar     *string          `json:"avatar,omitempty" validate:"omitempty,url"`
	Country    string           `json:"country,omitempty" validate:"omitempty,len=2,uppercase"`
	FideRating int              `json:"fide,omitempty" validate:"min=0,max=4000"`
	Followers  int              `json:"followers" validate:"min=0"`
	IsStreamer bool             `json:"is_streamer"`
	Joined     int64            `json:"joined" validate:"min=0"`
	LastOnline int64            `json:"last_online" validate:"min=0"`
	Location   string           `json:"location,omitempty"`
	Name       string           `json:"name,omitempty"`
	Title      string           `json:"title,omitempty"`
	PlayerID   int64            `json:"player_id" validate:"min=0"`
	Status     MembershipStatus `json:"status" validate:"omitempty,oneof=basic premium mod staff"`
	URL        string           `json:"url"`
	Username   string           `json:"username" validate:"required,min=1,max=50,handle"`
}

// ApplyDefaults substitutes documented defaults for fields the source
// payload omitted or nulled.
func (p *PlayerProfile) ApplyDefaults() {
	if p.Status == "" {
		p.Status = StatusBasic
	}
}

// PlaceholderProfile is the minimal profile substituted when a
// per-page hydration fetch fails: the real username, everything else
// at its default.
func PlaceholderProfile(username string) *PlayerProfile {
	return &PlayerProfile{
		Status:   StatusBasic,
		Username: username,
	}
}

// RatingSnapshot is a rating at a point in time.
type RatingSnapshot struct {
	Rating int   `json:"rating" validate:"min=0,max=4000"`
	Date   int64 `json:"date" validate:"min=0"`
}

// GameRecord is a win/loss/draw tally.
type GameRecord struct {
	Win  int `json:"win" validate:"min=0"`
	Loss int `json:"loss" validate:"min=0"`
	Draw int `json:"draw" validate:"min=0"`
}

// GameStats summarizes one time control. Every part is best-effort.
type GameStats struct {
	Last   *RatingSnapshot `json:"last,omitempty"`
	Best   *RatingSnapshot `json:"best,omitempty"`
	Record *GameRecord     `json:"record,omitempty"`
}

// PlayerStats holds per-time-control stats under the upstream key
// names.
type PlayerStats struct {
	Rapid    *GameStats `json:"chess_rapid,omitempty"`
	Blitz    *GameStats `json:"chess_blitz,omitempty"`
	Bullet   *GameStats `json:"chess_bullet,omitempty"`
	Daily    *GameStats `json:"chess_daily,omitempty"`
	Daily960 *GameStats `json:"chess960_daily,omitempty"`
	Tactics  *GameStats `json:"tactics,omitempty"`
}

// Controls maps time-control names to their stats, skipping absent
// ones. Iteration order follows the upstream naming.
func (s *PlayerStats) Controls() map[string]*GameStats {
	if s == nil {
		return nil
	}
	out := make(map[string]*GameStats, 6)
	for name, stats := range map[string]*GameStats{
		"chess_rapid":    s.Rapid,
		"chess_blitz":    s.Blitz,
		"chess_bullet":   s.Bullet,
		"chess_daily":    s.Daily,
		"chess960_daily": s.Daily960,
		"tactics":        s.Tactics,
	} {
		if stats != nil {
			out[name] = stats
		}
	}
	return out
}

// TitledResponse is the upstream directory listing.
type TitledResponse struct {
	Players []string `json:"players" validate:"dive,required,min=1,max=50,handle"`
}

// PlayerDataResponse aggregates the mandatory profile with optional
// stats.
type PlayerDataResponse struct {
	Profile *PlayerProfile `json:"profile"`
	Stats   *PlayerStats   `json:"stats,omitempty"`
}
