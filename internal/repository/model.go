package repository

import "time"

type Role string

const (
	RoleCitizen Role = "citizen"
	RoleMafia   Role = "mafia"
	RoleDoctor  Role = "doctor"
	RoleSheriff Role = "sheriff"
	RoleManiac  Role = "maniac"
)

// HasNightAction reports whether the role acts during the night phase.
// Citizens only vote during the day.
func (r Role) HasNightAction() bool {
	switch r {
	case RoleMafia, RoleDoctor, RoleSheriff, RoleManiac:
		return true
	default:
		return false
	}
}

type VoteCategory string

const (
	VoteCitizen VoteCategory = "citizen"
	VoteMafia   VoteCategory = "mafia"
	VoteDoctor  VoteCategory = "doctor"
	VoteSheriff VoteCategory = "sheriff"
	VoteManiac  VoteCategory = "maniac"
)

// RequiredRole returns the role a voter must hold to use the category.
// The citizen lynch vote is open to every living player.
func (c VoteCategory) RequiredRole() (Role, bool) {
	switch c {
	case VoteMafia:
		return RoleMafia, true
	case VoteDoctor:
		return RoleDoctor, true
	case VoteSheriff:
		return RoleSheriff, true
	case VoteManiac:
		return RoleManiac, true
	default:
		return "", false
	}
}

type Player struct {
	ActorID  string
	ChatID   string
	Username string
	Role     Role
	Dead     bool
	Voted    bool
	AFKCount int
}

type Vote struct {
	ID         int64
	Category   VoteCategory
	TargetName string
	ActorID    string
	ChatID     string
}

type Settings struct {
	ChatID       string
	TimerSeconds int
	MafiaCount   int
}

type GameStatus string

const (
	GameStatusRunning   GameStatus = "running"
	GameStatusCompleted GameStatus = "completed"
)

type Game struct {
	ID        string
	ChatID    string
	StartedAt time.Time
	EndedAt   *time.Time
	Status    GameStatus
	Winner    string
}

type StatsRow struct {
	ActorID  string
	Username string
	Games    int
	Wins     int
}
