package game

// Phase is the per-chat state machine position. A running game alternates
// between PhaseDay and PhaseNight; PhaseLobby accepts registrations.
type Phase string

const (
	PhaseLobby Phase = "lobby"
	PhaseNight Phase = "night"
	PhaseDay   Phase = "day"
	PhaseEnded Phase = "ended"
)

func (p Phase) Active() bool {
	return p == PhaseNight || p == PhaseDay
}
