package game

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/clockworklab/mafiagram/internal/config"
	"github.com/clockworklab/mafiagram/internal/discord"
	"github.com/clockworklab/mafiagram/internal/repository"
	"github.com/clockworklab/mafiagram/internal/webhook"
	"github.com/google/uuid"
)

const (
	defaultTimerSeconds = 30
	topStatsLimit       = 10

	winnerColorMafia  = 0x992D22
	winnerColorManiac = 0x71368A
	winnerColorTown   = 0x2ECC71
)

// Manager drives one state machine per chat: it owns the phase, the round
// timer and the order of resolution, AFK penalties, round reset and win
// evaluation. Vote casts and timer steps for the same chat are serialized
// through the per-session mutex, so a cast can never land after the step has
// begun consuming the round's votes.
type Manager struct {
	cfg      *config.Config
	repo     repository.Repository
	discord  discord.Client
	webhook  webhook.Sender
	assigner *RoleAssigner
	ledger   *VoteLedger
	resolver *Resolver
	afk      *AFKTracker
	win      *WinEvaluator
	autoplay AutoplayPolicy

	mu       sync.Mutex
	sessions map[string]*chatSession
}

type chatSession struct {
	mu        sync.Mutex
	chatID    string
	phase     Phase
	gameID    string
	startedAt time.Time
	timer     *time.Timer
}

func NewManager(cfg *config.Config, repo repository.Repository, dc discord.Client, wh webhook.Sender, assigner *RoleAssigner, ledger *VoteLedger, resolver *Resolver, afk *AFKTracker, win *WinEvaluator, autoplay AutoplayPolicy) *Manager {
	return &Manager{
		cfg:      cfg,
		repo:     repo,
		discord:  dc,
		webhook:  wh,
		assigner: assigner,
		ledger:   ledger,
		resolver: resolver,
		afk:      afk,
		win:      win,
		autoplay: autoplay,
		sessions: make(map[string]*chatSession),
	}
}

func (m *Manager) session(chatID string) *chatSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[chatID]
	if !ok {
		s = &chatSession{chatID: chatID, phase: PhaseLobby}
		m.sessions[chatID] = s
	}
	return s
}

func (m *Manager) HandleSlashCommand(ev discord.SlashCommandEvent) {
	if ev.GuildID != m.cfg.DiscordGuildID {
		slog.Info("ignoring slash command from different guild", "event_guild_id", ev.GuildID, "configured_guild_id", m.cfg.DiscordGuildID)
		return
	}
	switch ev.CommandName {
	case commandReg:
		m.handleRegister(ev)
	case commandGame:
		m.handleGameStart(ev)
	case commandStats:
		m.handleStats(ev)
	case commandConfig:
		m.handleConfig(ev)
	}
}

func (m *Manager) handleRegister(ev discord.SlashCommandEvent) {
	chatID := ev.ChannelID
	s := m.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.Active() {
		_ = ev.RespondEphemeral(messageRegClosed)
		return
	}

	ctx := context.Background()
	existing, err := m.repo.FindPlayerByName(ctx, chatID, ev.UserDisplayName)
	if err != nil {
		slog.Error("failed to check display name", "error", err, "chat_id", chatID, "actor_id", ev.UserID)
		_ = ev.RespondEphemeral(messageVoteFailed)
		return
	}
	// Name-keyed vote targets stay unambiguous only if two alive players
	// never share a display name.
	if existing != nil && existing.ActorID != ev.UserID {
		_ = ev.RespondEphemeral(messageNameTaken)
		return
	}

	if err := m.repo.UpsertPlayer(ctx, repository.UpsertPlayerInput{
		ActorID:  ev.UserID,
		Username: ev.UserDisplayName,
		ChatID:   chatID,
	}); err != nil {
		slog.Error("failed to register player", "error", err, "chat_id", chatID, "actor_id", ev.UserID)
		_ = ev.RespondEphemeral(messageVoteFailed)
		return
	}
	slog.Info("player registered", "chat_id", chatID, "actor_id", ev.UserID, "username", ev.UserDisplayName)
	_ = ev.RespondEphemeral(messageRegistered)
}

func (m *Manager) handleStats(ev discord.SlashCommandEvent) {
	rows, err := m.repo.TopStats(context.Background(), topStatsLimit)
	if err != nil {
		slog.Error("failed to load stats", "error", err, "chat_id", ev.ChannelID)
		_ = ev.RespondEphemeral(messageVoteFailed)
		return
	}
	_ = ev.RespondEphemeral(formatTopPlayers(rows))
}

func (m *Manager) handleConfig(ev discord.SlashCommandEvent) {
	chatID := ev.ChannelID
	var timerSeconds, mafiaCount *int
	if v, ok := ev.IntOptions[configOptionTimer]; ok {
		n := int(v)
		timerSeconds = &n
	}
	if v, ok := ev.IntOptions[configOptionMafia]; ok {
		n := int(v)
		mafiaCount = &n
	}
	if err := m.repo.UpsertSettings(context.Background(), chatID, timerSeconds, mafiaCount); err != nil {
		slog.Error("failed to update settings", "error", err, "chat_id", chatID)
		_ = ev.RespondEphemeral(messageVoteFailed)
		return
	}
	_ = ev.RespondEphemeral(settingsUpdatedMessage(timerSeconds, mafiaCount))
}

func (m *Manager) handleGameStart(ev discord.SlashCommandEvent) {
	chatID := ev.ChannelID
	if !ev.UserIsAdmin {
		_ = ev.RespondEphemeral(messageAdminOnly)
		return
	}
	s := m.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.phase.Active() {
		_ = ev.RespondEphemeral(messageGameAlreadyRuns)
		return
	}

	ctx := context.Background()
	if err := m.startGameLocked(ctx, s); err != nil {
		if errors.Is(err, errNoPlayers) {
			_ = ev.RespondEphemeral(messageNoPlayers)
			return
		}
		slog.Error("failed to start game", "error", err, "chat_id", chatID)
		_ = ev.RespondEphemeral(messageVoteFailed)
		return
	}
	_ = ev.RespondEphemeral(messageGameLaunched)
}

var errNoPlayers = errors.New("no registered players")

func (m *Manager) startGameLocked(ctx context.Context, s *chatSession) error {
	chatID := s.chatID

	// A running game row with no in-memory session is a leftover from a
	// previous process; close it and continue.
	if orphan, err := m.repo.GetRunningGameByChat(ctx, chatID); err != nil {
		return err
	} else if orphan != nil {
		slog.Warn("found orphan running game; closing and continuing", "game_id", orphan.ID, "chat_id", chatID)
		if err := m.repo.CompleteGame(ctx, repository.CompleteGameInput{GameID: orphan.ID, EndedAt: time.Now()}); err != nil {
			return err
		}
	}

	if err := m.repo.ResetPlayersForNewGame(ctx, chatID); err != nil {
		return err
	}
	if err := m.repo.DeleteVotes(ctx, chatID); err != nil {
		return err
	}

	count, err := m.repo.CountPlayers(ctx, chatID)
	if err != nil {
		return err
	}
	if m.cfg.AutoplayEnabled && count < m.cfg.MinPlayers {
		_ = m.discord.SendChannelMessage(chatID, messageAddingBots)
		if err := m.autoplay.FillLobby(ctx, chatID, count, m.cfg.MinPlayers); err != nil {
			return err
		}
		count, err = m.repo.CountPlayers(ctx, chatID)
		if err != nil {
			return err
		}
	}
	if count == 0 {
		return errNoPlayers
	}

	mafiaCount := DefaultMafiaCount(count)
	settings, err := m.repo.GetSettings(ctx, chatID)
	if err != nil {
		return err
	}
	if settings != nil && settings.MafiaCount > 0 {
		mafiaCount = settings.MafiaCount
	}
	if err := m.assigner.Assign(ctx, chatID, mafiaCount); err != nil {
		return err
	}

	gameID := uuid.NewString()
	startedAt := time.Now()
	if err := m.repo.CreateGame(ctx, repository.CreateGameInput{ID: gameID, ChatID: chatID, StartedAt: startedAt}); err != nil {
		return err
	}

	m.revealRoles(ctx, chatID)

	s.phase = PhaseDay // intro period is day-like; the first step flips to night
	s.gameID = gameID
	s.startedAt = startedAt
	slog.Info("game started", "chat_id", chatID, "game_id", gameID, "players", count, "mafia_count", mafiaCount)

	_ = m.discord.SendChannelMessage(chatID, gameStartedMessage(m.cfg.IntroSeconds))
	s.armTimer(time.Duration(m.cfg.IntroSeconds)*time.Second, func() { m.step(chatID) })
	return nil
}

// revealRoles DMs each real player their role; mafia also get their team
// list. A failed DM is logged and the hint posted to the chat, the game goes
// on and the silent player is penalized by the AFK tracker in due course.
func (m *Manager) revealRoles(ctx context.Context, chatID string) {
	players, err := m.repo.ListPlayers(ctx, chatID)
	if err != nil {
		slog.Error("failed to list players for role reveal", "error", err, "chat_id", chatID)
		return
	}
	var mafiaNames []string
	for _, p := range players {
		if p.Role == repository.RoleMafia {
			mafiaNames = append(mafiaNames, p.Username)
		}
	}
	for _, p := range players {
		if m.autoplay.IsSynthetic(p.ActorID) {
			continue
		}
		if err := m.discord.SendDirectMessage(p.ActorID, roleMessage(string(p.Role))); err != nil {
			slog.Warn("failed to DM role", "error", err, "chat_id", chatID, "actor_id", p.ActorID)
			_ = m.discord.SendChannelMessage(chatID, messageOpenDMHint)
			continue
		}
		if p.Role == repository.RoleMafia {
			_ = m.discord.SendDirectMessage(p.ActorID, mafiaTeamMessage(mafiaNames))
		}
	}
}

// step is the round boundary: resolve the concluded phase, penalize AFK
// players, clear the round's votes, check for a winner and either finish or
// flip the phase and re-arm the timer.
func (m *Manager) step(chatID string) {
	s := m.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.phase.Active() {
		return
	}

	ctx := context.Background()
	concluded := s.phase

	switch concluded {
	case PhaseDay:
		lynched, err := m.resolver.ResolveDay(ctx, chatID)
		if err != nil {
			slog.Error("day resolution failed; treating as no outcome", "error", err, "chat_id", chatID)
		} else {
			_ = m.discord.SendChannelMessage(chatID, lynchedMessage(lynched))
		}
	case PhaseNight:
		dead, err := m.resolver.ResolveNight(ctx, chatID)
		if err != nil {
			slog.Error("night resolution failed; treating as no outcome", "error", err, "chat_id", chatID)
		} else {
			_ = m.discord.SendChannelMessage(chatID, nightKilledMessage(dead))
		}
	}

	kicked, err := m.afk.Penalize(ctx, chatID, concluded)
	if err != nil {
		slog.Error("afk penalty pass failed", "error", err, "chat_id", chatID)
	}
	if len(kicked) > 0 {
		_ = m.discord.SendChannelMessage(chatID, afkKickedMessage(kicked))
	}

	if err := m.repo.ResetVotedFlags(ctx, chatID); err != nil {
		slog.Error("failed to reset voted flags", "error", err, "chat_id", chatID)
	}
	if err := m.repo.DeleteVotes(ctx, chatID); err != nil {
		slog.Error("failed to purge votes", "error", err, "chat_id", chatID)
	}

	winner, won, err := m.win.Evaluate(ctx, chatID)
	if err != nil {
		slog.Error("win evaluation failed; continuing round", "error", err, "chat_id", chatID)
	}
	if won {
		m.finishGameLocked(ctx, s, winner)
		return
	}

	if concluded == PhaseDay {
		s.phase = PhaseNight
	} else {
		s.phase = PhaseDay
	}

	aliveNames, err := m.repo.ListAliveNames(ctx, chatID)
	if err != nil {
		slog.Error("failed to list alive players", "error", err, "chat_id", chatID)
	}
	_ = m.discord.SendChannelMessage(chatID, aliveListMessage(aliveNames))

	timerSeconds := defaultTimerSeconds
	if settings, err := m.repo.GetSettings(ctx, chatID); err != nil {
		slog.Error("failed to load settings; using default timer", "error", err, "chat_id", chatID)
	} else if settings != nil && settings.TimerSeconds > 0 {
		timerSeconds = settings.TimerSeconds
	}

	if s.phase == PhaseNight {
		_ = m.discord.SendChannelMessage(chatID, messageNightFalls)
		m.runAutoplay(ctx, chatID, PhaseNight)
		m.promptNightActions(ctx, chatID, aliveNames)
	} else {
		_ = m.discord.SendChannelMessage(chatID, dayMessage(timerSeconds))
		if err := m.discord.SendChannelButtons(chatID, messageVotingOpen, m.voteButtons(repository.VoteCitizen, chatID, aliveNames, "")); err != nil {
			slog.Error("failed to post lynch keyboard", "error", err, "chat_id", chatID)
		}
		m.runAutoplay(ctx, chatID, PhaseDay)
	}

	s.armTimer(time.Duration(timerSeconds)*time.Second, func() { m.step(chatID) })
}

func (m *Manager) runAutoplay(ctx context.Context, chatID string, phase Phase) {
	if !m.cfg.AutoplayEnabled {
		return
	}
	if err := m.autoplay.Act(ctx, chatID, phase); err != nil {
		slog.Error("autoplay pass failed", "error", err, "chat_id", chatID, "phase", phase)
	}
}

func (m *Manager) promptNightActions(ctx context.Context, chatID string, aliveNames []string) {
	players, err := m.repo.ListPlayers(ctx, chatID)
	if err != nil {
		slog.Error("failed to list players for night prompts", "error", err, "chat_id", chatID)
		return
	}
	for _, p := range players {
		if p.Dead || !p.Role.HasNightAction() || m.autoplay.IsSynthetic(p.ActorID) {
			continue
		}
		exclude := p.Username
		if p.Role == repository.RoleDoctor {
			exclude = "" // the doctor may heal themselves
		}
		category, _ := nightCategory(p.Role)
		content := roleMessage(string(p.Role)) + ". " + nightPrompt(p.Role)
		if err := m.discord.SendDirectButtons(p.ActorID, content, m.voteButtons(category, chatID, aliveNames, exclude)); err != nil {
			slog.Warn("failed to DM night prompt", "error", err, "chat_id", chatID, "actor_id", p.ActorID)
		}
	}
}

func nightCategory(role repository.Role) (repository.VoteCategory, bool) {
	switch role {
	case repository.RoleMafia:
		return repository.VoteMafia, true
	case repository.RoleDoctor:
		return repository.VoteDoctor, true
	case repository.RoleSheriff:
		return repository.VoteSheriff, true
	case repository.RoleManiac:
		return repository.VoteManiac, true
	default:
		return "", false
	}
}

func (m *Manager) voteButtons(category repository.VoteCategory, chatID string, aliveNames []string, exclude string) []discord.Button {
	buttons := make([]discord.Button, 0, len(aliveNames))
	for _, name := range aliveNames {
		if name == exclude {
			continue
		}
		buttons = append(buttons, discord.Button{
			Label:    name,
			CustomID: voteCustomID(category, chatID, name),
		})
	}
	return buttons
}

func (m *Manager) finishGameLocked(ctx context.Context, s *chatSession, winner Faction) {
	chatID := s.chatID
	endedAt := time.Now()
	slog.Info("game finished", "chat_id", chatID, "game_id", s.gameID, "winner", winner)

	_ = m.discord.SendChannelMessage(chatID, gameOverMessage(winner))
	if err := m.discord.SendWinnerAnnouncement(chatID, factionTitle(winner), gameOverMessage(winner), winnerColor(winner)); err != nil {
		slog.Warn("failed to post winner announcement", "error", err, "chat_id", chatID)
	}

	players, err := m.repo.ListPlayers(ctx, chatID)
	if err != nil {
		slog.Error("failed to list players for stats attribution", "error", err, "chat_id", chatID)
	}
	for _, p := range players {
		if m.autoplay.IsSynthetic(p.ActorID) {
			continue
		}
		if err := m.repo.AddGameResult(ctx, p.ActorID, p.Username, winner.RoleWins(p.Role)); err != nil {
			slog.Error("failed to record stats", "error", err, "chat_id", chatID, "actor_id", p.ActorID)
		}
	}

	if s.gameID != "" {
		if err := m.repo.CompleteGame(ctx, repository.CompleteGameInput{
			GameID:  s.gameID,
			EndedAt: endedAt,
			Winner:  string(winner),
		}); err != nil {
			slog.Error("failed to complete game", "error", err, "chat_id", chatID, "game_id", s.gameID)
		}
		payload := buildGameResultPayload(s.gameID, chatID, winner, s.startedAt, endedAt, players)
		if err := m.webhook.SendGameResult(ctx, payload); err != nil {
			slog.Error("failed to send game result webhook", "error", err, "chat_id", chatID, "game_id", s.gameID)
		}
	}

	if err := m.repo.ResetPlayersForNewGame(ctx, chatID); err != nil {
		slog.Error("failed to reset players after game", "error", err, "chat_id", chatID)
	}

	s.phase = PhaseEnded
	s.gameID = ""
	s.stopTimer()
}

func winnerColor(f Faction) int {
	switch f {
	case FactionMafia:
		return winnerColorMafia
	case FactionManiac:
		return winnerColorManiac
	default:
		return winnerColorTown
	}
}

func (m *Manager) HandleComponent(ev discord.ComponentEvent) {
	if ev.GuildID != m.cfg.DiscordGuildID {
		slog.Info("ignoring component from different guild", "event_guild_id", ev.GuildID, "configured_guild_id", m.cfg.DiscordGuildID)
		return
	}
	category, chatID, target, ok := parseVoteCustomID(ev.CustomID)
	if !ok {
		return
	}
	m.castVote(ev, category, chatID, target)
}

func (m *Manager) castVote(ev discord.ComponentEvent, category repository.VoteCategory, chatID, target string) {
	s := m.session(chatID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.phase.Active() {
		_ = ev.RespondEphemeral(messageVoteRejected)
		return
	}

	ctx := context.Background()
	accepted, err := m.ledger.Cast(ctx, category, target, ev.UserID, chatID)
	if err != nil {
		slog.Error("vote cast failed", "error", err, "chat_id", chatID, "actor_id", ev.UserID, "category", category)
		_ = ev.RespondEphemeral(messageVoteFailed)
		return
	}
	if !accepted {
		_ = ev.RespondEphemeral(messageVoteRejected)
		return
	}
	_ = ev.RespondEphemeral(messageVoteAccepted)
	slog.Info("vote cast", "chat_id", chatID, "actor_id", ev.UserID, "category", category, "target", target)

	switch category {
	case repository.VoteCitizen:
		voter := ev.UserDisplayName
		if voter == "" {
			voter = ev.UserID
		}
		_ = m.discord.SendChannelMessage(chatID, citizenVoteEcho(voter, target))
	case repository.VoteSheriff:
		tp, err := m.repo.FindPlayerByName(ctx, chatID, target)
		if err != nil {
			slog.Error("failed to look up sheriff target", "error", err, "chat_id", chatID, "target", target)
			return
		}
		isMafia := tp != nil && tp.Role == repository.RoleMafia
		if err := m.discord.SendDirectMessage(ev.UserID, sheriffCheckMessage(target, isMafia)); err != nil {
			slog.Warn("failed to DM sheriff check result", "error", err, "chat_id", chatID, "actor_id", ev.UserID)
		}
	}
}

// armTimer and stopTimer require the session mutex to be held.
func (s *chatSession) armTimer(d time.Duration, fn func()) {
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(d, fn)
}

func (s *chatSession) stopTimer() {
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
}
