package game

import (
	"context"
	"math/rand/v2"
	"sync"

	"github.com/clockworklab/mafiagram/internal/discord"
	"github.com/clockworklab/mafiagram/internal/repository"
	"github.com/clockworklab/mafiagram/internal/webhook"
)

func testRNG() *rand.Rand {
	return rand.New(rand.NewPCG(1, 2))
}

// fakeRepo is an in-memory repository used by every engine test.
type fakeRepo struct {
	mu         sync.Mutex
	players    []*repository.Player
	votes      []repository.Vote
	nextVoteID int64
	settings   map[string]*repository.Settings
	stats      map[string]*repository.StatsRow
	games      map[string]*repository.Game

	// ops records vote-table operations in the order the mutex admitted
	// them, so tests can check what interleaved with a round step.
	ops []string

	failures map[string]error
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		settings: make(map[string]*repository.Settings),
		stats:    make(map[string]*repository.StatsRow),
		games:    make(map[string]*repository.Game),
		failures: make(map[string]error),
	}
}

func (f *fakeRepo) fail(op string) error {
	return f.failures[op]
}

func (f *fakeRepo) addPlayer(chatID, actorID, username string, role repository.Role) *repository.Player {
	f.mu.Lock()
	defer f.mu.Unlock()
	p := &repository.Player{ActorID: actorID, ChatID: chatID, Username: username, Role: role}
	f.players = append(f.players, p)
	return p
}

func (f *fakeRepo) find(actorID, chatID string) *repository.Player {
	for _, p := range f.players {
		if p.ActorID == actorID && p.ChatID == chatID {
			return p
		}
	}
	return nil
}

func (f *fakeRepo) UpsertPlayer(_ context.Context, input repository.UpsertPlayerInput) error {
	if err := f.fail("UpsertPlayer"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.find(input.ActorID, input.ChatID); p != nil {
		p.Username = input.Username
		p.Voted = false
		p.AFKCount = 0
		return nil
	}
	f.players = append(f.players, &repository.Player{
		ActorID:  input.ActorID,
		ChatID:   input.ChatID,
		Username: input.Username,
		Role:     repository.RoleCitizen,
	})
	return nil
}

func (f *fakeRepo) CountPlayers(_ context.Context, chatID string) (int, error) {
	if err := f.fail("CountPlayers"); err != nil {
		return 0, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	count := 0
	for _, p := range f.players {
		if p.ChatID == chatID {
			count++
		}
	}
	return count, nil
}

func (f *fakeRepo) GetPlayer(_ context.Context, actorID, chatID string) (*repository.Player, error) {
	if err := f.fail("GetPlayer"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.find(actorID, chatID)
	if p == nil {
		return nil, nil
	}
	copied := *p
	return &copied, nil
}

func (f *fakeRepo) FindPlayerByName(_ context.Context, chatID, username string) (*repository.Player, error) {
	if err := f.fail("FindPlayerByName"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.ChatID == chatID && p.Username == username {
			copied := *p
			return &copied, nil
		}
	}
	return nil, nil
}

func (f *fakeRepo) ListPlayers(_ context.Context, chatID string) ([]repository.Player, error) {
	if err := f.fail("ListPlayers"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []repository.Player
	for _, p := range f.players {
		if p.ChatID == chatID {
			list = append(list, *p)
		}
	}
	return list, nil
}

func (f *fakeRepo) ListAliveNames(_ context.Context, chatID string) ([]string, error) {
	if err := f.fail("ListAliveNames"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var names []string
	for _, p := range f.players {
		if p.ChatID == chatID && !p.Dead {
			names = append(names, p.Username)
		}
	}
	return names, nil
}

func (f *fakeRepo) AssignRole(_ context.Context, actorID, chatID string, role repository.Role) error {
	if err := f.fail("AssignRole"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.find(actorID, chatID); p != nil {
		p.Role = role
		p.Dead = false
		p.Voted = false
		p.AFKCount = 0
	}
	return nil
}

func (f *fakeRepo) MarkDeadByName(_ context.Context, chatID, username string) error {
	if err := f.fail("MarkDeadByName"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.ChatID == chatID && p.Username == username {
			p.Dead = true
		}
	}
	return nil
}

func (f *fakeRepo) TryMarkVoted(_ context.Context, actorID, chatID string) (bool, error) {
	if err := f.fail("TryMarkVoted"); err != nil {
		return false, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p := f.find(actorID, chatID)
	if p == nil || p.Dead || p.Voted {
		return false, nil
	}
	p.Voted = true
	return true, nil
}

func (f *fakeRepo) ClearVoted(_ context.Context, actorID, chatID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.find(actorID, chatID); p != nil {
		p.Voted = false
	}
	return nil
}

func (f *fakeRepo) SetAFKCount(_ context.Context, actorID, chatID string, count int) error {
	if err := f.fail("SetAFKCount"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if p := f.find(actorID, chatID); p != nil {
		p.AFKCount = count
	}
	return nil
}

func (f *fakeRepo) ResetVotedFlags(_ context.Context, chatID string) error {
	if err := f.fail("ResetVotedFlags"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.ChatID == chatID {
			p.Voted = false
		}
	}
	return nil
}

func (f *fakeRepo) ResetPlayersForNewGame(_ context.Context, chatID string) error {
	if err := f.fail("ResetPlayersForNewGame"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, p := range f.players {
		if p.ChatID == chatID {
			p.Dead = false
			p.Voted = false
			p.AFKCount = 0
		}
	}
	return nil
}

func (f *fakeRepo) InsertVote(_ context.Context, input repository.InsertVoteInput) error {
	if err := f.fail("InsertVote"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "InsertVote")
	f.nextVoteID++
	f.votes = append(f.votes, repository.Vote{
		ID:         f.nextVoteID,
		Category:   input.Category,
		TargetName: input.TargetName,
		ActorID:    input.ActorID,
		ChatID:     input.ChatID,
	})
	return nil
}

func (f *fakeRepo) ListVotesByCategory(_ context.Context, chatID string, category repository.VoteCategory) ([]repository.Vote, error) {
	if err := f.fail("ListVotesByCategory"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "ListVotesByCategory")
	var list []repository.Vote
	for _, v := range f.votes {
		if v.ChatID == chatID && v.Category == category {
			list = append(list, v)
		}
	}
	return list, nil
}

func (f *fakeRepo) DeleteVotes(_ context.Context, chatID string) error {
	if err := f.fail("DeleteVotes"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ops = append(f.ops, "DeleteVotes")
	var kept []repository.Vote
	for _, v := range f.votes {
		if v.ChatID != chatID {
			kept = append(kept, v)
		}
	}
	f.votes = kept
	return nil
}

func (f *fakeRepo) GetSettings(_ context.Context, chatID string) (*repository.Settings, error) {
	if err := f.fail("GetSettings"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[chatID]
	if !ok {
		return nil, nil
	}
	copied := *s
	return &copied, nil
}

func (f *fakeRepo) UpsertSettings(_ context.Context, chatID string, timerSeconds, mafiaCount *int) error {
	if err := f.fail("UpsertSettings"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.settings[chatID]
	if !ok {
		s = &repository.Settings{ChatID: chatID, TimerSeconds: 30, MafiaCount: 1}
		f.settings[chatID] = s
	}
	if timerSeconds != nil {
		s.TimerSeconds = *timerSeconds
	}
	if mafiaCount != nil {
		s.MafiaCount = *mafiaCount
	}
	return nil
}

func (f *fakeRepo) AddGameResult(_ context.Context, actorID, username string, won bool) error {
	if err := f.fail("AddGameResult"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	row, ok := f.stats[actorID]
	if !ok {
		row = &repository.StatsRow{ActorID: actorID, Username: username}
		f.stats[actorID] = row
	}
	row.Games++
	if won {
		row.Wins++
	}
	return nil
}

func (f *fakeRepo) TopStats(_ context.Context, limit int) ([]repository.StatsRow, error) {
	if err := f.fail("TopStats"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var list []repository.StatsRow
	for _, row := range f.stats {
		list = append(list, *row)
	}
	if len(list) > limit {
		list = list[:limit]
	}
	return list, nil
}

func (f *fakeRepo) CreateGame(_ context.Context, input repository.CreateGameInput) error {
	if err := f.fail("CreateGame"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.games[input.ID] = &repository.Game{
		ID:        input.ID,
		ChatID:    input.ChatID,
		StartedAt: input.StartedAt,
		Status:    repository.GameStatusRunning,
	}
	return nil
}

func (f *fakeRepo) CompleteGame(_ context.Context, input repository.CompleteGameInput) error {
	if err := f.fail("CompleteGame"); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if g, ok := f.games[input.GameID]; ok {
		g.Status = repository.GameStatusCompleted
		g.EndedAt = &input.EndedAt
		g.Winner = input.Winner
	}
	return nil
}

func (f *fakeRepo) GetRunningGameByChat(_ context.Context, chatID string) (*repository.Game, error) {
	if err := f.fail("GetRunningGameByChat"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, g := range f.games {
		if g.ChatID == chatID && g.Status == repository.GameStatusRunning {
			copied := *g
			return &copied, nil
		}
	}
	return nil, nil
}

type sentButtons struct {
	recipient string
	content   string
	buttons   []discord.Button
}

type mockDiscordClient struct {
	mu             sync.Mutex
	channelSends   []string
	directSends    map[string][]string
	channelButtons []sentButtons
	directButtons  []sentButtons
	winnerEmbeds   []string
	dmErr          error
}

func newMockDiscordClient() *mockDiscordClient {
	return &mockDiscordClient{directSends: make(map[string][]string)}
}

func (m *mockDiscordClient) Connect(_ context.Context) error { return nil }
func (m *mockDiscordClient) Close() error                    { return nil }

func (m *mockDiscordClient) SendChannelMessage(_ string, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelSends = append(m.channelSends, content)
	return nil
}

func (m *mockDiscordClient) SendChannelButtons(channelID, content string, buttons []discord.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.channelButtons = append(m.channelButtons, sentButtons{recipient: channelID, content: content, buttons: buttons})
	return nil
}

func (m *mockDiscordClient) SendDirectMessage(userID, content string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dmErr != nil {
		return m.dmErr
	}
	m.directSends[userID] = append(m.directSends[userID], content)
	return nil
}

func (m *mockDiscordClient) SendDirectButtons(userID, content string, buttons []discord.Button) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.dmErr != nil {
		return m.dmErr
	}
	m.directButtons = append(m.directButtons, sentButtons{recipient: userID, content: content, buttons: buttons})
	return nil
}

func (m *mockDiscordClient) SendWinnerAnnouncement(_, title, _ string, _ int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.winnerEmbeds = append(m.winnerEmbeds, title)
	return nil
}

func (m *mockDiscordClient) RegisterSlashCommandHandler(_ func(discord.SlashCommandEvent)) {}
func (m *mockDiscordClient) RegisterComponentHandler(_ func(discord.ComponentEvent))      {}
func (m *mockDiscordClient) UpsertGuildSlashCommands(_ string, _ []discord.SlashCommandDefinition) error {
	return nil
}
func (m *mockDiscordClient) Run() error { return nil }

func (m *mockDiscordClient) lastChannelSend() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.channelSends) == 0 {
		return ""
	}
	return m.channelSends[len(m.channelSends)-1]
}

func (m *mockDiscordClient) hasChannelSend(content string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, s := range m.channelSends {
		if s == content {
			return true
		}
	}
	return false
}

type mockWebhookSender struct {
	mu       sync.Mutex
	payloads []webhook.GameResultPayload
}

func (m *mockWebhookSender) SendGameResult(_ context.Context, payload webhook.GameResultPayload) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.payloads = append(m.payloads, payload)
	return nil
}
