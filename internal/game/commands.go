package game

import (
	"strings"

	"github.com/clockworklab/mafiagram/internal/discord"
	"github.com/clockworklab/mafiagram/internal/repository"
)

const (
	commandReg    = "reg"
	commandGame   = "game"
	commandStats  = "stats"
	commandConfig = "config"

	configOptionTimer = "timer"
	configOptionMafia = "mafia"
)

func SlashCommandDefinitions() []discord.SlashCommandDefinition {
	return []discord.SlashCommandDefinition{
		{Name: commandReg, Description: slashCommandRegDescription},
		{Name: commandGame, Description: slashCommandGameDescription},
		{Name: commandStats, Description: slashCommandStatsDescription},
		{
			Name:        commandConfig,
			Description: slashCommandConfigDescription,
			IntOptions: []discord.SlashCommandOptionDefinition{
				{Name: configOptionTimer, Description: "Секунды на раунд"},
				{Name: configOptionMafia, Description: "Количество мафии"},
			},
		},
	}
}

const voteCustomIDPrefix = "vote"

// voteCustomID encodes a vote button: vote|<category>|<chatID>|<target>.
// Discord caps custom ids at 100 characters, long enough for a display name.
func voteCustomID(category repository.VoteCategory, chatID, target string) string {
	return strings.Join([]string{voteCustomIDPrefix, string(category), chatID, target}, "|")
}

func parseVoteCustomID(customID string) (category repository.VoteCategory, chatID, target string, ok bool) {
	parts := strings.SplitN(customID, "|", 4)
	if len(parts) != 4 || parts[0] != voteCustomIDPrefix || parts[1] == "" || parts[2] == "" || parts[3] == "" {
		return "", "", "", false
	}
	return repository.VoteCategory(parts[1]), parts[2], parts[3], true
}
