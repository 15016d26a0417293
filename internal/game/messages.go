package game

import (
	"fmt"
	"strings"

	"github.com/clockworklab/mafiagram/internal/repository"
)

const (
	slashCommandRegDescription    = "Регистрация в лобби игры «Мафия»."
	slashCommandGameDescription   = "Начать игру (только для администратора)."
	slashCommandStatsDescription  = "Топ игроков по победам."
	slashCommandConfigDescription = "Настройки игры: таймер раунда и число мафии."

	messageRegistered        = "Вы в игре!"
	messageRegClosed         = "Игра уже идёт! Нельзя зарегистрироваться."
	messageNameTaken         = "Это имя уже занято другим игроком."
	messageGameAlreadyRuns   = "Игра уже идет!"
	messageAdminOnly         = "Только админ может запустить игру!"
	messageAddingBots        = "Добавляю ботов..."
	messageNightFalls        = "Город засыпает. Наступила ночь!"
	messageVotingOpen        = "Голосование!"
	messageNoOne             = "Никого"
	messageVoteAccepted      = "Голос принят!"
	messageVoteRejected      = "Нельзя голосовать (вы мертвы/нет прав/уже голосовали)"
	messageVoteFailed        = "Ошибка"
	messageOpenDMHint        = "Откройте ЛС с ботом для получения роли!"
	messageNoPlayers         = "Нет зарегистрированных игроков."
	messageGameLaunched      = "Игра запущена."
	messageSettingsUnchanged = "Без изм."

	promptMafia   = "Кого убить?"
	promptDoctor  = "Кого лечить?"
	promptSheriff = "Кого проверить?"
	promptManiac  = "Кого убить?"

	factionTitleMafia  = "Мафия"
	factionTitleManiac = "Маньяк"
	factionTitleTown   = "Горожане"
)

func gameStartedMessage(introSeconds int) string {
	return fmt.Sprintf("Игра началась! %d сек на знакомство...", introSeconds)
}

func dayMessage(timerSeconds int) string {
	return fmt.Sprintf("День! Обсуждение %d сек. Голосуйте!", timerSeconds)
}

func lynchedMessage(name string) string {
	if name == "" {
		name = messageNoOne
	}
	return fmt.Sprintf("Горожане выгнали: %s", name)
}

func nightKilledMessage(names []string) string {
	killed := messageNoOne
	if len(names) > 0 {
		killed = strings.Join(names, ", ")
	}
	return fmt.Sprintf("Этой ночью убиты: %s", killed)
}

func afkKickedMessage(names []string) string {
	return fmt.Sprintf("Выгнаны за АФК: %s", strings.Join(names, ", "))
}

func aliveListMessage(names []string) string {
	alive := "никого"
	if len(names) > 0 {
		alive = strings.Join(names, "\n")
	}
	return fmt.Sprintf("В игре:\n%s", alive)
}

func roleMessage(role string) string {
	return fmt.Sprintf("Ваша роль: %s", role)
}

func mafiaTeamMessage(names []string) string {
	return fmt.Sprintf("Мафия:\n%s", strings.Join(names, "\n"))
}

func sheriffCheckMessage(target string, isMafia bool) string {
	verdict := "Не мафия"
	if isMafia {
		verdict = "МАФИЯ"
	}
	return fmt.Sprintf("Проверка %s: %s", target, verdict)
}

func citizenVoteEcho(voter, target string) string {
	return fmt.Sprintf("%s проголосовал против %s", voter, target)
}

func gameOverMessage(faction Faction) string {
	return fmt.Sprintf("Игра окончена: победили %s", factionTitle(faction))
}

func settingsUpdatedMessage(timerSeconds, mafiaCount *int) string {
	timer := messageSettingsUnchanged
	if timerSeconds != nil {
		timer = fmt.Sprintf("%d", *timerSeconds)
	}
	mafia := messageSettingsUnchanged
	if mafiaCount != nil {
		mafia = fmt.Sprintf("%d", *mafiaCount)
	}
	return fmt.Sprintf("Настройки обновлены: Таймер=%s, Мафия=%s", timer, mafia)
}

func factionTitle(f Faction) string {
	switch f {
	case FactionMafia:
		return factionTitleMafia
	case FactionManiac:
		return factionTitleManiac
	default:
		return factionTitleTown
	}
}

func nightPrompt(role repository.Role) string {
	switch role {
	case repository.RoleMafia:
		return promptMafia
	case repository.RoleDoctor:
		return promptDoctor
	case repository.RoleSheriff:
		return promptSheriff
	case repository.RoleManiac:
		return promptManiac
	default:
		return ""
	}
}
