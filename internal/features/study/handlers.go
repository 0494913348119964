// Package study — handlers.go обрабатывает команды и кнопки:
// !учеба (клавиатура категорий), !стрик (статус серии), !топ (рейтинг).
package study

import (
	"context"
	"fmt"
	"strings"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"studyriga.ru/telegram-bot/internal/common"
)

// Префикс callback-данных кнопок категорий.
const callbackPrefix = "study:"

// Handler обрабатывает команды учёта учёбы.
type Handler struct {
	service *Service
	bot     *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик команд учёбы.
func NewHandler(service *Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{service: service, bot: bot}
}

// HandleStudy обрабатывает команду !учеба — отправляет клавиатуру категорий.
// Каждая кнопка несёт callback-данные "study:<категория>".
func (h *Handler) HandleStudy(ctx context.Context, chatID int64) {
	var rows [][]tgbotapi.InlineKeyboardButton
	for _, category := range h.service.Categories() {
		rows = append(rows, tgbotapi.NewInlineKeyboardRow(
			tgbotapi.NewInlineKeyboardButtonData(category, callbackPrefix+category),
		))
	}

	msg := tgbotapi.NewMessage(chatID, "📚 Что сегодня изучаем? Выбери категорию:")
	msg.ReplyMarkup = tgbotapi.NewInlineKeyboardMarkup(rows...)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки клавиатуры категорий")
	}
}

// MatchesCallback сообщает, относится ли callback к кнопкам учёбы.
func MatchesCallback(data string) bool {
	return strings.HasPrefix(data, callbackPrefix)
}

// HandleStudyCallback обрабатывает нажатие кнопки категории:
// записывает событие учёбы и отвечает серией и начислением.
func (h *Handler) HandleStudyCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	// Telegram требует ответить на callback, иначе кнопка «крутится»
	defer func() {
		if _, err := h.bot.Request(tgbotapi.NewCallback(query.ID, "")); err != nil {
			log.WithError(err).Debug("Ошибка ответа на callback")
		}
	}()

	if query.Message == nil || query.From == nil {
		return
	}
	chatID := query.Message.Chat.ID
	category := strings.TrimPrefix(query.Data, callbackPrefix)
	displayName := displayNameOf(query.From)

	result, err := h.service.RecordStudy(ctx, query.From.ID, displayName, category, time.Now())
	if err != nil {
		if err == common.ErrUnknownCategory {
			h.sendMessage(chatID, "❌ Такой категории больше нет, вызови !учеба заново")
			return
		}
		log.WithError(err).WithField("user_id", query.From.ID).Error("Ошибка записи учёбы")
		h.sendMessage(chatID, "❌ Не удалось записать учёбу, попробуй ещё раз")
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("✅ %s записал учёбу: %s", displayName, category))
	if result.Streak > 1 {
		sb.WriteString(fmt.Sprintf("\n\n🔥 Уже %d %s подряд!", result.Streak, common.PluralizeDays(result.Streak)))
	}
	if result.Awarded > 0 {
		sb.WriteString(fmt.Sprintf("\n💰 %s за усердие", common.FormatRigaAmount(result.Awarded)))
	}
	h.sendMessage(chatID, sb.String())
}

// HandleStreak обрабатывает команду !стрик — показывает статус серии.
//
// Формат ответа:
//
//	🔥 Твоя серия: 8 дней
//	Последний учебный день: 14.01.2026
//	💰 Баланс: 12 риг
func (h *Handler) HandleStreak(ctx context.Context, chatID int64, userID int64) {
	stats, err := h.service.GetStats(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения статистики")
		h.sendMessage(chatID, "❌ Ошибка получения данных серии")
		return
	}
	if stats == nil || stats.LastStudyDate == nil {
		h.sendMessage(chatID, "📖 Ты ещё не записывал учёбу. Начни с !учеба")
		return
	}

	text := fmt.Sprintf(
		"🔥 Твоя серия: %d %s\nПоследний учебный день: %s\n💰 Баланс: %s",
		stats.CurrentStreak, common.PluralizeDays(stats.CurrentStreak),
		common.FormatDate(*stats.LastStudyDate),
		common.FormatBalance(stats.RigaBalance),
	)
	h.sendMessage(chatID, text)
}

// HandleRanking обрабатывает команду !топ — рейтинг по числу записей
// за настроенное окно (по умолчанию 30 дней, топ-10).
func (h *Handler) HandleRanking(ctx context.Context, chatID int64) {
	rows, err := h.service.Ranking(ctx, time.Now())
	if err != nil {
		log.WithError(err).Error("Ошибка получения рейтинга")
		h.sendMessage(chatID, "❌ Ошибка получения рейтинга")
		return
	}

	if len(rows) == 0 {
		h.sendMessage(chatID, "🏆 За последний месяц записей ещё нет")
		return
	}

	medals := map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}
	var sb strings.Builder
	sb.WriteString("🏆 Топ по учёбе за месяц:\n\n")
	for i, row := range rows {
		rank := medals[i+1]
		if rank == "" {
			rank = fmt.Sprintf("%d.", i+1)
		}
		sb.WriteString(fmt.Sprintf("%s %s — %d %s\n",
			rank, row.DisplayName, row.Count, common.PluralizeRecords(row.Count)))
	}
	h.sendMessage(chatID, sb.String())
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}

// displayNameOf — снимок имени для журнала: @username, иначе имя+фамилия.
func displayNameOf(u *tgbotapi.User) string {
	if u.UserName != "" {
		return "@" + u.UserName
	}
	name := u.FirstName
	if u.LastName != "" {
		name += " " + u.LastName
	}
	return name
}
