// Package economy — handlers.go обрабатывает команды:
// !рига (баланс), !отсыпать (перевод), !транзакции (история).
package economy

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"studyriga.ru/telegram-bot/internal/common"
	"studyriga.ru/telegram-bot/internal/features/members"
)

// Handler обрабатывает команды экономики.
type Handler struct {
	service       *Service
	memberService *members.Service // Для поиска получателя по @username
	bot           *tgbotapi.BotAPI
}

// NewHandler создаёт новый обработчик экономических команд.
func NewHandler(service *Service, memberService *members.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service:       service,
		memberService: memberService,
		bot:           bot,
	}
}

// HandleBalance обрабатывает команду !рига — показывает баланс.
//
// Формат ответа:
//
//	💰 Баланс: 150 риг
func (h *Handler) HandleBalance(ctx context.Context, chatID int64, userID int64) {
	balance, err := h.service.GetBalance(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения баланса")
		h.sendMessage(chatID, "❌ Ошибка получения баланса")
		return
	}

	h.sendMessage(chatID, fmt.Sprintf("💰 Баланс: %s", common.FormatBalance(balance)))
}

// HandleTransfer обрабатывает команду !отсыпать @username 100.
// Переводит указанную сумму от отправителя к получателю.
//
// Ответ при успехе:
//
//	✅ Переведено 100 риг @username
//	Твой баланс: 50 риг
func (h *Handler) HandleTransfer(ctx context.Context, chatID int64, fromUserID int64, args []string) {
	if len(args) < 2 {
		h.sendMessage(chatID, "❌ Формат: !отсыпать @username сумма")
		return
	}

	username := strings.TrimPrefix(args[0], "@")
	if username == "" {
		h.sendMessage(chatID, "❌ Укажите @username получателя")
		return
	}

	amount, err := strconv.ParseInt(args[1], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(chatID, "❌ Сумма должна быть положительным числом")
		return
	}

	recipient, err := h.memberService.GetByUsername(ctx, username)
	if err != nil {
		h.sendMessage(chatID, "❌ Пользователь не найден")
		return
	}

	err = h.service.Transfer(ctx, fromUserID, recipient.UserID, amount)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrSelfTransfer):
			h.sendMessage(chatID, "❌ Нельзя переводить ригу самому себе")
		case errors.Is(err, common.ErrInsufficientBalance):
			h.sendMessage(chatID, "❌ Недостаточно риг на счёте")
		case errors.Is(err, common.ErrInvalidAmount):
			h.sendMessage(chatID, "❌ Сумма должна быть положительной")
		default:
			log.WithError(err).Error("Ошибка перевода")
			h.sendMessage(chatID, "❌ Ошибка выполнения перевода")
		}
		return
	}

	newBalance, err := h.service.GetBalance(ctx, fromUserID)
	if err != nil {
		log.WithError(err).Warn("Перевод прошёл, но баланс не прочитался")
	}

	h.sendMessage(chatID, fmt.Sprintf("✅ Переведено %s @%s\nТвой баланс: %s",
		common.FormatBalance(amount), username, common.FormatBalance(newBalance)))
}

// HandleTransactions обрабатывает команду !транзакции — показывает историю.
func (h *Handler) HandleTransactions(ctx context.Context, chatID int64, userID int64) {
	history, err := h.service.GetTransactionHistory(ctx, userID)
	if err != nil {
		log.WithError(err).Error("Ошибка получения транзакций")
		h.sendMessage(chatID, "❌ Ошибка получения истории транзакций")
		return
	}

	// MarkdownV2 ради спойлеров; если не сработал — без форматирования
	msg := tgbotapi.NewMessage(chatID, history)
	msg.ParseMode = "MarkdownV2"
	if _, err := h.bot.Send(msg); err != nil {
		h.sendMessage(chatID, history)
	}
}

// sendMessage — вспомогательный метод для отправки текстовых сообщений.
func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
