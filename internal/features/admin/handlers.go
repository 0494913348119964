// Package admin — handlers.go обрабатывает взаимодействие с админ-панелью.
// Панель работает через Reply Keyboard в личных сообщениях.
// Поток: аутентификация → клавиатура → выбор действия → ввод "@username сумма".
package admin

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"studyriga.ru/telegram-bot/internal/common"
	"studyriga.ru/telegram-bot/internal/features/economy"
	"studyriga.ru/telegram-bot/internal/features/members"
)

// Кнопки клавиатуры админ-панели.
const (
	btnGiveRiga = "Выдать ригу"
	btnTakeRiga = "Забрать ригу"
	btnLogout   = "Выйти"
)

// Handler обрабатывает админ-команды.
type Handler struct {
	service        *Service
	memberService  *members.Service
	economyService *economy.Service
	bot            *tgbotapi.BotAPI
}

// NewHandler создаёт обработчик админ-панели.
func NewHandler(service *Service, memberService *members.Service, economyService *economy.Service, bot *tgbotapi.BotAPI) *Handler {
	return &Handler{
		service:        service,
		memberService:  memberService,
		economyService: economyService,
		bot:            bot,
	}
}

// HandleLogin обрабатывает команду /login в личных сообщениях.
func (h *Handler) HandleLogin(ctx context.Context, chatID int64, userID int64) {
	if !h.service.IsAdmin(userID) {
		h.sendMessage(chatID, "❌ У тебя нет доступа к админ-панели")
		return
	}

	if h.service.HasActiveSession(ctx, userID) {
		h.showKeyboard(chatID)
		return
	}

	h.sendMessage(chatID, "🔐 Введите пароль для доступа к админ-панели:")
	h.service.SetState(userID, StateAwaitingPassword, nil)
}

// HandleAdminMessage обрабатывает любое сообщение от администратора в DM.
// Определяет текущее состояние диалога и маршрутизирует сообщение.
// Возвращает true, если сообщение было обработано панелью.
func (h *Handler) HandleAdminMessage(ctx context.Context, chatID int64, userID int64, text string) bool {
	if !h.service.IsAdmin(userID) {
		return false
	}

	state := h.service.GetState(userID)

	if state != nil && state.State == StateAwaitingPassword {
		h.handlePasswordInput(ctx, chatID, userID, text)
		return true
	}

	if !h.service.HasActiveSession(ctx, userID) {
		return false // Без сессии панель молчит; вход — через /login
	}

	h.service.TouchSession(ctx, userID)

	if state != nil {
		switch state.State {
		case StateGiveRigaInput:
			h.handleRigaInput(ctx, chatID, userID, text, true)
			return true
		case StateTakeRigaInput:
			h.handleRigaInput(ctx, chatID, userID, text, false)
			return true
		}
	}

	// Прямые команды без клавиатуры: "выдать @user N", "забрать @user N"
	lower := strings.ToLower(strings.TrimSpace(text))
	if rest, ok := strings.CutPrefix(lower, "выдать "); ok {
		h.handleRigaInput(ctx, chatID, userID, rest, true)
		return true
	}
	if rest, ok := strings.CutPrefix(lower, "забрать "); ok {
		h.handleRigaInput(ctx, chatID, userID, rest, false)
		return true
	}

	switch text {
	case btnGiveRiga:
		h.sendMessage(chatID, "Кому и сколько выдать? Формат: @username сумма")
		h.service.SetState(userID, StateGiveRigaInput, nil)
		return true
	case btnTakeRiga:
		h.sendMessage(chatID, "У кого и сколько забрать? Формат: @username сумма")
		h.service.SetState(userID, StateTakeRigaInput, nil)
		return true
	case btnLogout:
		if err := h.service.Logout(ctx, userID); err != nil {
			log.WithError(err).Error("Ошибка выхода из админ-панели")
		}
		msg := tgbotapi.NewMessage(chatID, "👋 Сессия завершена")
		msg.ReplyMarkup = tgbotapi.NewRemoveKeyboard(true)
		if _, err := h.bot.Send(msg); err != nil {
			log.WithError(err).Error("Ошибка отправки сообщения")
		}
		return true
	case "Админ", "Панель", "админ", "панель":
		h.showKeyboard(chatID)
		return true
	}

	return false
}

// handlePasswordInput обрабатывает ввод пароля.
func (h *Handler) handlePasswordInput(ctx context.Context, chatID int64, userID int64, password string) {
	err := h.service.VerifyPassword(ctx, userID, password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrTooManyAttempts):
			h.sendMessage(chatID, "❌ Слишком много попыток, подождите час")
		case errors.Is(err, common.ErrWrongPassword):
			h.sendMessage(chatID, "❌ Неверный пароль")
		default:
			log.WithError(err).Error("Ошибка проверки пароля")
			h.sendMessage(chatID, "❌ Ошибка аутентификации, попробуйте позже")
		}
		h.service.ClearState(userID)
		return
	}

	h.service.ClearState(userID)
	h.sendMessage(chatID, "✅ Аутентификация успешна!")
	h.showKeyboard(chatID)
}

// handleRigaInput обрабатывает ввод "@username сумма" для выдачи/изъятия.
func (h *Handler) handleRigaInput(ctx context.Context, chatID int64, userID int64, text string, give bool) {
	defer h.service.ClearState(userID)

	parts := strings.Fields(strings.TrimSpace(text))
	if len(parts) != 2 {
		h.sendMessage(chatID, "❌ Формат: @username сумма")
		return
	}

	username := strings.TrimPrefix(parts[0], "@")
	amount, err := strconv.ParseInt(parts[1], 10, 64)
	if err != nil || amount <= 0 {
		h.sendMessage(chatID, "❌ Сумма должна быть положительным числом")
		return
	}

	target, err := h.memberService.GetByUsername(ctx, username)
	if err != nil {
		h.sendMessage(chatID, "❌ Пользователь не найден")
		return
	}

	var newBalance int64
	if give {
		newBalance, err = h.economyService.AddBalance(ctx, target.UserID, amount,
			economy.TxTypeAdminGive, "Выдано администратором")
	} else {
		newBalance, err = h.economyService.DeductBalance(ctx, target.UserID, amount,
			economy.TxTypeAdminTake, "Изъято администратором")
	}
	if err != nil {
		if errors.Is(err, common.ErrInsufficientBalance) {
			h.sendMessage(chatID, "❌ У пользователя недостаточно риг")
			return
		}
		log.WithError(err).Error("Ошибка админ-операции с балансом")
		h.sendMessage(chatID, "❌ Операция не выполнена")
		return
	}

	verb := "Выдано"
	if !give {
		verb = "Изъято"
	}
	h.sendMessage(chatID, fmt.Sprintf("✅ %s %s. Баланс @%s: %s",
		verb, common.FormatRigaAmount(amount), target.Username, common.FormatBalance(newBalance)))

	log.WithFields(log.Fields{
		"admin":  userID,
		"target": target.UserID,
		"amount": amount,
		"give":   give,
	}).Info("Админ-операция с балансом")
}

// showKeyboard отображает клавиатуру админ-панели.
func (h *Handler) showKeyboard(chatID int64) {
	keyboard := tgbotapi.NewReplyKeyboard(
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnGiveRiga),
			tgbotapi.NewKeyboardButton(btnTakeRiga),
		),
		tgbotapi.NewKeyboardButtonRow(
			tgbotapi.NewKeyboardButton(btnLogout),
		),
	)

	msg := tgbotapi.NewMessage(chatID, "✅ Админ-панель открыта")
	msg.ReplyMarkup = keyboard
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки клавиатуры")
	}
}

func (h *Handler) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := h.bot.Send(msg); err != nil {
		log.WithError(err).Error("Ошибка отправки сообщения")
	}
}
