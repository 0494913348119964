// Package bot содержит главный модуль бота — инициализацию, запуск и остановку.
// bot.go подключает обработчики, маршрутизирует команды и callback'и
// и запускает long polling.
package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	log "github.com/sirupsen/logrus"

	"studyriga.ru/telegram-bot/internal/bot/filters"
	"studyriga.ru/telegram-bot/internal/bot/middleware"
	"studyriga.ru/telegram-bot/internal/config"
	"studyriga.ru/telegram-bot/internal/features/admin"
	"studyriga.ru/telegram-bot/internal/features/economy"
	"studyriga.ru/telegram-bot/internal/features/members"
	"studyriga.ru/telegram-bot/internal/features/study"
)

// Bot — главная структура бота, объединяющая все компоненты.
type Bot struct {
	api *tgbotapi.BotAPI
	cfg *config.Config

	chatFilter  *filters.ChatFilter
	rateLimiter *middleware.RateLimiter

	economyHandler *economy.Handler
	studyHandler   *study.Handler
	adminHandler   *admin.Handler

	memberService *members.Service

	parser *CommandParser

	// ограничитель параллелизма обработки апдейтов
	inflight chan struct{}
}

// New создаёт новый экземпляр бота со всеми зависимостями.
func New(
	api *tgbotapi.BotAPI,
	cfg *config.Config,
	memberService *members.Service,
	economyHandler *economy.Handler,
	studyHandler *study.Handler,
	adminHandler *admin.Handler,
	chatFilter *filters.ChatFilter,
) *Bot {
	maxInFlight := cfg.BotMaxInflight
	if maxInFlight <= 0 {
		maxInFlight = 64
	}

	return &Bot{
		api:            api,
		cfg:            cfg,
		chatFilter:     chatFilter,
		rateLimiter:    middleware.NewRateLimiter(cfg.RateLimitRequests, cfg.RateLimitWindow),
		economyHandler: economyHandler,
		studyHandler:   studyHandler,
		adminHandler:   adminHandler,
		memberService:  memberService,
		parser:         NewCommandParser(),
		inflight:       make(chan struct{}, maxInFlight),
	}
}

// Start запускает polling обновлений от Telegram.
func (b *Bot) Start(ctx context.Context) {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = b.cfg.BotUpdateTimeoutSeconds

	updates := b.api.GetUpdatesChan(u)

	log.WithFields(log.Fields{
		"max_inflight": b.cfg.BotMaxInflight,
		"timeout_sec":  b.cfg.BotUpdateTimeoutSeconds,
	}).Info("Бот запущен и ожидает сообщения...")

	for {
		select {
		case <-ctx.Done():
			log.Info("Бот останавливается (ctx done)...")
			b.api.StopReceivingUpdates()
			b.rateLimiter.Close()
			return

		case update, ok := <-updates:
			if !ok {
				log.Info("Канал updates закрыт, бот остановлен")
				return
			}

			// лимит параллелизма
			b.inflight <- struct{}{}
			go func(upd tgbotapi.Update) {
				defer func() { <-b.inflight }()
				b.handleUpdate(ctx, upd)
			}(update)
		}
	}
}

// handleUpdate обрабатывает одно обновление от Telegram.
func (b *Bot) handleUpdate(ctx context.Context, update tgbotapi.Update) {
	defer middleware.RecoverFromPanic()

	// Нажатия inline-кнопок (категории учёбы)
	if update.CallbackQuery != nil {
		b.handleCallback(ctx, update.CallbackQuery)
		return
	}

	// Обрабатываем новых участников (событие вступления)
	if update.Message != nil && update.Message.NewChatMembers != nil {
		if update.Message.Chat != nil && update.Message.Chat.ID == b.cfg.StudyChatID {
			b.handleNewMembers(ctx, update.Message.NewChatMembers)
		}
		return
	}

	if update.Message == nil || update.Message.Text == "" {
		return
	}

	message := update.Message

	middleware.LogMessage(message)

	// Проверяем доступ (STUDY_CHAT_ID или DM участника)
	if !b.chatFilter.CheckAccess(ctx, message) {
		return
	}

	// Rate limiting
	if message.From != nil && !b.rateLimiter.Allow(message.From.ID) {
		log.WithField("user_id", message.From.ID).Debug("rate limited")
		return
	}

	chatID := message.Chat.ID
	userID := message.From.ID

	// EnsureMember — ошибки нельзя игнорировать, иначе потом будет "оно не работает"
	if err := b.memberService.EnsureMember(ctx, userID,
		message.From.UserName, message.From.FirstName, message.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("EnsureMember failed")
	}

	// В DM проверяем админ-панель
	if message.Chat.IsPrivate() {
		handled := b.adminHandler.HandleAdminMessage(ctx, chatID, userID, message.Text)
		if handled {
			return
		}
	}

	cmd, args, isCommand := b.parser.ParseCommand(message.Text)
	if !isCommand {
		return
	}

	log.WithFields(log.Fields{
		"cmd":  cmd,
		"args": args,
	}).Debug("parsed command")

	b.routeCommand(ctx, chatID, userID, cmd, args, message.Chat.IsPrivate())
}

// handleCallback маршрутизирует нажатие inline-кнопки.
func (b *Bot) handleCallback(ctx context.Context, query *tgbotapi.CallbackQuery) {
	middleware.LogCallback(query)

	// Кнопки работают только в учебном чате
	if query.From == nil || query.Message == nil || query.Message.Chat == nil || query.Message.Chat.ID != b.cfg.StudyChatID {
		return
	}

	if !b.rateLimiter.Allow(query.From.ID) {
		log.WithField("user_id", query.From.ID).Debug("rate limited (callback)")
		return
	}

	// Регистрируем участника и по кнопкам тоже: перевод по @username
	// должен находить всех, кто хоть раз записывал учёбу
	if err := b.memberService.EnsureMember(ctx, query.From.ID,
		query.From.UserName, query.From.FirstName, query.From.LastName,
	); err != nil {
		log.WithError(err).WithField("user_id", query.From.ID).Warn("EnsureMember failed (callback)")
	}

	if study.MatchesCallback(query.Data) {
		b.studyHandler.HandleStudyCallback(ctx, query)
	}
}

// routeCommand маршрутизирует команду к нужному обработчику.
func (b *Bot) routeCommand(ctx context.Context, chatID, userID int64, cmd string, args []string, isPrivate bool) {
	switch cmd {
	case "start", "help":
		b.sendMessage(chatID, "📚 Я учебный бот. Команды:\n"+
			"!учеба — записать занятие\n"+
			"!стрик — твоя серия\n"+
			"!топ — рейтинг за месяц\n"+
			"!рига — баланс\n"+
			"!отсыпать @user N — перевести ригу\n"+
			"!транзакции — история операций\n"+
			"/login — админ-панель (в личке)")

	case "login":
		if isPrivate {
			if len(args) > 0 {
				// /login <пароль> одной строкой
				b.adminHandler.HandleLogin(ctx, chatID, userID)
				b.adminHandler.HandleAdminMessage(ctx, chatID, userID, strings.Join(args, " "))
			} else {
				b.adminHandler.HandleLogin(ctx, chatID, userID)
			}
		}

	case "учеба", "учёба":
		b.studyHandler.HandleStudy(ctx, chatID)

	case "стрик":
		b.studyHandler.HandleStreak(ctx, chatID, userID)

	case "топ":
		b.studyHandler.HandleRanking(ctx, chatID)

	case "рига":
		b.economyHandler.HandleBalance(ctx, chatID, userID)

	case "отсыпать":
		b.economyHandler.HandleTransfer(ctx, chatID, userID, args)

	case "транзакции":
		b.economyHandler.HandleTransactions(ctx, chatID, userID)
	}
}

// handleNewMembers обрабатывает вступление новых участников.
func (b *Bot) handleNewMembers(ctx context.Context, newMembers []tgbotapi.User) {
	for _, user := range newMembers {
		if user.IsBot {
			continue
		}
		if err := b.memberService.HandleNewMember(ctx, user.ID, user.UserName, user.FirstName, user.LastName); err != nil {
			log.WithError(err).WithField("user_id", user.ID).Warn("HandleNewMember failed")
		}

		log.WithField("user", user.UserName).Info("Новый участник обработан")
	}
}

// sendMessage — утилита для отправки сообщений.
func (b *Bot) sendMessage(chatID int64, text string) {
	msg := tgbotapi.NewMessage(chatID, text)
	if _, err := b.api.Send(msg); err != nil {
		log.WithError(err).WithField("chat_id", chatID).Error("Ошибка отправки сообщения")
	}
}

// SendMessageToUser отправляет сообщение пользователю (для напоминаний).
// Ошибка не фатальна: пользователь мог не открывать DM с ботом.
func (b *Bot) SendMessageToUser(userID int64, text string) error {
	msg := tgbotapi.NewMessage(userID, text)
	_, err := b.api.Send(msg)
	return err
}

// CommandParser парсит русские команды с префиксами !, . и /
type CommandParser struct {
	validPrefixes []string
}

// NewCommandParser создаёт парсер команд.
func NewCommandParser() *CommandParser {
	return &CommandParser{
		validPrefixes: []string{"!", ".", "/"},
	}
}

// ParseCommand разбирает текст на команду и аргументы.
func (p *CommandParser) ParseCommand(text string) (string, []string, bool) {
	text = strings.TrimSpace(text)

	hasPrefix := false
	for _, prefix := range p.validPrefixes {
		if strings.HasPrefix(text, prefix) {
			text = strings.TrimPrefix(text, prefix)
			hasPrefix = true
			break
		}
	}

	if !hasPrefix {
		return "", nil, false
	}

	text = strings.TrimSpace(text)
	parts := strings.Fields(text)

	if len(parts) == 0 {
		return "", nil, false
	}

	command := strings.ToLower(parts[0])
	var args []string
	if len(parts) > 1 {
		args = parts[1:]
	}

	// Telegram добавляет @botname к командам в группах
	if i := strings.Index(command, "@"); i > 0 {
		command = command[:i]
	}

	return command, args, true
}
