// Package economy — service.go содержит бизнес-логику экономики:
// валидацию, переводы, получение баланса и истории транзакций.
//
// Хранилище передаётся интерфейсом — в тестах подставляется память.
package economy

import (
	"context"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"studyriga.ru/telegram-bot/internal/common"
	"studyriga.ru/telegram-bot/internal/config"
)

// Store — то, что сервису нужно от хранилища. Реализуется *Repository.
type Store interface {
	GetBalance(ctx context.Context, userID int64) (int64, error)
	AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) (int64, error)
	DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) (int64, error)
	Transfer(ctx context.Context, fromUserID, toUserID, amount int64) error
	GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error)
}

// Service управляет экономикой бота (рига).
type Service struct {
	store Store
	cfg   *config.Config
	loc   *time.Location
}

// NewService создаёт новый сервис экономики.
func NewService(store Store, cfg *config.Config) *Service {
	return &Service{store: store, cfg: cfg, loc: cfg.Location()}
}

// GetBalance возвращает текущий баланс пользователя (0 для новых).
func (s *Service) GetBalance(ctx context.Context, userID int64) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBOpTimeout)
	defer cancel()
	return s.store.GetBalance(ctx, userID)
}

// AddBalance начисляет ригу пользователю и возвращает новый баланс.
// Используется для бонусов за серии и админ-выдачи.
func (s *Service) AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) (int64, error) {
	if amount <= 0 {
		return 0, common.ErrInvalidAmount
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBOpTimeout)
	defer cancel()
	return s.store.AddBalance(ctx, userID, amount, txType, description)
}

// DeductBalance списывает ригу и возвращает новый баланс.
func (s *Service) DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) (int64, error) {
	if amount <= 0 {
		return 0, common.ErrInvalidAmount
	}
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBOpTimeout)
	defer cancel()
	return s.store.DeductBalance(ctx, userID, amount, txType, description)
}

// Transfer переводит ригу от одного пользователя к другому.
// Проверки:
//   - нельзя переводить себе
//   - сумма должна быть положительной
//   - у отправителя должно хватать риги (проверяется в транзакции БД)
func (s *Service) Transfer(ctx context.Context, fromUserID, toUserID, amount int64) error {
	if fromUserID == toUserID {
		return common.ErrSelfTransfer
	}
	if amount <= 0 {
		return common.ErrInvalidAmount
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBOpTimeout)
	defer cancel()

	if err := s.store.Transfer(ctx, fromUserID, toUserID, amount); err != nil {
		return err
	}

	log.WithFields(log.Fields{
		"from":   fromUserID,
		"to":     toUserID,
		"amount": amount,
	}).Info("Перевод выполнен")

	return nil
}

// GetTransactionHistory возвращает форматированную историю транзакций.
// Последние 10 операций. Если больше 5 — хвост оборачивается в спойлер.
func (s *Service) GetTransactionHistory(ctx context.Context, userID int64) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBOpTimeout)
	defer cancel()

	transactions, err := s.store.GetTransactions(ctx, userID, 10)
	if err != nil {
		return "", err
	}

	if len(transactions) == 0 {
		return "📋 У тебя пока нет транзакций", nil
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("📋 Последние %d транзакций:\n\n", len(transactions)))

	var lines []string
	for i, tx := range transactions {
		// Знак: + если получили, - если отправили
		sign := "+"
		if tx.FromUserID != nil && *tx.FromUserID == userID {
			sign = "-"
		}

		line := fmt.Sprintf("%d. %s | %s%d %s | %s",
			i+1,
			common.FormatDateTime(tx.CreatedAt, s.loc),
			sign,
			tx.Amount,
			common.PluralizeRiga(tx.Amount),
			tx.Description,
		)
		lines = append(lines, line)
	}

	// Первые 5 открыто, остальные в спойлере (||текст||)
	if len(lines) > 5 {
		for _, line := range lines[:5] {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("\n||")
		for _, line := range lines[5:] {
			sb.WriteString(line + "\n")
		}
		sb.WriteString("||")
	} else {
		for _, line := range lines {
			sb.WriteString(line + "\n")
		}
	}

	return sb.String(), nil
}
