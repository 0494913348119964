// Package study — service.go содержит основную бизнес-логику учёта учёбы:
// оркестрацию «момент → логический день → серия → награда» и выбор
// кандидатов на напоминание.
//
// Хранилище и леджер передаются интерфейсами: в тестах вместо Postgres
// подставляется память, вместо «сейчас» — фиксированный момент.
package study

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"studyriga.ru/telegram-bot/internal/common"
	"studyriga.ru/telegram-bot/internal/config"
)

// Store — то, что сервису нужно от хранилища. Реализуется *Repository.
type Store interface {
	RecordStudy(ctx context.Context, rec *StudyRecord, day time.Time) (newStreak int, firstOfDay bool, err error)
	GetUserStats(ctx context.Context, userID int64) (*UserStats, error)
	UsersByLastStudyDate(ctx context.Context, day time.Time) ([]int64, error)
	TopByRecentActivity(ctx context.Context, since time.Time, limit int) ([]RankingRow, error)
}

// Ledger — то, что сервису нужно от экономики. Реализуется economy.Service.
type Ledger interface {
	AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) (int64, error)
	GetBalance(ctx context.Context, userID int64) (int64, error)
}

// Тип транзакции для журнала экономики.
const txTypeStreakBonus = "streak_bonus"

// Service управляет учётом учёбы.
type Service struct {
	store  Store
	ledger Ledger
	cfg    *config.Config
	loc    *time.Location
	policy RewardPolicy
}

// NewService создаёт новый сервис учёта учёбы.
func NewService(store Store, ledger Ledger, cfg *config.Config) *Service {
	return &Service{
		store:  store,
		ledger: ledger,
		cfg:    cfg,
		loc:    cfg.Location(),
		policy: RewardPolicy{
			Threshold:   cfg.StreakRewardThreshold,
			Cap:         cfg.StreakRewardCap,
			RepeatBonus: cfg.StreakRepeatBonus,
		},
	}
}

// RecordResult — итог одной записи об учёбе для отображения.
type RecordResult struct {
	Streak     int       // Серия после события
	FirstOfDay bool      // Первое ли это событие логического дня
	Awarded    int64     // Начислено риги за событие
	Balance    int64     // Баланс после начисления
	Day        time.Time // Логический день события
}

// RecordStudy обрабатывает одно событие учёбы пользователя в момент at.
//
// Шаги:
//  1. Проверяем категорию по настроенному набору
//  2. Считаем логический день (окно [0, grace) — предыдущий день)
//  3. Атомарно пишем журнал + серию
//  4. Начисляем ригу по политике наград (атомарный инкремент)
func (s *Service) RecordStudy(ctx context.Context, userID int64, displayName, category string, at time.Time) (*RecordResult, error) {
	if !s.IsValidCategory(category) {
		return nil, common.ErrUnknownCategory
	}

	day := LogicalDay(at, s.loc, s.cfg.StreakGraceHours)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBOpTimeout)
	defer cancel()

	rec := &StudyRecord{
		UserID:      userID,
		DisplayName: displayName,
		Category:    category,
		RecordedAt:  at,
	}
	streak, firstOfDay, err := s.store.RecordStudy(ctx, rec, day)
	if err != nil {
		return nil, fmt.Errorf("ошибка записи учёбы: %w", err)
	}

	awarded := s.policy.Award(streak, firstOfDay)

	var balance int64
	if awarded > 0 {
		description := fmt.Sprintf("Бонус за серию — день %d", streak)
		balance, err = s.ledger.AddBalance(ctx, userID, awarded, txTypeStreakBonus, description)
		if err != nil {
			// Серия уже сохранена; начисление не повторяем
			// автоматически — иначе риск двойной выплаты.
			log.WithError(err).WithField("user_id", userID).Error("Ошибка начисления бонуса за серию")
			return nil, err
		}
	} else {
		balance, err = s.ledger.GetBalance(ctx, userID)
		if err != nil {
			return nil, err
		}
	}

	log.WithFields(log.Fields{
		"user_id":  userID,
		"category": category,
		"day":      day.Format("2006-01-02"),
		"streak":   streak,
		"first":    firstOfDay,
		"awarded":  awarded,
	}).Debug("Учёба записана")

	return &RecordResult{
		Streak:     streak,
		FirstOfDay: firstOfDay,
		Awarded:    awarded,
		Balance:    balance,
		Day:        day,
	}, nil
}

// SelectReminderTargets возвращает пользователей, чей последний учебный
// день равен ровно asOf. Планировщик передаёт сюда «сегодня минус лаг».
func (s *Service) SelectReminderTargets(ctx context.Context, asOf time.Time) ([]int64, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBOpTimeout)
	defer cancel()
	return s.store.UsersByLastStudyDate(ctx, asOf)
}

// ReminderDay вычисляет день для выборки напоминаний относительно now.
func (s *Service) ReminderDay(now time.Time) time.Time {
	today := LogicalDay(now, s.loc, s.cfg.StreakGraceHours)
	return today.AddDate(0, 0, -s.cfg.ReminderLagDays)
}

// Ranking возвращает топ по числу записей за настроенное окно.
func (s *Service) Ranking(ctx context.Context, now time.Time) ([]RankingRow, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBOpTimeout)
	defer cancel()
	since := now.AddDate(0, 0, -s.cfg.RankingWindowDays)
	return s.store.TopByRecentActivity(ctx, since, s.cfg.RankingLimit)
}

// GetStats возвращает статистику пользователя (nil — ещё не занимался).
func (s *Service) GetStats(ctx context.Context, userID int64) (*UserStats, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.DBOpTimeout)
	defer cancel()
	return s.store.GetUserStats(ctx, userID)
}

// Categories возвращает настроенный набор категорий учёбы.
func (s *Service) Categories() []string {
	return s.cfg.StudyCategories
}

// IsValidCategory проверяет категорию по настроенному набору.
func (s *Service) IsValidCategory(category string) bool {
	for _, c := range s.cfg.StudyCategories {
		if c == category {
			return true
		}
	}
	return false
}
