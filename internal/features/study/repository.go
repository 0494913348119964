// Package study — repository.go выполняет операции с таблицами
// user_stats и learning_records.
// Чтение прошлой серии и её перезапись идут в ОДНОЙ транзакции
// с блокировкой строки (FOR UPDATE) — иначе два одновременных события
// одного пользователя теряют обновление.
package study

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Repository предоставляет методы для работы с учётом учёбы в БД.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий учёта учёбы.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// RecordStudy атомарно применяет одно событие учёбы:
//  1. добавляет запись в журнал learning_records;
//  2. под блокировкой читает прошлое состояние серии;
//  3. прогоняет Advance и перезаписывает user_stats.
//
// Либо происходит всё, либо ничего: упавший шаг откатывает и журнал,
// и серию. last_study_date никогда не уменьшается (аномалии часов).
func (r *Repository) RecordStudy(ctx context.Context, rec *StudyRecord, day time.Time) (newStreak int, firstOfDay bool, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, false, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO learning_records (user_id, display_name, category, recorded_at)
		VALUES ($1, $2, $3, $4)
	`, rec.UserID, rec.DisplayName, rec.Category, rec.RecordedAt)
	if err != nil {
		return 0, false, fmt.Errorf("ошибка записи журнала учёбы: %w", err)
	}

	// Прошлое состояние серии — под блокировкой строки
	var prior *StreakState
	var streak int
	var lastDay *time.Time
	err = tx.QueryRow(ctx, `
		SELECT current_streak, last_study_date FROM user_stats WHERE user_id = $1 FOR UPDATE
	`, rec.UserID).Scan(&streak, &lastDay)
	switch {
	case err == nil:
		if lastDay != nil {
			prior = &StreakState{Streak: streak, LastDay: *lastDay}
		}
	case errors.Is(err, pgx.ErrNoRows):
		// Новый пользователь — prior остаётся nil
	default:
		return 0, false, fmt.Errorf("ошибка чтения серии: %w", err)
	}

	newStreak, firstOfDay = Advance(prior, day)

	// Дата учёбы монотонно не убывает
	persistDay := day
	if prior != nil && prior.LastDay.After(day) {
		persistDay = prior.LastDay
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO user_stats (user_id, current_streak, last_study_date, riga_balance)
		VALUES ($1, $2, $3, 0)
		ON CONFLICT (user_id) DO UPDATE
		SET current_streak = EXCLUDED.current_streak,
		    last_study_date = EXCLUDED.last_study_date,
		    updated_at = NOW()
	`, rec.UserID, newStreak, persistDay)
	if err != nil {
		return 0, false, fmt.Errorf("ошибка обновления серии: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, false, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return newStreak, firstOfDay, nil
}

// GetUserStats возвращает статистику пользователя.
// Если записи нет — (nil, nil): отсутствие строки не ошибка.
func (r *Repository) GetUserStats(ctx context.Context, userID int64) (*UserStats, error) {
	query := `
		SELECT user_id, current_streak, last_study_date, riga_balance, created_at, updated_at
		FROM user_stats
		WHERE user_id = $1
	`
	var s UserStats
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.UserID, &s.CurrentStreak, &s.LastStudyDate, &s.RigaBalance,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("ошибка чтения статистики (user_id=%d): %w", userID, err)
	}
	return &s, nil
}

// UsersByLastStudyDate возвращает всех пользователей, чей последний
// учебный день равен ровно day. Используется для напоминаний.
func (r *Repository) UsersByLastStudyDate(ctx context.Context, day time.Time) ([]int64, error) {
	rows, err := r.db.Query(ctx,
		`SELECT user_id FROM user_stats WHERE last_study_date = $1`, day)
	if err != nil {
		return nil, fmt.Errorf("ошибка выборки для напоминаний: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("ошибка сканирования: %w", err)
		}
		out = append(out, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}

// TopByRecentActivity возвращает топ пользователей по числу записей
// об учёбе с момента since. Агрегация по денормализованному имени —
// как в журнале, так и в рейтинге история важнее актуальности имени.
func (r *Repository) TopByRecentActivity(ctx context.Context, since time.Time, limit int) ([]RankingRow, error) {
	query := `
		SELECT display_name, COUNT(id) AS study_count
		FROM learning_records
		WHERE recorded_at >= $1
		GROUP BY display_name
		ORDER BY study_count DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка запроса рейтинга: %w", err)
	}
	defer rows.Close()

	var out []RankingRow
	for rows.Next() {
		var row RankingRow
		if err := rows.Scan(&row.DisplayName, &row.Count); err != nil {
			return nil, fmt.Errorf("ошибка сканирования рейтинга: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return out, nil
}
