// Package study управляет учётом учёбы: записи о занятиях, серии
// (стрики) по логическим дням и выбор кандидатов на напоминание.
// models.go описывает структуры данных.
package study

import "time"

// UserStats — одна строка на пользователя в таблице user_stats.
// Хранит серию, последний учебный день и баланс риги.
type UserStats struct {
	UserID        int64      `db:"user_id"`         // Telegram user ID
	CurrentStreak int        `db:"current_streak"`  // Серия (логических дней подряд), >= 0
	LastStudyDate *time.Time `db:"last_study_date"` // Последний учебный день (без времени), nil для новых
	RigaBalance   int64      `db:"riga_balance"`    // Баланс риги, никогда не уходит в минус
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
}

// StudyRecord — одна запись об учёбе. Журнал только на добавление:
// записи никогда не обновляются и не удаляются.
// DisplayName — снимок имени на момент записи (имена меняются,
// история — нет), он НЕ авторитетен.
type StudyRecord struct {
	ID          int64     `db:"id"`
	UserID      int64     `db:"user_id"`
	DisplayName string    `db:"display_name"`
	Category    string    `db:"category"`
	RecordedAt  time.Time `db:"recorded_at"` // Абсолютный момент, не логический день
}

// RankingRow — строка рейтинга: имя и число записей за окно.
type RankingRow struct {
	DisplayName string
	Count       int
}

// NeverStudied — сентинел для last_study_date у строк, созданных переводом
// (получатель ещё ни разу не занимался). Дата настолько в прошлом, что
// первое занятие всегда даст свежую серию = 1, а не продолжение.
var NeverStudied = time.Date(1970, time.January, 1, 0, 0, 0, 0, time.UTC)
