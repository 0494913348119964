// Package economy управляет внутренней валютой «рига».
// models.go описывает журнал транзакций; сам баланс живёт в user_stats
// (одна строка на пользователя, см. internal/features/study).
package economy

import "time"

// Transaction представляет одну операцию с ригой.
// Все движения (бонусы за серии, переводы, админ-операции) записываются сюда.
type Transaction struct {
	ID              int64     `db:"id"`
	FromUserID      *int64    `db:"from_user_id"`     // Отправитель (nil для системных начислений)
	ToUserID        *int64    `db:"to_user_id"`       // Получатель (nil для системных списаний)
	Amount          int64     `db:"amount"`           // Сумма (всегда положительная)
	TransactionType string    `db:"transaction_type"` // Тип: 'transfer', 'streak_bonus', ...
	Description     string    `db:"description"`      // Описание для отображения
	CreatedAt       time.Time `db:"created_at"`
}

// Допустимые типы транзакций
const (
	TxTypeTransfer    = "transfer"     // Перевод между пользователями
	TxTypeStreakBonus = "streak_bonus" // Бонус за серию учёбы
	TxTypeAdminGive   = "admin_give"   // Выдача админом
	TxTypeAdminTake   = "admin_take"   // Изъятие админом
)
