// Package economy — repository.go выполняет все операции с балансом риги
// (колонка riga_balance в user_stats) и журналом transactions.
// Все денежные операции идут в транзакциях БД: изменение баланса и запись
// в журнал либо происходят вместе, либо не происходят вовсе.
package economy

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"studyriga.ru/telegram-bot/internal/common"
)

// Repository предоставляет методы для работы с балансами и транзакциями.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository создаёт новый репозиторий экономики.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

// GetBalance возвращает текущий баланс пользователя.
// Отсутствие строки — это баланс 0, а не ошибка: новый пользователь
// ещё не имеет записи, но его баланс определён.
func (r *Repository) GetBalance(ctx context.Context, userID int64) (int64, error) {
	var balance int64
	err := r.db.QueryRow(ctx,
		`SELECT riga_balance FROM user_stats WHERE user_id = $1`, userID,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}
	return balance, nil
}

// AddBalance начисляет ригу на счёт пользователя и возвращает новый баланс.
// Инкремент выполняется на стороне сервера (balance = balance + delta),
// а не читай-потом-пиши — иначе одновременные начисления теряются.
// Если строки нет — создаётся с нулевой серией.
func (r *Repository) AddBalance(ctx context.Context, userID int64, amount int64, txType, description string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var newBalance int64
	err = tx.QueryRow(ctx, `
		INSERT INTO user_stats (user_id, current_streak, last_study_date, riga_balance)
		VALUES ($1, 0, DATE '1970-01-01', $2)
		ON CONFLICT (user_id) DO UPDATE
		SET riga_balance = user_stats.riga_balance + EXCLUDED.riga_balance,
		    updated_at = NOW()
		RETURNING riga_balance
	`, userID, amount).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("ошибка начисления: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (to_user_id, amount, transaction_type, description)
		VALUES ($1, $2, $3, $4)
	`, userID, amount, txType, description)
	if err != nil {
		return 0, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return newBalance, nil
}

// DeductBalance списывает ригу со счёта и возвращает новый баланс.
// Баланс проверяется под блокировкой строки (FOR UPDATE): в минус не уходим.
func (r *Repository) DeductBalance(ctx context.Context, userID int64, amount int64, txType, description string) (int64, error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	var currentBalance int64
	err = tx.QueryRow(ctx, `
		SELECT riga_balance FROM user_stats WHERE user_id = $1 FOR UPDATE
	`, userID).Scan(&currentBalance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, common.ErrInsufficientBalance
		}
		return 0, fmt.Errorf("ошибка получения баланса: %w", err)
	}

	if currentBalance < amount {
		return 0, common.ErrInsufficientBalance
	}

	var newBalance int64
	err = tx.QueryRow(ctx, `
		UPDATE user_stats
		SET riga_balance = riga_balance - $2, updated_at = NOW()
		WHERE user_id = $1
		RETURNING riga_balance
	`, userID, amount).Scan(&newBalance)
	if err != nil {
		return 0, fmt.Errorf("ошибка списания: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (from_user_id, amount, transaction_type, description)
		VALUES ($1, $2, $3, $4)
	`, userID, amount, txType, description)
	if err != nil {
		return 0, fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("ошибка фиксации транзакции: %w", err)
	}
	return newBalance, nil
}

// Transfer переводит ригу от одного пользователя к другому.
// Атомарная операция: либо оба баланса обновятся, либо ни одного —
// наблюдатель никогда не увидит списание без зачисления.
//
// Если у получателя нет строки — создаём с нулевой серией и сентинельной
// датой в далёком прошлом: его первое занятие даст свежую серию = 1.
// Обе строки блокируются в порядке возрастания user_id, чтобы встречные
// переводы не взаимоблокировались.
func (r *Repository) Transfer(ctx context.Context, fromUserID, toUserID, amount int64) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("ошибка начала транзакции: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO user_stats (user_id, current_streak, last_study_date, riga_balance)
		VALUES ($1, 0, DATE '1970-01-01', 0)
		ON CONFLICT (user_id) DO NOTHING
	`, toUserID)
	if err != nil {
		return fmt.Errorf("ошибка создания счёта получателя: %w", err)
	}

	// Блокируем обе строки в стабильном порядке
	rows, err := tx.Query(ctx, `
		SELECT user_id, riga_balance FROM user_stats
		WHERE user_id = ANY($1)
		ORDER BY user_id
		FOR UPDATE
	`, []int64{fromUserID, toUserID})
	if err != nil {
		return fmt.Errorf("ошибка блокировки счетов: %w", err)
	}

	senderFound := false
	var senderBalance int64
	for rows.Next() {
		var id, balance int64
		if err := rows.Scan(&id, &balance); err != nil {
			rows.Close()
			return fmt.Errorf("ошибка сканирования счёта: %w", err)
		}
		if id == fromUserID {
			senderFound = true
			senderBalance = balance
		}
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return fmt.Errorf("ошибка чтения счетов: %w", err)
	}

	// Нет строки отправителя — значит баланс 0
	if !senderFound || senderBalance < amount {
		return common.ErrInsufficientBalance
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_stats
		SET riga_balance = riga_balance - $2, updated_at = NOW()
		WHERE user_id = $1
	`, fromUserID, amount)
	if err != nil {
		return fmt.Errorf("ошибка списания у отправителя: %w", err)
	}

	_, err = tx.Exec(ctx, `
		UPDATE user_stats
		SET riga_balance = riga_balance + $2, updated_at = NOW()
		WHERE user_id = $1
	`, toUserID, amount)
	if err != nil {
		return fmt.Errorf("ошибка начисления получателю: %w", err)
	}

	_, err = tx.Exec(ctx, `
		INSERT INTO transactions (from_user_id, to_user_id, amount, transaction_type, description)
		VALUES ($1, $2, $3, 'transfer', $4)
	`, fromUserID, toUserID, amount, fmt.Sprintf("Перевод %d %s", amount, common.PluralizeRiga(amount)))
	if err != nil {
		return fmt.Errorf("ошибка записи транзакции: %w", err)
	}

	return tx.Commit(ctx)
}

// GetTransactions возвращает последние N транзакций пользователя.
// Включает как входящие, так и исходящие операции.
func (r *Repository) GetTransactions(ctx context.Context, userID int64, limit int) ([]*Transaction, error) {
	query := `
		SELECT id, from_user_id, to_user_id, amount, transaction_type, description, created_at
		FROM transactions
		WHERE from_user_id = $1 OR to_user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`
	rows, err := r.db.Query(ctx, query, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("ошибка получения транзакций: %w", err)
	}
	defer rows.Close()

	var transactions []*Transaction
	for rows.Next() {
		var t Transaction
		err := rows.Scan(
			&t.ID, &t.FromUserID, &t.ToUserID,
			&t.Amount, &t.TransactionType, &t.Description, &t.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("ошибка сканирования транзакции: %w", err)
		}
		transactions = append(transactions, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ошибка чтения строк: %w", err)
	}
	return transactions, nil
}
