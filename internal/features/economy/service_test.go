package economy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"studyriga.ru/telegram-bot/internal/common"
	"studyriga.ru/telegram-bot/internal/config"
)

// memStore — хранилище экономики в памяти с семантикой Postgres-репозитория:
// перевод либо проходит целиком, либо не меняет ничего.
type memStore struct {
	balances     map[int64]int64
	transactions []*Transaction
}

func newMemStore() *memStore {
	return &memStore{balances: make(map[int64]int64)}
}

func (m *memStore) GetBalance(_ context.Context, userID int64) (int64, error) {
	return m.balances[userID], nil
}

func (m *memStore) AddBalance(_ context.Context, userID int64, amount int64, txType, description string) (int64, error) {
	m.balances[userID] += amount
	m.transactions = append(m.transactions, &Transaction{
		ToUserID: &userID, Amount: amount, TransactionType: txType,
		Description: description, CreatedAt: time.Now(),
	})
	return m.balances[userID], nil
}

func (m *memStore) DeductBalance(_ context.Context, userID int64, amount int64, txType, description string) (int64, error) {
	if m.balances[userID] < amount {
		return 0, common.ErrInsufficientBalance
	}
	m.balances[userID] -= amount
	m.transactions = append(m.transactions, &Transaction{
		FromUserID: &userID, Amount: amount, TransactionType: txType,
		Description: description, CreatedAt: time.Now(),
	})
	return m.balances[userID], nil
}

func (m *memStore) Transfer(_ context.Context, fromUserID, toUserID, amount int64) error {
	if m.balances[fromUserID] < amount {
		return common.ErrInsufficientBalance
	}
	m.balances[fromUserID] -= amount
	m.balances[toUserID] += amount
	m.transactions = append(m.transactions, &Transaction{
		FromUserID: &fromUserID, ToUserID: &toUserID, Amount: amount,
		TransactionType: TxTypeTransfer, CreatedAt: time.Now(),
	})
	return nil
}

func (m *memStore) GetTransactions(_ context.Context, userID int64, limit int) ([]*Transaction, error) {
	var out []*Transaction
	for i := len(m.transactions) - 1; i >= 0 && len(out) < limit; i-- {
		tx := m.transactions[i]
		if (tx.FromUserID != nil && *tx.FromUserID == userID) ||
			(tx.ToUserID != nil && *tx.ToUserID == userID) {
			out = append(out, tx)
		}
	}
	return out, nil
}

func newTestService() (*Service, *memStore) {
	store := newMemStore()
	cfg := &config.Config{
		AppTimezone: "UTC",
		DBOpTimeout: time.Second,
	}
	return NewService(store, cfg), store
}

func TestGetBalance_NewUser(t *testing.T) {
	svc, _ := newTestService()

	balance, err := svc.GetBalance(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance, "новый пользователь — баланс 0, не ошибка")
}

func TestAddBalance(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	balance, err := svc.AddBalance(ctx, 100, 25, TxTypeStreakBonus, "Бонус за серию — день 31")
	require.NoError(t, err)
	assert.Equal(t, int64(25), balance)
	require.Len(t, store.transactions, 1)
	assert.Equal(t, TxTypeStreakBonus, store.transactions[0].TransactionType)
}

func TestAddBalance_InvalidAmount(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	_, err := svc.AddBalance(ctx, 100, 0, TxTypeAdminGive, "")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	_, err = svc.AddBalance(ctx, 100, -5, TxTypeAdminGive, "")
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	assert.Empty(t, store.transactions)
}

func TestDeductBalance_Insufficient(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	store.balances[100] = 10
	_, err := svc.DeductBalance(ctx, 100, 50, TxTypeAdminTake, "")
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Equal(t, int64(10), store.balances[100], "баланс не изменился")
}

func TestTransfer(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	store.balances[100] = 150

	err := svc.Transfer(ctx, 100, 200, 100)
	require.NoError(t, err)
	assert.Equal(t, int64(50), store.balances[100])
	assert.Equal(t, int64(100), store.balances[200])
	require.Len(t, store.transactions, 1)
	assert.Equal(t, TxTypeTransfer, store.transactions[0].TransactionType)
}

func TestTransfer_Self(t *testing.T) {
	svc, store := newTestService()

	store.balances[100] = 150
	err := svc.Transfer(context.Background(), 100, 100, 10)
	assert.ErrorIs(t, err, common.ErrSelfTransfer)
	assert.Equal(t, int64(150), store.balances[100])
	assert.Empty(t, store.transactions)
}

func TestTransfer_InvalidAmount(t *testing.T) {
	svc, store := newTestService()

	store.balances[100] = 150
	err := svc.Transfer(context.Background(), 100, 200, 0)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	err = svc.Transfer(context.Background(), 100, 200, -10)
	assert.ErrorIs(t, err, common.ErrInvalidAmount)

	assert.Equal(t, int64(150), store.balances[100])
	assert.Empty(t, store.transactions)
}

func TestTransfer_InsufficientFunds(t *testing.T) {
	svc, store := newTestService()

	store.balances[100] = 50
	err := svc.Transfer(context.Background(), 100, 200, 100)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)

	// Ни один баланс не тронут
	assert.Equal(t, int64(50), store.balances[100])
	assert.Equal(t, int64(0), store.balances[200])
}

func TestTransfer_UnknownSender(t *testing.T) {
	svc, store := newTestService()

	// Нет строки отправителя = баланс 0 = недостаточно
	err := svc.Transfer(context.Background(), 100, 200, 1)
	assert.ErrorIs(t, err, common.ErrInsufficientBalance)
	assert.Empty(t, store.transactions)
}

func TestGetTransactionHistory_Empty(t *testing.T) {
	svc, _ := newTestService()

	history, err := svc.GetTransactionHistory(context.Background(), 100)
	require.NoError(t, err)
	assert.Equal(t, "📋 У тебя пока нет транзакций", history)
}

func TestGetTransactionHistory_SpoilerForLongList(t *testing.T) {
	svc, store := newTestService()
	ctx := context.Background()

	for i := 0; i < 8; i++ {
		_, err := svc.AddBalance(ctx, 100, 10, TxTypeStreakBonus, "Бонус")
		require.NoError(t, err)
	}

	history, err := svc.GetTransactionHistory(ctx, 100)
	require.NoError(t, err)
	assert.Contains(t, history, "Последние 8 транзакций")
	assert.Contains(t, history, "||", "хвост длинного списка скрыт в спойлер")
	assert.Len(t, store.transactions, 8)
}
