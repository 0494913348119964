// Package common содержит общие утилиты, используемые во всём проекте.
// Сюда входят: русская плюрализация, форматирование чисел и дат.
package common

import (
	"fmt"
	"math"
	"time"
)

// PluralizeRiga возвращает правильную форму слова «рига» для числа n.
//
// Правила русского языка:
//   - n%10==1 И n%100!=11 → "рига" (1, 21, 31, 101, ...)
//   - n%10 в [2,3,4] И n%100 НЕ в [12,13,14] → "риги" (2, 3, 4, 22, 23, ...)
//   - Остальные случаи → "риг" (0, 5-20, 25-30, 100, ...)
func PluralizeRiga(n int64) string {
	absN := int64(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "рига"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "риги"
	}
	return "риг"
}

// FormatBalance форматирует баланс в читабельную строку.
// Пример: FormatBalance(150) → "150 риг"
func FormatBalance(balance int64) string {
	return fmt.Sprintf("%d %s", balance, PluralizeRiga(balance))
}

// FormatRigaAmount создаёт строку вида "+100 риг" или "-50 риг".
// Знак «+» или «-» добавляется автоматически.
func FormatRigaAmount(amount int64) string {
	if amount >= 0 {
		return fmt.Sprintf("+%d %s", amount, PluralizeRiga(amount))
	}
	return fmt.Sprintf("%d %s", amount, PluralizeRiga(amount))
}

// PluralizeDays возвращает правильную форму слова «день» для числа n.
//
// Правила:
//   - 1, 21, 31 → "день"
//   - 2-4, 22-24 → "дня"
//   - 5-20, 25-30 → "дней"
func PluralizeDays(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "день"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "дня"
	}
	return "дней"
}

// PluralizeRecords возвращает правильную форму слова «запись».
func PluralizeRecords(n int) string {
	absN := int(math.Abs(float64(n)))
	lastDigit := absN % 10
	lastTwoDigits := absN % 100

	if lastDigit == 1 && lastTwoDigits != 11 {
		return "запись"
	}
	if lastDigit >= 2 && lastDigit <= 4 && (lastTwoDigits < 12 || lastTwoDigits > 14) {
		return "записи"
	}
	return "записей"
}

// FormatDateTime форматирует время в формат "02.01.2006 15:04" в поясе loc.
// Используется для отображения дат транзакций.
func FormatDateTime(t time.Time, loc *time.Location) string {
	return t.In(loc).Format("02.01.2006 15:04")
}

// FormatDate форматирует «логический день» (полночь в поясе приложения).
func FormatDate(t time.Time) string {
	return t.Format("02.01.2006")
}

// FormatNumber форматирует число с разделителями тысяч (пробелами).
// Пример: FormatNumber(2350) → "2 350"
func FormatNumber(n int64) string {
	if n < 0 {
		return "-" + FormatNumber(-n)
	}
	if n < 1000 {
		return fmt.Sprintf("%d", n)
	}

	rest := n / 1000
	last := n % 1000

	if rest > 0 {
		return fmt.Sprintf("%s %03d", FormatNumber(rest), last)
	}
	return fmt.Sprintf("%d", last)
}
