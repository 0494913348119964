// Package common — errors.go определяет пользовательские ошибки,
// которые используются во всех модулях бота.
// Эти ошибки позволяют обработчикам различать типы проблем
// и отправлять пользователю понятные сообщения.
//
// Ошибки НЕ используются для нормального потока управления:
// «сегодня уже записано» — это вычисленное состояние, а не ошибка.
package common

import "errors"

// Ошибки экономики (рига, переводы)
var (
	// ErrInsufficientBalance — недостаточно риг на счёте
	ErrInsufficientBalance = errors.New("недостаточно риг на счёте")
	// ErrSelfTransfer — попытка перевести ригу самому себе
	ErrSelfTransfer = errors.New("нельзя переводить ригу самому себе")
	// ErrInvalidAmount — некорректная сумма (ноль или отрицательная)
	ErrInvalidAmount = errors.New("сумма должна быть положительной")
	// ErrUserNotFound — пользователь не найден в базе
	ErrUserNotFound = errors.New("пользователь не найден")
)

// Ошибки учёта учёбы
var (
	// ErrUnknownCategory — категория не входит в настроенный набор
	ErrUnknownCategory = errors.New("неизвестная категория учёбы")
)

// Ошибки админки
var (
	// ErrNotAdmin — пользователь не является администратором
	ErrNotAdmin = errors.New("у вас нет прав администратора")
	// ErrWrongPassword — неверный пароль
	ErrWrongPassword = errors.New("неверный пароль")
	// ErrTooManyAttempts — слишком много неудачных попыток входа
	ErrTooManyAttempts = errors.New("слишком много попыток, подождите 1 час")
	// ErrSessionExpired — сессия истекла
	ErrSessionExpired = errors.New("сессия истекла, авторизуйтесь заново")
)
