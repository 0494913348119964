package study

import (
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
)

func TestMatchesCallback(t *testing.T) {
	assert.True(t, MatchesCallback("study:словарь"))
	assert.True(t, MatchesCallback("study:"))
	assert.False(t, MatchesCallback("casino:spin"))
	assert.False(t, MatchesCallback(""))
}

func TestDisplayNameOf(t *testing.T) {
	assert.Equal(t, "@vasya", displayNameOf(&tgbotapi.User{UserName: "vasya", FirstName: "Вася"}))
	assert.Equal(t, "Вася Пупкин", displayNameOf(&tgbotapi.User{FirstName: "Вася", LastName: "Пупкин"}))
	assert.Equal(t, "Вася", displayNameOf(&tgbotapi.User{FirstName: "Вася"}))
}
