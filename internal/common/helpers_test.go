package common

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPluralizeRiga(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "риг"},
		{1, "рига"},
		{2, "риги"},
		{4, "риги"},
		{5, "риг"},
		{11, "риг"},
		{12, "риг"},
		{14, "риг"},
		{21, "рига"},
		{22, "риги"},
		{25, "риг"},
		{100, "риг"},
		{101, "рига"},
		{111, "риг"},
		{-1, "рига"},
		{-3, "риги"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizeRiga(tt.n), "n=%d", tt.n)
	}
}

func TestPluralizeDays(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{1, "день"},
		{2, "дня"},
		{5, "дней"},
		{11, "дней"},
		{21, "день"},
		{24, "дня"},
		{100, "дней"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, PluralizeDays(tt.n), "n=%d", tt.n)
	}
}

func TestPluralizeRecords(t *testing.T) {
	assert.Equal(t, "запись", PluralizeRecords(1))
	assert.Equal(t, "записи", PluralizeRecords(3))
	assert.Equal(t, "записей", PluralizeRecords(7))
	assert.Equal(t, "записей", PluralizeRecords(12))
}

func TestFormatBalance(t *testing.T) {
	assert.Equal(t, "150 риг", FormatBalance(150))
	assert.Equal(t, "1 рига", FormatBalance(1))
	assert.Equal(t, "0 риг", FormatBalance(0))
}

func TestFormatRigaAmount(t *testing.T) {
	assert.Equal(t, "+100 риг", FormatRigaAmount(100))
	assert.Equal(t, "+1 рига", FormatRigaAmount(1))
	assert.Equal(t, "-50 риг", FormatRigaAmount(-50))
}

func TestFormatDateTime(t *testing.T) {
	msk := time.FixedZone("MSK", 3*60*60)
	at := time.Date(2026, 1, 15, 11, 4, 0, 0, time.UTC)
	assert.Equal(t, "15.01.2026 14:04", FormatDateTime(at, msk))
}

func TestFormatDate(t *testing.T) {
	day := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "15.01.2026", FormatDate(day))
}

func TestFormatNumber(t *testing.T) {
	assert.Equal(t, "0", FormatNumber(0))
	assert.Equal(t, "999", FormatNumber(999))
	assert.Equal(t, "2 350", FormatNumber(2350))
	assert.Equal(t, "1 000 000", FormatNumber(1000000))
	assert.Equal(t, "-2 350", FormatNumber(-2350))
}
