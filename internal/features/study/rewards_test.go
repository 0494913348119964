package study

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRewardPolicy_Award(t *testing.T) {
	policy := RewardPolicy{Threshold: 7, Cap: 50, RepeatBonus: 1}

	tests := []struct {
		name       string
		streak     int
		firstOfDay bool
		want       int64
	}{
		{"серия 1 — рано", 1, true, 0},
		{"серия 6 — всё ещё рано", 6, true, 0},
		{"серия 6, повтор — тоже ноль", 6, false, 0},
		{"серия 7 — первый бонус", 7, true, 1},
		{"серия 8", 8, true, 2},
		{"серия 10", 10, true, 4},
		{"серия 56 — ровно кап", 56, true, 50},
		{"серия 60 — кап держит", 60, true, 50},
		{"серия 100 — кап держит", 100, true, 50},
		{"повтор в тот же день при серии 10", 10, false, 1},
		{"повтор в тот же день при серии 60", 60, false, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := policy.Award(tt.streak, tt.firstOfDay)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRewardPolicy_Award_CustomKnobs(t *testing.T) {
	// Порог и кап — конфигурация, не константы
	policy := RewardPolicy{Threshold: 3, Cap: 10, RepeatBonus: 2}

	assert.Equal(t, int64(0), policy.Award(2, true))
	assert.Equal(t, int64(1), policy.Award(3, true))
	assert.Equal(t, int64(10), policy.Award(12, true))
	assert.Equal(t, int64(10), policy.Award(100, true))
	assert.Equal(t, int64(2), policy.Award(5, false))
}
