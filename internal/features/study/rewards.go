// Package study — rewards.go содержит политику начисления риги за серии.
// Числа приходят из конфига: это продуктовые настройки, не структура кода.
package study

// RewardPolicy описывает правила начисления.
type RewardPolicy struct {
	Threshold   int   // С какого дня серии начинается бонус (включительно)
	Cap         int64 // Кап линейного дневного бонуса
	RepeatBonus int64 // Бонус за повторную запись в тот же день
}

// Award вычисляет бонус в ригах за событие.
//
// Политика (по умолчанию Threshold=7, Cap=50, RepeatBonus=1):
//   - серия < 7 → 0
//   - серия >= 7, первое событие дня → min(серия-6, 50):
//     день 7 → 1, день 10 → 4, день 56+ → 50
//   - серия >= 7, повторное событие того же дня → 1,
//     чтобы поощрять активность, не раздувая дневной бонус
func (p RewardPolicy) Award(streak int, firstOfDay bool) int64 {
	if streak < p.Threshold {
		return 0
	}
	if !firstOfDay {
		return p.RepeatBonus
	}
	bonus := int64(streak - p.Threshold + 1)
	if bonus > p.Cap {
		bonus = p.Cap
	}
	return bonus
}
