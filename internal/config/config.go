// Package config загружает конфигурацию бота из переменных окружения.
// Используется envconfig для маппинга переменных окружения на поля структуры.
//
// Все «продуктовые» числа (порог награды, кап, окно рейтинга и т.д.)
// вынесены сюда: это политика, а не структура кода.
package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит ВСЕ настройки приложения.
type Config struct {
	// --- Telegram ---
	AdminIDsRaw      string  `envconfig:"ADMIN_IDS" required:"true"`
	AdminIDs         []int64 `envconfig:"-"` // заполним вручную
	TelegramBotToken string  `envconfig:"TELEGRAM_BOT_TOKEN" required:"true"`
	// ID чата, в котором бот принимает записи об учёбе (единственный разрешённый групповой чат)
	StudyChatID int64 `envconfig:"STUDY_CHAT_ID" required:"true"`

	// --- Database ---
	// В Docker внутри контейнера "localhost" почти всегда неправильно.
	// Дефолт ставим "postgres" (имя сервиса в docker-compose), а для локалки переопределяй DB_HOST=localhost.
	DBHost     string `envconfig:"DB_HOST" default:"postgres"`
	DBPort     int    `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"botuser"`
	DBPassword string `envconfig:"DB_PASSWORD" required:"true"`
	DBName     string `envconfig:"DB_NAME" default:"study_bot"`
	DBSSLMode  string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns int32  `envconfig:"DB_MAX_CONNS" default:"25"`
	DBMinConns int32  `envconfig:"DB_MIN_CONNS" default:"5"`
	// Таймаут одной операции с БД. По истечении операция считается
	// неудавшейся и НЕ повторяется автоматически (риск двойного начисления).
	DBOpTimeout time.Duration `envconfig:"DB_OP_TIMEOUT" default:"5s"`

	// --- Application ---
	AppEnv      string `envconfig:"APP_ENV" default:"development"`
	AppLogLevel string `envconfig:"APP_LOG_LEVEL" default:"debug"`
	AppTimezone string `envconfig:"APP_TIMEZONE" default:"Europe/Moscow"`

	// --- Bot runtime ---
	// Сколько апдейтов обрабатываем параллельно. Иначе "go на каждый апдейт" = утечка памяти при флуде.
	BotMaxInflight int `envconfig:"BOT_MAX_INFLIGHT" default:"64"`
	// Таймаут long polling (секунды)
	BotUpdateTimeoutSeconds int `envconfig:"BOT_UPDATE_TIMEOUT_SECONDS" default:"60"`

	// --- Admin ---
	AdminPasswordHash string `envconfig:"ADMIN_PASSWORD_HASH" required:"true"`

	// --- Study / Streak ---
	// Учебный день: события в первые N часов после полуночи засчитываются
	// в ПРЕДЫДУЩИЙ календарный день (поздние занятия не рвут серию).
	StreakGraceHours int `envconfig:"STREAK_GRACE_HOURS" default:"3"`
	// Категории учёбы для кнопок /учеба. Фиксированный набор, но меняется конфигом.
	StudyCategoriesRaw string   `envconfig:"STUDY_CATEGORIES" default:"словарь,учебник,шэдоуинг,видео,приложение"`
	StudyCategories    []string `envconfig:"-"`

	// --- Rewards ---
	// Бонус начинается с N-го дня серии (включительно).
	StreakRewardThreshold int `envconfig:"STREAK_REWARD_THRESHOLD" default:"7"`
	// Кап линейно растущего дневного бонуса.
	StreakRewardCap int64 `envconfig:"STREAK_REWARD_CAP" default:"50"`
	// Утешительный бонус за повторную запись в тот же день (серия уже >= порога).
	StreakRepeatBonus int64 `envconfig:"STREAK_REPEAT_BONUS" default:"1"`

	// --- Reminders ---
	// Напоминаем тем, чей последний учебный день = сегодня - лаг.
	// Лаг 1 = «занимался вчера, сегодня ещё нет». См. DESIGN.md.
	ReminderLagDays int `envconfig:"REMINDER_LAG_DAYS" default:"1"`
	// Крон напоминаний (в APP_TIMEZONE). По умолчанию 22:00.
	ReminderCronSpec string `envconfig:"REMINDER_CRON" default:"0 22 * * *"`

	// --- Ranking ---
	RankingWindowDays int `envconfig:"RANKING_WINDOW_DAYS" default:"30"`
	RankingLimit      int `envconfig:"RANKING_LIMIT" default:"10"`

	// --- Rate Limiting ---
	RateLimitRequests int           `envconfig:"RATE_LIMIT_REQUESTS" default:"10"`
	RateLimitWindow   time.Duration `envconfig:"RATE_LIMIT_WINDOW" default:"1m"`
}

// IsAdmin сообщает, входит ли пользователь в список ADMIN_IDS.
func (c *Config) IsAdmin(userID int64) bool {
	for _, id := range c.AdminIDs {
		if id == userID {
			return true
		}
	}
	return false
}

// DatabaseDSN возвращает строку подключения к PostgreSQL в формате DSN.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

// Location возвращает часовой пояс приложения.
// Все «логические дни» считаются в нём и только в нём.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.AppTimezone)
	if err != nil {
		// Если tzdata недоступна — UTC+3 вручную
		return time.FixedZone("MSK", 3*60*60)
	}
	return loc
}

func (c *Config) Validate() error {
	if c.StudyChatID == 0 {
		return fmt.Errorf("STUDY_CHAT_ID не задан или равен 0")
	}
	if c.BotMaxInflight <= 0 {
		return fmt.Errorf("BOT_MAX_INFLIGHT должен быть > 0")
	}
	if c.BotUpdateTimeoutSeconds <= 0 {
		return fmt.Errorf("BOT_UPDATE_TIMEOUT_SECONDS должен быть > 0")
	}
	if c.DBMaxConns <= 0 || c.DBMinConns < 0 || c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("некорректные DB_MIN_CONNS/DB_MAX_CONNS")
	}
	if c.StreakGraceHours < 0 || c.StreakGraceHours > 12 {
		return fmt.Errorf("STREAK_GRACE_HOURS должен быть в диапазоне [0, 12]")
	}
	if c.StreakRewardThreshold < 1 {
		return fmt.Errorf("STREAK_REWARD_THRESHOLD должен быть >= 1")
	}
	if c.StreakRewardCap < 1 {
		return fmt.Errorf("STREAK_REWARD_CAP должен быть >= 1")
	}
	if c.StreakRepeatBonus < 0 {
		return fmt.Errorf("STREAK_REPEAT_BONUS должен быть >= 0")
	}
	if c.ReminderLagDays < 1 {
		return fmt.Errorf("REMINDER_LAG_DAYS должен быть >= 1")
	}
	if len(c.StudyCategories) == 0 {
		return fmt.Errorf("STUDY_CATEGORIES пуст")
	}
	return nil
}

// Load читает переменные окружения и заполняет структуру Config.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("не удалось загрузить конфигурацию: %w", err)
	}

	ids, err := parseInt64CSV(cfg.AdminIDsRaw)
	if err != nil {
		return nil, fmt.Errorf("ADMIN_IDS parse: %w", err)
	}
	cfg.AdminIDs = ids

	cfg.StudyCategories = parseCSV(cfg.StudyCategoriesRaw)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parseInt64CSV(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	parts := strings.Split(s, ",")
	out := make([]int64, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		v, err := strconv.ParseInt(p, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("bad int64 %q: %w", p, err)
		}
		out = append(out, v)
	}
	return out, nil
}

func parseCSV(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
