// Package jobs управляет фоновыми задачами (cron).
// scheduler.go настраивает вечерние напоминания тем, кто занимался
// вчера, но ещё не отметился сегодня.
package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"

	"studyriga.ru/telegram-bot/internal/config"
	"studyriga.ru/telegram-bot/internal/features/study"
)

// Scheduler управляет фоновыми задачами.
type Scheduler struct {
	cron         *cron.Cron
	studyService *study.Service
	cfg          *config.Config
	loc          *time.Location
	sendFunc     func(userID int64, text string) error
}

// NewScheduler создаёт планировщик задач в часовом поясе приложения.
// Крон-выражения трактуются в нём же: "0 22 * * *" — это 22:00 локального.
func NewScheduler(studyService *study.Service, cfg *config.Config, sendFunc func(userID int64, text string) error) *Scheduler {
	loc := cfg.Location()
	c := cron.New(cron.WithLocation(loc))

	return &Scheduler{
		cron:         c,
		studyService: studyService,
		cfg:          cfg,
		loc:          loc,
		sendFunc:     sendFunc,
	}
}

// Start запускает все фоновые задачи.
func (s *Scheduler) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.cfg.ReminderCronSpec, func() {
		s.sendReminders(ctx)
	})
	if err != nil {
		return err
	}

	s.cron.Start()
	log.WithFields(log.Fields{
		"spec":     s.cfg.ReminderCronSpec,
		"timezone": s.loc.String(),
	}).Info("Планировщик задач запущен")
	return nil
}

// sendReminders рассылает напоминания тем, чей последний учебный день —
// «сегодня минус лаг». Неудачная отправка одному пользователю не
// останавливает рассылку: он мог не открывать DM с ботом.
func (s *Scheduler) sendReminders(ctx context.Context) {
	day := s.studyService.ReminderDay(time.Now().In(s.loc))

	targets, err := s.studyService.SelectReminderTargets(ctx, day)
	if err != nil {
		log.WithError(err).Error("[CRON] Ошибка выборки кандидатов на напоминание")
		return
	}

	log.WithFields(log.Fields{
		"day":     day.Format("2006-01-02"),
		"targets": len(targets),
	}).Info("[CRON] Рассылка напоминаний")

	sent := 0
	for _, userID := range targets {
		if err := s.sendFunc(userID, "📚 Ты вчера занимался, а сегодня ещё нет. Не дай серии прерваться — !учеба в чате!"); err != nil {
			log.WithError(err).WithField("user_id", userID).Debug("[CRON] Напоминание не доставлено")
			continue
		}
		sent++
	}

	log.WithFields(log.Fields{
		"sent":  sent,
		"total": len(targets),
	}).Info("[CRON] Напоминания разосланы")
}

// Stop останавливает планировщик и дожидается завершения задач.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	log.Info("Планировщик задач остановлен")
}
