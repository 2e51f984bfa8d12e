package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"schedule-bot/internal/bot"
	"schedule-bot/internal/config"
	"schedule-bot/internal/repository"
	"schedule-bot/internal/service"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	db, err := repository.NewDB(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("db: %v", err)
	}
	sqlDB, err := db.DB()
	if err == nil {
		defer sqlDB.Close()
	}

	userRepo := repository.NewUserRepository(db)
	entryRepo := repository.NewEntryRepository(db)

	scheduleSvc := service.NewScheduleService(entryRepo)
	reminders := service.NewReminderScheduler(entryRepo, userRepo)
	defer reminders.Stop()

	telegramBot, err := bot.New(cfg.TelegramToken, userRepo, scheduleSvc, reminders)
	if err != nil {
		log.Fatalf("bot: %v", err)
	}
	reminders.SetNotifier(telegramBot)

	// Armed timers do not survive a restart; recompute them from the store.
	if err := reminders.RescheduleAll(ctx); err != nil {
		log.Printf("startup reschedule: %v", err)
	}

	cronSvc := service.NewCronService(time.Local)
	if cfg.ResyncInterval > 0 {
		if _, err := cronSvc.ScheduleInterval(cfg.ResyncInterval, func() {
			jobCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := reminders.RescheduleAll(jobCtx); err != nil {
				log.Printf("resync: %v", err)
			}
		}); err != nil {
			log.Fatalf("schedule resync: %v", err)
		}
	}
	if _, err := cronSvc.ScheduleDaily(cfg.SummaryTime, func() {
		jobCtx, cancel := context.WithTimeout(context.Background(), time.Minute)
		defer cancel()
		if err := telegramBot.SendMorningSummaries(jobCtx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("morning summary: %v", err)
		}
	}); err != nil {
		log.Fatalf("schedule summary: %v", err)
	}
	cronSvc.Start()
	defer cronSvc.Stop()

	log.Println("Schedule bot started.")
	if err := telegramBot.Start(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("bot stopped with error: %v", err)
	}
	log.Println("Shutdown complete.")
}
