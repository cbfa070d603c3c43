package cron

import (
	"context"
	"log"
	"time"

	"github.com/hibiken/asynq"

	"github.com/Janrichter12345/freetables/config"
	reservationRepo "github.com/Janrichter12345/freetables/database/repository/reservation"
	tableRepo "github.com/Janrichter12345/freetables/database/repository/table"
	"github.com/Janrichter12345/freetables/models"
)

const TypeReservationSweep = "reservation:sweep"

// Each sweep finalizes at most this many stale reservations.
const sweepBatchSize = 100

// InitSweeper runs the background sweep for pending reservations whose call
// never produced a terminal status callback. Without it a lost provider
// callback would leave a table claimed forever.
func InitSweeper(reservations reservationRepo.ReservationRepository, tables tableRepo.TableRepository) {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisSweepDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 1,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(TypeReservationSweep, handleSweepTask(reservations, tables))

	scheduler := asynq.NewScheduler(redisOpts, &asynq.SchedulerOpts{})
	if _, err := scheduler.Register("@every 1m", asynq.NewTask(TypeReservationSweep, nil)); err != nil {
		log.Fatalf("[Sweeper] failed to register sweep schedule: %v", err)
	}

	go func() {
		log.Println("[Sweeper] starting reservation sweep worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[Sweeper] attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[Sweeper] max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second)
			} else {
				break
			}
		}
	}()

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Printf("[Sweeper] scheduler stopped: %v", err)
		}
	}()
}

func handleSweepTask(reservations reservationRepo.ReservationRepository, tables tableRepo.TableRepository) asynq.HandlerFunc {
	return func(ctx context.Context, task *asynq.Task) error {
		now := time.Now()
		stale, err := reservations.ListExpiredPending(ctx, now, sweepBatchSize)
		if err != nil {
			log.Printf("[Sweeper] failed to list expired reservations: %v", err)
			return err
		}

		for _, r := range stale {
			// The same guarded transition the voice engine and reconciler
			// use: if a late callback wins first, this is a no-op.
			won, err := reservations.MarkResponded(ctx, r.ID, models.ReservationFailed, now)
			if err != nil {
				log.Printf("[Sweeper] failed to expire reservation %s: %v", r.ID, err)
				continue
			}
			if !won {
				continue
			}
			if err := tables.Release(ctx, r.TableID, models.TableFree); err != nil {
				log.Printf("[Sweeper] failed to free table %s: %v", r.TableID, err)
			}
			log.Printf("[Sweeper] expired stale reservation %s (table %s freed)", r.ID, r.TableID)
		}
		return nil
	}
}
