package cron

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"taxly/config"
	"taxly/models"
	"taxly/utils"

	"github.com/go-redis/redis/v8"
	"github.com/hibiken/asynq"
)

// InitMailWorker runs the async mail worker in background.
func InitMailWorker() {
	redisOpts := asynq.RedisClientOpt{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisMailQueueDB,
	}

	srv := asynq.NewServer(
		redisOpts,
		asynq.Config{
			Concurrency: 10,
			Queues: map[string]int{
				"default": 1,
			},
		},
	)

	mux := asynq.NewServeMux()
	mux.HandleFunc(models.TypeVerificationEmail, handleVerificationEmail)
	mux.HandleFunc(models.TypeWelcomeEmail, handleWelcomeEmail)

	// Start Redis health monitor
	go monitorRedisConnection()

	// Start async worker with retry logic
	go func() {
		log.Println("[MailWorker] Starting async worker...")
		const maxAttempts = 5

		for attempts := 1; attempts <= maxAttempts; attempts++ {
			if err := srv.Run(mux); err != nil {
				log.Printf("[MailWorker] Attempt %d/%d failed to start worker: %v", attempts, maxAttempts, err)

				if attempts == maxAttempts {
					log.Fatal("[MailWorker] Max retry attempts reached. Exiting.")
				}
				time.Sleep(time.Duration(attempts*2) * time.Second) // Exponential backoff
			} else {
				break
			}
		}
	}()
}

func handleVerificationEmail(ctx context.Context, task *asynq.Task) error {
	var p models.VerificationEmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[MailWorker] Invalid verification payload: %v", err)
		return err
	}

	body := fmt.Sprintf("Confirm your email to continue setting up Taxly: %s\nThe link expires in 24 hours.", p.Link)
	if err := utils.SendEmail(p.Email, "Verify your email", body); err != nil {
		log.Printf("[MailWorker] Failed to send verification email: %v", err)
		return err
	}
	return nil
}

func handleWelcomeEmail(ctx context.Context, task *asynq.Task) error {
	var p models.WelcomeEmailPayload
	if err := json.Unmarshal(task.Payload(), &p); err != nil {
		log.Printf("[MailWorker] Invalid welcome payload: %v", err)
		return err
	}

	name := p.Name
	if name == "" {
		name = "there"
	}
	body := fmt.Sprintf("Hi %s, welcome to Taxly! Your AI tax assistant is ready in your dashboard.", name)
	if err := utils.SendEmail(p.Email, "Welcome to Taxly", body); err != nil {
		log.Printf("[MailWorker] Failed to send welcome email: %v", err)
		return err
	}
	return nil
}

// monitorRedisConnection pings Redis periodically to detect failures at runtime.
func monitorRedisConnection() {
	client := redis.NewClient(&redis.Options{
		Addr:     config.AppConfig.RedisAddr,
		Password: config.AppConfig.RedisPassword,
		DB:       config.AppConfig.RedisMailQueueDB,
	})

	ctx := context.Background()

	for {
		if err := client.Ping(ctx).Err(); err != nil {
			log.Printf("[MailWorker] Redis connection lost: %v", err)
		}
		time.Sleep(10 * time.Second)
	}
}
