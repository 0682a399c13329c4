package main

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/cobom/geoloc193/internal/config"
	"github.com/cobom/geoloc193/internal/db"
	"github.com/cobom/geoloc193/internal/geocode"
	"github.com/cobom/geoloc193/internal/request"
)

type jobMsg struct {
	RequestID uint64 `json:"request_id"`
}

func workerConcurrency() int {
	v := os.Getenv("WORKER_CONCURRENCY")
	if v == "" {
		return 2
	}
	n, err := strconv.Atoi(v)
	if err != nil || n <= 0 {
		return 2
	}
	if n > 50 {
		return 50
	}
	return n
}

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	gdb := db.Connect(cfg.DBDSN)
	repo := request.NewRepo(gdb)

	// Google first when a key is configured, Nominatim as the fallback.
	var chain geocode.Chain
	if cfg.GoogleMapsAPIKey != "" {
		chain = append(chain, geocode.NewGoogleProvider(cfg.GoogleMapsAPIKey))
	}
	chain = append(chain, geocode.NewNominatimProvider(cfg.NominatimBaseURL))

	conn, err := amqp.Dial(cfg.RabbitURL)
	if err != nil {
		log.Fatalf("rabbit dial: %v", err)
	}
	defer conn.Close()

	ch, err := conn.Channel()
	if err != nil {
		log.Fatalf("rabbit channel: %v", err)
	}
	defer ch.Close()

	_, err = ch.QueueDeclare(cfg.RabbitQueue, true, false, false, false, amqp.Table{
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": cfg.RabbitQueue + ".dlq",
	})
	if err != nil {
		log.Fatalf("queue declare: %v", err)
	}

	concurrency := workerConcurrency()

	if err := ch.Qos(concurrency, 0, false); err != nil {
		log.Fatalf("qos: %v", err)
	}

	msgs, err := ch.Consume(cfg.RabbitQueue, "", false, false, false, false, nil)
	if err != nil {
		log.Fatalf("consume: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Printf("worker started, queue=%s concurrency=%d", cfg.RabbitQueue, concurrency)

	// worker pool
	jobs := make(chan amqp.Delivery, concurrency*2)

	var wg sync.WaitGroup
	wg.Add(concurrency)
	for i := 0; i < concurrency; i++ {
		go func(workerID int) {
			defer wg.Done()
			for d := range jobs {
				var m jobMsg
				if err := json.Unmarshal(d.Body, &m); err != nil || m.RequestID == 0 {
					log.Printf("worker=%d bad message: %v", workerID, err)
					_ = d.Nack(false, false)
					continue
				}

				start := time.Now()
				if err := handleJob(ctx, repo, chain, m.RequestID); err != nil {
					log.Printf("worker=%d request %d failed cost=%s err=%v", workerID, m.RequestID, time.Since(start), err)
					_ = d.Nack(false, false)
					continue
				}

				if err := d.Ack(false); err != nil {
					log.Printf("worker=%d ack failed request=%d err=%v", workerID, m.RequestID, err)
				}
			}
		}(i)
	}

	// dispatcher
	for {
		select {
		case <-ctx.Done():
			log.Printf("worker shutting down")
			close(jobs)
			wg.Wait()
			return

		case d, ok := <-msgs:
			if !ok {
				log.Printf("delivery channel closed")
				time.Sleep(1 * time.Second)
				continue
			}
			jobs <- d
		}
	}
}

// handleJob reverse-geocodes the request's coordinates and writes the address
// onto the record. A request without coordinates is not an error; the message
// just raced ahead of the write and the next coordinate update re-enqueues.
func handleJob(ctx context.Context, repo *request.Repo, chain geocode.Chain, requestID uint64) error {
	rec, err := repo.GetByID(ctx, requestID)
	if err != nil {
		return err
	}
	if rec.Coordinates == nil {
		log.Printf("request %d has no coordinates, skipping", requestID)
		return nil
	}

	res, err := chain.ReverseGeocode(ctx, rec.Coordinates.Latitude, rec.Coordinates.Longitude)
	if err != nil {
		return err
	}

	return repo.UpdateAddress(ctx, requestID, res.FormattedAddress, res.City, res.Street, res.PlusCode)
}
