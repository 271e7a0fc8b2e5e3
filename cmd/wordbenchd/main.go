package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/wordbench/wordbench/pkg/construct"
	"github.com/wordbench/wordbench/pkg/defs"
	"github.com/wordbench/wordbench/pkg/dictionary"
	"github.com/wordbench/wordbench/pkg/fusion"
	"github.com/wordbench/wordbench/pkg/journal"
	"github.com/wordbench/wordbench/pkg/server"
	"github.com/wordbench/wordbench/pkg/solver"
)

func main() {
	portFlag := flag.Int("port", 0, "HTTP port (overrides PORT env var; default 3000)")
	dataDir := flag.String("data-dir", "data", "directory holding words.txt, word_frequencies.json, definitions.json")
	logDir := flag.String("log-dir", "logs", "directory holding player_vocabulary.jsonl and vocabulary_aggregate.json")
	requestTimeout := flag.Duration("request-timeout", 4*time.Second, "per-snapshot processing deadline")
	flushInterval := flag.Duration("flush-interval", 30*time.Second, "event log / aggregate flush interval")
	batchSize := flag.Int("batch-size", 10, "event log buffer size before a forced flush")
	maxUniqueWords := flag.Int("max-unique-words", 16, "subset cache unique-word cap")
	scoreWFreq := flag.Float64("score-w-freq", construct.DefaultScoreWeights.WeightFrequency, "construction engine frequency weight")
	scoreWLen := flag.Float64("score-w-len", construct.DefaultScoreWeights.WeightLength, "construction engine length weight")
	scoreFloor := flag.Float64("score-floor", construct.DefaultScoreWeights.FrequencyFloor, "construction engine Zipf frequency floor")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	port := *portFlag
	if port == 0 {
		port = 3000
		if env := os.Getenv("PORT"); env != "" {
			if _, err := fmt.Sscanf(env, "%d", &port); err != nil {
				log.Printf("wordbenchd: ignoring malformed PORT=%q: %v", env, err)
				port = 3000
			}
		}
	}

	if err := os.MkdirAll(*dataDir, 0o755); err != nil {
		log.Fatalf("wordbenchd: creating data dir: %v", err)
	}
	if err := os.MkdirAll(*logDir, 0o755); err != nil {
		log.Fatalf("wordbenchd: creating log dir: %v", err)
	}

	wordsPath := filepath.Join(*dataDir, "words.txt")
	freqPath := filepath.Join(*dataDir, "word_frequencies.json")
	defsPath := filepath.Join(*dataDir, "definitions.json")
	eventLogPath := filepath.Join(*logDir, "player_vocabulary.jsonl")
	aggregatePath := filepath.Join(*logDir, "vocabulary_aggregate.json")

	dict := dictionary.LoadOrFallback(wordsPath, log.Printf)
	if err := dict.LoadFrequencies(freqPath); err != nil {
		log.Printf("wordbenchd: %s unavailable (%v); scoring degrades to no-sort, no-filter", freqPath, err)
	}

	fuser := fusion.New(dict)
	engine := construct.New(dict)
	engine.MaxUniqueWords = *maxUniqueWords

	eventLog, err := journal.NewEventLog(eventLogPath, *batchSize, *flushInterval)
	if err != nil {
		log.Fatalf("wordbenchd: opening event log: %v", err)
	}
	eventLog.OnError = func(err error) { log.Printf("wordbenchd: %v", err) }
	defer eventLog.Close()

	nowFunc := func() int64 { return time.Now().Unix() }
	aggregator := journal.Load(aggregatePath, nowFunc, log.Printf)

	if *flushInterval > 0 {
		go func() {
			ticker := time.NewTicker(*flushInterval)
			defer ticker.Stop()
			for {
				select {
				case <-ctx.Done():
					return
				case <-ticker.C:
					if err := aggregator.Save(aggregatePath); err != nil {
						log.Printf("wordbenchd: saving aggregate: %v", err)
					}
				}
			}
		}()
	}

	j := journal.New(dict, eventLog, aggregator)

	weights := construct.ScoreWeights{
		WeightFrequency: *scoreWFreq,
		WeightLength:    *scoreWLen,
		FrequencyFloor:  *scoreFloor,
	}

	sv := solver.New(fuser, j, engine, weights, 32)
	defer sv.Close()

	defStore := defs.New(defsPath)
	defer defStore.Close()

	hub := server.NewHub()
	srv := server.New(sv, defStore, aggregator, hub, eventLogPath, *requestTimeout)

	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", port),
		Handler: srv.Handler(),
	}

	go func() {
		log.Printf("wordbenchd: listening on :%d", port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("wordbenchd: http server: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("wordbenchd: shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("wordbenchd: http shutdown: %v", err)
	}
	srv.Shutdown()

	if err := aggregator.Save(aggregatePath); err != nil {
		log.Printf("wordbenchd: saving aggregate on shutdown: %v", err)
	}
	log.Println("wordbenchd: shutdown complete")
}
