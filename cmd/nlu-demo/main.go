package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"booking-assistant-nlu/config"
	"booking-assistant-nlu/internal/nlu"
	"booking-assistant-nlu/internal/nlu/catalog"
	"booking-assistant-nlu/internal/nlu/classifier"
	"booking-assistant-nlu/internal/nlu/extractor"
	"booking-assistant-nlu/internal/nlu/normalizer"
	"booking-assistant-nlu/internal/nlu/pattern"
	"booking-assistant-nlu/pkg/llmprovider"
	"booking-assistant-nlu/pkg/log"
)

func main() {
	// 1. Configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Println("Failed to load config: ", err)
		return
	}

	// 2. Logger
	logger := log.Init(log.ZapConfig{
		Level:        cfg.Logger.Level,
		Mode:         cfg.Logger.Mode,
		Encoding:     cfg.Logger.Encoding,
		ColorEnabled: cfg.Logger.ColorEnabled,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info(ctx, "Starting NLU demo...")
	logger.Infof(ctx, "Environment: %s", cfg.Environment.Name)

	// 3. Normalizer and pattern layer
	norm, err := normalizer.New(cfg.NLU.Timezone)
	if err != nil {
		logger.Warnf(ctx, "Invalid timezone %q, falling back to UTC: %v", cfg.NLU.Timezone, err)
		norm, _ = normalizer.New("UTC")
	}
	matcher := pattern.NewMatcher(pattern.DefaultTables())
	patternExtractor := pattern.NewExtractor(norm)

	// 4. LLM providers (optional; without them the engine runs pattern-only)
	var manager *llmprovider.Manager
	providers, err := llmprovider.InitializeProviders(&cfg.LLM)
	if err != nil {
		logger.Warnf(ctx, "LLM providers unavailable, running pattern-only: %v", err)
	} else {
		manager = llmprovider.NewManager(providers, &llmprovider.Config{
			FallbackEnabled: cfg.LLM.FallbackEnabled,
			RetryAttempts:   cfg.LLM.RetryAttempts,
			RetryDelay:      parseDuration(cfg.LLM.RetryDelay, time.Second),
			MaxTotalTimeout: parseDuration(cfg.LLM.MaxTotalTimeout, 60*time.Second),
			RequestsPerMin:  cfg.LLM.RequestsPerMin,
		}, logger)
		logger.Infof(ctx, "Initialized %d LLM provider(s)", len(providers))
	}

	// 5. Engine
	thresholds := classifier.Thresholds{
		PatternMatch:  cfg.NLU.PatternMatchThreshold,
		LLMAccept:     cfg.NLU.LLMAcceptThreshold,
		Secondary:     cfg.NLU.SecondaryThreshold,
		Clarification: cfg.NLU.ClarificationThreshold,
		MaxIntents:    cfg.NLU.MaxIntents,
	}
	var invoker classifier.LLMInvoker
	var extractorInvoker extractor.LLMInvoker
	if manager != nil {
		invoker = manager
		extractorInvoker = manager
	}
	intentClassifier := classifier.New(logger, invoker, matcher, patternExtractor, norm, thresholds)
	followUpExtractor := extractor.New(logger, extractorInvoker, patternExtractor, norm,
		catalog.NewFuzzyResolver(catalog.DefaultEntries()))

	// 6. Interactive loop
	fmt.Println("Type a message to classify it. Commands: /extract <tag> <reply>, /reset, /quit")
	runLoop(ctx, intentClassifier, followUpExtractor)

	logger.Info(ctx, "NLU demo stopped")
}

func runLoop(ctx context.Context, c *classifier.Classifier, e *extractor.Extractor) {
	scanner := bufio.NewScanner(os.Stdin)
	var history []nlu.ConversationTurn

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return
		}
		line := scanner.Text()
		if line == "" {
			continue
		}

		select {
		case <-ctx.Done():
			return
		default:
		}

		switch {
		case line == "/quit":
			return
		case line == "/reset":
			history = nil
			fmt.Println("conversation reset")
			continue
		case len(line) > len("/extract ") && line[:len("/extract ")] == "/extract ":
			handleExtract(ctx, e, line[len("/extract "):], history)
			continue
		}

		result, method := c.Classify(ctx, line, history, nil)
		printJSON(map[string]any{"method": method, "result": result})

		history = append(history, nlu.ConversationTurn{Role: "user", Content: line})
		if len(history) > 10 {
			history = history[len(history)-10:]
		}
	}
}

func handleExtract(ctx context.Context, e *extractor.Extractor, args string, history []nlu.ConversationTurn) {
	var tag, reply string
	if n, _ := fmt.Sscanf(args, "%s", &tag); n != 1 {
		fmt.Println("usage: /extract <tag> <reply>")
		return
	}
	reply = args[len(tag):]
	result := e.ExtractFromFollowUp(ctx, reply, nlu.EntityTag(tag), &extractor.FollowUpContext{History: history})
	if result == nil {
		fmt.Println("no value found")
		return
	}
	printJSON(result)
}

func printJSON(v any) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		fmt.Println("marshal error: ", err)
		return
	}
	fmt.Println(string(data))
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}
	if d, err := time.ParseDuration(raw); err == nil && d > 0 {
		return d
	}
	return fallback
}
