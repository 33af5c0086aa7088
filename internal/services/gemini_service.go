package services

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"inventory-intake-backend/config"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/genai"
)

// GeminiService is the optional external column classifier. It is advisory
// and fallible: the column mapper swallows every error it returns.
type GeminiService struct {
	client      *genai.Client
	cache       map[string]*CachedResponse
	cacheMutex  sync.RWMutex
	rateLimiter *rate.Limiter
}

type CachedResponse struct {
	Data      string
	ExpiresAt time.Time
}

type RetryConfig struct {
	MaxRetries    int
	InitialDelay  time.Duration
	MaxDelay      time.Duration
	BackoffFactor float64
}

func NewGeminiService(apiKey string) (*GeminiService, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, err
	}

	service := &GeminiService{
		client:      client,
		cache:       make(map[string]*CachedResponse),
		rateLimiter: rate.NewLimiter(rate.Every(time.Minute), 15), // 15 requests per minute
	}

	service.StartCacheCleanup()

	return service, nil
}

// ClassifyColumns submits the file headers plus a few sample rows and parses
// the model's column-to-field suggestion. Returned map keys are file headers,
// values are canonical field names; the caller filters out anything invalid
// or already claimed.
func (g *GeminiService) ClassifyColumns(ctx context.Context, headers []string, samples [][]string) (map[string]string, error) {
	prompt := buildClassificationPrompt(headers, samples)

	response, err := g.GenerateContentWithRetry(ctx, prompt, nil)
	if err != nil {
		return nil, err
	}

	suggestions, err := parseClassificationResponse(response)
	if err != nil {
		return nil, fmt.Errorf("unparseable classification response: %w", err)
	}
	return suggestions, nil
}

func buildClassificationPrompt(headers []string, samples [][]string) string {
	var b strings.Builder
	b.WriteString("You map spreadsheet columns of a supplier inventory file to product fields.\n")
	b.WriteString("Target fields: name, sku, description, brand, external_ref, price, cost, stock, min_stock, status.\n")
	b.WriteString("Respond with a single JSON object mapping each column header to one target field, ")
	b.WriteString("omitting headers that match no field. No prose, JSON only.\n\n")

	b.WriteString("Headers: ")
	b.WriteString(strings.Join(headers, " | "))
	b.WriteString("\n")
	for i, row := range samples {
		b.WriteString(fmt.Sprintf("Row %d: %s\n", i+1, strings.Join(row, " | ")))
	}
	return b.String()
}

func parseClassificationResponse(response string) (map[string]string, error) {
	cleaned := strings.TrimSpace(response)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	// Tolerate prose around the object by slicing to the outermost braces.
	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start == -1 || end == -1 || end < start {
		return nil, fmt.Errorf("no JSON object in response")
	}

	var suggestions map[string]string
	if err := json.Unmarshal([]byte(cleaned[start:end+1]), &suggestions); err != nil {
		return nil, err
	}
	return suggestions, nil
}

func (g *GeminiService) GenerateContentWithRetry(ctx context.Context, prompt string, config *RetryConfig) (string, error) {
	if config == nil {
		config = &RetryConfig{
			MaxRetries:    3,
			InitialDelay:  time.Second,
			MaxDelay:      time.Minute,
			BackoffFactor: 2.0,
		}
	}

	// Check cache first
	if cached := g.getFromCache(prompt); cached != "" {
		return cached, nil
	}

	// Rate limit check
	if err := g.rateLimiter.Wait(ctx); err != nil {
		return "", fmt.Errorf("rate limit exceeded: %w", err)
	}

	var lastErr error
	delay := config.InitialDelay

	for attempt := 0; attempt <= config.MaxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return "", ctx.Err()
			case <-time.After(delay):
				// Continue with retry
			}
		}

		result, err := g.generateContent(ctx, prompt)
		if err == nil {
			g.cacheResponse(prompt, result)
			return result, nil
		}

		lastErr = err

		if !g.isRetryableError(err) {
			break
		}

		delay = time.Duration(float64(delay) * config.BackoffFactor)
		if delay > config.MaxDelay {
			delay = config.MaxDelay
		}
	}

	return "", fmt.Errorf("failed after %d attempts: %w", config.MaxRetries+1, lastErr)
}

func (g *GeminiService) generateContent(ctx context.Context, prompt string) (string, error) {
	config.Logger.Info("Sending request to Gemini 2.5 Flash",
		zap.String("type", "column_classification"),
	)

	parts := []*genai.Part{
		{Text: prompt},
	}
	contents := []*genai.Content{
		{Parts: parts},
	}

	startTime := time.Now()

	resp, err := g.client.Models.GenerateContent(ctx, "gemini-2.5-flash", contents, nil)
	if err != nil {
		config.Logger.Error("Gemini API request failed",
			zap.String("type", "column_classification"),
			zap.Error(err),
			zap.Duration("duration", time.Since(startTime)),
		)
		return "", err
	}

	responseText := resp.Text()

	config.Logger.Info("Received response from Gemini 2.5 Flash",
		zap.String("type", "column_classification"),
		zap.Int("response_length", len(responseText)),
		zap.Duration("duration", time.Since(startTime)),
	)

	return responseText, nil
}

func (g *GeminiService) isRetryableError(err error) bool {
	errStr := err.Error()
	retryableErrors := []string{
		"rate limit",
		"quota exceeded",
		"temporary",
		"timeout",
		"connection",
		"503",
		"429",
		"internal error",
		"service unavailable",
	}

	for _, retryable := range retryableErrors {
		if strings.Contains(strings.ToLower(errStr), retryable) {
			return true
		}
	}
	return false
}

func (g *GeminiService) getFromCache(prompt string) string {
	key := g.generateCacheKey(prompt)

	g.cacheMutex.RLock()
	defer g.cacheMutex.RUnlock()

	if cached, exists := g.cache[key]; exists {
		if time.Now().Before(cached.ExpiresAt) {
			return cached.Data
		}
	}
	return ""
}

func (g *GeminiService) cacheResponse(prompt, response string) {
	key := g.generateCacheKey(prompt)

	g.cacheMutex.Lock()
	defer g.cacheMutex.Unlock()

	g.cache[key] = &CachedResponse{
		Data:      response,
		ExpiresAt: time.Now().Add(24 * time.Hour), // Cache for 24 hours
	}
}

func (g *GeminiService) generateCacheKey(prompt string) string {
	hash := md5.Sum([]byte(prompt))
	return hex.EncodeToString(hash[:])
}

func (g *GeminiService) StartCacheCleanup() {
	go func() {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()

		for range ticker.C {
			g.cleanupExpiredCache()
		}
	}()
}

func (g *GeminiService) cleanupExpiredCache() {
	g.cacheMutex.Lock()
	defer g.cacheMutex.Unlock()

	now := time.Now()
	for key, cached := range g.cache {
		if now.After(cached.ExpiresAt) {
			delete(g.cache, key)
		}
	}
}
