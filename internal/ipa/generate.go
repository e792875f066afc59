// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package ipa

import (
	"context"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"crosspair/internal/resilience"

	"github.com/go-resty/resty/v2"
	"golang.org/x/sync/semaphore"
)

// GenerationConfig controls best-of-N transcription generation.
type GenerationConfig struct {
	APIBase     string  // OpenAI-compatible endpoint base, e.g. http://localhost:8355/v1
	Model       string  // model identifier passed through to the server
	N           int     // candidates per name
	Temperature float64 // enough variation to expose uncertainty
	MaxTokens   int     // IPA transcriptions are short
	Concurrency int64   // max parallel API calls in flight
}

// DefaultGenerationConfig returns the settings tuned against a local
// TRT-LLM deployment.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		APIBase:     "http://localhost:8355/v1",
		Model:       "nvidia/Qwen3-235B-A22B-FP4",
		N:           10,
		Temperature: 0.6,
		MaxTokens:   128,
		Concurrency: 32,
	}
}

// Result is the consensus transcription for one name.
type Result struct {
	Name       string   `json:"name"`
	IPA        string   `json:"ipa"`        // consensus transcription (empty if every candidate failed)
	Confidence float64  `json:"confidence"` // proportion of N that agreed (0.0-1.0)
	Candidates []string `json:"candidates"` // all raw candidates that returned
}

// Generator issues transcription requests against one endpoint.
type Generator struct {
	cfg    GenerationConfig
	client *resty.Client
	sem    *semaphore.Weighted
}

// NewGenerator creates a generator; zero-valued config fields fall back
// to the defaults.
func NewGenerator(cfg GenerationConfig) *Generator {
	def := DefaultGenerationConfig()
	if cfg.APIBase == "" {
		cfg.APIBase = def.APIBase
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.N <= 0 {
		cfg.N = def.N
	}
	if cfg.Temperature <= 0 {
		cfg.Temperature = def.Temperature
	}
	if cfg.MaxTokens <= 0 {
		cfg.MaxTokens = def.MaxTokens
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(cfg.APIBase, "/")).
		SetTimeout(30 * time.Second)

	return &Generator{
		cfg:    cfg,
		client: client,
		sem:    semaphore.NewWeighted(cfg.Concurrency),
	}
}

type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	N           int       `json:"n"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	// Suppress Qwen3 thinking blocks server-side where supported.
	ChatTemplateKwargs map[string]interface{} `json:"chat_template_kwargs,omitempty"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// GenerateBatch transcribes names, N candidates each, all candidate calls
// across all names sharing one concurrency semaphore so the server stays
// saturated without being overwhelmed. Results come back in input order.
// onProgress, when non-nil, is called after every 100 completed names.
func (g *Generator) GenerateBatch(ctx context.Context, names []string, onProgress func(done, total int)) ([]Result, error) {
	results := make([]Result, len(names))

	var wg sync.WaitGroup
	var mu sync.Mutex
	completed := 0

	for i, name := range names {
		wg.Add(1)
		go func(idx int, n string) {
			defer wg.Done()
			results[idx] = g.generateOne(ctx, n)

			mu.Lock()
			completed++
			if onProgress != nil && completed%100 == 0 {
				onProgress(completed, len(names))
			}
			mu.Unlock()
		}(i, name)
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return results, err
	}
	return results, nil
}

// generateOne fires N independent n=1 requests for a single name. N
// separate requests (instead of one n=N request) sidestep TRT-LLM batch
// size constraints; a failed candidate simply drops out of the vote.
func (g *Generator) generateOne(ctx context.Context, name string) Result {
	messages := BuildMessages(name)

	candidates := make([]string, g.cfg.N)
	var wg sync.WaitGroup
	for i := 0; i < g.cfg.N; i++ {
		wg.Add(1)
		go func(slot int) {
			defer wg.Done()
			if err := g.sem.Acquire(ctx, 1); err != nil {
				return
			}
			defer g.sem.Release(1)

			content, err := g.singleCall(ctx, messages)
			if err == nil {
				candidates[slot] = content
			}
		}(i)
	}
	wg.Wait()

	var returned []string
	for _, c := range candidates {
		if c != "" {
			returned = append(returned, c)
		}
	}

	ipa, confidence := selectConsensus(returned)
	return Result{Name: name, IPA: ipa, Confidence: confidence, Candidates: returned}
}

// singleCall makes one n=1 chat completion request with shallow retry.
func (g *Generator) singleCall(ctx context.Context, messages []Message) (string, error) {
	payload := chatRequest{
		Model:              g.cfg.Model,
		Messages:           messages,
		N:                  1,
		Temperature:        g.cfg.Temperature,
		MaxTokens:          g.cfg.MaxTokens,
		ChatTemplateKwargs: map[string]interface{}{"enable_thinking": false},
	}

	return resilience.RetryWithResult(ctx, resilience.InferenceRetryConfig(), func(ctx context.Context) (string, error) {
		var parsed chatResponse
		resp, err := g.client.R().
			SetContext(ctx).
			SetBody(payload).
			SetResult(&parsed).
			Post("/chat/completions")
		if err != nil {
			return "", resilience.NewTransientError(fmt.Sprintf("chat completion request: %v", err), err)
		}
		if resp.IsError() {
			return "", resilience.FromHTTPStatus(resp.StatusCode(), resp.String())
		}
		if len(parsed.Choices) == 0 {
			return "", resilience.NewPermanentError("chat completion returned no choices", nil)
		}
		return parsed.Choices[0].Message.Content, nil
	})
}

var (
	thinkBlock = regexp.MustCompile(`(?s)<think>.*?</think>`)
	slashed    = regexp.MustCompile(`^/(.+)/$`)
)

// normalizeIPA reduces a raw model output to a clean IPA string: strip
// thinking blocks, unwrap /slashes/, otherwise fall back to the first line.
func normalizeIPA(raw string) string {
	text := strings.TrimSpace(thinkBlock.ReplaceAllString(strings.TrimSpace(raw), ""))
	if m := slashed.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	firstLine, _, _ := strings.Cut(text, "\n")
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(firstLine), "/"))
}

// selectConsensus picks the plurality transcription. Confidence is the
// winning count over the candidates that returned. Ties break to the
// candidate seen first.
func selectConsensus(candidates []string) (string, float64) {
	if len(candidates) == 0 {
		return "", 0
	}

	counts := make(map[string]int)
	var order []string
	for _, c := range candidates {
		normalized := normalizeIPA(c)
		if normalized == "" {
			continue
		}
		if _, seen := counts[normalized]; !seen {
			order = append(order, normalized)
		}
		counts[normalized]++
	}
	if len(order) == 0 {
		return "", 0
	}

	best := order[0]
	for _, cand := range order[1:] {
		if counts[cand] > counts[best] {
			best = cand
		}
	}
	return best, float64(counts[best]) / float64(len(candidates))
}
