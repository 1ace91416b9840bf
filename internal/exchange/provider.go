// Package exchange supplies the BRL-per-USD rate used to price products in dollars.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/iyhunko/inventory-dashboard/internal/config"
	"github.com/iyhunko/inventory-dashboard/internal/metrics"
)

// ErrInvalidRate is returned when a rate is not a positive number.
var ErrInvalidRate = errors.New("exchange rate must be positive")

// Rate sources reported by Current.
const (
	SourceRemote   = "remote"
	SourceManual   = "manual"
	SourceFallback = "fallback"
)

// Provider returns the current rate. The quote endpoint is asked at most once per refresh
// interval, whether or not the previous attempt succeeded; between attempts, and when the
// endpoint fails, the last known rate, or the configured default, is returned. A rate set
// manually is pinned and no further quotes are fetched.
type Provider struct {
	client      *http.Client
	url         string
	defaultRate float64
	refresh     time.Duration
	now         func() time.Time

	mu        sync.Mutex
	rate      float64
	source    string
	checkedAt time.Time
}

// NewProvider builds a provider from conf. A nil client gets a 5 second timeout.
func NewProvider(conf config.ExchangeRate, client *http.Client) *Provider {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &Provider{
		client:      client,
		url:         conf.URL,
		defaultRate: conf.Default,
		refresh:     conf.RefreshInterval,
		now:         time.Now,
	}
}

// Rate returns the BRL-per-USD rate. It never fails.
func (p *Provider) Rate(ctx context.Context) float64 {
	rate, _ := p.Current(ctx)
	return rate
}

// Current returns the rate together with where it came from.
func (p *Provider) Current(ctx context.Context) (float64, string) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.source == SourceManual {
		return p.rate, p.source
	}
	if p.url == "" || (!p.checkedAt.IsZero() && p.now().Sub(p.checkedAt) < p.refresh) {
		return p.lastKnown()
	}

	p.checkedAt = p.now()
	rate, err := p.fetch(ctx)
	if err != nil {
		metrics.ExchangeRateFallbacks.Inc()
		rate, source := p.lastKnown()
		slog.Warn("failed to fetch exchange rate",
			slog.Float64("rate", rate),
			slog.String("source", source),
			slog.Any("err", err))
		return rate, source
	}

	p.rate = rate
	p.source = SourceRemote
	return p.rate, p.source
}

func (p *Provider) lastKnown() (float64, string) {
	if p.rate > 0 {
		return p.rate, p.source
	}
	return p.defaultRate, SourceFallback
}

// SetRate pins rate until the process exits.
func (p *Provider) SetRate(rate float64) error {
	if rate <= 0 {
		return ErrInvalidRate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.rate = rate
	p.source = SourceManual
	return nil
}

type quoteResponse struct {
	USDBRL struct {
		Bid string `json:"bid"`
	} `json:"USDBRL"`
}

func (p *Provider) fetch(ctx context.Context) (float64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("failed to request quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return 0, fmt.Errorf("unexpected quote status: %d", resp.StatusCode)
	}

	var quote quoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return 0, fmt.Errorf("failed to decode quote: %w", err)
	}
	rate, err := strconv.ParseFloat(quote.USDBRL.Bid, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid bid %q: %w", quote.USDBRL.Bid, err)
	}
	if rate <= 0 {
		return 0, ErrInvalidRate
	}
	return rate, nil
}
