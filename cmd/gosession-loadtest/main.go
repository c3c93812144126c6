// Command gosession-loadtest measures the request pipeline under concurrency.
// Each worker owns a client persisting to redis under its own prefix; the
// login phase signs every worker in and the request phase issues
// authenticated GETs through the full interceptor chain.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http/httptest"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"

	goSession "github.com/MrEthical07/goSession"
	"github.com/MrEthical07/goSession/internal/mockapi"
)

const (
	demoEmail    = "load@example.com"
	demoPassword = "load-test-password"
)

func main() {
	var (
		workers   = flag.Int("workers", 64, "number of concurrent clients")
		ops       = flag.Int("ops", 20000, "requests in the request phase")
		baseURL   = flag.String("base-url", "", "API base URL; if empty an in-process mock API is used")
		email     = flag.String("email", demoEmail, "account used by every worker")
		password  = flag.String("password", demoPassword, "password of the account")
		path      = flag.String("path", "/me", "path requested in the request phase")
		redisAddr = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *workers <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "workers and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	if *baseURL == "" {
		api, err := mockapi.New(mockapi.Options{
			Prefix:     "/api",
			Users:      []mockapi.User{{Email: *email, Password: *password}},
			SigningKey: []byte("gosession-loadtest-signing-key"),
		})
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start mock api: %v\n", err)
			os.Exit(1)
		}
		srv := httptest.NewServer(api.Handler())
		defer srv.Close()
		*baseURL = srv.URL + "/api"
		fmt.Printf("using in-process mock api at %s\n", *baseURL)
	}

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		defer mr.Close()
		addr = mr.Addr()
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		fmt.Printf("using redis at %s\n", addr)
	}

	clients := make([]*goSession.Client, *workers)
	for i := range clients {
		cfg := goSession.DefaultConfig()
		cfg.API.BaseURL = *baseURL
		cfg.Storage.Backend = goSession.StorageRedis
		cfg.Storage.RedisAddr = addr
		cfg.Storage.RedisPrefix = fmt.Sprintf("loadtest:%d", i)
		cfg.Metrics.EnableLatencyHistograms = true
		c, err := goSession.New().WithConfig(cfg).Build(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "build client %d: %v\n", i, err)
			os.Exit(1)
		}
		defer c.Close()
		clients[i] = c
	}

	loginStats := runLoginPhase(ctx, clients, *email, *password)
	requestStats := runRequestPhase(ctx, clients, *path, *ops)

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("request", requestStats)
}

func runLoginPhase(ctx context.Context, clients []*goSession.Client, email, password string) phaseStats {
	var (
		wg        sync.WaitGroup
		failures  int64
		latencies = make([]time.Duration, len(clients))
	)

	start := time.Now()
	for i, c := range clients {
		wg.Add(1)
		go func(i int, c *goSession.Client) {
			defer wg.Done()
			t0 := time.Now()
			if _, err := c.Login(ctx, email, password); err != nil {
				atomic.AddInt64(&failures, 1)
			}
			latencies[i] = time.Since(t0)
		}(i, c)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

func runRequestPhase(ctx context.Context, clients []*goSession.Client, path string, ops int) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for _, c := range clients {
		wg.Add(1)
		go func(c *goSession.Client) {
			defer wg.Done()
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				t0 := time.Now()
				_, err := c.API().Get(ctx, path)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(c)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
