package main

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	goGate "github.com/MrEthical07/goGate"
	"github.com/MrEthical07/goGate/session"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

type loadtestOptions struct {
	sessions    int
	concurrency int
	ops         int
}

func newLoadtestCmd(st *cliState) *cobra.Command {
	var opts loadtestOptions

	cmd := &cobra.Command{
		Use:   "loadtest",
		Short: "Measure pipeline latency with strict session checks",
		Long: `Seeds sessions in Redis (Redis.Addr, or an in-process Redis when unset),
then evaluates the pipeline concurrently for signed-in and anonymous
requests and prints throughput and latency percentiles.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.sessions <= 0 || opts.concurrency <= 0 || opts.ops <= 0 {
				return fmt.Errorf("sessions, concurrency, and ops must be > 0")
			}
			out := cmd.OutOrStdout()

			var client redis.UniversalClient
			if st.config.Redis.Addr == "" {
				mr, err := miniredis.Run()
				if err != nil {
					return fmt.Errorf("failed to start miniredis: %w", err)
				}
				defer mr.Close()
				client = redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
				fmt.Fprintf(out, "using miniredis at %s\n", mr.Addr())
			} else {
				client = redis.NewUniversalClient(&redis.UniversalOptions{
					Addrs:    []string{st.config.Redis.Addr},
					Password: st.config.Redis.Password,
					DB:       st.config.Redis.DB,
				})
				fmt.Fprintf(out, "using redis at %s\n", st.config.Redis.Addr)
			}
			defer client.Close()

			cfg := st.config
			cfg.Session.Strict = true
			cfg.Audit.Enabled = false
			g, err := goGate.New().WithConfig(cfg).WithRedis(client).Build()
			if err != nil {
				return err
			}
			defer g.Close()

			return runLoadtest(cmd.Context(), out, g, opts)
		},
	}

	cmd.Flags().IntVar(&opts.sessions, "sessions", 10000, "number of sessions to seed")
	cmd.Flags().IntVar(&opts.concurrency, "concurrency", 64, "number of concurrent workers")
	cmd.Flags().IntVar(&opts.ops, "ops", 100000, "pipeline evaluations per phase")
	return cmd
}

func runLoadtest(ctx context.Context, out io.Writer, g *goGate.Gate, opts loadtestOptions) error {
	cfg := g.Config()
	tokens := make([]string, opts.sessions)

	fmt.Fprintf(out, "seeding %d sessions...\n", opts.sessions)
	startSeed := time.Now()
	for i := range tokens {
		sid := fmt.Sprintf("lt-%d", i)
		uid := fmt.Sprintf("u%d", i%100)
		now := time.Now()
		sess := &session.Session{
			SessionID: sid,
			UserID:    uid,
			CreatedAt: now.Unix(),
			ExpiresAt: now.Add(cfg.Session.TTL).Unix(),
		}
		if err := g.Sessions().Save(ctx, sess, cfg.Session.TTL); err != nil {
			return fmt.Errorf("save failed: %w", err)
		}
		token, err := g.Tokens().CreateSession(uid, sid, "")
		if err != nil {
			return err
		}
		tokens[i] = token
	}
	fmt.Fprintf(out, "seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	signedIn := runPhase(opts, func(r *rand.Rand) goGate.RequestContext {
		cookies := map[string]string{
			cfg.Session.CookieName: tokens[r.Intn(len(tokens))],
			cfg.Locale.CookieName:  "en",
		}
		return goGate.NewRequest(ctx, "/en/home", "", cookies, nil, goGate.DeviceDesktop)
	}, g.Handle)
	anonymous := runPhase(opts, func(*rand.Rand) goGate.RequestContext {
		return goGate.NewRequest(ctx, "/dashboard", "", nil, nil, goGate.DeviceMobile)
	}, g.Handle)

	fmt.Fprintln(out, "---- results ----")
	printStats(out, "signed-in", signedIn)
	printStats(out, "anonymous", anonymous)
	return nil
}

func runPhase(opts loadtestOptions, next func(*rand.Rand) goGate.RequestContext, handle goGate.Handler) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, opts.ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < opts.concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= opts.ops {
					return
				}
				rc := next(r)
				t0 := time.Now()
				_, err := handle(rc)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
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
	return samples[(len(samples)-1)*p/100]
}

func printStats(out io.Writer, name string, s phaseStats) {
	fmt.Fprintf(out, "%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
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
