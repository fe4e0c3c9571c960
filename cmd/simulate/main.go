package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math/rand"
	"net/http"
	"os"
	"sort"
	"strconv"
	"sync"
	"sync/atomic"
	"time"
)

// simulate hammers the session lifecycle through the HTTP API. Its main job
// is to demonstrate the at-most-one-active-session invariant: for every
// appointment it fires a burst of concurrent start requests and expects at
// most one 201, with the rest rejected as conflicts. Run cmd/seed first so
// there are appointments and professionals to attend.

type SimConfig struct {
	APIBaseURL string
	Bursts     int
	Workers    int
}

type OperationMetrics struct {
	Total     int64
	Success   int64
	Conflict  int64
	Error     int64
	Latencies []time.Duration
	mu        sync.Mutex
}

func (om *OperationMetrics) Record(latency time.Duration, success, conflict bool) {
	atomic.AddInt64(&om.Total, 1)
	if success {
		atomic.AddInt64(&om.Success, 1)
	} else if conflict {
		atomic.AddInt64(&om.Conflict, 1)
	} else {
		atomic.AddInt64(&om.Error, 1)
	}

	om.mu.Lock()
	om.Latencies = append(om.Latencies, latency)
	om.mu.Unlock()
}

func (om *OperationMetrics) Stats() (avg, p95 time.Duration) {
	om.mu.Lock()
	defer om.mu.Unlock()

	if len(om.Latencies) == 0 {
		return 0, 0
	}

	latencies := make([]time.Duration, len(om.Latencies))
	copy(latencies, om.Latencies)
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var sum time.Duration
	for _, l := range latencies {
		sum += l
	}
	avg = sum / time.Duration(len(latencies))

	p95Idx := len(latencies) * 95 / 100
	if p95Idx >= len(latencies) {
		p95Idx = len(latencies) - 1
	}
	p95 = latencies[p95Idx]

	return avg, p95
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	cfg := SimConfig{
		APIBaseURL: getEnv("API_BASE_URL", "http://localhost:8080"),
		Bursts:     getEnvInt("SIM_BURSTS", 25),
		Workers:    getEnvInt("SIM_WORKERS", 8),
	}

	log.Printf("simulate starting: base_url=%s bursts=%d workers=%d",
		cfg.APIBaseURL, cfg.Bursts, cfg.Workers)

	client := &http.Client{Timeout: 10 * time.Second}

	appointments, err := fetchAppointments(client, cfg.APIBaseURL)
	if err != nil {
		log.Fatalf("fetch appointments: %v", err)
	}
	if len(appointments) == 0 {
		log.Fatal("no appointments available, run cmd/seed first")
	}
	if len(appointments) > cfg.Bursts {
		appointments = appointments[:cfg.Bursts]
	}
	log.Printf("contending over %d appointments", len(appointments))

	startMetrics := &OperationMetrics{}
	violations := 0

	for _, appointmentID := range appointments {
		winners := contendedStart(client, cfg, appointmentID, startMetrics)
		if winners > 1 {
			violations++
			log.Printf("INVARIANT VIOLATION: %d winners for appointment %s", winners, appointmentID)
		}
	}

	avg, p95 := startMetrics.Stats()
	log.Printf("starts: total=%d success=%d conflict=%d error=%d avg=%s p95=%s",
		startMetrics.Total, startMetrics.Success, startMetrics.Conflict, startMetrics.Error, avg, p95)

	if violations > 0 {
		log.Fatalf("FAILED: %d bursts produced more than one active session", violations)
	}
	log.Println("OK: no contended start burst produced more than one active session")
}

func fetchAppointments(client *http.Client, baseURL string) ([]string, error) {
	resp, err := client.Get(baseURL + "/appointments?view=upcoming")
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, raw)
	}

	var appointments []struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&appointments); err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(appointments))
	for _, a := range appointments {
		ids = append(ids, a.ID)
	}
	return ids, nil
}

// contendedStart fires Workers concurrent start requests for one appointment
// and returns how many of them succeeded. The winner's session is then
// completed or cancelled at random so the run also exercises the terminal
// transitions.
func contendedStart(client *http.Client, cfg SimConfig, appointmentID string, m *OperationMetrics) int {
	var wg sync.WaitGroup
	var winners int64
	var winnerSession atomic.Value

	for w := 0; w < cfg.Workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			body, _ := json.Marshal(map[string]string{
				"appointment_id": appointmentID,
				"created_by":     "simulate",
			})

			start := time.Now()
			resp, err := client.Post(cfg.APIBaseURL+"/sessions", "application/json", bytes.NewReader(body))
			latency := time.Since(start)
			if err != nil {
				m.Record(latency, false, false)
				return
			}
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusCreated:
				atomic.AddInt64(&winners, 1)
				var created struct {
					ID string `json:"id"`
				}
				if err := json.NewDecoder(resp.Body).Decode(&created); err == nil {
					winnerSession.Store(created.ID)
				}
				m.Record(latency, true, false)
			case http.StatusConflict:
				io.Copy(io.Discard, resp.Body)
				m.Record(latency, false, true)
			default:
				io.Copy(io.Discard, resp.Body)
				m.Record(latency, false, false)
			}
		}()
	}
	wg.Wait()

	if id, ok := winnerSession.Load().(string); ok {
		finishSession(client, cfg.APIBaseURL, id)
	}

	return int(winners)
}

func finishSession(client *http.Client, baseURL, sessionID string) {
	var path string
	var body []byte
	if rand.Intn(4) == 0 {
		path = fmt.Sprintf("%s/sessions/%s/cancel", baseURL, sessionID)
		body, _ = json.Marshal(map[string]string{"reason": "simulation abort"})
	} else {
		path = fmt.Sprintf("%s/sessions/%s/complete", baseURL, sessionID)
		body, _ = json.Marshal(map[string]string{"notes": "simulated visit"})
	}

	resp, err := client.Post(path, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("finish session %s: %v", sessionID, err)
		return
	}
	defer resp.Body.Close()
	io.Copy(io.Discard, resp.Body)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}
