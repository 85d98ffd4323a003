package metrics

import (
	"fmt"
	"io"
	"net/http"
	"sort"
	"strconv"
	"sync"
	"time"
)

const namespace = "greencare"

type requestKey struct {
	method string
	route  string
	status int
}

type routeKey struct {
	method string
	route  string
}

type durationStat struct {
	count Counter
	nanos Counter
}

type namedCounter struct {
	help    string
	counter *Counter
}

// Registry collects HTTP request metrics and named application counters
// and exposes them in the Prometheus text format.
type Registry struct {
	mu        sync.Mutex
	requests  map[requestKey]*Counter
	durations map[routeKey]*durationStat
	counters  map[string]*namedCounter
}

func NewRegistry() *Registry {
	return &Registry{
		requests:  make(map[requestKey]*Counter),
		durations: make(map[routeKey]*durationStat),
		counters:  make(map[string]*namedCounter),
	}
}

// Counter returns the counter registered under name, creating it on first use.
func (r *Registry) Counter(name, help string) *Counter {
	r.mu.Lock()
	defer r.mu.Unlock()

	full := namespace + "_" + name
	if c, ok := r.counters[full]; ok {
		return c.counter
	}
	c := &namedCounter{help: help, counter: &Counter{}}
	r.counters[full] = c
	return c.counter
}

func (r *Registry) ObserveRequest(method, route string, status int, d time.Duration) {
	r.mu.Lock()
	req, ok := r.requests[requestKey{method, route, status}]
	if !ok {
		req = &Counter{}
		r.requests[requestKey{method, route, status}] = req
	}
	dur, ok := r.durations[routeKey{method, route}]
	if !ok {
		dur = &durationStat{}
		r.durations[routeKey{method, route}] = dur
	}
	r.mu.Unlock()

	req.Inc()
	dur.count.Inc()
	dur.nanos.Add(uint64(d.Nanoseconds()))
}

func (r *Registry) Handler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		r.Expose(w)
	})
}

// Expose writes every metric in a stable order.
func (r *Registry) Expose(w io.Writer) {
	r.mu.Lock()
	defer r.mu.Unlock()

	reqKeys := make([]requestKey, 0, len(r.requests))
	for k := range r.requests {
		reqKeys = append(reqKeys, k)
	}
	sort.Slice(reqKeys, func(i, j int) bool {
		a, b := reqKeys[i], reqKeys[j]
		if a.route != b.route {
			return a.route < b.route
		}
		if a.method != b.method {
			return a.method < b.method
		}
		return a.status < b.status
	})

	fmt.Fprintf(w, "# HELP %s_http_requests_total Total HTTP requests.\n", namespace)
	fmt.Fprintf(w, "# TYPE %s_http_requests_total counter\n", namespace)
	for _, k := range reqKeys {
		fmt.Fprintf(w, "%s_http_requests_total{method=%q,route=%q,status=\"%d\"} %d\n",
			namespace, k.method, k.route, k.status, r.requests[k].Load())
	}

	durKeys := make([]routeKey, 0, len(r.durations))
	for k := range r.durations {
		durKeys = append(durKeys, k)
	}
	sort.Slice(durKeys, func(i, j int) bool {
		if durKeys[i].route != durKeys[j].route {
			return durKeys[i].route < durKeys[j].route
		}
		return durKeys[i].method < durKeys[j].method
	})

	fmt.Fprintf(w, "# HELP %s_http_request_duration_seconds HTTP request latency.\n", namespace)
	fmt.Fprintf(w, "# TYPE %s_http_request_duration_seconds summary\n", namespace)
	for _, k := range durKeys {
		d := r.durations[k]
		seconds := time.Duration(d.nanos.Load()).Seconds()
		fmt.Fprintf(w, "%s_http_request_duration_seconds_sum{method=%q,route=%q} %s\n",
			namespace, k.method, k.route, strconv.FormatFloat(seconds, 'f', -1, 64))
		fmt.Fprintf(w, "%s_http_request_duration_seconds_count{method=%q,route=%q} %d\n",
			namespace, k.method, k.route, d.count.Load())
	}

	names := make([]string, 0, len(r.counters))
	for n := range r.counters {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		c := r.counters[n]
		fmt.Fprintf(w, "# HELP %s %s\n# TYPE %s counter\n%s %d\n", n, c.help, n, n, c.counter.Load())
	}
}
