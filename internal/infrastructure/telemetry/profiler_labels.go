package telemetry

import (
	"context"
	"sort"
	"strings"

	"github.com/grafana/pyroscope-go"
)

// Profiling label keys
const (
	ProfilingLabelRoute       = "route"
	ProfilingLabelMethod      = "method"
	ProfilingLabelResource    = "resource"
	ProfilingLabelOperation   = "operation"
	ProfilingLabelEnvironment = "supply_environment"
)

// MaxLabelValueLength caps label values to keep profile series bounded
const MaxLabelValueLength = 128

// highCardinalityLabels are dropped from profiling labels. Cart and booking
// references are unique per request and would explode the series count.
var highCardinalityLabels = map[string]bool{
	"request_id":          true,
	"trace_id":            true,
	"span_id":             true,
	"partner_cart_ref":    true,
	"partner_booking_ref": true,
	"search_term":         true,
}

// WithProfilingLabels runs fn with pprof labels attached, so CPU and
// allocation samples taken inside fn carry them into Pyroscope.
// The labels map is not retained.
func WithProfilingLabels(ctx context.Context, labels map[string]string, fn func(context.Context)) {
	pairs := sanitizeLabels(labels)
	if len(pairs) == 0 {
		fn(ctx)
		return
	}
	pyroscope.TagWrapper(ctx, pyroscope.Labels(pairs...), fn)
}

// HTTPRequestLabels labels one inbound request by its route pattern
func HTTPRequestLabels(resource, route, method string) map[string]string {
	return map[string]string{
		ProfilingLabelResource: resource,
		ProfilingLabelRoute:    route,
		ProfilingLabelMethod:   method,
	}
}

// SupplyOperationLabels labels one outbound supply API call
func SupplyOperationLabels(operation string) map[string]string {
	return map[string]string{ProfilingLabelOperation: operation}
}

// sanitizeLabels drops empty and high-cardinality entries, truncates long
// values and returns key/value pairs sorted by key.
func sanitizeLabels(labels map[string]string) []string {
	if len(labels) == 0 {
		return nil
	}

	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(labels)*2)
	for _, key := range keys {
		value := labels[key]
		clean := sanitizeLabelKey(key)
		if clean == "" || value == "" || highCardinalityLabels[clean] {
			continue
		}
		if len(value) > MaxLabelValueLength {
			value = value[:MaxLabelValueLength]
		}
		pairs = append(pairs, clean, value)
	}
	return pairs
}

// sanitizeLabelKey lowercases the key and keeps only [a-z0-9_]
func sanitizeLabelKey(key string) string {
	key = strings.ToLower(key)
	var b strings.Builder
	b.Grow(len(key))
	for _, r := range key {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '_':
			b.WriteRune(r)
		case r == ' ', r == '-', r == '.':
			b.WriteByte('_')
		}
	}
	return b.String()
}
