package cmd

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// parseKV parses repeated key=value flag values.
func parseKV(flag string, values []string) (map[string]string, error) {
	out := make(map[string]string, len(values))
	for _, kv := range values {
		k, v, ok := strings.Cut(kv, "=")
		k = strings.TrimSpace(k)
		if !ok || k == "" {
			return nil, fmt.Errorf("--%s %q: expected key=value", flag, kv)
		}
		out[k] = v
	}
	return out, nil
}

type metricArg struct {
	key   string
	value float64
	step  int64
}

// parseMetric parses key=value[@step].
func parseMetric(s string) (metricArg, error) {
	k, rest, ok := strings.Cut(s, "=")
	k = strings.TrimSpace(k)
	if !ok || k == "" {
		return metricArg{}, fmt.Errorf("--metric %q: expected key=value[@step]", s)
	}

	m := metricArg{key: k}
	raw, stepRaw, hasStep := strings.Cut(rest, "@")
	if hasStep {
		step, err := strconv.ParseInt(strings.TrimSpace(stepRaw), 10, 64)
		if err != nil {
			return metricArg{}, fmt.Errorf("--metric %q: step must be an integer", s)
		}
		m.step = step
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return metricArg{}, fmt.Errorf("--metric %q: value must be a number", s)
	}
	m.value = v
	return m, nil
}

// parseFileSpec splits src[:dir].
func parseFileSpec(s string) (src, dir string) {
	src, dir, _ = strings.Cut(s, ":")
	return src, dir
}

// envBool reads a true/1/yes style switch. ok is false when name is unset.
func envBool(name string) (value, ok bool) {
	raw, set := os.LookupEnv(name)
	if !set {
		return false, false
	}
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "true", "1", "yes":
		return true, true
	default:
		return false, true
	}
}

// experimentOrDefault falls back to tracking.default_experiment.
func experimentOrDefault(name string) string {
	if strings.TrimSpace(name) != "" {
		return name
	}
	return cfg.Tracking.DefaultExperiment
}
