package config

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fkid009/MLflow-study/internal/log"
)

// entry is one scalar of the default config document.
type entry struct {
	key     string // dotted path
	value   string
	comment string
}

func defaultEntries() []entry {
	d := Defaults()
	return []entry{
		{"db_path", d.DBPath, "# mlstudy configuration\n# Environment variables override keys with the MLSTUDY_ prefix, e.g. MLSTUDY_DB_PATH.\n# SQLite database holding runs and the model registry"},
		{"artifact_root", d.ArtifactRoot, "# Local artifact store root"},
		{"tracking.default_experiment", d.Tracking.DefaultExperiment, "# Used when --experiment is omitted"},
		{"tracking.experiment_cache_ttl", d.Tracking.ExperimentCacheTTL.String(), ""},
		{"registry.archive_existing", strconv.FormatBool(d.Registry.ArchiveExisting), "# Archive other holders of Staging/Production on promotion"},
		{"registry.parent_run_name", d.Registry.ParentRunName, "# trial:register defaults"},
		{"registry.parent_tags.stage", d.Registry.ParentTags["stage"], ""},
		{"registry.metric", d.Registry.Metric, ""},
		{"registry.stage", d.Registry.Stage, "# Empty registers without promoting"},
		{"api.addr", d.API.Addr, "# mlstudy serve"},
		{"api.read_timeout", d.API.ReadTimeout.String(), ""},
		{"api.write_timeout", d.API.WriteTimeout.String(), ""},
		{"api.shutdown_timeout", d.API.ShutdownTimeout.String(), ""},
		{"api.rate_limit_requests", strconv.Itoa(d.API.RateLimitRequests), "# Requests per window per client IP; 0 disables"},
		{"api.rate_limit_window", d.API.RateLimitWindow.String(), ""},
		{"tracing.enabled", strconv.FormatBool(d.Tracing.Enabled), "# Exporters: none, file, stdout, otlp"},
		{"tracing.exporter", d.Tracing.Exporter, ""},
		{"tracing.file_path", d.Tracing.FilePath, ""},
		{"tracing.otlp_endpoint", d.Tracing.OTLPEndpoint, ""},
		{"tracing.sample_rate", strconv.FormatFloat(d.Tracing.SampleRate, 'f', -1, 64), ""},
		{"tracing.service_name", d.Tracing.ServiceName, ""},
		{"log.level", d.Log.Level, "# Written only with --debug or MLSTUDY_DEBUG=1"},
		{"log.format", d.Log.Format, ""},
		{"log.path", d.Log.Path, ""},
	}
}

// DefaultConfigDocument builds the commented default config as a YAML node.
func DefaultConfigDocument() *yaml.Node {
	root := &yaml.Node{Kind: yaml.MappingNode}
	for _, e := range defaultEntries() {
		_ = setScalar(root, strings.Split(e.key, "."), e.value, e.comment)
	}
	return &yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{root}}
}

// WriteDefaultConfig creates a config file at the given path with default settings and comments.
// Creates the parent directory if it doesn't exist.
func WriteDefaultConfig(configPath string) error {
	log.Debug(log.CatConfig, "Writing default config", "path", configPath)

	if err := writeDocument(configPath, DefaultConfigDocument()); err != nil {
		log.ErrorErr(log.CatConfig, "Failed to write config file", err, "path", configPath)
		return err
	}

	log.Info(log.CatConfig, "Created default config", "path", configPath)
	return nil
}

// SetValue updates one dotted key in the config file, creating the file and
// intermediate mappings as needed. Comments and other keys are preserved.
func SetValue(configPath, key, value string) error {
	if key == "" {
		return fmt.Errorf("key is required")
	}

	data, err := os.ReadFile(configPath)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading config: %w", err)
	}

	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing config: %w", err)
		}
	}
	if doc.Kind == 0 {
		doc = yaml.Node{Kind: yaml.DocumentNode, Content: []*yaml.Node{{Kind: yaml.MappingNode}}}
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 || doc.Content[0].Kind != yaml.MappingNode {
		return fmt.Errorf("config root must be a mapping")
	}

	if err := setScalar(doc.Content[0], strings.Split(key, "."), value, ""); err != nil {
		return err
	}

	log.Debug(log.CatConfig, "Updated config value", "path", configPath, "key", key)
	return writeDocument(configPath, &doc)
}

// setScalar sets path to value under m, creating mappings along the way.
func setScalar(m *yaml.Node, path []string, value, comment string) error {
	for i, k := range path {
		last := i == len(path)-1
		var child *yaml.Node
		for j := 0; j < len(m.Content)-1; j += 2 {
			if m.Content[j].Value == k {
				child = m.Content[j+1]
				break
			}
		}

		if last {
			if child == nil {
				keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: k, HeadComment: comment}
				m.Content = append(m.Content, keyNode, scalarNode(value))
				return nil
			}
			if child.Kind != yaml.ScalarNode {
				return fmt.Errorf("%s is not a scalar", strings.Join(path, "."))
			}
			*child = *scalarNode(value)
			return nil
		}

		if child == nil {
			child = &yaml.Node{Kind: yaml.MappingNode}
			m.Content = append(m.Content, &yaml.Node{Kind: yaml.ScalarNode, Value: k}, child)
		} else if child.Kind != yaml.MappingNode {
			return fmt.Errorf("%s is not a mapping", strings.Join(path[:i+1], "."))
		}
		m = child
	}
	return nil
}

// scalarNode tags booleans and numbers so they round-trip unquoted. Only the
// literals true and false are booleans; "1" and "0" stay integers.
func scalarNode(value string) *yaml.Node {
	n := &yaml.Node{Kind: yaml.ScalarNode, Value: value, Tag: "!!str"}
	switch {
	case value == "true" || value == "false":
		n.Tag = "!!bool"
	case isInt(value):
		n.Tag = "!!int"
	case isDecimalFloat(value):
		n.Tag = "!!float"
	}
	return n
}

func isInt(value string) bool {
	_, err := strconv.ParseInt(value, 10, 64)
	return err == nil
}

// isDecimalFloat rejects the spellings ParseFloat allows but YAML reads as
// strings, such as inf, nan and hex floats.
func isDecimalFloat(value string) bool {
	if _, err := strconv.ParseFloat(value, 64); err != nil {
		return false
	}
	return strings.Trim(value, "0123456789.eE+-") == ""
}

// writeDocument encodes doc and writes it atomically (temp file, then rename).
func writeDocument(configPath string, doc *yaml.Node) error {
	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	_ = encoder.Close()

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".config.yaml.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(buf.Bytes()); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, configPath); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}

	return nil
}
