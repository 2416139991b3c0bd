package loader

import (
	"os"
	"reflect"
	"strconv"
	"strings"
)

// EnvLoader loads configuration from environment variables.
type EnvLoader struct {
	prefix  string            // e.g. "UNDOCALC_"
	mapping map[string]string // env var -> config path
	kinds   map[string]reflect.Kind
	lookup  func() []string
}

// NewEnvLoader creates an environment loader for prefix.
// The prefix should include the trailing underscore.
func NewEnvLoader(prefix string) *EnvLoader {
	return NewEnvLoaderWithMapping(prefix, defaultEnvMapping(prefix))
}

// NewEnvLoaderWithMapping creates a loader with explicit mappings.
func NewEnvLoaderWithMapping(prefix string, mapping map[string]string) *EnvLoader {
	return &EnvLoader{
		prefix:  prefix,
		mapping: mapping,
		lookup:  os.Environ,
	}
}

func defaultEnvMapping(prefix string) map[string]string {
	return map[string]string{
		prefix + "LOG_LEVEL":  "logging.level",
		prefix + "LOG_FORMAT": "logging.format",
		prefix + "REDIS_ADDR": "journal.redis_addr",
		prefix + "LISTEN":     "server.listen",
		prefix + "SCRIPT":     "script.path",
	}
}

// WithSchema types values by the field each path decodes into. schema is a
// struct with toml tags. Paths it does not name stay strings.
func (l *EnvLoader) WithSchema(schema any) *EnvLoader {
	l.kinds = FieldKinds(schema)
	return l
}

// AddMapping adds an explicit environment variable mapping.
func (l *EnvLoader) AddMapping(envVar, configPath string) {
	if l.mapping == nil {
		l.mapping = make(map[string]string)
	}
	l.mapping[envVar] = configPath
}

// Load reads prefixed environment variables into a configuration map.
// Empty values are kept as empty strings.
func (l *EnvLoader) Load() (map[string]any, error) {
	config := make(map[string]any)

	for _, env := range l.lookup() {
		name, value, ok := strings.Cut(env, "=")
		if !ok || !strings.HasPrefix(name, l.prefix) {
			continue
		}

		path, mapped := l.mapping[name]
		if !mapped {
			path = l.envToPath(name)
		}
		if path == "" {
			continue
		}
		Set(config, path, parseValue(value, l.kinds[path]))
	}

	return config, nil
}

// envToPath converts UNDOCALC_HISTORY_MAX_ENTRIES to history.max_entries.
func (l *EnvLoader) envToPath(env string) string {
	name := strings.ToLower(strings.TrimPrefix(env, l.prefix))
	section, key, ok := strings.Cut(name, "_")
	if !ok || section == "" || key == "" {
		return ""
	}
	return section + "." + key
}

// parseValue converts an env string for a field of kind. Values that do not
// parse are returned unchanged so decoding reports the bad field.
func parseValue(s string, kind reflect.Kind) any {
	switch kind {
	case reflect.Bool:
		switch strings.ToLower(s) {
		case "true", "yes", "on", "1":
			return true
		case "false", "no", "off", "0":
			return false
		}
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		if i, err := strconv.ParseInt(s, 10, 64); err == nil {
			return i
		}
	}
	return s
}

// FieldKinds maps every dotted toml path of a struct to its field kind.
func FieldKinds(schema any) map[string]reflect.Kind {
	kinds := make(map[string]reflect.Kind)
	t := reflect.TypeOf(schema)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil || t.Kind() != reflect.Struct {
		return kinds
	}
	collectKinds(t, "", kinds)
	return kinds
}

func collectKinds(t reflect.Type, prefix string, kinds map[string]reflect.Kind) {
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		name, _, _ := strings.Cut(f.Tag.Get("toml"), ",")
		if name == "-" {
			continue
		}
		if name == "" {
			name = strings.ToLower(f.Name)
		}
		path := name
		if prefix != "" {
			path = prefix + "." + name
		}

		if f.Type.Kind() == reflect.Struct {
			collectKinds(f.Type, path, kinds)
			continue
		}
		kinds[path] = f.Type.Kind()
	}
}
