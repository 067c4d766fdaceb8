package radarconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/url"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"oss.terrastruct.com/xdefer"
)

// Parse decodes b according to the extension of path. A path of "-" or one
// without a known extension is sniffed: JSON if b starts with '{', else YAML.
func Parse(path string, b []byte) (_ *Config, err error) {
	defer xdefer.Errorf(&err, "failed to parse %s", path)

	c := &Config{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err = decodeJSON(b, c)
	case ".yaml", ".yml":
		err = decodeYAML(b, c)
	case ".toml":
		err = decodeTOML(b, c)
	default:
		if bytes.HasPrefix(bytes.TrimSpace(b), []byte("{")) {
			err = decodeJSON(b, c)
		} else {
			err = decodeYAML(b, c)
		}
	}
	if err != nil {
		return nil, err
	}
	return c, nil
}

func decodeJSON(b []byte, c *Config) error {
	return json.Unmarshal(b, c)
}

func decodeYAML(b []byte, c *Config) error {
	if len(bytes.TrimSpace(b)) == 0 {
		return nil
	}
	return yaml.Unmarshal(b, c)
}

// TOML is decoded into a generic document first and then routed through the
// JSON decoder so that the scalar forms accepted for rings, segments and moved
// behave the same in every format.
func decodeTOML(b []byte, c *Config) error {
	var doc map[string]interface{}
	if err := toml.Unmarshal(b, &doc); err != nil {
		return err
	}
	jb, err := json.Marshal(doc)
	if err != nil {
		return err
	}
	return decodeJSON(jb, c)
}

// ParseQuery decodes the query string form of a radar:
//
//	?entries=[...]&rings=[...]&segments=[...]&entryRadius=12
//
// entries, rings and segments carry JSON arrays.
func ParseQuery(rawQuery string) (_ *Config, err error) {
	defer xdefer.Errorf(&err, "failed to parse query")

	q, err := url.ParseQuery(strings.TrimPrefix(rawQuery, "?"))
	if err != nil {
		return nil, err
	}

	c := &Config{}
	fields := []struct {
		key string
		v   interface{}
	}{
		{"entries", &c.Entries},
		{"rings", &c.Rings},
		{"segments", &c.Segments},
	}
	for _, f := range fields {
		if !q.Has(f.key) {
			continue
		}
		if err := json.Unmarshal([]byte(q.Get(f.key)), f.v); err != nil {
			return nil, fmt.Errorf("%s: %w", f.key, err)
		}
	}

	if q.Has("entryRadius") {
		r, err := strconv.ParseFloat(q.Get("entryRadius"), 64)
		if err != nil {
			return nil, Errorf(ErrInvalidGeometry, "entryRadius: %v", err)
		}
		c.EntryRadius = &r
	}
	if q.Has("radius") {
		r, err := strconv.ParseFloat(q.Get("radius"), 64)
		if err != nil {
			return nil, Errorf(ErrInvalidGeometry, "radius: %v", err)
		}
		c.Radius = &r
	}
	return c, nil
}

func (m *Moved) UnmarshalJSON(b []byte) error {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	return m.set(v)
}

func (m *Moved) UnmarshalYAML(n *yaml.Node) error {
	var v interface{}
	if err := n.Decode(&v); err != nil {
		return err
	}
	return m.set(v)
}

func (m *Moved) set(v interface{}) error {
	switch v := v.(type) {
	case nil:
		*m = Unchanged
		return nil
	case bool:
		if v {
			*m = MovedIn
		} else {
			*m = Unchanged
		}
		return nil
	case float64:
		switch v {
		case -1, 0, 1:
			*m = Moved(v)
			return nil
		}
	case int:
		if mv := Moved(v); mv.Valid() {
			*m = mv
			return nil
		}
	}
	return Errorf(ErrInvalidConfiguration, "moved must be a boolean or one of -1, 0, 1, got %v", v)
}

type plainSegment Segment

func (s *Segment) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.HasPrefix(b, []byte("{")) {
		return json.Unmarshal(b, (*plainSegment)(s))
	}
	label, err := scalarLabelJSON(b)
	if err != nil {
		return err
	}
	*s = Segment{Label: label}
	return nil
}

func (s *Segment) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		return n.Decode((*plainSegment)(s))
	}
	label, err := scalarLabelYAML(n)
	if err != nil {
		return err
	}
	*s = Segment{Label: label}
	return nil
}

type plainRing Ring

func (r *Ring) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if bytes.HasPrefix(b, []byte("{")) {
		return json.Unmarshal(b, (*plainRing)(r))
	}
	label, err := scalarLabelJSON(b)
	if err != nil {
		return err
	}
	*r = Ring{Label: label}
	return nil
}

func (r *Ring) UnmarshalYAML(n *yaml.Node) error {
	if n.Kind == yaml.MappingNode {
		return n.Decode((*plainRing)(r))
	}
	label, err := scalarLabelYAML(n)
	if err != nil {
		return err
	}
	*r = Ring{Label: label}
	return nil
}

func scalarLabelJSON(b []byte) (string, error) {
	var v interface{}
	if err := json.Unmarshal(b, &v); err != nil {
		return "", err
	}
	switch v.(type) {
	case []interface{}, map[string]interface{}:
		return "", Errorf(ErrInvalidConfiguration, "expected an object or a scalar label, got %s", b)
	case nil:
		return "", nil
	}
	return strings.TrimSpace(fmt.Sprint(v)), nil
}

func scalarLabelYAML(n *yaml.Node) (string, error) {
	if n.Kind != yaml.ScalarNode {
		return "", Errorf(ErrInvalidConfiguration, "line %d: expected a mapping or a scalar label", n.Line)
	}
	if n.Tag == "!!null" {
		return "", nil
	}
	return strings.TrimSpace(n.Value), nil
}
