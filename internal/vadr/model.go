package vadr

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ncbi/vadr-sub007/internal/coord"
	"github.com/ncbi/vadr-sub007/internal/feature"
)

// ModelInfo is one model's entry from a model-info file: the reference
// length, optional taxonomic grouping, and the raw feature rows in
// file order.
type ModelInfo struct {
	ID       string
	Length   int
	Group    string
	Subgroup string

	Features []feature.Feature
}

// ParseModelInfo reads a model-info file. The format is line oriented:
//
//	MODEL <id> key:"value" ...
//	FEATURE <model-id> type:"CDS" coords:"11..31:+" product:"ORF1" ...
//
// Blank lines and #-comments are skipped. FEATURE lines must follow
// their MODEL line; feature order in the file is the feature index
// order used everywhere downstream.
func ParseModelInfo(r io.Reader) (map[string]*ModelInfo, error) {
	models := make(map[string]*ModelInfo)

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) < 2 {
			return nil, fmt.Errorf("line %d: expected '<MODEL|FEATURE> <id> ...'", lineNo)
		}
		kind, id := fields[0], fields[1]
		attrs, err := parseAttrs(strings.Join(fields[2:], " "))
		if err != nil {
			return nil, fmt.Errorf("line %d: %v", lineNo, err)
		}

		switch kind {
		case "MODEL":
			m := &ModelInfo{ID: id, Group: attrs["group"], Subgroup: attrs["subgroup"]}
			if v, ok := attrs["length"]; ok {
				m.Length, err = strconv.Atoi(v)
				if err != nil || m.Length < 1 {
					return nil, fmt.Errorf("line %d: bad model length %q", lineNo, v)
				}
			}
			models[id] = m

		case "FEATURE":
			m, ok := models[id]
			if !ok {
				return nil, fmt.Errorf("line %d: FEATURE for unknown model %q", lineNo, id)
			}
			f, err := parseFeature(attrs)
			if err != nil {
				return nil, fmt.Errorf("line %d: %v", lineNo, err)
			}
			m.Features = append(m.Features, f)

		default:
			return nil, fmt.Errorf("line %d: unknown record type %q", lineNo, kind)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return models, nil
}

// parseAttrs splits `key:"value"` pairs. Values may contain spaces.
func parseAttrs(in string) (map[string]string, error) {
	attrs := make(map[string]string)
	rest := strings.TrimSpace(in)
	for rest != "" {
		colon := strings.Index(rest, `:"`)
		if colon < 0 {
			return nil, fmt.Errorf("malformed attribute near %q", rest)
		}
		key := rest[:colon]
		rest = rest[colon+2:]
		quote := strings.IndexByte(rest, '"')
		if quote < 0 {
			return nil, fmt.Errorf("unterminated value for %q", key)
		}
		attrs[key] = rest[:quote]
		rest = strings.TrimSpace(rest[quote+1:])
	}
	return attrs, nil
}

func parseFeature(attrs map[string]string) (feature.Feature, error) {
	f := feature.Feature{ParentIdx: feature.NoParent}

	f.Kind = feature.ParseKind(attrs["type"])
	f.Name = attrs["product"]
	if f.Name == "" {
		f.Name = attrs["gene"]
	}

	coords, err := coord.ParseSegments(attrs["coords"])
	if err != nil {
		return f, fmt.Errorf("coords: %v", err)
	}
	f.Coords = coords

	if v, ok := attrs["parent_idx"]; ok && v != "" {
		f.ParentIdx, err = strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("bad parent_idx %q", v)
		}
	}
	if v, ok := attrs["trans_table"]; ok && v != "" {
		f.TransTable, err = strconv.Atoi(v)
		if err != nil {
			return f, fmt.Errorf("bad trans_table %q", v)
		}
	}
	f.Expendable = attrs["misc_not_failure"] == "1"
	f.Deletable = attrs["is_deletable"] == "1"
	return f, nil
}

// Library resolves model IDs to validated feature maps. Maps are built
// lazily and kept in an LRU cache so repeated sequences against the
// same handful of models never rebuild them, while a run over a large
// model set stays bounded.
type Library struct {
	infos map[string]*ModelInfo
	cache *lru.Cache[string, *feature.Map]
}

// NewLibrary loads a model-info file from path.
func NewLibrary(path string, cacheSize int) (*Library, error) {
	fh, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer fh.Close()

	infos, err := ParseModelInfo(fh)
	if err != nil {
		return nil, fmt.Errorf("%s: %v", path, err)
	}
	return newLibrary(infos, cacheSize)
}

func newLibrary(infos map[string]*ModelInfo, cacheSize int) (*Library, error) {
	if cacheSize < 1 {
		cacheSize = 16
	}
	cache, err := lru.New[string, *feature.Map](cacheSize)
	if err != nil {
		return nil, err
	}
	return &Library{infos: infos, cache: cache}, nil
}

// Len returns the number of loaded models.
func (l *Library) Len() int { return len(l.infos) }

// Info returns the raw entry for a model ID.
func (l *Library) Info(modelID string) (*ModelInfo, bool) {
	m, ok := l.infos[modelID]
	return m, ok
}

// Models returns the loaded model IDs, sorted.
func (l *Library) Models() []string {
	ids := make([]string, 0, len(l.infos))
	for id := range l.infos {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Map returns the validated feature map for a model, building and
// caching it on first use.
func (l *Library) Map(modelID string) (*feature.Map, error) {
	if m, ok := l.cache.Get(modelID); ok {
		return m, nil
	}
	info, ok := l.infos[modelID]
	if !ok {
		return nil, fmt.Errorf("unknown model %q", modelID)
	}
	m, err := feature.NewMap(info.ID, info.Length, info.Features)
	if err != nil {
		return nil, err
	}
	l.cache.Add(modelID, m)
	return m, nil
}
