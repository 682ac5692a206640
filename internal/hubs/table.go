package hubs

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

type Region string

const (
	Oceania    Region = "OCEANIA"
	AsiaSE     Region = "ASIA_SE"
	AsiaEast   Region = "ASIA_EAST"
	AsiaSouth  Region = "ASIA_SOUTH"
	MiddleEast Region = "ME"
	EUWest     Region = "EU_WEST"
	EUSouth    Region = "EU_SOUTH"
	EUEast     Region = "EU_EAST"
	EUNorth    Region = "EU_NORTH"
	NorthAm    Region = "NA"
	SouthAm    Region = "SA"
	Africa     Region = "AFRICA"
)

var knownRegions = map[Region]bool{
	Oceania: true, AsiaSE: true, AsiaEast: true, AsiaSouth: true,
	MiddleEast: true, EUWest: true, EUSouth: true, EUEast: true, EUNorth: true,
	NorthAm: true, SouthAm: true, Africa: true,
}

type Hub struct {
	Code   string `yaml:"code"`
	City   string `yaml:"city"`
	Region Region `yaml:"region"`
	Type   string `yaml:"type"`
	Rank   int    `yaml:"rank"`
}

// Rule contributes its hubs when one endpoint is in Between and the other in And.
type Rule struct {
	Name    string   `yaml:"name"`
	Between []Region `yaml:"between"`
	And     []Region `yaml:"and"`
	Hubs    []string `yaml:"hubs"`
}

func (r Rule) matches(a, b Region) bool {
	return (contains(r.Between, a) && contains(r.And, b)) ||
		(contains(r.Between, b) && contains(r.And, a))
}

func contains(regions []Region, r Region) bool {
	for _, x := range regions {
		if x == r {
			return true
		}
	}
	return false
}

// Table is immutable once loaded.
type Table struct {
	hubs        map[string]Hub
	rules       []Rule
	defaultHubs []string
	unknownHubs []string
}

type document struct {
	Hubs        []Hub    `yaml:"hubs"`
	Rules       []Rule   `yaml:"rules"`
	DefaultHubs []string `yaml:"default_hubs"`
	UnknownHubs []string `yaml:"unknown_hubs"`
}

// minFallbackHubs leaves at least one hub after both endpoints are excluded.
const minFallbackHubs = 3

var (
	ErrNoDefaultHubs = errors.New("hub table has no default hubs")
	ErrShortFallback = errors.New("hub fallback list needs at least 3 distinct airports")
	ErrUnknownRegion = errors.New("unknown region")
)

//go:embed hubs.yaml
var embeddedTable []byte

// DefaultTable returns the embedded hub table. It panics if the embedded document is invalid.
func DefaultTable() *Table {
	t, err := ParseTable(embeddedTable)
	if err != nil {
		panic(fmt.Sprintf("hubs: embedded table: %v", err))
	}
	return t
}

// LoadTable reads an operator-supplied table from disk.
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read hub table: %w", err)
	}
	return ParseTable(data)
}

func ParseTable(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse hub table: %w", err)
	}

	t := &Table{
		hubs:        make(map[string]Hub, len(doc.Hubs)),
		defaultHubs: upperAll(doc.DefaultHubs),
		unknownHubs: upperAll(doc.UnknownHubs),
	}
	if len(t.defaultHubs) == 0 {
		return nil, ErrNoDefaultHubs
	}
	if len(t.unknownHubs) == 0 {
		t.unknownHubs = t.defaultHubs
	}
	if n := distinct(t.defaultHubs); n < minFallbackHubs {
		return nil, fmt.Errorf("%w: default_hubs has %d", ErrShortFallback, n)
	}
	if n := distinct(t.unknownHubs); n < minFallbackHubs {
		return nil, fmt.Errorf("%w: unknown_hubs has %d", ErrShortFallback, n)
	}

	for _, h := range doc.Hubs {
		h.Code = strings.ToUpper(h.Code)
		if !knownRegions[h.Region] {
			return nil, fmt.Errorf("hub %s: %w %q", h.Code, ErrUnknownRegion, h.Region)
		}
		t.hubs[h.Code] = h
	}

	for _, r := range doc.Rules {
		for _, region := range append(append([]Region{}, r.Between...), r.And...) {
			if !knownRegions[region] {
				return nil, fmt.Errorf("rule %s: %w %q", r.Name, ErrUnknownRegion, region)
			}
		}
		r.Hubs = upperAll(r.Hubs)
		t.rules = append(t.rules, r)
	}

	return t, nil
}

func upperAll(codes []string) []string {
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		out = append(out, strings.ToUpper(strings.TrimSpace(c)))
	}
	return out
}

func distinct(codes []string) int {
	seen := make(map[string]bool, len(codes))
	for _, c := range codes {
		if c != "" {
			seen[c] = true
		}
	}
	return len(seen)
}

func (t *Table) Hub(code string) (Hub, bool) {
	h, ok := t.hubs[strings.ToUpper(code)]
	return h, ok
}

func (t *Table) Rules() []Rule {
	return append([]Rule(nil), t.rules...)
}
