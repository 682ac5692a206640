package airlines

import (
	_ "embed"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

type Tier string

const (
	Tier1 Tier = "TIER_1"
	Tier2 Tier = "TIER_2"
	LCC   Tier = "LCC"
)

type Info struct {
	Code          string  `yaml:"-"`
	Name          string  `yaml:"name"`
	Tier          Tier    `yaml:"tier"`
	FreeBag       bool    `yaml:"free_bag"`
	Meals         bool    `yaml:"meals"`
	CheckedKg     float64 `yaml:"checked_kg"`
	CheckedPieces int     `yaml:"checked_pieces"`
	CabinKg       float64 `yaml:"cabin_kg"`
}

type Table struct {
	defaults Info
	airlines map[string]Info
}

type document struct {
	Defaults Info            `yaml:"defaults"`
	Airlines map[string]Info `yaml:"airlines"`
}

//go:embed airlines.yaml
var defaultTable []byte

// Default returns the embedded carrier table. It panics if the embedded document is invalid.
func Default() *Table {
	t, err := Parse(defaultTable)
	if err != nil {
		panic(fmt.Sprintf("airlines: embedded table: %v", err))
	}
	return t
}

func Parse(data []byte) (*Table, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse airline table: %w", err)
	}
	if doc.Defaults.Tier == "" {
		doc.Defaults.Tier = Tier2
	}

	t := &Table{
		defaults: doc.Defaults,
		airlines: make(map[string]Info, len(doc.Airlines)),
	}
	for code, info := range doc.Airlines {
		code = strings.ToUpper(code)
		info.Code = code
		if info.Tier == "" {
			info.Tier = doc.Defaults.Tier
		}
		if info.CheckedKg == 0 {
			info.CheckedKg = doc.Defaults.CheckedKg
		}
		if info.CheckedPieces == 0 {
			info.CheckedPieces = doc.Defaults.CheckedPieces
		}
		if info.CabinKg == 0 {
			info.CabinKg = doc.Defaults.CabinKg
		}
		t.airlines[code] = info
	}
	return t, nil
}

// Lookup never fails: unknown carriers get the table defaults with the code as name.
func (t *Table) Lookup(code string) Info {
	code = strings.ToUpper(strings.TrimSpace(code))
	if info, ok := t.airlines[code]; ok {
		return info
	}
	info := t.defaults
	info.Code = code
	info.Name = code
	return info
}

func (t *Table) Known(code string) bool {
	_, ok := t.airlines[strings.ToUpper(code)]
	return ok
}

// DefaultCheckedKg is the checked allowance assumed when an offer carries none.
func (i Info) DefaultCheckedKg() (kg float64, pieces int) {
	if !i.FreeBag {
		return 0, 0
	}
	return i.CheckedKg, i.CheckedPieces
}
