package hubs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelectHubs_OceaniaToIstanbul(t *testing.T) {
	r := NewRouter(DefaultTable(), 3)

	hubs := r.SelectHubs("BNE", "IST")

	assert.Equal(t, []string{"KUL", "SIN", "DMK"}, hubs)
	assert.Equal(t, "kangaroo", r.MatchedRule("BNE", "IST"))
}

func TestSelectHubs_RulesAreSymmetric(t *testing.T) {
	r := NewRouter(DefaultTable(), 5)

	assert.Equal(t, r.SelectHubs("LHR", "JFK"), r.SelectHubs("JFK", "LHR"))
	assert.Equal(t, []string{"KEF", "DUB", "LIS", "LGW", "SWF"}, r.SelectHubs("LHR", "JFK"))
}

func TestSelectHubs_ExcludesEndpoints(t *testing.T) {
	r := NewRouter(DefaultTable(), 10)

	pairs := [][2]string{
		{"KUL", "NRT"},
		{"SIN", "DMK"},
		{"CRL", "BUD"},
		{"LGW", "JFK"},
		{"DXB", "GRU"},
		{"IST", "ZZZ"},
		{"AAA", "BBB"},
	}
	for _, p := range pairs {
		hubs := r.SelectHubs(p[0], p[1])
		require.NotEmpty(t, hubs, "%s-%s", p[0], p[1])
		assert.NotContains(t, hubs, p[0])
		assert.NotContains(t, hubs, p[1])
	}
}

func TestSelectHubs_UnknownEndpointFallsBack(t *testing.T) {
	r := NewRouter(DefaultTable(), 3)

	assert.Equal(t, []string{"IST", "DXB", "LHR"}, r.SelectHubs("XYZ", "SYD"))
	assert.Equal(t, "", r.MatchedRule("XYZ", "SYD"))
}

func TestSelectHubs_NoRuleUsesDefaultList(t *testing.T) {
	r := NewRouter(DefaultTable(), 3)

	// Africa to South America has no directional rule.
	assert.Equal(t, []string{"DXB", "IST", "DOH"}, r.SelectHubs("JNB", "GRU"))
}

func TestSelectHubs_Deterministic(t *testing.T) {
	r := NewRouter(DefaultTable(), 3)
	first := r.SelectHubs("mel", "bud")
	for i := 0; i < 20; i++ {
		assert.Equal(t, first, r.SelectHubs("MEL", "BUD"))
	}
}

func TestSelectHubs_NeverEmptyWhenRuleListIsExhausted(t *testing.T) {
	table, err := ParseTable([]byte(`
hubs:
  - {code: AAA, region: ASIA_SE}
  - {code: BBB, region: ASIA_SE}
rules:
  - {name: tiny, between: [ASIA_SE], and: [ASIA_SE], hubs: [AAA, BBB]}
default_hubs: [AAA, CCC, BBB, DDD]
`))
	require.NoError(t, err)

	assert.Equal(t, []string{"CCC", "DDD"}, NewRouter(table, 3).SelectHubs("AAA", "BBB"))
}

func TestParseTable_Errors(t *testing.T) {
	_, err := ParseTable([]byte(`hubs: []`))
	assert.ErrorIs(t, err, ErrNoDefaultHubs)

	_, err = ParseTable([]byte(`
hubs:
  - {code: AAA, region: MARS}
default_hubs: [DXB, IST, DOH]
`))
	assert.ErrorIs(t, err, ErrUnknownRegion)
}

func TestParseTable_FallbackListsMustSurviveEndpointExclusion(t *testing.T) {
	_, err := ParseTable([]byte(`default_hubs: [DXB, IST]`))
	assert.ErrorIs(t, err, ErrShortFallback)

	_, err = ParseTable([]byte(`default_hubs: [DXB, dxb, IST]`))
	assert.ErrorIs(t, err, ErrShortFallback)

	_, err = ParseTable([]byte(`
default_hubs: [DXB, IST, DOH]
unknown_hubs: [LHR, JFK]
`))
	assert.ErrorIs(t, err, ErrShortFallback)

	table, err := ParseTable([]byte(`default_hubs: [DXB, IST, DOH]`))
	require.NoError(t, err)
	r := NewRouter(table, 3)
	assert.Equal(t, []string{"DOH"}, r.SelectHubs("DXB", "IST"))
	assert.Equal(t, []string{"DXB", "DOH"}, r.SelectHubs("XYZ", "IST"))
}
