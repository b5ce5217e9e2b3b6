package palette

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseHex(t *testing.T) {
	cases := []struct {
		in   string
		want Color
	}{
		{"#00ff00", RGBA(0, 255, 0, 255)},
		{"#00ff0064", RGBA(0, 255, 0, 100)},
		{"#f00", RGBA(255, 0, 0, 255)},
		{" #0078ff50 ", RGBA(0, 120, 255, 80)},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := ParseHex(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	_, err := ParseHex("green")
	assert.Error(t, err)
	_, err = ParseHex("#00ff00zz")
	assert.Error(t, err)
}

func TestHexRoundTrip(t *testing.T) {
	c := RGBA(12, 34, 56, 78)
	back, err := ParseHex(c.Hex())
	require.NoError(t, err)
	assert.Equal(t, c, back)
}

func TestColorJSON(t *testing.T) {
	data, err := json.Marshal(SectorGreen)
	require.NoError(t, err)
	assert.JSONEq(t, `[0,255,0,100]`, string(data))

	var c Color
	require.NoError(t, json.Unmarshal([]byte(`[1,2,3]`), &c))
	assert.Equal(t, RGBA(1, 2, 3, 255), c)

	assert.Error(t, json.Unmarshal([]byte(`[1,2]`), &c))
	assert.Error(t, json.Unmarshal([]byte(`[1,2,300,4]`), &c))
}
