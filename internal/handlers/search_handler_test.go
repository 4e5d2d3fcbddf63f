package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePhotoNumbers(t *testing.T) {
	tests := []struct {
		name   string
		values []string
		want   []int
	}{
		{"absent", nil, nil},
		{"repeated", []string{"3", "1", "2"}, []int{3, 1, 2}},
		{"comma separated", []string{"3, 1,2"}, []int{3, 1, 2}},
		{"json array", []string{"[3,1,2]"}, []int{3, 1, 2}},
		{"mixed", []string{"4,5", "6"}, []int{4, 5, 6}},
		{"blank ignored", []string{"", " "}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parsePhotoNumbers(tt.values)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range [][]string{{"a"}, {"1,,2"}, {"[1,"}, {"1.5"}} {
		_, err := parsePhotoNumbers(bad)
		assert.Error(t, err, bad)
	}
}

func TestParsePhotoSections(t *testing.T) {
	assert.Equal(t, []string{"A", "", "B"}, parsePhotoSections([]string{"A", "", "B"}))
	assert.Equal(t, []string{"A", "B"}, parsePhotoSections([]string{`["A","B"]`}))
	assert.Nil(t, parsePhotoSections(nil))
}

func TestParseStatusBody(t *testing.T) {
	cases := map[string]string{
		"SHARED":                        "SHARED",
		"  processed\n":                 "processed",
		`"ARCHIVED"`:                    "ARCHIVED",
		`{"status":"SHARED_TO_BUREAU"}`: "SHARED_TO_BUREAU",
	}
	for body, want := range cases {
		got, err := parseStatusBody([]byte(body))
		require.NoError(t, err, body)
		assert.Equal(t, want, got, body)
	}

	for _, bad := range []string{"", "   ", `"unterminated`, `{"status":`} {
		_, err := parseStatusBody([]byte(bad))
		assert.Error(t, err, bad)
	}
}

func TestParseOptionalFloat(t *testing.T) {
	v, err := parseOptionalFloat(" ")
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = parseOptionalFloat("48.85")
	require.NoError(t, err)
	require.NotNil(t, v)
	assert.InDelta(t, 48.85, *v, 1e-9)

	_, err = parseOptionalFloat("north")
	assert.Error(t, err)
}
