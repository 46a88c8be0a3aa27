package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{in: "2024-02-29", want: "2024-02-29"},
		{in: "2024-03-01T23:30:00Z", want: "2024-03-01"},
		{in: "2024-03-01T01:00:00+02:00", want: "2024-03-01"},
		{in: "03/01/2024", wantErr: true},
		{in: "2024-13-01", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseDate(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.String())
		})
	}
}

func TestDateJSON(t *testing.T) {
	var e struct {
		Issue Date `json:"issue"`
		Due   Date `json:"due"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"issue":"2024-05-06","due":null}`), &e))
	assert.Equal(t, NewDate(2024, time.May, 6), e.Issue)
	assert.True(t, e.Due.IsZero())

	out, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, `{"issue":"2024-05-06","due":null}`, string(out))

	assert.Error(t, json.Unmarshal([]byte(`{"issue":"soon"}`), &e))
}

func TestDateSQL(t *testing.T) {
	v, err := Date{}.Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	v, err = NewDate(2024, time.January, 2).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-02", v)

	var d Date
	require.NoError(t, d.Scan("2024-01-02"))
	assert.Equal(t, "2024-01-02", d.String())

	require.NoError(t, d.Scan([]byte("2023-12-31")))
	assert.Equal(t, "2023-12-31", d.String())

	require.NoError(t, d.Scan(nil))
	assert.True(t, d.IsZero())

	assert.Error(t, d.Scan(42))
}
