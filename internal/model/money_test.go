package model

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCents(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{in: "100", want: 10000},
		{in: "100.5", want: 10050},
		{in: "0.07", want: 7},
		{in: "-3.10", want: -310},
		{in: "1.234", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "", wantErr: true},
		{in: "1.-5", wantErr: true},
		{in: "1.+5", wantErr: true},
		{in: "--5", wantErr: true},
		{in: "+-5", wantErr: true},
		{in: "1. 5", wantErr: true},
		{in: "9999999999.99", want: MaxCents},
		{in: "10000000000", wantErr: true},
		{in: "99999999999999999999", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseCents(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCents_JSONUsesTwoDecimals(t *testing.T) {
	b, err := json.Marshal(struct {
		Amount Cents `json:"amount"`
	}{Amount: 2000})
	require.NoError(t, err)
	assert.JSONEq(t, `{"amount":20.00}`, string(b))

	var in struct {
		Amount Cents `json:"amount"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"12.5"}`), &in))
	assert.Equal(t, Cents(1250), in.Amount)
}

func TestCents_UnmarshalRejectsSignedFraction(t *testing.T) {
	var in struct {
		Amount Cents `json:"amount"`
	}
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1.-5"}`), &in))
	assert.Error(t, json.Unmarshal([]byte(`{"amount":"1.+5"}`), &in))
}

func TestCents_ScanNumeric(t *testing.T) {
	var c Cents
	require.NoError(t, c.Scan([]byte("45.10")))
	assert.Equal(t, Cents(4510), c)
}
