package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    TimeString
		wantErr bool
	}{
		{name: "valid", input: "09:15", want: "09:15"},
		{name: "db format with seconds", input: "09:15:00", want: "09:15"},
		{name: "end of day", input: "24:00", want: "24:00"},
		{name: "hour out of range", input: "25:00", wantErr: true},
		{name: "minute out of range", input: "10:60", wantErr: true},
		{name: "no leading zero", input: "9:15", wantErr: true},
		{name: "garbage", input: "ab:cd", wantErr: true},
		{name: "past end of day", input: "24:01", wantErr: true},
		{name: "signed hour", input: "+9:00", wantErr: true},
		{name: "signed hour and minute", input: "+1:+5", wantErr: true},
		{name: "signed minute", input: "09:+5", wantErr: true},
		{name: "negative minute", input: "09:-5", wantErr: true},
		{name: "space padded", input: " 9:00", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NewTimeStringFromString(tt.input)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidTimeString)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTimeString_AddMinutes(t *testing.T) {
	got, err := TimeString("09:45").AddMinutes(15)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:00"), got)

	got, err = TimeString("23:30").AddMinutes(30)
	require.NoError(t, err)
	assert.Equal(t, TimeString("24:00"), got)

	_, err = TimeString("23:30").AddMinutes(31)
	assert.ErrorIs(t, err, ErrTimeOverflow)
}

func TestTimeString_Compare(t *testing.T) {
	assert.True(t, TimeString("09:00").IsBefore("09:01"))
	assert.False(t, TimeString("09:00").IsBefore("09:00"))
	assert.True(t, TimeString("10:00").IsAfter("09:59"))
	assert.Equal(t, 570, TimeString("09:30").Minutes())
}

func TestTimeString_On(t *testing.T) {
	loc := time.FixedZone("MSK", 3*60*60)
	date := time.Date(2026, 10, 26, 0, 0, 0, 0, time.UTC)

	got := TimeString("09:30").On(date, loc)
	assert.Equal(t, time.Date(2026, 10, 26, 9, 30, 0, 0, loc), got)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan([]byte("14:05:00")))
	assert.Equal(t, TimeString("14:05"), ts)

	require.NoError(t, ts.Scan(time.Date(0, 1, 1, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("08:00"), ts)

	assert.Error(t, ts.Scan(42))

	v, err := TimeString("08:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "08:00:00", v)
}
