package models

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseClockTime(t *testing.T) {
	cases := []struct {
		input string
		want  ClockTime
	}{
		{"9:30 AM", 9*60 + 30},
		{"12:00 AM", 0},
		{"12:15 PM", 12*60 + 15},
		{"1 PM", 13 * 60},
		{"11:59pm", 23*60 + 59},
		{"14:45", 14*60 + 45},
		{" 7:05 am ", 7*60 + 5},
	}

	for _, tc := range cases {
		got, err := ParseClockTime(tc.input)
		require.NoError(t, err, tc.input)
		require.Equal(t, tc.want, got, tc.input)
	}
}

func TestParseClockTimeRejectsMalformed(t *testing.T) {
	for _, input := range []string{"", "AM", "13:00 PM", "0:30 AM", "9:3 AM", "25:00", "9", "nine AM"} {
		_, err := ParseClockTime(input)
		require.Error(t, err, input)
	}
}

func TestClockTimeFormatting(t *testing.T) {
	require.Equal(t, "9:30 AM", MustClockTime("09:30").String())
	require.Equal(t, "12:00 PM", MustClockTime("12:00").String())
	require.Equal(t, "12:00 AM", MustClockTime("00:00").String())
	require.Equal(t, "11:05 PM", MustClockTime("23:05").String())
}

func TestClockTimeOnKeepsLocation(t *testing.T) {
	loc := time.FixedZone("test", -5*3600)
	day := time.Date(2025, time.September, 8, 23, 10, 0, 0, loc)

	at := MustClockTime("9:30 AM").On(day)
	require.Equal(t, time.Date(2025, time.September, 8, 9, 30, 0, 0, loc), at)
}
