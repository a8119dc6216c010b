package airtime

import "testing"

func TestParseClock(t *testing.T) {
	cases := []struct {
		in      string
		want    int
		wantErr bool
	}{
		{"00:00:00", 0, false},
		{"06:00:00", 360, false},
		{"19:00:00", 1140, false},
		{"23:59:00", 1439, false},
		{"23:59", 1439, false},
		{"24:00:00", 1440, false},
		{" 13:00:00 ", 780, false},
		{"", 0, true},
		{"25:00:00", 0, true},
		{"12:60:00", 0, true},
		{"noon", 0, true},
	}
	for _, c := range cases {
		got, err := ParseClock(c.in)
		if c.wantErr {
			if err == nil {
				t.Errorf("ParseClock(%q): expected error, got %d", c.in, got)
			}
			continue
		}
		if err != nil {
			t.Errorf("ParseClock(%q): unexpected error %v", c.in, err)
			continue
		}
		if got != c.want {
			t.Errorf("ParseClock(%q) = %d, want %d", c.in, got, c.want)
		}
	}
}

func TestIsNextDayMidnight(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"1 day, 0:00:00", true},
		{"1 DAY, 0:00:00", true},
		{"24:00:00", true},
		{"00:00:00", true},
		{"0:00:00", true},
		{"23:59:00", false},
		{"00:00:01", false},
		{"19:00:00", false},
	}
	for _, c := range cases {
		if got := IsNextDayMidnight(c.in); got != c.want {
			t.Errorf("IsNextDayMidnight(%q) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeEnd(t *testing.T) {
	cases := []struct {
		in   string
		want int
	}{
		{"1 day, 0:00:00", MinutesPerDay},
		{"24:00:00", MinutesPerDay},
		{"00:00:00", MinutesPerDay},
		{"23:59:00", 1439},
		{"06:00:00", 360},
	}
	for _, c := range cases {
		got, err := NormalizeEnd(c.in)
		if err != nil {
			t.Fatalf("NormalizeEnd(%q): %v", c.in, err)
		}
		if got != c.want {
			t.Errorf("NormalizeEnd(%q) = %d, want %d", c.in, got, c.want)
		}
	}

	if _, err := NormalizeEnd("garbage"); err == nil {
		t.Error("NormalizeEnd(garbage): expected error")
	}
}

func TestSpan(t *testing.T) {
	cases := []struct {
		name       string
		start, end int
		want       int
	}{
		{"same minute", 600, 600, 0},
		{"normal window", 360, 480, 120},
		{"to next-day midnight", 1140, MinutesPerDay, 300},
		{"full day", 0, MinutesPerDay, MinutesPerDay},
		{"rollover", 1380, 120, 180}, // 23:00 to 02:00
	}
	for _, c := range cases {
		if got := Span(c.start, c.end); got != c.want {
			t.Errorf("%s: Span(%d, %d) = %d, want %d", c.name, c.start, c.end, got, c.want)
		}
	}
}

func TestOverlaps(t *testing.T) {
	cases := []struct {
		name                       string
		s1, e1, s2, e2             int
		want                       bool
	}{
		{"plain overlap", 360, 480, 420, 540, true},
		{"contained", 360, 480, 0, MinutesPerDay, true},
		{"touching ends do not overlap", 360, 480, 480, 600, false},
		{"disjoint", 360, 480, 600, 720, false},
		{"spot to 1440 vs evening block", 1140, MinutesPerDay, 1140, 1380, true},
		{"rollover hits same-day segment", 1140, MinutesPerDay + 60, 1150, 1200, true},
		{"rollover hits evening block", 1320, MinutesPerDay + 60, 1320, MinutesPerDay, true},
		{"rollover hits morning block", 1320, MinutesPerDay + 60, 0, 120, true},
		{"rollover misses midday block", 1320, MinutesPerDay + 60, 600, 720, false},
	}
	for _, c := range cases {
		if got := Overlaps(c.s1, c.e1, c.s2, c.e2); got != c.want {
			t.Errorf("%s: Overlaps(%d,%d,%d,%d) = %v, want %v", c.name, c.s1, c.e1, c.s2, c.e2, got, c.want)
		}
	}
}

func TestHour(t *testing.T) {
	if got := Hour(1140); got != 19 {
		t.Errorf("Hour(1140) = %d, want 19", got)
	}
	if got := Hour(59); got != 0 {
		t.Errorf("Hour(59) = %d, want 0", got)
	}
}
