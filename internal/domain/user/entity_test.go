package user

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAgeAt(t *testing.T) {
	tests := []struct {
		name     string
		birthday time.Time
		at       time.Time
		want     int
	}{
		{
			name:     "birthday already passed this year",
			birthday: date(1990, time.March, 15),
			at:       date(2024, time.June, 1),
			want:     34,
		},
		{
			name:     "birthday later this year",
			birthday: date(1990, time.September, 15),
			at:       date(2024, time.June, 1),
			want:     33,
		},
		{
			name:     "birthday today",
			birthday: date(1990, time.June, 1),
			at:       date(2024, time.June, 1),
			want:     34,
		},
		{
			name:     "day before birthday",
			birthday: date(1990, time.June, 2),
			at:       date(2024, time.June, 1),
			want:     33,
		},
		{
			name:     "birthday in the future",
			birthday: date(2030, time.January, 1),
			at:       date(2024, time.June, 1),
			want:     -6,
		},
		{
			name:     "newborn",
			birthday: date(2024, time.January, 1),
			at:       date(2024, time.June, 1),
			want:     0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AgeAt(tt.birthday, tt.at))
		})
	}
}

func TestSameBirthday(t *testing.T) {
	base := date(1990, time.March, 15)

	assert.True(t, SameBirthday(base, base))
	assert.True(t, SameBirthday(base, time.Date(1990, time.March, 15, 23, 59, 0, 0, time.UTC)),
		"time of day must not matter")
	assert.False(t, SameBirthday(base, date(1990, time.March, 16)))
	assert.False(t, SameBirthday(base, date(1991, time.March, 15)))
}

func TestUserAge(t *testing.T) {
	u := &User{Birthday: date(1990, time.March, 15)}
	assert.Equal(t, AgeAt(u.Birthday, time.Now()), u.Age())
}
