package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestUnixAuto(t *testing.T) {
	want := time.Date(2026, 3, 15, 12, 30, 0, 0, time.UTC)

	assert.Equal(t, want, UnixAuto(want.Unix()))
	assert.Equal(t, want, UnixAuto(want.UnixMilli()))
	assert.Equal(t, want, UnixAuto(want.UnixMicro()))
}

func TestUnixAutoZero(t *testing.T) {
	assert.Equal(t, time.Unix(0, 0).UTC(), UnixAuto(0))
}
