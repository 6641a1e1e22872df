// Package utils provides utility functions for the application.
package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToPtr(t *testing.T) {
	v := ToPtr(42)
	require.NotNil(t, v)
	assert.Equal(t, 42, *v)

	s := ToPtr("spot")
	require.NotNil(t, s)
	assert.Equal(t, "spot", *s)
}

func TestIsTrue(t *testing.T) {
	assert.False(t, IsTrue(nil))
	assert.False(t, IsTrue(ToPtr(false)))
	assert.True(t, IsTrue(ToPtr(true)))
}

func TestParseUUID(t *testing.T) {
	parsed, err := ParseUUID("b4f9ac16-2e4c-4a2e-9c2f-6f3f5a1f9d10")
	require.NoError(t, err)
	assert.Equal(t, "b4f9ac16-2e4c-4a2e-9c2f-6f3f5a1f9d10", parsed.String())

	_, err = ParseUUID("not-a-uuid")
	assert.Error(t, err)
}

func TestSameCalendarDate(t *testing.T) {
	morning := time.Date(2025, time.December, 25, 8, 0, 0, 0, time.UTC)
	evening := time.Date(2025, time.December, 25, 22, 30, 0, 0, time.UTC)
	nextDay := time.Date(2025, time.December, 26, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameCalendarDate(morning, evening))
	assert.False(t, SameCalendarDate(evening, nextDay))
}

func TestSameMonthDay(t *testing.T) {
	christmas2024 := time.Date(2024, time.December, 25, 0, 0, 0, 0, time.UTC)
	christmas2025 := time.Date(2025, time.December, 25, 14, 0, 0, 0, time.UTC)
	rizalDay := time.Date(2025, time.December, 30, 0, 0, 0, 0, time.UTC)

	assert.True(t, SameMonthDay(christmas2024, christmas2025))
	assert.False(t, SameMonthDay(christmas2025, rizalDay))
}

func TestIsExpired(t *testing.T) {
	assert.True(t, IsExpired(UTCNow().Add(-time.Minute)))
	assert.False(t, IsExpired(UTCNow().Add(time.Minute)))
}
