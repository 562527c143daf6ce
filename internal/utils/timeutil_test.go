package utils_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tockawaffle/jelli-backend/internal/utils"
)

func TestOrgLocation(t *testing.T) {
	loc, err := utils.OrgLocation("America/Sao_Paulo")
	require.NoError(t, err)
	assert.Equal(t, "America/Sao_Paulo", loc.String())

	_, err = utils.OrgLocation("")
	assert.Error(t, err)

	_, err = utils.OrgLocation("Mars/Olympus_Mons")
	assert.Error(t, err)
}

func TestStartOfDay_CrossesDateLine(t *testing.T) {
	loc, err := time.LoadLocation("America/Sao_Paulo")
	require.NoError(t, err)

	// 01:00 UTC is 22:00 the previous day in Sao Paulo
	utcLateNight := time.Date(2025, 3, 11, 1, 0, 0, 0, time.UTC)
	got := utils.StartOfDay(utcLateNight, loc)

	assert.Equal(t, time.Date(2025, 3, 10, 0, 0, 0, 0, loc), got)
}

func TestTimeOfDayOn(t *testing.T) {
	day := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	got, err := utils.TimeOfDayOn(day, "12:30:15")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 12, 30, 15, 0, time.UTC), got)

	got, err = utils.TimeOfDayOn(day, "09:00")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC), got)

	_, err = utils.TimeOfDayOn(day, "noon")
	assert.Error(t, err)

	_, err = utils.TimeOfDayOn(day, "25:00")
	assert.Error(t, err)
}
