package api

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"weathernow/models"
)

func TestReportStore(t *testing.T) {
	store := NewReportStore()
	now := time.Now()

	london := models.Report{Location: models.CityLocation("London"), Fetched: now}
	paris := models.Report{Location: models.CityLocation("Paris"), Fetched: now}
	store.Update(paris)
	store.Update(london)

	reports := store.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, "London", reports[0].Location.City)
	assert.Equal(t, "Paris", reports[1].Location.City)

	// same location regardless of case
	newer := models.Report{Location: models.CityLocation("london"), Units: models.Imperial, Fetched: now.Add(time.Minute)}
	store.Update(newer)
	reports = store.Reports()
	require.Len(t, reports, 2)
	assert.Equal(t, models.Imperial, reports[0].Units)

	// an older report never replaces a newer one
	store.Update(london)
	reports = store.Reports()
	assert.Equal(t, models.Imperial, reports[0].Units)
}
