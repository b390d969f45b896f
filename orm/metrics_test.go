package orm

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterMetricsTwice(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, RegisterMetrics(reg))
	require.NoError(t, RegisterMetrics(reg))
}

func TestRegionalRebuildCounted(t *testing.T) {
	db := openFiles(t, "s1")
	before := testutil.ToFloat64(RegionalRebuilds.WithLabelValues("counted"))

	_, err := db.Registry().GetRegionalTable("counted", 1, itemBuilder(db), regionals(1))
	require.NoError(t, err)
	_, err = db.Registry().GetRegionalTable("counted", 1, itemBuilder(db), regionals(1))
	require.NoError(t, err)

	assert.Equal(t, before+1, testutil.ToFloat64(RegionalRebuilds.WithLabelValues("counted")))
}
