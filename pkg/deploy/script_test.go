package deploy_test

import (
	"testing"
	"time"

	"github.com/pseudomuto/deploykeeper/pkg/deploy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseScriptName(t *testing.T) {
	sn, err := deploy.ParseScriptName("add_users_2024_01_15_v2.sql")
	require.NoError(t, err)
	assert.Equal(t, "add_users_2024_01_15_v2.sql", sn.Name)
	assert.Equal(t, time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC), sn.Date)
	assert.Equal(t, 2, sn.Version)
}

func TestParseScriptNameFirstDateWins(t *testing.T) {
	// Two substrings match the date pattern; the first one is the date.
	sn, err := deploy.ParseScriptName("backfill_2023_06_01_to_2024_01_01_v1.sql")
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, 6, 1, 0, 0, 0, 0, time.UTC), sn.Date)
}

func TestParseScriptNameRejections(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"add_users_v1.sql", deploy.ErrNoDate},
		{"notes.txt", deploy.ErrNoDate},
		{"add_users_2024_01_15.sql", deploy.ErrNoVersion},
		{"add_users_2024_01_15_v2.sql.bak", deploy.ErrNoVersion},
		{"add_users_2024_13_40_v1.sql", deploy.ErrInvalidDate},
		{"add_users_9999_99_99_v1.sql", deploy.ErrInvalidDate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sn, err := deploy.ParseScriptName(tt.name)
			assert.Nil(t, sn)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}
