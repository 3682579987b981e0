package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"autotable/internal/config"
	"autotable/internal/errors"
)

func TestSelectReports(t *testing.T) {
	all := []config.Report{{Name: "a"}, {Name: "b"}, {Name: "c"}}

	got, err := selectReports(all, nil)
	require.NoError(t, err)
	assert.Len(t, got, 3)

	got, err = selectReports(all, []string{"c", "a"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "c", got[0].Name)
	assert.Equal(t, "a", got[1].Name)

	_, err = selectReports(all, []string{"z"})
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
}

func TestNeedsDatabase(t *testing.T) {
	assert.False(t, needsDatabase([]config.Report{{Data: "x.csv"}}))
	assert.True(t, needsDatabase([]config.Report{{Data: "x.csv"}, {Query: "patients"}}))
}
