package main

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/program-cycles-api/internal/models"
)

func TestPrintCycles(t *testing.T) {
	var buf bytes.Buffer
	err := printCycles(&buf, []models.Cycle{{
		ID:            "inicial-2025-01-02",
		Level:         models.TierInicial,
		StartDate:     time.Date(2025, time.January, 2, 0, 0, 0, 0, time.UTC),
		Capacity:      30,
		EnrolledCount: 4,
	}})
	require.NoError(t, err)
	out := buf.String()
	assert.Contains(t, out, "inicial-2025-01-02")
	assert.Contains(t, out, "2025-01-02")
	assert.Contains(t, strings.ToUpper(out), "CAPACITY")
}

func TestRosterCmdRequiresCycle(t *testing.T) {
	cmd := rosterCmd()
	cmd.SetArgs([]string{})
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetErr(&bytes.Buffer{})
	err := cmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "cycle")
}

func TestCyclesCmdHasSubcommands(t *testing.T) {
	names := []string{}
	for _, sub := range cyclesCmd().Commands() {
		names = append(names, sub.Name())
	}
	assert.ElementsMatch(t, []string{"import", "list"}, names)
}
