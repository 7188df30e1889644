package buildinfo

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPrintBuildData(t *testing.T) {
	origV, origD, origC := Version, Date, Commit
	t.Cleanup(func() { Version, Date, Commit = origV, origD, origC })

	Version, Date, Commit = "v1.2.3", "2026-10-17", "abc123"

	var buf bytes.Buffer
	PrintBuildData(&buf)

	assert.Equal(t, "Build version: v1.2.3\nBuild date: 2026-10-17\nBuild commit: abc123\n", buf.String())
}
