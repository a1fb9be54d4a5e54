package diag

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCollectorRecordsAndLogs(t *testing.T) {
	var buf bytes.Buffer
	c := NewCollector(slog.New(slog.NewTextHandler(&buf, nil)))

	c.Warn(CorruptOccurrence, "occurrence exceeds total", "index", 4)

	all := c.All()
	if assert.Len(t, all, 1) {
		assert.Equal(t, CorruptOccurrence, all[0].Code)
		assert.Equal(t, 4, all[0].Attrs["index"])
	}
	assert.True(t, c.Has(CorruptOccurrence))
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "code="+CorruptOccurrence)

	c.Reset()
	assert.Empty(t, c.All())
}

func TestNilCollectorIsInert(t *testing.T) {
	var c *Collector
	c.Report(Diagnostic{Code: "x"})
	assert.Nil(t, c.All())
	assert.False(t, c.Has("x"))
}
