package loggen

import (
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var linePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[(NETWORK|FIREWALL|AUTH|SYSTEM|CRYPTO|EXPLOIT|SCAN|ACCESS|DATABASE|MALWARE)\] \S`)

func fixedClock() time.Time {
	return time.Date(2024, 12, 20, 3, 33, 0, 0, time.UTC)
}

func TestLine_Format(t *testing.T) {
	g := New(7)
	for range 200 {
		line := g.Line()
		assert.Regexp(t, linePattern, line)
	}
}

func TestLine_SeedIsDeterministic(t *testing.T) {
	a := New(99).WithClock(fixedClock)
	b := New(99).WithClock(fixedClock)
	assert.Equal(t, a.Lines(20), b.Lines(20))
}

func TestLineOf_EveryKind(t *testing.T) {
	g := New(3).WithClock(fixedClock)

	for k := KindNetwork; k < kindCount; k++ {
		line := g.LineOf(k)
		require.Regexp(t, linePattern, line)
		assert.Contains(t, line, "2024-12-20 03:33:00 ["+k.String()+"]")
	}
	assert.Equal(t, "UNKNOWN", kindCount.String())
}

func TestLineOf_Values(t *testing.T) {
	g := New(11).WithClock(fixedClock)

	net := regexp.MustCompile(`from (\d+\.\d+\.\d+\.)(\d+):(\d+)$`)
	for range 100 {
		m := net.FindStringSubmatch(g.LineOf(KindNetwork))
		require.Len(t, m, 4)
		assert.Contains(t, subnets, m[1])
	}

	assert.Regexp(t, `/tmp/\d{4}\.exe$`, g.LineOf(KindMalware))
	assert.Regexp(t, `PID \d{4}$`, g.LineOf(KindSystem))
}

func TestLines_Count(t *testing.T) {
	g := New(1)
	assert.Len(t, g.Lines(5), 5)
	assert.Empty(t, g.Lines(0))
	assert.Empty(t, g.Lines(-3))
}

func TestBetween_Inclusive(t *testing.T) {
	g := New(5)
	seen := map[int]bool{}
	for range 500 {
		v := g.between(1, 3)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 3)
		seen[v] = true
	}
	assert.Len(t, seen, 3)
}
