package app

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"octopus/hal"
	"octopus/internal/buildinfo"
	"octopus/internal/config"
	"octopus/octo/flow"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Level.Interval = 0
	cfg.Level.Retries = 1
	cfg.Dashboard.MinInterval = 0
	return cfg
}

func newTestApp(t *testing.T, h *fakeHAL) *App {
	t.Helper()
	a, err := New(h, testConfig())
	require.NoError(t, err)
	a.bootUntil = time.Time{}
	return a
}

func hasLine(lines []string, prefix string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, prefix) {
			return true
		}
	}
	return false
}

func (p *fakePanel) backgroundDraws() int {
	n := 0
	for _, w := range p.windows {
		if w == [4]int16{0, 0, 3, 3} {
			n++
		}
	}
	return n
}

func TestBootConsole(t *testing.T) {
	h := newFakeHAL(t)
	_, err := New(h, testConfig())
	require.NoError(t, err)

	lines := h.log.all()
	require.GreaterOrEqual(t, len(lines), 3)
	assert.Equal(t, "OCTOPUS v"+buildinfo.Short(), lines[0])
	assert.Equal(t, "Total water used: 0.00 L", lines[1])
	assert.Equal(t, "Ultrasonic check succeed", lines[2])
	assert.Equal(t, 1, h.ranger.pings)
	assert.Positive(t, h.panel.fills, "console drew on the panel")
	assert.Equal(t, []bool{false}, h.pump.writes)
	assert.Equal(t, hal.GPIOModeOutput, h.pump.mode)
}

func TestBootReportsRangerFailure(t *testing.T) {
	h := newFakeHAL(t)
	h.ranger.setCM(0)
	_, err := New(h, testConfig())
	require.NoError(t, err)

	assert.Contains(t, h.log.all(), "Ultrasonic check FAILED!")
	assert.Equal(t, sonarCheckTries, h.ranger.pings)
}

func TestBootShowsPersistedUsage(t *testing.T) {
	h := newFakeHAL(t)
	store, err := flow.NewFlashStore(h.flash, 0)
	require.NoError(t, err)
	require.NoError(t, store.StoreCount(900))

	_, err = New(h, testConfig())
	require.NoError(t, err)
	assert.Contains(t, h.log.all(), "Total water used: 2.00 L")
}

func TestDashboardWaitsForBootHold(t *testing.T) {
	h := newFakeHAL(t)
	a, err := New(h, testConfig())
	require.NoError(t, err)

	require.NoError(t, a.Step())
	assert.Zero(t, h.panel.backgroundDraws())

	a.bootUntil = time.Time{}
	require.NoError(t, a.Step())
	assert.Equal(t, 1, h.panel.backgroundDraws())
}

func TestStepDrawsAndLogs(t *testing.T) {
	h := newFakeHAL(t)
	a := newTestApp(t, h)

	var snaps []Snapshot
	a.OnStep(func(s Snapshot) { snaps = append(snaps, s) })
	require.NoError(t, a.Step())

	require.Len(t, snaps, 1)
	assert.Equal(t, uint8(87), snaps[0].State.Level)
	assert.True(t, snaps[0].LevelValid)
	assert.Equal(t, uint32(45), snaps[0].DistanceCM)
	assert.False(t, snaps[0].State.Pump)
	assert.Equal(t, 1, h.panel.backgroundDraws())
	assert.True(t, hasLine(h.log.all(), "tank: level=87% pump=false valve=false failure=false valid=true distance=45cm"))

	require.NoError(t, a.Step())
	assert.Equal(t, 1, h.panel.backgroundDraws(), "no full redraw without a change")
}

func TestLowLevelStartsPump(t *testing.T) {
	h := newFakeHAL(t)
	h.ranger.setCM(190)
	a := newTestApp(t, h)

	require.NoError(t, a.Step())
	assert.True(t, h.pump.level)
}

func TestLostEchoStopsPumpAndKeepsLevel(t *testing.T) {
	h := newFakeHAL(t)
	h.ranger.setCM(190)
	a := newTestApp(t, h)

	var snaps []Snapshot
	a.OnStep(func(s Snapshot) { snaps = append(snaps, s) })
	require.NoError(t, a.Step())
	require.True(t, h.pump.level)

	h.ranger.setCM(0)
	time.Sleep(time.Millisecond)
	require.NoError(t, a.Step())

	assert.False(t, h.pump.level)
	require.Len(t, snaps, 2)
	assert.False(t, snaps[1].LevelValid)
	assert.Equal(t, snaps[0].State.Level, snaps[1].State.Level)
}

func TestValveIsReported(t *testing.T) {
	h := newFakeHAL(t)
	h.valve.level = true
	a := newTestApp(t, h)

	var got Snapshot
	a.OnStep(func(s Snapshot) { got = s })
	require.NoError(t, a.Step())
	assert.True(t, got.State.Valve)
}

func TestRefreshKey(t *testing.T) {
	h := newFakeHAL(t)
	a := newTestApp(t, h)
	require.NoError(t, a.Step())
	require.Equal(t, 1, h.panel.backgroundDraws())

	h.keys.ch <- hal.KeyEvent{Rune: 'r'}
	require.NoError(t, a.Step())
	assert.Equal(t, 2, h.panel.backgroundDraws())
	assert.Contains(t, h.log.all(), "dashboard: refresh requested")

	require.NoError(t, a.Step())
	assert.Equal(t, 2, h.panel.backgroundDraws())
}

func TestCloseSavesCounter(t *testing.T) {
	h := newFakeHAL(t)
	a := newTestApp(t, h)
	for i := 0; i < 10; i++ {
		h.flow.handler()
	}
	require.NoError(t, a.Close())
	assert.Nil(t, h.flow.handler, "handler released")
	assert.False(t, h.pump.level)

	store, err := flow.NewFlashStore(h.flash, 0)
	require.NoError(t, err)
	n, err := store.LoadCount()
	require.NoError(t, err)
	assert.Equal(t, uint64(10), n)
}

func TestStepLogsFailedBatchWrite(t *testing.T) {
	h := newFakeHAL(t)
	cfg := testConfig()
	cfg.Flow.PersistEvery = 2
	a, err := New(h, cfg)
	require.NoError(t, err)
	a.bootUntil = time.Time{}

	h.flash.fail = errors.New("flash worn")
	h.flow.handler()
	h.flow.handler()
	require.NoError(t, a.Step())
	assert.True(t, hasLine(h.log.all(), "flow: persist 2: flash worn"))

	before := len(h.log.all())
	require.NoError(t, a.Step())
	for _, l := range h.log.all()[before:] {
		assert.NotContains(t, l, "flow: persist")
	}
}

func TestFlowPinServesOneCounter(t *testing.T) {
	h := newFakeHAL(t)
	newTestApp(t, h)

	_, err := New(h, testConfig())
	assert.True(t, errors.Is(err, hal.ErrInterruptBusy))
}

func TestStepRecoversPanic(t *testing.T) {
	h := newFakeHAL(t)
	a := newTestApp(t, h)
	h.ranger.mu.Lock()
	h.ranger.boom = true
	h.ranger.mu.Unlock()
	time.Sleep(time.Millisecond)

	err := a.Step()
	assert.True(t, errors.Is(err, ErrPanic))
	assert.Contains(t, err.Error(), "ranger exploded")
	assert.Contains(t, h.log.all(), "Octopus panic:")
}

func TestInvalidConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Level.MinCM = 500
	_, err := New(newFakeHAL(t), cfg)
	assert.Error(t, err)
}

func TestTakeRunes(t *testing.T) {
	p, r := takeRunes("héllo", 2)
	assert.Equal(t, "hé", p)
	assert.Equal(t, "llo", r)

	p, r = takeRunes("ab", 5)
	assert.Equal(t, "ab", p)
	assert.Empty(t, r)
}
