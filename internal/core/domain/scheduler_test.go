package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSchedulerConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	assert.True(t, config.Enabled)
	assert.NotNil(t, config.TaskConfigs)
	assert.Len(t, config.TaskConfigs, 3)

	checkCfg := config.TaskConfigs[TaskIDCalendarCheck]
	assert.True(t, checkCfg.Enabled)
	assert.Equal(t, "@every 15m0s", checkCfg.Spec)

	dailyCfg := config.TaskConfigs[TaskIDDailyUpdate]
	assert.True(t, dailyCfg.Enabled)
	assert.Equal(t, "0 1 * * *", dailyCfg.Spec)

	weeklyCfg := config.TaskConfigs[TaskIDWeeklyCleanup]
	assert.True(t, weeklyCfg.Enabled)
	assert.Equal(t, "0 2 * * 0", weeklyCfg.Spec)
}

func TestSchedulerConfig_GetTaskConfig(t *testing.T) {
	config := DefaultSchedulerConfig()

	checkCfg := config.GetTaskConfig(TaskIDCalendarCheck)
	assert.True(t, checkCfg.Enabled)

	unknownCfg := config.GetTaskConfig("unknown-task")
	assert.False(t, unknownCfg.Enabled)
	assert.Empty(t, unknownCfg.Spec)
}

func TestSchedulerConfig_GetTaskConfig_NilMap(t *testing.T) {
	config := SchedulerConfig{
		Enabled:     true,
		TaskConfigs: nil,
	}

	cfg := config.GetTaskConfig("any-task")
	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.Spec)
}

func TestTaskConstants(t *testing.T) {
	assert.Equal(t, "calendar-check", TaskIDCalendarCheck)
	assert.Equal(t, "daily-update", TaskIDDailyUpdate)
	assert.Equal(t, "weekly-cleanup", TaskIDWeeklyCleanup)
	assert.Len(t, TaskNames, 3)
}

func TestIntervalSpec(t *testing.T) {
	assert.Equal(t, "@every 5m0s", IntervalSpec(5*time.Minute))
	assert.Equal(t, "@every 1h30m0s", IntervalSpec(90*time.Minute))
}

func TestDailySpec(t *testing.T) {
	tests := []struct {
		in      string
		want    string
		wantErr bool
	}{
		{"01:00", "0 1 * * *", false},
		{"23:45", "45 23 * * *", false},
		{" 7:05 ", "5 7 * * *", false},
		{"24:00", "", true},
		{"12:60", "", true},
		{"noon", "", true},
		{"", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := DailySpec(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidInput)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
