package app

import (
	"os"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/mem"
	"github.com/shirou/gopsutil/v4/process"
	"github.com/spf13/cast"
	"go.uber.org/zap"

	"github.com/croplink/agrimarket/internal/domain"
	"github.com/croplink/agrimarket/internal/notify"
	"github.com/croplink/agrimarket/pkg/metrics"
)

var cronParser = cron.NewParser(
	cron.SecondOptional | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor,
)

func (a *Application) initJob() {
	loc, _ := time.LoadLocation(a.appConfig.System.Location)
	a.sched = cron.New(cron.WithLocation(loc), cron.WithParser(cronParser))

	var err error
	_, err = a.sched.AddFunc("@every 30s", func() {
		go a.SchedSystemMonitorTask()
		go a.SchedProcessMonitorTask()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	_, err = a.sched.AddFunc("@daily", func() {
		a.SchedClearExpireData()
	})
	if err != nil {
		zap.S().Errorf("init job error %s", err.Error())
	}

	a.sched.Start()
}

// GetConfigInt64 reads an integer system setting, falling back when unset.
func (a *Application) GetConfigInt64(ctype, name string, defval int64) int64 {
	var cfg domain.SysConfig
	if err := a.gormDB.Where("type = ? and name = ?", ctype, name).First(&cfg).Error; err != nil {
		return defval
	}
	v := cast.ToInt64(cfg.Value)
	if v == 0 {
		return defval
	}
	return v
}

// SchedSystemMonitorTask system monitor
func (a *Application) SchedSystemMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	// Collect CPU usage
	_cpuuse, err := cpu.Percent(0, false)
	if err == nil && len(_cpuuse) > 0 {
		metrics.SetGauge("system_cpuuse", int64(_cpuuse[0]*100)) // Store as percentage * 100
	}

	// Collect memory usage
	_meminfo, err := mem.VirtualMemory()
	if err == nil {
		metrics.SetGauge("system_memuse", int64(_meminfo.Used/1024/1024))
	}
}

// SchedProcessMonitorTask app process monitor
func (a *Application) SchedProcessMonitorTask() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return
	}

	// Collect process CPU usage
	cpuuse, err := p.CPUPercent()
	if err == nil {
		metrics.SetGauge("agrimarket_cpuuse", int64(cpuuse*100)) // Store as percentage * 100
	}

	// Collect process memory usage
	meminfo, err := p.MemoryInfo()
	if err == nil {
		metrics.SetGauge("agrimarket_memuse", int64(meminfo.RSS/1024/1024))
	}
}

// SchedClearExpireData removes aged audit entries, read notifications and
// orphaned order history per the configured retention windows.
func (a *Application) SchedClearExpireData() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	auditDays := a.GetConfigInt64("audit", "AuditRetentionDays", 365)
	a.gormDB.
		Where("created_at < ?", time.Now().Add(-time.Hour*24*time.Duration(auditDays))).
		Delete(&domain.AdminAudit{})

	notifyDays := a.GetConfigInt64("notify", "NotificationRetentionDays", 90)
	notify.PruneRead(a.gormDB, time.Hour*24*time.Duration(notifyDays))
}
