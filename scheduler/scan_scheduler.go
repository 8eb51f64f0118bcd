package scheduler

import (
	"log"

	"github.com/robfig/cron/v3"

	"pricingradar/notifier"
	"pricingradar/services"
)

// ScanScheduler runs full market scans on a cron schedule and pushes the
// resulting alerts to Telegram when a notifier is configured.
type ScanScheduler struct {
	cron     *cron.Cron
	scans    *services.ScanService
	notifier *notifier.TelegramNotifier
	spec     string
}

// NewScanScheduler creates a scheduler that runs the scan service on the
// given cron spec (with seconds field, e.g. "0 0 */12 * * *").
func NewScanScheduler(scans *services.ScanService, n *notifier.TelegramNotifier, spec string) *ScanScheduler {
	return &ScanScheduler{
		cron:     cron.New(cron.WithSeconds()),
		scans:    scans,
		notifier: n,
		spec:     spec,
	}
}

// Start schedules the periodic scan and kicks one off immediately so a
// fresh deployment has data without waiting for the first tick.
func (s *ScanScheduler) Start() {
	_, err := s.cron.AddFunc(s.spec, s.runScan)
	if err != nil {
		log.Printf("Failed to schedule market scan: %v", err)
		return
	}

	go s.runScan()

	s.cron.Start()
	log.Printf("Market scan scheduled with spec %q", s.spec)
}

// Stop stops the scheduler. In-flight scans run to completion.
func (s *ScanScheduler) Stop() {
	if s.cron != nil {
		s.cron.Stop()
	}
}

// ManualScan allows triggering a scan outside the schedule.
func (s *ScanScheduler) ManualScan() {
	log.Println("Manual market scan triggered")
	s.runScan()
}

func (s *ScanScheduler) runScan() {
	log.Println("Starting scheduled market scan")

	result, err := s.scans.Scan("", false)
	if err != nil {
		log.Printf("Scheduled scan failed: %v", err)
		return
	}

	for _, mr := range result.Results {
		for _, e := range mr.Errors {
			log.Printf("⚠️  %s: %s", mr.Marketplace, e)
		}
	}

	s.notifier.NotifyAlerts(result.Alerts)
}
