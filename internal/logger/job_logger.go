// Package logger provides job-specific logging.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"
)

// JobLogger provides dedicated logging for pipeline job runs.
type JobLogger struct {
	*logrus.Entry
}

// NewJobLogger creates a new job logger.
func NewJobLogger(baseLogger *logrus.Logger) *JobLogger {
	return &JobLogger{
		Entry: baseLogger.WithField("component", "job"),
	}
}

// LogJobStart logs the start of a pipeline job.
func (jl *JobLogger) LogJobStart(job string, assets int) {
	jl.WithFields(logrus.Fields{
		"job":    job,
		"assets": assets,
	}).Info("Job started")
}

// LogJobComplete logs the completion of a pipeline job.
func (jl *JobLogger) LogJobComplete(job string, processed, skipped, errors int, duration time.Duration) {
	jl.WithFields(logrus.Fields{
		"job":         job,
		"processed":   processed,
		"skipped":     skipped,
		"errors":      errors,
		"duration_ms": duration.Milliseconds(),
	}).Info("Job completed")
}

// LogPartialCompletion logs a job that finished with dropped batches.
func (jl *JobLogger) LogPartialCompletion(job string, written, failedBatches int) {
	jl.WithFields(logrus.Fields{
		"job":            job,
		"rows_written":   written,
		"failed_batches": failedBatches,
	}).Warn("Job completed partially")
}

// LogAssetFailure logs a per-asset failure inside a job run.
func (jl *JobLogger) LogAssetFailure(job, symbol string, err error) {
	jl.WithFields(logrus.Fields{
		"job":    job,
		"symbol": symbol,
	}).WithError(err).Error("Asset failed")
}
