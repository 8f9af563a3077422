package events

const (
	SubjectPrefix = "mcdm"

	StreamName   = "MCDM_EVENTS"
	StreamMaxAge = "720h" // 30 days
)

func SubjectRunCompleted(runID string) string { return "mcdm.run." + runID + ".completed" }
func SubjectRunFailed(runID string) string    { return "mcdm.run." + runID + ".failed" }
func SubjectRunWarning(runID string) string   { return "mcdm.run." + runID + ".consistency_warning" }

func SubjectJobQueued(jobID string) string    { return "mcdm.job." + jobID + ".queued" }
func SubjectJobStarted(jobID string) string   { return "mcdm.job." + jobID + ".started" }
func SubjectJobProgress(jobID string) string  { return "mcdm.job." + jobID + ".progress" }
func SubjectJobCompleted(jobID string) string { return "mcdm.job." + jobID + ".completed" }
func SubjectJobFailed(jobID string) string    { return "mcdm.job." + jobID + ".failed" }
func SubjectJobCancelled(jobID string) string { return "mcdm.job." + jobID + ".cancelled" }
