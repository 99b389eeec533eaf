package types

// ContributionType is part of the contribution identity. The same native ID
// may exist under different types without collision.
type ContributionType string

const (
	ContributionCommit      ContributionType = "commit"
	ContributionPullRequest ContributionType = "pull_request"
	ContributionIssue       ContributionType = "issue"
	ContributionRelease     ContributionType = "release"
)

// ContributionTypes lists every type fetched from GitHub
var ContributionTypes = []ContributionType{
	ContributionCommit,
	ContributionPullRequest,
	ContributionIssue,
	ContributionRelease,
}

func (x ContributionType) Valid() bool {
	switch x {
	case ContributionCommit, ContributionPullRequest, ContributionIssue, ContributionRelease:
		return true
	}
	return false
}

func (x ContributionType) String() string { return string(x) }

// TaskStatus is the lifecycle state of a remote task. TaskStatusSubmitted is
// assigned locally right after submission; the others are reported by the
// remote service.
type TaskStatus string

const (
	TaskStatusSubmitted   TaskStatus = "submitted"
	TaskStatusQueued      TaskStatus = "queued"
	TaskStatusIngesting   TaskStatus = "ingesting"
	TaskStatusSummarizing TaskStatus = "summarizing"
	TaskStatusDone        TaskStatus = "done"
	TaskStatusFailed      TaskStatus = "failed"
)

func (x TaskStatus) IsTerminal() bool {
	return x == TaskStatusDone || x == TaskStatusFailed
}

func (x TaskStatus) Valid() bool {
	switch x {
	case TaskStatusSubmitted, TaskStatusQueued, TaskStatusIngesting, TaskStatusSummarizing, TaskStatusDone, TaskStatusFailed:
		return true
	}
	return false
}

// TaskKind distinguishes the two job kinds sharing one engine
type TaskKind string

const (
	TaskKindIngest   TaskKind = "ingest"
	TaskKindQuestion TaskKind = "question"
)

// PollCadence selects the polling interval of a task
type PollCadence string

const (
	PollInteractive PollCadence = "interactive"
	PollBulk        PollCadence = "bulk"
)
