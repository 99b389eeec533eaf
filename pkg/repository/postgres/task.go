package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
)

// Task operations

// the WHERE clause of the conflict branch keeps terminal rows unchanged
const putTask = `INSERT INTO tasks
    (id, kind, repository_id, username, week, question, status, total_count, ingested_count, failed_count,
     result, error_message, submitted_at, created_at, started_at, completed_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
ON CONFLICT (id) DO UPDATE SET
    status = EXCLUDED.status,
    total_count = EXCLUDED.total_count,
    ingested_count = EXCLUDED.ingested_count,
    failed_count = EXCLUDED.failed_count,
    result = EXCLUDED.result,
    error_message = EXCLUDED.error_message,
    created_at = EXCLUDED.created_at,
    started_at = EXCLUDED.started_at,
    completed_at = EXCLUDED.completed_at
WHERE tasks.status NOT IN ('done', 'failed')`

func (x *Client) PutTask(ctx context.Context, task *model.Task) error {
	if task.ID == "" || !task.Status.Valid() {
		return goerr.Wrap(repository.ErrInvalidInput, "invalid task",
			goerr.V("task_id", task.ID),
			goerr.V("status", task.Status),
		)
	}

	var result []byte
	if len(task.Result) > 0 {
		result = []byte(task.Result)
	}

	tag, err := x.pool.Exec(ctx, putTask,
		string(task.ID), string(task.Kind), string(task.Subject.RepositoryID), task.Subject.Username,
		string(task.Subject.Week), task.Subject.Question, string(task.Status),
		task.TotalCount, task.IngestedCount, task.FailedCount,
		result, task.ErrorMessage, task.SubmittedAt, task.CreatedAt, task.StartedAt, task.CompletedAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to put task", goerr.V("task_id", task.ID))
	}
	if tag.RowsAffected() == 0 {
		return goerr.Wrap(repository.ErrImmutable, "task is already terminal", goerr.V("task_id", task.ID))
	}
	return nil
}

const selectTask = `SELECT id, kind, repository_id, username, week, question, status, total_count, ingested_count, failed_count,
    result, error_message, submitted_at, created_at, started_at, completed_at FROM tasks`

func scanTask(row pgx.Row) (*model.Task, error) {
	var (
		task                           model.Task
		id, kind, repoID, week, status string
		result                         []byte
	)
	if err := row.Scan(&id, &kind, &repoID, &task.Subject.Username, &week, &task.Subject.Question, &status,
		&task.TotalCount, &task.IngestedCount, &task.FailedCount,
		&result, &task.ErrorMessage, &task.SubmittedAt, &task.CreatedAt, &task.StartedAt, &task.CompletedAt,
	); err != nil {
		return nil, err
	}
	task.ID = types.TaskID(id)
	task.Kind = types.TaskKind(kind)
	task.Subject.RepositoryID = types.RepositoryID(repoID)
	task.Subject.Week = types.Week(week)
	task.Status = types.TaskStatus(status)
	if len(result) > 0 {
		task.Result = json.RawMessage(result)
	}
	return &task, nil
}

func (x *Client) GetTask(ctx context.Context, id types.TaskID) (*model.Task, error) {
	task, err := scanTask(x.pool.QueryRow(ctx, selectTask+` WHERE id = $1`, string(id)))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrNotFound, "task not found", goerr.V("task_id", id))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get task", goerr.V("task_id", id))
	}
	return task, nil
}

func (x *Client) ListPendingTasks(ctx context.Context) ([]*model.Task, error) {
	rows, err := x.pool.Query(ctx, selectTask+` WHERE status NOT IN ('done', 'failed') ORDER BY submitted_at, id`)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list pending tasks")
	}
	defer rows.Close()

	var tasks []*model.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan task")
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate tasks")
	}
	return tasks, nil
}

// Summary operations

func (x *Client) CreateSummary(ctx context.Context, summary *model.Summary) error {
	if summary.Username == "" || summary.Week == "" {
		return goerr.Wrap(repository.ErrInvalidInput, "summary requires username and week")
	}

	categories, err := marshalJSON(summary.Categories, "{}")
	if err != nil {
		return err
	}
	achievements, err := marshalJSON(summary.Achievements, "[]")
	if err != nil {
		return err
	}
	counts, err := marshalJSON(summary.Counts, "{}")
	if err != nil {
		return err
	}

	createdAt := summary.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now().UTC()
	}

	const q = `INSERT INTO summaries
    (id, username, week, repository_id, task_id, overview, categories, achievements, counts, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT DO NOTHING`
	tag, err := x.pool.Exec(ctx, q,
		string(summary.ID), summary.Username, string(summary.Week), string(summary.RepositoryID),
		string(summary.TaskID), summary.Overview, categories, achievements, counts, createdAt,
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert summary",
			goerr.V("username", summary.Username),
			goerr.V("week", summary.Week),
		)
	}
	if tag.RowsAffected() == 0 {
		return goerr.Wrap(repository.ErrAlreadyExists, "summary already exists",
			goerr.V("username", summary.Username),
			goerr.V("week", summary.Week),
		)
	}
	return nil
}

func (x *Client) GetSummary(ctx context.Context, username string, week types.Week) (*model.Summary, error) {
	const q = `SELECT id, repository_id, task_id, overview, categories, achievements, counts, created_at
FROM summaries WHERE username = $1 AND week = $2`

	var (
		s                                model.Summary
		id, repoID, taskID               string
		categories, achievements, counts []byte
	)
	err := x.pool.QueryRow(ctx, q, username, string(week)).Scan(
		&id, &repoID, &taskID, &s.Overview, &categories, &achievements, &counts, &s.CreatedAt,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrNotFound, "summary not found",
			goerr.V("username", username),
			goerr.V("week", week),
		)
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get summary", goerr.V("username", username), goerr.V("week", week))
	}

	s.ID = types.SummaryID(id)
	s.Username = username
	s.Week = week
	s.RepositoryID = types.RepositoryID(repoID)
	s.TaskID = types.TaskID(taskID)
	if err := json.Unmarshal(categories, &s.Categories); err != nil {
		return nil, goerr.Wrap(err, "failed to decode summary categories")
	}
	if err := json.Unmarshal(achievements, &s.Achievements); err != nil {
		return nil, goerr.Wrap(err, "failed to decode summary achievements")
	}
	if err := json.Unmarshal(counts, &s.Counts); err != nil {
		return nil, goerr.Wrap(err, "failed to decode summary counts")
	}
	return &s, nil
}

// QuestionAnswer operations

func (x *Client) CreateQuestionAnswer(ctx context.Context, qa *model.QuestionAnswer) error {
	if qa.ID == "" || qa.RepositoryID == "" {
		return goerr.Wrap(repository.ErrInvalidInput, "question answer requires ID and repository")
	}

	var response []byte
	if qa.Response != nil {
		raw, err := json.Marshal(qa.Response)
		if err != nil {
			return goerr.Wrap(err, "failed to encode answer response")
		}
		response = raw
	}

	const q = `INSERT INTO question_answers
    (id, repository_id, username, week, question, answer, confidence, response, task_id, failed, asked_at, answered_at, elapsed_ns)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
ON CONFLICT (id) DO NOTHING`
	tag, err := x.pool.Exec(ctx, q,
		string(qa.ID), string(qa.RepositoryID), qa.Username, string(qa.Week), qa.Question, qa.Answer,
		qa.Confidence, response, string(qa.TaskID), qa.Failed, qa.AskedAt, qa.AnsweredAt, int64(qa.Elapsed),
	)
	if err != nil {
		return goerr.Wrap(err, "failed to insert question answer", goerr.V("id", qa.ID))
	}
	if tag.RowsAffected() == 0 {
		return goerr.Wrap(repository.ErrAlreadyExists, "question answer already exists", goerr.V("id", qa.ID))
	}
	return nil
}

func (x *Client) ListQuestionAnswers(ctx context.Context, repoID types.RepositoryID) ([]*model.QuestionAnswer, error) {
	const q = `SELECT id, username, week, question, answer, confidence, response, task_id, failed, asked_at, answered_at, elapsed_ns
FROM question_answers WHERE repository_id = $1 ORDER BY asked_at, id`
	rows, err := x.pool.Query(ctx, q, string(repoID))
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list question answers", goerr.V("repository_id", repoID))
	}
	defer rows.Close()

	var answers []*model.QuestionAnswer
	for rows.Next() {
		var (
			qa               model.QuestionAnswer
			id, week, taskID string
			response         []byte
			elapsed          int64
		)
		if err := rows.Scan(&id, &qa.Username, &week, &qa.Question, &qa.Answer, &qa.Confidence, &response,
			&taskID, &qa.Failed, &qa.AskedAt, &qa.AnsweredAt, &elapsed); err != nil {
			return nil, goerr.Wrap(err, "failed to scan question answer")
		}
		qa.ID = types.QuestionAnswerID(id)
		qa.RepositoryID = repoID
		qa.Week = types.Week(week)
		qa.TaskID = types.TaskID(taskID)
		qa.Elapsed = time.Duration(elapsed)
		if len(response) > 0 {
			var resp model.AnswerResult
			if err := json.Unmarshal(response, &resp); err != nil {
				return nil, goerr.Wrap(err, "failed to decode answer response", goerr.V("id", id))
			}
			qa.Response = &resp
		}
		answers = append(answers, &qa)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate question answers")
	}
	return answers, nil
}

func marshalJSON(v any, empty string) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode JSON column")
	}
	if string(raw) == "null" {
		return []byte(empty), nil
	}
	return raw, nil
}
