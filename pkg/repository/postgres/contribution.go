package postgres

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"

	"github.com/jackc/pgx/v5"
	"github.com/m-mizutani/goerr/v2"
	"github.com/secmon-lab/ghdigest/pkg/domain/model"
	"github.com/secmon-lab/ghdigest/pkg/domain/types"
	"github.com/secmon-lab/ghdigest/pkg/repository"
	"github.com/secmon-lab/ghdigest/pkg/utils/safe"
)

const upsertContribution = `INSERT INTO contributions
    (type, native_id, repository_id, author, summary, raw, is_selected, created_at, updated_at, fetched_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
ON CONFLICT (type, native_id) DO UPDATE SET
    repository_id = EXCLUDED.repository_id,
    author = EXCLUDED.author,
    summary = EXCLUDED.summary,
    raw = EXCLUDED.raw,
    created_at = EXCLUDED.created_at,
    updated_at = EXCLUDED.updated_at,
    fetched_at = EXCLUDED.fetched_at`

func (x *Client) UpsertContributions(ctx context.Context, contributions []*model.Contribution) (int, error) {
	if len(contributions) == 0 {
		return 0, nil
	}

	batch := &pgx.Batch{}
	for _, c := range contributions {
		if !c.Type.Valid() || c.NativeID == "" {
			return 0, goerr.Wrap(repository.ErrInvalidInput, "invalid contribution key",
				goerr.V("key", c.ContributionKey.String()),
			)
		}
		var raw []byte
		if len(c.Raw) > 0 {
			raw = []byte(c.Raw)
		}
		batch.Queue(upsertContribution,
			string(c.Type), c.NativeID, string(c.RepositoryID), c.Author, c.Summary, raw,
			c.IsSelected, c.CreatedAt, c.UpdatedAt, c.FetchedAt,
		)
	}

	tx, err := x.pool.Begin(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to begin transaction")
	}
	defer safe.Rollback(ctx, tx)

	br := tx.SendBatch(ctx, batch)
	var n int
	for _, c := range contributions {
		tag, err := br.Exec()
		if err != nil {
			_ = br.Close()
			return 0, goerr.Wrap(err, "failed to upsert contribution", goerr.V("key", c.ContributionKey.String()))
		}
		n += int(tag.RowsAffected())
	}
	if err := br.Close(); err != nil {
		return 0, goerr.Wrap(err, "failed to close batch")
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, goerr.Wrap(err, "failed to commit contributions")
	}
	return n, nil
}

const selectContribution = `SELECT type, native_id, repository_id, author, summary, raw, is_selected, created_at, updated_at, fetched_at FROM contributions`

func scanContribution(row pgx.Row) (*model.Contribution, error) {
	var (
		c                   model.Contribution
		typ, nativeID, repo string
		raw                 []byte
	)
	if err := row.Scan(&typ, &nativeID, &repo, &c.Author, &c.Summary, &raw, &c.IsSelected, &c.CreatedAt, &c.UpdatedAt, &c.FetchedAt); err != nil {
		return nil, err
	}
	c.Type = types.ContributionType(typ)
	c.NativeID = nativeID
	c.RepositoryID = types.RepositoryID(repo)
	if len(raw) > 0 {
		c.Raw = json.RawMessage(raw)
	}
	return &c, nil
}

func (x *Client) GetContribution(ctx context.Context, key model.ContributionKey) (*model.Contribution, error) {
	c, err := scanContribution(x.pool.QueryRow(ctx, selectContribution+` WHERE type = $1 AND native_id = $2`, string(key.Type), key.NativeID))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, goerr.Wrap(repository.ErrNotFound, "contribution not found", goerr.V("key", key.String()))
	}
	if err != nil {
		return nil, goerr.Wrap(err, "failed to get contribution", goerr.V("key", key.String()))
	}
	return c, nil
}

func (x *Client) ListContributions(ctx context.Context, filter *model.ContributionFilter) ([]*model.Contribution, error) {
	if filter == nil {
		filter = &model.ContributionFilter{}
	}

	var w whereBuilder
	if filter.RepositoryID != "" {
		w.add("repository_id = ?", string(filter.RepositoryID))
	}
	if filter.Author != "" {
		w.add("author = ?", filter.Author)
	}
	if filter.Type != "" {
		w.add("type = ?", string(filter.Type))
	}
	if filter.Since != nil {
		w.add("created_at >= ?", *filter.Since)
	}
	if filter.Until != nil {
		w.add("created_at < ?", *filter.Until)
	}
	if filter.Selected != nil {
		w.add("is_selected = ?", *filter.Selected)
	}

	q := selectContribution + w.clause() + ` ORDER BY created_at, (type || ':' || native_id) COLLATE "C"`
	if filter.Limit > 0 {
		q += " LIMIT " + strconv.Itoa(filter.Limit)
	}
	if filter.Offset > 0 {
		q += " OFFSET " + strconv.Itoa(filter.Offset)
	}

	rows, err := x.pool.Query(ctx, q, w.args...)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to list contributions")
	}
	defer rows.Close()

	var contributions []*model.Contribution
	for rows.Next() {
		c, err := scanContribution(rows)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to scan contribution")
		}
		contributions = append(contributions, c)
	}
	if err := rows.Err(); err != nil {
		return nil, goerr.Wrap(err, "failed to iterate contributions")
	}
	return contributions, nil
}

func (x *Client) UpdateSelections(ctx context.Context, updates []*model.SelectionUpdate) (int, error) {
	tx, err := x.pool.Begin(ctx)
	if err != nil {
		return 0, goerr.Wrap(err, "failed to begin transaction")
	}
	defer safe.Rollback(ctx, tx)

	var n int
	for _, u := range updates {
		tag, err := tx.Exec(ctx, `UPDATE contributions SET is_selected = $3 WHERE type = $1 AND native_id = $2`,
			string(u.Type), u.NativeID, u.IsSelected)
		if err != nil {
			return 0, goerr.Wrap(err, "failed to update selection", goerr.V("key", u.ContributionKey.String()))
		}
		n += int(tag.RowsAffected())
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, goerr.Wrap(err, "failed to commit selections")
	}
	return n, nil
}
