package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"msgagent/models"
)

type dialect int

const (
	dialectSQLite dialect = iota
	dialectPostgres
)

// SQLStore implements Store over database/sql. Queries are written with '?'
// placeholders and rebound for the driver in use.
type SQLStore struct {
	db      *sql.DB
	dialect dialect
	now     func() time.Time
}

func (s *SQLStore) rebind(query string) string {
	if s.dialect != dialectPostgres {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteString("$" + strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Ping checks the connection
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}

// --- prompts ---

const promptColumns = `id, user_id, name, content, is_active, created_at, updated_at`

func scanPrompt(row interface{ Scan(...any) error }) (*models.PromptTemplate, error) {
	var p models.PromptTemplate
	if err := row.Scan(&p.ID, &p.UserID, &p.Name, &p.Content, &p.IsActive, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

// ActiveTemplate returns the user's active template or ErrNotFound
func (s *SQLStore) ActiveTemplate(ctx context.Context, userID string) (*models.PromptTemplate, error) {
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+promptColumns+`
		FROM user_prompts
		WHERE user_id = ? AND is_active = ?`), userID, true)
	p, err := scanPrompt(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get active prompt: %w", err)
	}
	return p, nil
}

// SaveTemplate inserts or updates the template named name
func (s *SQLStore) SaveTemplate(ctx context.Context, userID, name, content string) (*models.PromptTemplate, error) {
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO user_prompts (user_id, name, content, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, name)
		DO UPDATE SET content = excluded.content, updated_at = excluded.updated_at`),
		userID, name, content, false, now, now)
	if err != nil {
		return nil, fmt.Errorf("save prompt: %w", err)
	}

	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT `+promptColumns+`
		FROM user_prompts
		WHERE user_id = ? AND name = ?`), userID, name)
	p, err := scanPrompt(row)
	if err != nil {
		return nil, fmt.Errorf("load saved prompt: %w", err)
	}
	return p, nil
}

// ActivateTemplate makes id the only active template for userID
func (s *SQLStore) ActivateTemplate(ctx context.Context, userID string, id int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE user_prompts SET is_active = ? WHERE user_id = ?`), false, userID); err != nil {
		return fmt.Errorf("deactivate prompts: %w", err)
	}

	res, err := tx.ExecContext(ctx, s.rebind(`
		UPDATE user_prompts SET is_active = ?, updated_at = ?
		WHERE user_id = ? AND id = ?`), true, s.now().UTC(), userID, id)
	if err != nil {
		return fmt.Errorf("activate prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return tx.Commit()
}

// DeleteTemplate removes one of the user's templates
func (s *SQLStore) DeleteTemplate(ctx context.Context, userID string, id int64) error {
	res, err := s.db.ExecContext(ctx, s.rebind(`
		DELETE FROM user_prompts WHERE user_id = ? AND id = ?`), userID, id)
	if err != nil {
		return fmt.Errorf("delete prompt: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// ListTemplates returns the user's templates, newest first
func (s *SQLStore) ListTemplates(ctx context.Context, userID string) ([]models.PromptTemplate, error) {
	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT `+promptColumns+`
		FROM user_prompts
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC`), userID)
	if err != nil {
		return nil, fmt.Errorf("list prompts: %w", err)
	}
	defer rows.Close()

	prompts := []models.PromptTemplate{}
	for rows.Next() {
		p, err := scanPrompt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan prompt: %w", err)
		}
		prompts = append(prompts, *p)
	}
	return prompts, rows.Err()
}

// --- contacts ---

// ContactSettings returns stored settings or the zero value
func (s *SQLStore) ContactSettings(ctx context.Context, owner, sender string) (models.ContactSettings, error) {
	var c models.ContactSettings
	var hint sql.NullString
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT name, priority_boost, is_starred, category_hint, updated_at
		FROM contact_priorities
		WHERE user_id = ? AND sender_id = ?`), owner, sender)
	err := row.Scan(&c.Name, &c.PriorityBoost, &c.IsStarred, &hint, &c.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return models.ContactSettings{}, nil
	}
	if err != nil {
		return models.ContactSettings{}, fmt.Errorf("get contact: %w", err)
	}
	c.CategoryHint = models.Category(hint.String)
	return c, nil
}

// SetContactSettings upserts settings for (owner, sender)
func (s *SQLStore) SetContactSettings(ctx context.Context, owner, sender string, c models.ContactSettings) error {
	now := s.now().UTC()
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO contact_priorities (user_id, sender_id, name, priority_boost, is_starred, category_hint, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id, sender_id)
		DO UPDATE SET name = excluded.name, priority_boost = excluded.priority_boost,
			is_starred = excluded.is_starred, category_hint = excluded.category_hint,
			updated_at = excluded.updated_at`),
		owner, sender, c.Name, c.PriorityBoost, c.IsStarred, string(c.CategoryHint), now, now)
	if err != nil {
		return fmt.Errorf("set contact: %w", err)
	}
	return nil
}

// --- execution logs ---

// LogExecution stores one organize run
func (s *SQLStore) LogExecution(ctx context.Context, log *models.ExecutionLog) error {
	tools, err := json.Marshal(log.ToolCalls)
	if err != nil {
		return fmt.Errorf("marshal tool calls: %w", err)
	}
	result, err := json.Marshal(log.Result)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	category := ""
	if log.Result != nil {
		category = string(log.Result.Category)
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = s.now().UTC()
	}

	row := s.db.QueryRowContext(ctx, s.rebind(`
		INSERT INTO agent_execution_logs
			(user_id, sender_id, message_text, prompt_used, tool_results, final_response,
			 category, total_execution_time, success, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id`),
		log.UserID, log.SenderID, log.MessageText, log.PromptUsed, string(tools), string(result),
		category, log.ExecutionTime, log.Success, log.Error, log.CreatedAt)
	if err := row.Scan(&log.ID); err != nil {
		return fmt.Errorf("log execution: %w", err)
	}
	return nil
}

// ExecutionStats aggregates the user's runs over the last days
func (s *SQLStore) ExecutionStats(ctx context.Context, userID string, days int) (*models.ExecutionStats, error) {
	if days <= 0 {
		days = 30
	}
	since := s.now().UTC().AddDate(0, 0, -days)
	stats := &models.ExecutionStats{
		CategoryDistribution: map[models.Category]int{},
		PeriodDays:           days,
	}

	var avg sql.NullFloat64
	var successes sql.NullInt64
	row := s.db.QueryRowContext(ctx, s.rebind(`
		SELECT COUNT(*),
			SUM(CASE WHEN success THEN 1 ELSE 0 END),
			AVG(total_execution_time)
		FROM agent_execution_logs
		WHERE user_id = ? AND created_at >= ?`), userID, since)
	if err := row.Scan(&stats.TotalExecutions, &successes, &avg); err != nil {
		return nil, fmt.Errorf("execution stats: %w", err)
	}
	stats.SuccessfulExecutions = int(successes.Int64)
	stats.AvgExecutionTime = avg.Float64
	if stats.TotalExecutions > 0 {
		stats.SuccessRate = float64(stats.SuccessfulExecutions) / float64(stats.TotalExecutions)
	}

	rows, err := s.db.QueryContext(ctx, s.rebind(`
		SELECT category, COUNT(*)
		FROM agent_execution_logs
		WHERE user_id = ? AND created_at >= ? AND category <> ''
		GROUP BY category`), userID, since)
	if err != nil {
		return nil, fmt.Errorf("category distribution: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var category string
		var n int
		if err := rows.Scan(&category, &n); err != nil {
			return nil, fmt.Errorf("scan distribution: %w", err)
		}
		stats.CategoryDistribution[models.Category(category)] = n
	}
	return stats, rows.Err()
}
