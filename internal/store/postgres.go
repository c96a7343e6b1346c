package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// PostgresStore implements Store over a pgxpool. Every operation is a single
// auto-committed statement; multi-step flows are not transactional, cascading
// deletion is enforced by the schema's foreign keys.
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgres(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	config, err := pgxpool.ParseConfig(databaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database url: %w", err)
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

func (s *PostgresStore) Close() {
	s.pool.Close()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

func mapRowErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	if isUniqueViolation(err) {
		return ErrConflict
	}
	return err
}

const userColumns = `id, username, email, password_hash, name, bio, profile_image, theme, social_links, created_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	var bio, profileImage *string
	var links []byte
	if err := row.Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &u.Name, &bio, &profileImage, &u.Theme, &links, &u.CreatedAt); err != nil {
		return User{}, mapRowErr(err)
	}
	if bio != nil {
		u.Bio = *bio
	}
	if profileImage != nil {
		u.ProfileImage = *profileImage
	}
	u.SocialLinks = map[string]string{}
	if len(links) > 0 {
		if err := json.Unmarshal(links, &u.SocialLinks); err != nil {
			return User{}, fmt.Errorf("decode social links: %w", err)
		}
	}
	return u, nil
}

func (s *PostgresStore) GetUser(ctx context.Context, id int64) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE id = $1`, id)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByUsername(ctx context.Context, username string) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE username = $1`, username)
	return scanUser(row)
}

func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (User, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+userColumns+` FROM users WHERE lower(email) = lower($1)`, email)
	return scanUser(row)
}

func (s *PostgresStore) CreateUser(ctx context.Context, nu NewUser) (User, error) {
	links, err := json.Marshal(orEmptyLinks(nu.SocialLinks))
	if err != nil {
		return User{}, err
	}
	row := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, email, password_hash, name, bio, profile_image, theme, social_links, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		 RETURNING `+userColumns,
		nu.Username, nu.Email, nu.PasswordHash, nu.Name, nu.Bio, nu.ProfileImage, nu.Theme, links, time.Now().UTC(),
	)
	return scanUser(row)
}

func (s *PostgresStore) UpdateUser(ctx context.Context, id int64, patch UserPatch) (User, error) {
	set := make([]string, 0, 8)
	args := make([]interface{}, 0, 9)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Username != nil {
		add("username", *patch.Username)
	}
	if patch.Email != nil {
		add("email", *patch.Email)
	}
	if patch.PasswordHash != nil {
		add("password_hash", *patch.PasswordHash)
	}
	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Bio != nil {
		add("bio", *patch.Bio)
	}
	if patch.ProfileImage != nil {
		add("profile_image", *patch.ProfileImage)
	}
	if patch.Theme != nil {
		add("theme", *patch.Theme)
	}
	if patch.SocialLinks != nil {
		links, err := json.Marshal(patch.SocialLinks)
		if err != nil {
			return User{}, err
		}
		add("social_links", links)
	}
	if len(set) == 0 {
		return s.GetUser(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d RETURNING `+userColumns,
		strings.Join(set, ", "), len(args))
	return scanUser(s.pool.QueryRow(ctx, query, args...))
}

const caseStudyColumns = `id, user_id, title, summary, overview, cover_image, slug, status, tools, tags, created_at, updated_at`

func scanCaseStudy(row pgx.Row) (CaseStudy, error) {
	var cs CaseStudy
	var overview, coverImage *string
	var tools, tags []byte
	if err := row.Scan(&cs.ID, &cs.UserID, &cs.Title, &cs.Summary, &overview, &coverImage, &cs.Slug, &cs.Status, &tools, &tags, &cs.CreatedAt, &cs.UpdatedAt); err != nil {
		return CaseStudy{}, mapRowErr(err)
	}
	if overview != nil {
		cs.Overview = *overview
	}
	if coverImage != nil {
		cs.CoverImage = *coverImage
	}
	cs.Tools = []string{}
	cs.Tags = []string{}
	if len(tools) > 0 {
		if err := json.Unmarshal(tools, &cs.Tools); err != nil {
			return CaseStudy{}, fmt.Errorf("decode tools: %w", err)
		}
	}
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &cs.Tags); err != nil {
			return CaseStudy{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	return cs, nil
}

func (s *PostgresStore) GetCaseStudy(ctx context.Context, id int64) (CaseStudy, error) {
	row := s.pool.QueryRow(ctx, `SELECT `+caseStudyColumns+` FROM case_studies WHERE id = $1`, id)
	return scanCaseStudy(row)
}

func (s *PostgresStore) GetCaseStudyBySlug(ctx context.Context, userID int64, slug string) (CaseStudy, error) {
	row := s.pool.QueryRow(ctx,
		`SELECT `+caseStudyColumns+` FROM case_studies WHERE user_id = $1 AND slug = $2`, userID, slug)
	return scanCaseStudy(row)
}

func (s *PostgresStore) ListCaseStudiesByUser(ctx context.Context, userID int64) ([]CaseStudy, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+caseStudyColumns+` FROM case_studies WHERE user_id = $1 ORDER BY id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]CaseStudy, 0)
	for rows.Next() {
		cs, err := scanCaseStudy(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, cs)
	}
	return items, rows.Err()
}

func (s *PostgresStore) CreateCaseStudy(ctx context.Context, ncs NewCaseStudy) (CaseStudy, error) {
	tools, err := json.Marshal(emptyIfNil(ncs.Tools))
	if err != nil {
		return CaseStudy{}, err
	}
	tags, err := json.Marshal(emptyIfNil(ncs.Tags))
	if err != nil {
		return CaseStudy{}, err
	}
	now := time.Now().UTC()
	row := s.pool.QueryRow(ctx,
		`INSERT INTO case_studies (user_id, title, summary, overview, cover_image, slug, status, tools, tags, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		 RETURNING `+caseStudyColumns,
		ncs.UserID, ncs.Title, ncs.Summary, ncs.Overview, ncs.CoverImage, ncs.Slug, ncs.Status, tools, tags, now,
	)
	return scanCaseStudy(row)
}

func (s *PostgresStore) UpdateCaseStudy(ctx context.Context, id int64, patch CaseStudyPatch) (CaseStudy, error) {
	set := make([]string, 0, 9)
	args := make([]interface{}, 0, 10)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Summary != nil {
		add("summary", *patch.Summary)
	}
	if patch.Overview != nil {
		add("overview", *patch.Overview)
	}
	if patch.CoverImage != nil {
		add("cover_image", *patch.CoverImage)
	}
	if patch.Slug != nil {
		add("slug", *patch.Slug)
	}
	if patch.Status != nil {
		add("status", *patch.Status)
	}
	if patch.Tools != nil {
		raw, err := json.Marshal(patch.Tools)
		if err != nil {
			return CaseStudy{}, err
		}
		add("tools", raw)
	}
	if patch.Tags != nil {
		raw, err := json.Marshal(patch.Tags)
		if err != nil {
			return CaseStudy{}, err
		}
		add("tags", raw)
	}
	add("updated_at", time.Now().UTC())
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE case_studies SET %s WHERE id = $%d RETURNING `+caseStudyColumns,
		strings.Join(set, ", "), len(args))
	return scanCaseStudy(s.pool.QueryRow(ctx, query, args...))
}

func (s *PostgresStore) DeleteCaseStudy(ctx context.Context, id int64) error {
	// children cascade / media detaches via FK actions
	tag, err := s.pool.Exec(ctx, `DELETE FROM case_studies WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const mediaColumns = `id, user_id, case_study_id, url, type, name, created_at`

func scanMedia(row pgx.Row) (Media, error) {
	var m Media
	if err := row.Scan(&m.ID, &m.UserID, &m.CaseStudyID, &m.URL, &m.Type, &m.Name, &m.CreatedAt); err != nil {
		return Media{}, mapRowErr(err)
	}
	return m, nil
}

func (s *PostgresStore) GetMedia(ctx context.Context, id int64) (Media, error) {
	return scanMedia(s.pool.QueryRow(ctx, `SELECT `+mediaColumns+` FROM media WHERE id = $1`, id))
}

func (s *PostgresStore) ListMediaByUser(ctx context.Context, userID int64) ([]Media, error) {
	return s.listMedia(ctx, `SELECT `+mediaColumns+` FROM media WHERE user_id = $1 ORDER BY id`, userID)
}

func (s *PostgresStore) ListMediaByCaseStudy(ctx context.Context, caseStudyID int64) ([]Media, error) {
	return s.listMedia(ctx, `SELECT `+mediaColumns+` FROM media WHERE case_study_id = $1 ORDER BY id`, caseStudyID)
}

func (s *PostgresStore) listMedia(ctx context.Context, query string, arg interface{}) ([]Media, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Media, 0)
	for rows.Next() {
		m, err := scanMedia(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, m)
	}
	return items, rows.Err()
}

func (s *PostgresStore) CreateMedia(ctx context.Context, nm NewMedia) (Media, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO media (user_id, case_study_id, url, type, name, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+mediaColumns,
		nm.UserID, nm.CaseStudyID, nm.URL, nm.Type, nm.Name, time.Now().UTC(),
	)
	return scanMedia(row)
}

func (s *PostgresStore) DeleteMedia(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM media WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const timelineColumns = `id, case_study_id, title, description, date, "order"`

func scanTimelineItem(row pgx.Row) (TimelineItem, error) {
	var item TimelineItem
	if err := row.Scan(&item.ID, &item.CaseStudyID, &item.Title, &item.Description, &item.Date, &item.Order); err != nil {
		return TimelineItem{}, mapRowErr(err)
	}
	return item, nil
}

func (s *PostgresStore) GetTimelineItem(ctx context.Context, id int64) (TimelineItem, error) {
	return scanTimelineItem(s.pool.QueryRow(ctx,
		`SELECT `+timelineColumns+` FROM timeline_items WHERE id = $1`, id))
}

func (s *PostgresStore) ListTimelineItems(ctx context.Context, caseStudyID int64) ([]TimelineItem, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+timelineColumns+` FROM timeline_items WHERE case_study_id = $1 ORDER BY "order", id`, caseStudyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]TimelineItem, 0)
	for rows.Next() {
		item, err := scanTimelineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) CreateTimelineItem(ctx context.Context, ni NewTimelineItem) (TimelineItem, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO timeline_items (case_study_id, title, description, date, "order")
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+timelineColumns,
		ni.CaseStudyID, ni.Title, ni.Description, ni.Date, ni.Order,
	)
	return scanTimelineItem(row)
}

func (s *PostgresStore) UpdateTimelineItem(ctx context.Context, id int64, patch TimelineItemPatch) (TimelineItem, error) {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Date != nil {
		add("date", *patch.Date)
	}
	if patch.Order != nil {
		add(`"order"`, *patch.Order)
	}
	if len(set) == 0 {
		return s.GetTimelineItem(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE timeline_items SET %s WHERE id = $%d RETURNING `+timelineColumns,
		strings.Join(set, ", "), len(args))
	return scanTimelineItem(s.pool.QueryRow(ctx, query, args...))
}

func (s *PostgresStore) DeleteTimelineItem(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM timeline_items WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const testimonialColumns = `id, case_study_id, text, author, position`

func scanTestimonial(row pgx.Row) (Testimonial, error) {
	var item Testimonial
	var position *string
	if err := row.Scan(&item.ID, &item.CaseStudyID, &item.Text, &item.Author, &position); err != nil {
		return Testimonial{}, mapRowErr(err)
	}
	if position != nil {
		item.Position = *position
	}
	return item, nil
}

func (s *PostgresStore) GetTestimonial(ctx context.Context, id int64) (Testimonial, error) {
	return scanTestimonial(s.pool.QueryRow(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials WHERE id = $1`, id))
}

func (s *PostgresStore) ListTestimonials(ctx context.Context, caseStudyID int64) ([]Testimonial, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+testimonialColumns+` FROM testimonials WHERE case_study_id = $1 ORDER BY id`, caseStudyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Testimonial, 0)
	for rows.Next() {
		item, err := scanTestimonial(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) CreateTestimonial(ctx context.Context, ni NewTestimonial) (Testimonial, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO testimonials (case_study_id, text, author, position)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+testimonialColumns,
		ni.CaseStudyID, ni.Text, ni.Author, ni.Position,
	)
	return scanTestimonial(row)
}

func (s *PostgresStore) UpdateTestimonial(ctx context.Context, id int64, patch TestimonialPatch) (Testimonial, error) {
	set := make([]string, 0, 3)
	args := make([]interface{}, 0, 4)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Text != nil {
		add("text", *patch.Text)
	}
	if patch.Author != nil {
		add("author", *patch.Author)
	}
	if patch.Position != nil {
		add("position", *patch.Position)
	}
	if len(set) == 0 {
		return s.GetTestimonial(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE testimonials SET %s WHERE id = $%d RETURNING `+testimonialColumns,
		strings.Join(set, ", "), len(args))
	return scanTestimonial(s.pool.QueryRow(ctx, query, args...))
}

func (s *PostgresStore) DeleteTestimonial(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM testimonials WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const metricColumns = `id, case_study_id, title, value, subtitle, icon`

func scanMetric(row pgx.Row) (Metric, error) {
	var item Metric
	var subtitle, icon *string
	if err := row.Scan(&item.ID, &item.CaseStudyID, &item.Title, &item.Value, &subtitle, &icon); err != nil {
		return Metric{}, mapRowErr(err)
	}
	if subtitle != nil {
		item.Subtitle = *subtitle
	}
	if icon != nil {
		item.Icon = *icon
	}
	return item, nil
}

func (s *PostgresStore) GetMetric(ctx context.Context, id int64) (Metric, error) {
	return scanMetric(s.pool.QueryRow(ctx, `SELECT `+metricColumns+` FROM metrics WHERE id = $1`, id))
}

func (s *PostgresStore) ListMetrics(ctx context.Context, caseStudyID int64) ([]Metric, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+metricColumns+` FROM metrics WHERE case_study_id = $1 ORDER BY id`, caseStudyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Metric, 0)
	for rows.Next() {
		item, err := scanMetric(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func (s *PostgresStore) CreateMetric(ctx context.Context, ni NewMetric) (Metric, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO metrics (case_study_id, title, value, subtitle, icon)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+metricColumns,
		ni.CaseStudyID, ni.Title, ni.Value, ni.Subtitle, ni.Icon,
	)
	return scanMetric(row)
}

func (s *PostgresStore) UpdateMetric(ctx context.Context, id int64, patch MetricPatch) (Metric, error) {
	set := make([]string, 0, 4)
	args := make([]interface{}, 0, 5)
	add := func(column string, value interface{}) {
		args = append(args, value)
		set = append(set, fmt.Sprintf("%s = $%d", column, len(args)))
	}
	if patch.Title != nil {
		add("title", *patch.Title)
	}
	if patch.Value != nil {
		add("value", *patch.Value)
	}
	if patch.Subtitle != nil {
		add("subtitle", *patch.Subtitle)
	}
	if patch.Icon != nil {
		add("icon", *patch.Icon)
	}
	if len(set) == 0 {
		return s.GetMetric(ctx, id)
	}
	args = append(args, id)
	query := fmt.Sprintf(`UPDATE metrics SET %s WHERE id = $%d RETURNING `+metricColumns,
		strings.Join(set, ", "), len(args))
	return scanMetric(s.pool.QueryRow(ctx, query, args...))
}

func (s *PostgresStore) DeleteMetric(ctx context.Context, id int64) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM metrics WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

const visitColumns = `id, user_id, case_study_id, visit_date, ip_address, referrer`

func scanVisit(row pgx.Row) (Visit, error) {
	var v Visit
	var ip, referrer *string
	if err := row.Scan(&v.ID, &v.UserID, &v.CaseStudyID, &v.VisitDate, &ip, &referrer); err != nil {
		return Visit{}, mapRowErr(err)
	}
	if ip != nil {
		v.IPAddress = *ip
	}
	if referrer != nil {
		v.Referrer = *referrer
	}
	return v, nil
}

func (s *PostgresStore) ListVisitsByUser(ctx context.Context, userID int64) ([]Visit, error) {
	return s.listVisits(ctx, `SELECT `+visitColumns+` FROM analytics WHERE user_id = $1 ORDER BY id`, userID)
}

func (s *PostgresStore) ListVisitsByCaseStudy(ctx context.Context, caseStudyID int64) ([]Visit, error) {
	return s.listVisits(ctx, `SELECT `+visitColumns+` FROM analytics WHERE case_study_id = $1 ORDER BY id`, caseStudyID)
}

func (s *PostgresStore) listVisits(ctx context.Context, query string, arg interface{}) ([]Visit, error) {
	rows, err := s.pool.Query(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]Visit, 0)
	for rows.Next() {
		v, err := scanVisit(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, v)
	}
	return items, rows.Err()
}

func (s *PostgresStore) CreateVisit(ctx context.Context, nv NewVisit) (Visit, error) {
	row := s.pool.QueryRow(ctx,
		`INSERT INTO analytics (user_id, case_study_id, visit_date, ip_address, referrer)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING `+visitColumns,
		nv.UserID, nv.CaseStudyID, time.Now().UTC(), nv.IPAddress, nv.Referrer,
	)
	return scanVisit(row)
}

func orEmptyLinks(in map[string]string) map[string]string {
	if in == nil {
		return map[string]string{}
	}
	return in
}
