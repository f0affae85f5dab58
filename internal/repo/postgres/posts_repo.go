package postgres

import (
	"context"
	"errors"
	"time"

	"github.com/geocoder89/blogspace/internal/domain/post"
	"github.com/geocoder89/blogspace/internal/observability"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostsRepo struct {
	pool *pgxpool.Pool
	prom *observability.Prom
}

func NewPostsRepo(pool *pgxpool.Pool, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{
		pool: pool,
		prom: prom,
	}
}

const postColumns = `id, title, content, image, author, author_id, created_at, updated_at`

func scanPost(row pgx.Row) (post.Post, error) {
	var p post.Post
	err := row.Scan(&p.ID, &p.Title, &p.Content, &p.Image, &p.Author, &p.AuthorID, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *PostsRepo) Create(ctx context.Context, in post.CreateInput) (post.Post, error) {
	// timestamptz keeps microseconds
	p := post.NewFromCreateInput(in, time.Now().UTC().Truncate(time.Microsecond))

	err := observe(r.prom, "posts.create", func() error {
		_, e := r.pool.Exec(ctx,
			`INSERT INTO posts (id, title, content, image, author, author_id, created_at, updated_at)
			VALUES ($1,$2,$3,$4,$5,$6,$7,NULL)`,
			p.ID, p.Title, p.Content, p.Image, p.Author, p.AuthorID, p.CreatedAt)
		return e
	})

	if err != nil {
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) List(ctx context.Context) ([]post.Summary, error) {
	return r.listSummaries(ctx, "posts.list",
		`SELECT id, title, image, author, created_at
		FROM posts
		ORDER BY created_at DESC, id DESC`)
}

func (r *PostsRepo) Search(ctx context.Context, term string) ([]post.Summary, error) {
	return r.listSummaries(ctx, "posts.search",
		`SELECT id, title, image, author, created_at
		FROM posts
		WHERE title ILIKE $1 ESCAPE '\' OR content ILIKE $1 ESCAPE '\'
		ORDER BY created_at DESC, id DESC`,
		containsPattern(term))
}

func (r *PostsRepo) listSummaries(ctx context.Context, op, query string, args ...any) ([]post.Summary, error) {
	output := make([]post.Summary, 0)

	err := observe(r.prom, op, func() error {
		rows, err := r.pool.Query(ctx, query, args...)
		if err != nil {
			return err
		}
		defer rows.Close()

		for rows.Next() {
			var s post.Summary
			if err := rows.Scan(&s.ID, &s.Title, &s.Image, &s.Author, &s.CreatedAt); err != nil {
				return err
			}
			output = append(output, s)
		}

		return rows.Err()
	})

	if err != nil {
		return nil, err
	}

	return output, nil
}

func (r *PostsRepo) GetByID(ctx context.Context, id string) (post.Post, error) {
	id, valid := canonicalID(id)
	if !valid {
		return post.Post{}, post.ErrInvalidID
	}

	var p post.Post
	err := observe(r.prom, "posts.get", func() error {
		var e error
		p, e = scanPost(r.pool.QueryRow(ctx, `SELECT `+postColumns+` FROM posts WHERE id = $1`, id))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return p, nil
}

// Update merges the non-nil fields in one statement; the row lock taken by
// UPDATE keeps concurrent edits of the same post serialized.
func (r *PostsRepo) Update(ctx context.Context, id string, fields post.UpdateFields) (post.Post, error) {
	id, valid := canonicalID(id)
	if !valid {
		return post.Post{}, post.ErrInvalidID
	}

	var p post.Post
	err := observe(r.prom, "posts.update", func() error {
		var e error
		p, e = scanPost(r.pool.QueryRow(ctx,
			`UPDATE posts
			SET title = COALESCE($2, title),
				content = COALESCE($3, content),
				image = CASE WHEN $4::boolean THEN NULLIF($5::text, '') ELSE image END,
				updated_at = GREATEST($6::timestamptz, created_at, updated_at)
			WHERE id = $1
			RETURNING `+postColumns,
			id,
			fields.Title,
			fields.Content,
			fields.Image != nil,
			imageParam(fields.Image),
			time.Now().UTC(),
		))
		return e
	})

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) Delete(ctx context.Context, id string) (bool, error) {
	id, valid := canonicalID(id)
	if !valid {
		return false, post.ErrInvalidID
	}

	var affected int64
	err := observe(r.prom, "posts.delete", func() error {
		tag, e := r.pool.Exec(ctx, `DELETE FROM posts WHERE id = $1`, id)
		if e != nil {
			return e
		}
		affected = tag.RowsAffected()
		return nil
	})

	if err != nil {
		return false, err
	}

	return affected > 0, nil
}

func imageParam(image *string) string {
	if image == nil {
		return ""
	}
	if v := post.NormalizeImage(image); v != nil {
		return *v
	}
	return ""
}
