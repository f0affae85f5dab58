package mongorepo

import (
	"context"
	"regexp"
	"time"

	"github.com/geocoder89/blogspace/internal/domain/post"
	"github.com/geocoder89/blogspace/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type postDoc struct {
	ID        string     `bson:"_id"`
	Title     string     `bson:"title"`
	Content   string     `bson:"content"`
	Image     *string    `bson:"image"`
	Author    string     `bson:"author"`
	AuthorID  string     `bson:"authorId"`
	CreatedAt time.Time  `bson:"createdAt"`
	UpdatedAt *time.Time `bson:"updatedAt"`
}

func (d postDoc) toPost() post.Post {
	p := post.Post{
		ID:        d.ID,
		Title:     d.Title,
		Content:   d.Content,
		Image:     d.Image,
		Author:    d.Author,
		AuthorID:  d.AuthorID,
		CreatedAt: d.CreatedAt.UTC(),
	}
	if d.UpdatedAt != nil {
		u := d.UpdatedAt.UTC()
		p.UpdatedAt = &u
	}
	return p
}

func (d postDoc) toSummary() post.Summary {
	return post.Summary{
		ID:        d.ID,
		Title:     d.Title,
		Image:     d.Image,
		Author:    d.Author,
		CreatedAt: d.CreatedAt.UTC(),
	}
}

type PostsRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

func NewPostsRepo(db *mongo.Database, prom *observability.Prom) *PostsRepo {
	return &PostsRepo{coll: db.Collection(postsCollection), prom: prom}
}

func (r *PostsRepo) Create(ctx context.Context, in post.CreateInput) (post.Post, error) {
	p := post.NewFromCreateInput(in, mongoNow())

	doc := postDoc{
		ID:        p.ID,
		Title:     p.Title,
		Content:   p.Content,
		Image:     p.Image,
		Author:    p.Author,
		AuthorID:  p.AuthorID,
		CreatedAt: p.CreatedAt,
	}

	err := observe(r.prom, "posts.create", func() error {
		_, e := r.coll.InsertOne(ctx, doc)
		return e
	})
	if err != nil {
		return post.Post{}, err
	}

	return p, nil
}

func (r *PostsRepo) List(ctx context.Context) ([]post.Summary, error) {
	return r.find(ctx, "posts.list", bson.D{})
}

func (r *PostsRepo) Search(ctx context.Context, term string) ([]post.Summary, error) {
	pattern := primitive.Regex{Pattern: regexp.QuoteMeta(term), Options: "i"}
	filter := bson.D{{Key: "$or", Value: bson.A{
		bson.D{{Key: "title", Value: pattern}},
		bson.D{{Key: "content", Value: pattern}},
	}}}
	return r.find(ctx, "posts.search", filter)
}

func (r *PostsRepo) find(ctx context.Context, op string, filter bson.D) ([]post.Summary, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "_id", Value: -1}}).
		SetProjection(bson.D{{Key: "content", Value: 0}, {Key: "authorId", Value: 0}, {Key: "updatedAt", Value: 0}})

	output := make([]post.Summary, 0)

	err := observe(r.prom, op, func() error {
		cur, err := r.coll.Find(ctx, filter, opts)
		if err != nil {
			return err
		}
		defer cur.Close(ctx)

		for cur.Next(ctx) {
			var d postDoc
			if err := cur.Decode(&d); err != nil {
				return err
			}
			output = append(output, d.toSummary())
		}
		return cur.Err()
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

	var d postDoc
	err := observe(r.prom, "posts.get", func() error {
		return r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: id}}).Decode(&d)
	})
	if err != nil {
		if isNoDocuments(err) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return d.toPost(), nil
}

// Update applies the merge as a single findOneAndUpdate so concurrent edits
// never interleave field writes.
func (r *PostsRepo) Update(ctx context.Context, id string, fields post.UpdateFields) (post.Post, error) {
	id, valid := canonicalID(id)
	if !valid {
		return post.Post{}, post.ErrInvalidID
	}

	set := bson.D{{Key: "updatedAt", Value: mongoNow()}}
	if fields.Title != nil {
		set = append(set, bson.E{Key: "title", Value: *fields.Title})
	}
	if fields.Content != nil {
		set = append(set, bson.E{Key: "content", Value: *fields.Content})
	}
	if fields.Image != nil {
		set = append(set, bson.E{Key: "image", Value: post.NormalizeImage(fields.Image)})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var d postDoc
	err := observe(r.prom, "posts.update", func() error {
		return r.coll.FindOneAndUpdate(ctx,
			bson.D{{Key: "_id", Value: id}},
			bson.D{{Key: "$set", Value: set}},
			opts,
		).Decode(&d)
	})
	if err != nil {
		if isNoDocuments(err) {
			return post.Post{}, post.ErrNotFound
		}
		return post.Post{}, err
	}

	return d.toPost(), nil
}

func (r *PostsRepo) Delete(ctx context.Context, id string) (bool, error) {
	id, valid := canonicalID(id)
	if !valid {
		return false, post.ErrInvalidID
	}

	var deleted int64
	err := observe(r.prom, "posts.delete", func() error {
		res, e := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: id}})
		if e != nil {
			return e
		}
		deleted = res.DeletedCount
		return nil
	})
	if err != nil {
		return false, err
	}

	return deleted > 0, nil
}
