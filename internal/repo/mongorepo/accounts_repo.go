package mongorepo

import (
	"context"
	"time"

	"github.com/geocoder89/blogspace/internal/domain/account"
	"github.com/geocoder89/blogspace/internal/observability"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

type accountDoc struct {
	ID           string    `bson:"_id"`
	Name         string    `bson:"name"`
	Email        string    `bson:"email"`
	PasswordHash string    `bson:"passwordHash"`
	CreatedAt    time.Time `bson:"createdAt"`
}

func (d accountDoc) toAccount() account.Account {
	return account.Account{
		ID:           d.ID,
		Name:         d.Name,
		Email:        d.Email,
		PasswordHash: d.PasswordHash,
		CreatedAt:    d.CreatedAt.UTC(),
	}
}

type AccountsRepo struct {
	coll *mongo.Collection
	prom *observability.Prom
}

// NewAccountsRepo expects EnsureIndexes to have run; without the unique
// index duplicate emails are not rejected.
func NewAccountsRepo(db *mongo.Database, prom *observability.Prom) *AccountsRepo {
	return &AccountsRepo{coll: db.Collection(accountsCollection), prom: prom}
}

func (r *AccountsRepo) Create(ctx context.Context, a account.Account) (account.Account, error) {
	a.CreatedAt = a.CreatedAt.UTC().Truncate(time.Millisecond)

	doc := accountDoc{
		ID:           a.ID,
		Name:         a.Name,
		Email:        a.Email,
		PasswordHash: a.PasswordHash,
		CreatedAt:    a.CreatedAt,
	}

	err := observe(r.prom, "accounts.create", func() error {
		_, e := r.coll.InsertOne(ctx, doc)
		return e
	})
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return account.Account{}, account.ErrDuplicateEmail
		}
		return account.Account{}, err
	}

	return a, nil
}

func (r *AccountsRepo) GetByEmail(ctx context.Context, email string) (account.Account, error) {
	return r.findOne(ctx, "accounts.get_by_email", bson.D{{Key: "email", Value: email}})
}

func (r *AccountsRepo) GetByID(ctx context.Context, id string) (account.Account, error) {
	id, valid := canonicalID(id)
	if !valid {
		return account.Account{}, account.ErrInvalidID
	}
	return r.findOne(ctx, "accounts.get_by_id", bson.D{{Key: "_id", Value: id}})
}

func (r *AccountsRepo) findOne(ctx context.Context, op string, filter bson.D) (account.Account, error) {
	var d accountDoc
	err := observe(r.prom, op, func() error {
		return r.coll.FindOne(ctx, filter).Decode(&d)
	})
	if err != nil {
		if isNoDocuments(err) {
			return account.Account{}, account.ErrNotFound
		}
		return account.Account{}, err
	}
	return d.toAccount(), nil
}
