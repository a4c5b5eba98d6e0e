package mongo

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/99minutos/catalog-api/internal/core/domain"
)

const usersCollection = "users"

type UserRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewUserRepository(db *mongo.Database, timeout time.Duration) *UserRepository {
	return &UserRepository{coll: db.Collection(usersCollection), timeout: opTimeout(timeout)}
}

type mongoUser struct {
	ID              string   `bson:"_id"`
	Email           string   `bson:"email"`
	NormalizedEmail string   `bson:"normalized_email"`
	PasswordHash    string   `bson:"password_hash"`
	Roles           []string `bson:"roles"`
	CreatedAt       int64    `bson:"created_at"`
	UpdatedAt       int64    `bson:"updated_at"`
}

func (mu *mongoUser) toDomain() *domain.User {
	roles := mu.Roles
	if roles == nil {
		roles = []string{}
	}
	return &domain.User{
		ID:              mu.ID,
		Email:           mu.Email,
		NormalizedEmail: mu.NormalizedEmail,
		PasswordHash:    mu.PasswordHash,
		Roles:           roles,
		CreatedAt:       unixToTime(mu.CreatedAt),
		UpdatedAt:       unixToTime(mu.UpdatedAt),
	}
}

// Create inserts a user. The unique index on normalized_email turns a
// concurrent duplicate into ErrDuplicateEmail.
func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	roles := user.Roles
	if roles == nil {
		roles = []string{}
	}
	doc := mongoUser{
		ID:              user.ID,
		Email:           user.Email,
		NormalizedEmail: user.NormalizedEmail,
		PasswordHash:    user.PasswordHash,
		Roles:           roles,
		CreatedAt:       user.CreatedAt.Unix(),
		UpdatedAt:       user.UpdatedAt.Unix(),
	}

	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrDuplicateEmail
		}
		return nil, classify("insert user", err)
	}
	return doc.toDomain(), nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, normalizedEmail string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"normalized_email": normalizedEmail})
}

func (r *UserRepository) FindByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, filter).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, classify("find user", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return classify("delete user", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

// AddRole is idempotent: $addToSet never stores the same role twice.
func (r *UserRepository) AddRole(ctx context.Context, id, role string) error {
	return r.updateRoles(ctx, id, bson.M{"$addToSet": bson.M{"roles": role}}, "add role")
}

func (r *UserRepository) RemoveRole(ctx context.Context, id, role string) error {
	return r.updateRoles(ctx, id, bson.M{"$pull": bson.M{"roles": role}}, "remove role")
}

func (r *UserRepository) updateRoles(ctx context.Context, id string, update bson.M, op string) error {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	update["$set"] = bson.M{"updated_at": time.Now().UTC().Unix()}
	res, err := r.coll.UpdateOne(ctx, bson.M{"_id": id}, update)
	if err != nil {
		return classify(op, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}

func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "normalized_email", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("uniq_normalized_email"),
	})
	return err
}
