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

const rolesCollection = "roles"

// RoleRepository keys documents by the normalized name, so _id uniqueness
// rejects case variants of an existing role.
type RoleRepository struct {
	coll    *mongo.Collection
	timeout time.Duration
}

func NewRoleRepository(db *mongo.Database, timeout time.Duration) *RoleRepository {
	return &RoleRepository{coll: db.Collection(rolesCollection), timeout: opTimeout(timeout)}
}

type mongoRole struct {
	NormalizedName string `bson:"_id"`
	Name           string `bson:"name"`
	CreatedAt      int64  `bson:"created_at"`
}

func (mr *mongoRole) toDomain() *domain.Role {
	return &domain.Role{
		Name:           mr.Name,
		NormalizedName: mr.NormalizedName,
		CreatedAt:      unixToTime(mr.CreatedAt),
	}
}

func (r *RoleRepository) Exists(ctx context.Context, normalizedName string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": normalizedName}, options.Count().SetLimit(1))
	if err != nil {
		return false, classify("count role", err)
	}
	return n > 0, nil
}

func (r *RoleRepository) FindByName(ctx context.Context, normalizedName string) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	var mr mongoRole
	if err := r.coll.FindOne(ctx, bson.M{"_id": normalizedName}).Decode(&mr); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrRoleNotFound
		}
		return nil, classify("find role", err)
	}
	return mr.toDomain(), nil
}

func (r *RoleRepository) Create(ctx context.Context, role *domain.Role) (*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	doc := mongoRole{
		NormalizedName: role.NormalizedName,
		Name:           role.Name,
		CreatedAt:      role.CreatedAt.Unix(),
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrRoleAlreadyExists
		}
		return nil, classify("insert role", err)
	}
	return doc.toDomain(), nil
}

func (r *RoleRepository) List(ctx context.Context) ([]*domain.Role, error) {
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cur, err := r.coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, classify("list roles", err)
	}
	defer cur.Close(ctx)

	var docs []mongoRole
	if err := cur.All(ctx, &docs); err != nil {
		return nil, classify("decode roles", err)
	}

	roles := make([]*domain.Role, 0, len(docs))
	for i := range docs {
		roles = append(roles, docs[i].toDomain())
	}
	return roles, nil
}

// EnsureIndexes backs the sorted List. Uniqueness comes from _id.
func (r *RoleRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "name", Value: 1}},
	})
	return err
}
