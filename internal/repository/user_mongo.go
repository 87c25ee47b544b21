package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/spec-kit/market-desk/internal/domain"
)

const usersCollection = "users"

type userDocument struct {
	ID           bson.ObjectID  `bson:"_id,omitempty"`
	Email        string         `bson:"email"`
	EmailLower   string         `bson:"emailLower"`
	PasswordHash string         `bson:"passwordHash"`
	Role         string         `bson:"role"`
	Data         map[string]any `bson:"data"`
	CreatedAt    time.Time      `bson:"createdAt"`
}

func (d userDocument) toDomain() *domain.User {
	role := domain.Role(d.Role)
	if role == "" {
		role = domain.RoleUser
	}
	return &domain.User{
		ID:           d.ID.Hex(),
		Email:        d.Email,
		EmailLower:   d.EmailLower,
		PasswordHash: d.PasswordHash,
		Role:         role,
		Data:         normalizeBSONMap(d.Data),
		CreatedAt:    d.CreatedAt,
	}
}

type mongoUserRepository struct {
	coll *mongo.Collection
	now  func() time.Time
}

// NewMongoUserRepository returns a document-store implementation over db.users.
func NewMongoUserRepository(db *mongo.Database) UserRepository {
	return &mongoUserRepository{coll: db.Collection(usersCollection), now: time.Now}
}

// EnsureUserIndexes creates the unique case-insensitive email index.
func EnsureUserIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(usersCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "emailLower", Value: 1}},
		Options: options.Index().SetUnique(true).SetName("emailLower_unique"),
	})
	return err
}

func (r *mongoUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = r.now().UTC()
	}
	user.EmailLower = domain.NormalizeEmail(user.Email)
	user.Data = dataOrEmpty(user.Data)

	doc := userDocument{
		ID:           bson.NewObjectID(),
		Email:        user.Email,
		EmailLower:   user.EmailLower,
		PasswordHash: user.PasswordHash,
		Role:         string(user.Role),
		Data:         user.Data,
		CreatedAt:    user.CreatedAt,
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateEmail
		}
		return err
	}
	user.ID = doc.ID.Hex()
	return nil
}

func (r *mongoUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *mongoUserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.D{{Key: "emailLower", Value: domain.NormalizeEmail(email)}})
}

func (r *mongoUserRepository) findOne(ctx context.Context, filter bson.D) (*domain.User, error) {
	var doc userDocument
	if err := r.coll.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return doc.toDomain(), nil
}

func (r *mongoUserRepository) MergeData(ctx context.Context, id string, partial domain.UserData) (domain.UserData, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrNotFound
	}
	if len(partial) == 0 {
		user, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}
		return user.Data, nil
	}

	set, err := dataSetDocument(partial)
	if err != nil {
		return nil, err
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var doc userDocument
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return normalizeBSONMap(doc.Data), nil
}

func (r *mongoUserRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *mongoUserRepository) List(ctx context.Context) ([]domain.User, error) {
	cursor, err := r.coll.Find(ctx, bson.D{}, options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}}))
	if err != nil {
		return nil, err
	}
	var docs []userDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(docs))
	for _, doc := range docs {
		users = append(users, *doc.toDomain())
	}
	return users, nil
}

// dataSetDocument turns a partial blob into a $set document addressing each
// top-level key under data, so untouched keys are preserved by the server.
func dataSetDocument(partial domain.UserData) (bson.D, error) {
	set := make(bson.D, 0, len(partial))
	for key, value := range partial {
		if key == "" || strings.Contains(key, ".") || strings.HasPrefix(key, "$") {
			return nil, fmt.Errorf("invalid data key %q", key)
		}
		set = append(set, bson.E{Key: "data." + key, Value: value})
	}
	return set, nil
}

// normalizeBSONMap converts driver container types into plain maps and slices
// so the blob serializes to JSON the same way on every backend.
func normalizeBSONMap(m map[string]any) domain.UserData {
	out := make(domain.UserData, len(m))
	for k, v := range m {
		out[k] = normalizeBSONValue(v)
	}
	return out
}

func normalizeBSONValue(v any) any {
	switch val := v.(type) {
	case bson.D:
		out := make(map[string]any, len(val))
		for _, e := range val {
			out[e.Key] = normalizeBSONValue(e.Value)
		}
		return out
	case bson.M:
		return map[string]any(normalizeBSONMap(val))
	case map[string]any:
		return map[string]any(normalizeBSONMap(val))
	case bson.A:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeBSONValue(e)
		}
		return out
	case []any:
		out := make([]any, len(val))
		for i, e := range val {
			out[i] = normalizeBSONValue(e)
		}
		return out
	case bson.ObjectID:
		return val.Hex()
	case bson.DateTime:
		return val.Time().UTC()
	default:
		return v
	}
}
