package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/hireflow/auth-service/internal/core/domain"
)

const (
	userCollection = "users"
	opTimeout      = 5 * time.Second
)

type UserRepository struct {
	coll *mongo.Collection
}

func NewUserRepository(db *mongo.Database) *UserRepository {
	return &UserRepository{coll: db.Collection(userCollection)}
}

// EnsureIndexes creates the unique indexes duplicate detection relies on.
// Called once at startup.
func (r *UserRepository) EnsureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

type mongoRoleRef struct {
	ID   primitive.ObjectID `bson:"_id,omitempty"`
	Name string             `bson:"name,omitempty"`
}

type mongoUser struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	Name         string             `bson:"name"`
	Username     string             `bson:"username"`
	Email        string             `bson:"email"`
	PasswordHash string             `bson:"password_hash"`
	Role         *mongoRoleRef      `bson:"role,omitempty"`
	RefreshToken string             `bson:"refresh_token"`
	CreatedAt    int64              `bson:"created_at"`
	UpdatedAt    int64              `bson:"updated_at"`
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	doc := mongoUser{
		Name:         user.Name,
		Username:     user.Username,
		Email:        user.Email,
		PasswordHash: user.PasswordHash,
		Role:         roleRefToMongo(user.Role),
		RefreshToken: user.RefreshToken,
		CreatedAt:    user.CreatedAt.Unix(),
		UpdatedAt:    user.UpdatedAt.Unix(),
	}

	res, err := r.coll.InsertOne(ctx, doc)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrUserExists
		}
		return nil, storeErr("insert user", err)
	}

	created := *user
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		created.ID = oid.Hex()
	}
	return &created, nil
}

func (r *UserRepository) FindByUsername(ctx context.Context, username string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	var mu mongoUser
	if err := r.coll.FindOne(ctx, bson.M{"username": username}).Decode(&mu); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrUserNotFound
		}
		return nil, storeErr("find user", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) UpdateRefreshToken(ctx context.Context, userID, token string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		return domain.ErrUserNotFound
	}

	update := bson.M{"$set": bson.M{
		"refresh_token": token,
		"updated_at":    time.Now().UTC().Unix(),
	}}
	if _, err := r.coll.UpdateByID(ctx, oid, update); err != nil {
		return storeErr("update refresh token", err)
	}
	return nil
}

// RotateRefreshToken swaps oldToken for newToken in a single
// FindOneAndUpdate. The filter matches the currently stored token, so the
// server serializes concurrent rotations of the same token: one matches and
// wins, the rest see no document.
func (r *UserRepository) RotateRefreshToken(ctx context.Context, oldToken, newToken string) (*domain.User, error) {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	if oldToken == "" {
		return nil, domain.ErrInvalidRefreshToken
	}

	update := bson.M{"$set": bson.M{
		"refresh_token": newToken,
		"updated_at":    time.Now().UTC().Unix(),
	}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var mu mongoUser
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"refresh_token": oldToken}, update, opts).Decode(&mu)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrInvalidRefreshToken
		}
		return nil, storeErr("rotate refresh token", err)
	}
	return mu.toDomain(), nil
}

func (r *UserRepository) ClearRefreshToken(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, opTimeout)
	defer cancel()

	oid, err := primitive.ObjectIDFromHex(userID)
	if err != nil {
		// Unknown user: clearing a session that does not exist succeeds.
		return nil
	}

	update := bson.M{"$set": bson.M{
		"refresh_token": "",
		"updated_at":    time.Now().UTC().Unix(),
	}}
	if _, err := r.coll.UpdateByID(ctx, oid, update); err != nil {
		return storeErr("clear refresh token", err)
	}
	return nil
}

func (mu *mongoUser) toDomain() *domain.User {
	var role *domain.RoleRef
	if mu.Role != nil && !mu.Role.ID.IsZero() {
		role = &domain.RoleRef{ID: mu.Role.ID.Hex(), Name: mu.Role.Name}
	}
	return &domain.User{
		ID:           mu.ID.Hex(),
		Name:         mu.Name,
		Username:     mu.Username,
		Email:        mu.Email,
		PasswordHash: mu.PasswordHash,
		Role:         role,
		RefreshToken: mu.RefreshToken,
		CreatedAt:    unixToTime(mu.CreatedAt),
		UpdatedAt:    unixToTime(mu.UpdatedAt),
	}
}

func roleRefToMongo(ref *domain.RoleRef) *mongoRoleRef {
	if ref == nil {
		return nil
	}
	oid, err := primitive.ObjectIDFromHex(ref.ID)
	if err != nil {
		return nil
	}
	return &mongoRoleRef{ID: oid, Name: ref.Name}
}

// storeErr wraps a driver failure, folding timeouts into the store-unavailable
// class so they surface as 503 instead of hanging requests or generic 500s.
func storeErr(op string, err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %v: %w", op, err, domain.ErrStoreUnavailable)
	}
	return fmt.Errorf("%s: %w", op, err)
}

func unixToTime(ts int64) time.Time {
	if ts == 0 {
		return time.Time{}
	}
	return time.Unix(ts, 0).UTC()
}
