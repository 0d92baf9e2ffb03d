package account

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/averma/campus-events/internal/database"
)

// Repository handles account data persistence
type Repository struct {
	col *mongo.Collection
}

// NewRepository creates a new account repository
func NewRepository(db *mongo.Database) *Repository {
	return &Repository{col: db.Collection(database.AccountsCollection)}
}

// Create inserts a new account. The caller maps duplicate-key errors from the
// per-role unique indexes to a conflict.
func (r *Repository) Create(ctx context.Context, account *Account) (*Account, error) {
	now := time.Now().UTC()
	account.CreatedAt = now
	account.UpdatedAt = now
	account.IsActive = true

	res, err := r.col.InsertOne(ctx, account)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	account.ID = res.InsertedID.(primitive.ObjectID)
	return account, nil
}

// GetByEmailRole retrieves an account from one role-scoped record set
func (r *Repository) GetByEmailRole(ctx context.Context, email, role string) (*Account, error) {
	var account Account
	err := r.col.FindOne(ctx, bson.M{"email": email, "role": role}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}
	return &account, nil
}

// GetByIDRole retrieves an account by id within the role named in the token
func (r *Repository) GetByIDRole(ctx context.Context, id primitive.ObjectID, role string) (*Account, error) {
	var account Account
	err := r.col.FindOne(ctx, bson.M{"_id": id, "role": role}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// GetByID retrieves an account by id regardless of role
func (r *Repository) GetByID(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	var account Account
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return &account, nil
}

// UpdateProfile applies the non-nil profile fields and returns the updated account
func (r *Repository) UpdateProfile(ctx context.Context, id primitive.ObjectID, req *UpdateProfileRequest) (*Account, error) {
	set := bson.M{"updated_at": time.Now().UTC()}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Phone != nil {
		set["phone"] = *req.Phone
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}
	if req.ProfileImage != nil {
		set["profile_image"] = *req.ProfileImage
	}

	var account Account
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": set},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return &account, nil
}

// UpdatePassword replaces the stored password hash
func (r *Repository) UpdatePassword(ctx context.Context, id primitive.ObjectID, hash string) error {
	_, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"password": hash, "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

// UpdateRole changes the role tag on an account. With a single collection the
// record does not move between stores, so the change is consistent.
func (r *Repository) UpdateRole(ctx context.Context, id primitive.ObjectID, role string) (*Account, error) {
	var account Account
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"role": role, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to update role: %w", err)
	}
	return &account, nil
}

// Deactivate soft-deletes an account by clearing its active flag
func (r *Repository) Deactivate(ctx context.Context, id primitive.ObjectID) (*Account, error) {
	var account Account
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"is_active": false, "updated_at": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&account)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to deactivate account: %w", err)
	}
	return &account, nil
}

// List retrieves accounts with optional role filter and name/email/roll-number
// search, newest first
func (r *Repository) List(ctx context.Context, role, search string, limit, offset int) ([]*Account, int64, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}
	if search != "" {
		pattern := primitive.Regex{Pattern: search, Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"name": pattern},
			bson.M{"email": pattern},
			bson.M{"roll_number": pattern},
		}
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count accounts: %w", err)
	}

	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []*Account
	for cur.Next(ctx) {
		var account Account
		if err := cur.Decode(&account); err != nil {
			return nil, 0, fmt.Errorf("failed to decode account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	if err := cur.Err(); err != nil {
		return nil, 0, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, total, nil
}

// Recent returns the most recently created accounts for the admin dashboard
func (r *Repository) Recent(ctx context.Context, limit int) ([]*Account, error) {
	findOpts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit))

	cur, err := r.col.Find(ctx, bson.M{}, findOpts)
	if err != nil {
		return nil, fmt.Errorf("failed to list recent accounts: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []*Account
	for cur.Next(ctx) {
		var account Account
		if err := cur.Decode(&account); err != nil {
			return nil, fmt.Errorf("failed to decode account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	return accounts, cur.Err()
}

// GetByIDs retrieves the accounts for a set of ids in one query
func (r *Repository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]*Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get accounts by ids: %w", err)
	}
	defer cur.Close(ctx)

	var accounts []*Account
	for cur.Next(ctx) {
		var account Account
		if err := cur.Decode(&account); err != nil {
			return nil, fmt.Errorf("failed to decode account: %w", err)
		}
		accounts = append(accounts, &account)
	}
	return accounts, cur.Err()
}

// IDsByRole returns the ids of every account holding the given role, or all
// accounts when role is empty. Used for announcement fan-out.
func (r *Repository) IDsByRole(ctx context.Context, role string) ([]primitive.ObjectID, error) {
	filter := bson.M{}
	if role != "" {
		filter["role"] = role
	}

	cur, err := r.col.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		return nil, fmt.Errorf("failed to list account ids: %w", err)
	}
	defer cur.Close(ctx)

	var ids []primitive.ObjectID
	for cur.Next(ctx) {
		var doc struct {
			ID primitive.ObjectID `bson:"_id"`
		}
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("failed to decode account id: %w", err)
		}
		ids = append(ids, doc.ID)
	}
	return ids, cur.Err()
}
