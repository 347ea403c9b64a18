package db

import (
	"context"
	"time"

	"github.com/camshop/backend/internal/model"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

func (db *Mongo) users() *mongo.Collection {
	return db.DB.Collection(usersCollection)
}

func (db *Mongo) CreateUser(ctx context.Context, user *model.User) (*model.User, error) {
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	res, err := db.users().InsertOne(ctx, user)
	if err != nil {
		return nil, err
	}
	if oid, ok := res.InsertedID.(bson.ObjectID); ok {
		user.ID = oid
	}
	return user, nil
}

func (db *Mongo) GetUserByID(ctx context.Context, id string) (*model.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := db.users().FindOne(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Mongo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	var user model.User
	if err := db.users().FindOne(ctx, bson.M{"email": email}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Mongo) GetUserByEmailAndResetToken(ctx context.Context, email, resetToken string) (*model.User, error) {
	var user model.User
	filter := bson.M{"email": email, "resetToken": resetToken}
	if err := db.users().FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// HasDuplicateName reports whether another user already holds the name under
// the "en" collation, so "Bob" and "bob" count as the same name. excludeID may
// be empty on create.
func (db *Mongo) HasDuplicateName(ctx context.Context, name, excludeID string) (bool, error) {
	filter := bson.M{"name": name}
	if excludeID != "" {
		oid, err := parseID(excludeID)
		if err != nil {
			return false, err
		}
		filter["_id"] = bson.M{"$ne": oid}
	}

	opts := options.FindOne().SetCollation(&options.Collation{Locale: "en", Strength: 2})
	err := db.users().FindOne(ctx, filter, opts).Err()
	if err == nil {
		return true, nil
	}
	if IsNoDocuments(err) {
		return false, nil
	}
	return false, err
}

// ListUsers executes a composed list query against the user collection.
func (db *Mongo) ListUsers(ctx context.Context, q model.ListQuery) ([]model.User, error) {
	filter := bson.M{}
	if q.Search != "" {
		filter[q.SearchField] = bson.M{"$regex": q.Search, "$options": "i"}
	}
	if q.FilterField != "" {
		filter[q.FilterField] = q.FilterValue
	}

	direction := -1
	if q.SortAsc {
		direction = 1
	}

	opts := options.Find().
		SetSkip(q.Skip).
		SetLimit(q.Limit).
		SetSort(bson.D{{Key: q.SortField, Value: direction}})

	cursor, err := db.users().Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var users []model.User
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (db *Mongo) UpdateUser(ctx context.Context, id string, fields map[string]any) (*model.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var user model.User
	err = db.users().
		FindOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"$set": set}, opts).
		Decode(&user)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (db *Mongo) SetPassword(ctx context.Context, id, passwordHash string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{"password": passwordHash, "updatedAt": time.Now()}}
	res, err := db.users().UpdateOne(ctx, bson.M{"_id": oid}, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return mongo.ErrNoDocuments
	}
	return nil
}

// SetResetToken arms a fresh reset token on the user. A later request
// overwrites any earlier token and re-arms the used flag.
func (db *Mongo) SetResetToken(ctx context.Context, id, resetToken string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"resetToken":     resetToken,
		"resetTokenUsed": false,
		"updatedAt":      time.Now(),
	}}
	_, err = db.users().UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

// ConsumeResetToken stores the new password hash and flips the used flag. The
// token value itself is kept; only the flag rejects reuse.
func (db *Mongo) ConsumeResetToken(ctx context.Context, id, passwordHash string) error {
	oid, err := parseID(id)
	if err != nil {
		return err
	}

	update := bson.M{"$set": bson.M{
		"password":       passwordHash,
		"resetTokenUsed": true,
		"updatedAt":      time.Now(),
	}}
	_, err = db.users().UpdateOne(ctx, bson.M{"_id": oid}, update)
	return err
}

func (db *Mongo) DeleteUser(ctx context.Context, id string) (*model.User, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var user model.User
	if err := db.users().FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&user); err != nil {
		return nil, err
	}
	return &user, nil
}

// DeleteOwned removes every document owned by the user from the dependent
// collections. Called after the user document itself is gone.
func (db *Mongo) DeleteOwned(ctx context.Context, userID string) error {
	oid, err := parseID(userID)
	if err != nil {
		return err
	}

	owned := []string{notesCollection, camerasCollection, transactionsCollection, commentsCollection}
	for _, name := range owned {
		if _, err := db.DB.Collection(name).DeleteMany(ctx, bson.M{"user": oid}); err != nil {
			return err
		}
	}
	return nil
}
