// Copyright (c) 2026 Schemely. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/taibuivan/schemely/internal/platform/conn"
	mongoclient "github.com/taibuivan/schemely/internal/platform/mongo"
)

// UsersCollection is the MongoDB collection holding accounts.
const UsersCollection = "users"

// Unique index names created by [MongoUserRepository.EnsureIndexes].
const (
	indexEmail    = "email_1"
	indexUsername = "username_1"

	duplicateKeyCode = 11000
)

// # Documents

type questionsDocument struct {
	HowDoYouWantToUseThisPlatform string `bson:"how_do_you_want_to_use_this_platform,omitempty"`
	WhatBestDescribesYou          string `bson:"what_best_describes_you,omitempty"`
	HowDoYouHeardAboutUs          string `bson:"how_do_you_heard_about_us,omitempty"`
}

type userDocument struct {
	ID             bson.ObjectID      `bson:"_id"`
	Email          string             `bson:"email"`
	Password       string             `bson:"password"`
	FirstName      string             `bson:"firstName"`
	LastName       string             `bson:"lastName"`
	Username       string             `bson:"username"`
	ProfilePicture string             `bson:"profilePicture,omitempty"`
	Bio            string             `bson:"bio,omitempty"`
	Questions      *questionsDocument `bson:"questions,omitempty"`
	CreatedAt      time.Time          `bson:"createdAt"`
	UpdatedAt      time.Time          `bson:"updatedAt"`
}

func toDocument(user *User) (userDocument, error) {
	id := bson.NewObjectID()
	if user.ID != "" {
		parsed, err := bson.ObjectIDFromHex(user.ID)
		if err != nil {
			return userDocument{}, fmt.Errorf("mongo_user_repo_invalid_id: %w", err)
		}
		id = parsed
	}

	document := userDocument{
		ID:             id,
		Email:          user.Email,
		Password:       user.PasswordHash,
		FirstName:      user.FirstName,
		LastName:       user.LastName,
		Username:       user.Username,
		ProfilePicture: user.ProfilePicture,
		Bio:            user.Bio,
		CreatedAt:      user.CreatedAt,
		UpdatedAt:      user.UpdatedAt,
	}
	if user.Questions != nil {
		document.Questions = &questionsDocument{
			HowDoYouWantToUseThisPlatform: user.Questions.HowDoYouWantToUseThisPlatform,
			WhatBestDescribesYou:          user.Questions.WhatBestDescribesYou,
			HowDoYouHeardAboutUs:          user.Questions.HowDoYouHeardAboutUs,
		}
	}
	return document, nil
}

func (document userDocument) toUser() *User {
	user := &User{
		ID:             document.ID.Hex(),
		Email:          document.Email,
		PasswordHash:   document.Password,
		FirstName:      document.FirstName,
		LastName:       document.LastName,
		Username:       document.Username,
		ProfilePicture: document.ProfilePicture,
		Bio:            document.Bio,
		CreatedAt:      document.CreatedAt,
		UpdatedAt:      document.UpdatedAt,
	}
	if document.Questions != nil {
		user.Questions = &Questionnaire{
			HowDoYouWantToUseThisPlatform: document.Questions.HowDoYouWantToUseThisPlatform,
			WhatBestDescribesYou:          document.Questions.WhatBestDescribesYou,
			HowDoYouHeardAboutUs:          document.Questions.HowDoYouHeardAboutUs,
		}
	}
	return user
}

// profileUpdateDocument builds the $set / $unset update for a profile edit.
// Empty strings unset the field so the derived flags read false.
func profileUpdateDocument(update ProfileUpdate, now time.Time) bson.D {
	set := bson.D{{Key: "updatedAt", Value: now}}
	unset := bson.D{}

	assign := func(field, value string) {
		if value == "" {
			unset = append(unset, bson.E{Key: field, Value: ""})
			return
		}
		set = append(set, bson.E{Key: field, Value: value})
	}

	if update.Bio != nil {
		assign("bio", *update.Bio)
	}
	if update.ProfilePicture != nil {
		assign("profilePicture", *update.ProfilePicture)
	}
	if update.Questions != nil {
		assign("questions.how_do_you_want_to_use_this_platform", update.Questions.HowDoYouWantToUseThisPlatform)
		assign("questions.what_best_describes_you", update.Questions.WhatBestDescribesYou)
		assign("questions.how_do_you_heard_about_us", update.Questions.HowDoYouHeardAboutUs)
	}

	document := bson.D{{Key: "$set", Value: set}}
	if len(unset) > 0 {
		document = append(document, bson.E{Key: "$unset", Value: unset})
	}
	return document
}

// # User Repository

// MongoUserRepository implements [UserRepository] on a MongoDB collection.
type MongoUserRepository struct {
	databases conn.Source[*mongo.Database]
}

// NewMongoUserRepository creates a repository that resolves its database on every call.
func NewMongoUserRepository(databases conn.Source[*mongo.Database]) *MongoUserRepository {
	return &MongoUserRepository{databases: databases}
}

func (repository *MongoUserRepository) collection(ctx context.Context) (*mongo.Collection, error) {
	database, err := repository.databases.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("mongo_user_repo_connect_failed: %w", err)
	}
	return database.Collection(UsersCollection), nil
}

// EnsureIndexes creates the unique email and username indexes. It is idempotent.
func (repository *MongoUserRepository) EnsureIndexes(ctx context.Context) error {
	collection, err := repository.collection(ctx)
	if err != nil {
		return err
	}

	_, err = collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetName(indexEmail).SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetName(indexUsername).SetUnique(true)},
	})
	if err != nil {
		return fmt.Errorf("mongo_user_repo_ensure_indexes_failed: %w", err)
	}
	return nil
}

// Create inserts a new account document and assigns its ObjectID.
func (repository *MongoUserRepository) Create(ctx context.Context, user *User) error {
	collection, err := repository.collection(ctx)
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	if user.CreatedAt.IsZero() {
		user.CreatedAt = now
	}
	user.UpdatedAt = now

	document, err := toDocument(user)
	if err != nil {
		return err
	}

	if _, err := collection.InsertOne(ctx, document); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			if duplicateIndex(err) == indexUsername {
				return ErrUsernameTaken
			}
			return ErrEmailTaken
		}
		return fmt.Errorf("mongo_user_repo_create_failed: %w", err)
	}

	user.ID = document.ID.Hex()
	return nil
}

// FindByEmail retrieves an account by its normalized email.
func (repository *MongoUserRepository) FindByEmail(ctx context.Context, email string) (*User, error) {
	return repository.findOne(ctx, bson.D{{Key: "email", Value: email}})
}

// FindByUsername retrieves an account by its username.
func (repository *MongoUserRepository) FindByUsername(ctx context.Context, username string) (*User, error) {
	return repository.findOne(ctx, bson.D{{Key: "username", Value: username}})
}

// FindByID retrieves an account by its hex ObjectID. Malformed IDs match nothing.
func (repository *MongoUserRepository) FindByID(ctx context.Context, id string) (*User, error) {
	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return repository.findOne(ctx, bson.D{{Key: "_id", Value: objectID}})
}

func (repository *MongoUserRepository) findOne(ctx context.Context, filter bson.D) (*User, error) {
	collection, err := repository.collection(ctx)
	if err != nil {
		return nil, err
	}

	var document userDocument
	if err := collection.FindOne(ctx, filter).Decode(&document); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("mongo_user_repo_find_failed: %w", err)
	}

	return document.toUser(), nil
}

// UpdateProfile applies the onboarding fields present in update.
func (repository *MongoUserRepository) UpdateProfile(ctx context.Context, id string, update ProfileUpdate) error {
	if update.Empty() {
		return nil
	}

	objectID, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return ErrUserNotFound
	}

	collection, err := repository.collection(ctx)
	if err != nil {
		return err
	}

	result, err := collection.UpdateOne(ctx,
		bson.D{{Key: "_id", Value: objectID}},
		profileUpdateDocument(update, time.Now().UTC()),
	)
	if err != nil {
		return fmt.Errorf("mongo_user_repo_update_profile_failed: %w", err)
	}
	if result.MatchedCount == 0 {
		return ErrUserNotFound
	}

	return nil
}

// Ping checks the deployment, connecting first if needed.
func (repository *MongoUserRepository) Ping(ctx context.Context) error {
	database, err := repository.databases.Get(ctx)
	if err != nil {
		return err
	}
	return mongoclient.Ping(ctx, database.Client())
}

// duplicateIndex names the unique index an E11000 write error collided with.
// The server reports it as "... index: <name> dup key: { ... }".
func duplicateIndex(err error) string {
	var writeException mongo.WriteException
	if !errors.As(err, &writeException) {
		return ""
	}
	for _, writeError := range writeException.WriteErrors {
		if writeError.Code != duplicateKeyCode {
			continue
		}
		_, rest, found := strings.Cut(writeError.Message, " index: ")
		if !found {
			continue
		}
		name, _, _ := strings.Cut(rest, " ")
		return name
	}
	return ""
}
