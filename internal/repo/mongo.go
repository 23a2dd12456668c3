package repo

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"

	"github.com/tazhibayda/identity-service/internal/domain"
)

// Mongo is the production UserStore backed by a users collection.
// Single-document writes give the record-level atomicity the contract
// requires.
type Mongo struct {
	Client *mongo.Client
	DB     *mongo.Database
}

func NewMongo(ctx context.Context, uri, dbname string) (*Mongo, error) {
	cli, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	return &Mongo{Client: cli, DB: cli.Database(dbname)}, nil
}

func (s *Mongo) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.Client.Ping(ctx, nil)
}

func (s *Mongo) Close(ctx context.Context) error {
	return s.Client.Disconnect(ctx)
}

func (s *Mongo) users() *mongo.Collection {
	return s.DB.Collection("users")
}

// EnsureUserIndexes enforces the one-record-per-email invariant at the
// storage layer so concurrent Creates race on the index, not on a
// read-then-write.
func (s *Mongo) EnsureUserIndexes(ctx context.Context) error {
	if _, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	}); err != nil {
		return err
	}
	_, err := s.users().Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "external_id", Value: 1}},
		Options: options.Index().SetUnique(true).SetSparse(true),
	})
	return err
}

func (s *Mongo) findOne(ctx context.Context, span string, filter bson.M) (*domain.User, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, span)
	defer sp.Finish()

	var u domain.User
	err := s.users().FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, nil
	}
	if err != nil {
		sp.SetTag("error", err)
		return nil, err
	}
	return &u, nil
}

func (s *Mongo) FindByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.findOne(ctx, "mongo.users.find_by_email", bson.M{"email": email})
}

func (s *Mongo) FindByID(ctx context.Context, id string) (*domain.User, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}
	return s.findOne(ctx, "mongo.users.find_by_id", bson.M{"_id": oid})
}

func (s *Mongo) FindByExternalID(ctx context.Context, externalID string) (*domain.User, error) {
	return s.findOne(ctx, "mongo.users.find_by_external_id", bson.M{"external_id": externalID})
}

func (s *Mongo) Create(ctx context.Context, u *domain.User) (string, error) {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.insert",
		tracer.Tag("auth_type", string(u.AuthType)),
	)
	defer sp.Finish()

	if u.ID.IsZero() {
		u.ID = primitive.NewObjectID()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
	}
	_, err := s.users().InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return "", ErrDuplicateEmail
	}
	if err != nil {
		sp.SetTag("error", err)
		return "", err
	}
	return u.ID.Hex(), nil
}

func (s *Mongo) Update(ctx context.Context, id string, upd UserUpdate) error {
	sp, ctx := tracer.StartSpanFromContext(ctx, "mongo.users.update",
		tracer.Tag("user_id", id),
	)
	defer sp.Finish()

	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return ErrNotFound
	}
	set := bson.M{}
	if upd.ExternalID != nil {
		set["external_id"] = *upd.ExternalID
	}
	if upd.Name != nil {
		set["name"] = *upd.Name
	}
	if upd.PasswordHash != nil {
		set["password_hash"] = *upd.PasswordHash
	}
	if upd.AuthType != nil {
		set["auth_type"] = *upd.AuthType
	}
	if upd.SessionToken != nil {
		set["session_token"] = *upd.SessionToken
	}
	if upd.IsLoggedIn != nil {
		set["is_logged_in"] = *upd.IsLoggedIn
	}
	if len(set) == 0 {
		return nil
	}
	res, err := s.users().UpdateOne(ctx, bson.M{"_id": oid}, bson.M{"$set": set})
	if err != nil {
		sp.SetTag("error", err)
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}
