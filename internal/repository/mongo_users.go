package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/clinic-api/internal/models"
)

type MongoUserRepository struct {
	coll *mongo.Collection
}

func NewMongoUserRepository(db *mongo.Database) *MongoUserRepository {
	return &MongoUserRepository{coll: db.Collection(UsersCollection)}
}

func (r *MongoUserRepository) Get(ctx context.Context, id string) (*models.User, error) {
	var u models.User
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *MongoUserRepository) Put(ctx context.Context, u *models.User) error {
	_, err := r.coll.ReplaceOne(ctx, bson.M{"_id": u.ID}, u, options.Replace().SetUpsert(true))
	return translate(err)
}

type MongoCredentialRepository struct {
	coll *mongo.Collection
}

func NewMongoCredentialRepository(db *mongo.Database) *MongoCredentialRepository {
	return &MongoCredentialRepository{coll: db.Collection(CredentialsCollection)}
}

func (r *MongoCredentialRepository) Insert(ctx context.Context, c *models.Credential) error {
	_, err := r.coll.InsertOne(ctx, c)
	return translate(err)
}

func (r *MongoCredentialRepository) GetByEmail(ctx context.Context, email string) (*models.Credential, error) {
	var c models.Credential
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&c); err != nil {
		return nil, translate(err)
	}
	return &c, nil
}
