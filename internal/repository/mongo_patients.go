package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/clinic-api/internal/models"
)

type MongoPatientRepository struct {
	coll *mongo.Collection
}

func NewMongoPatientRepository(db *mongo.Database) *MongoPatientRepository {
	return &MongoPatientRepository{coll: db.Collection(PatientsCollection)}
}

func (r *MongoPatientRepository) List(ctx context.Context) ([]models.Patient, error) {
	cursor, err := r.coll.Find(ctx, bson.M{}, newestFirst())
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Patient](ctx, cursor)
}

func (r *MongoPatientRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	var p models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *MongoPatientRepository) FindByEmail(ctx context.Context, email string) (*models.Patient, error) {
	var p models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *MongoPatientRepository) Insert(ctx context.Context, p *models.Patient) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *MongoPatientRepository) Update(ctx context.Context, id primitive.ObjectID, ch PatientChanges) (*models.Patient, error) {
	set := bson.M{"updatedAt": ch.UpdatedAt}
	if ch.Name != nil {
		set["name"] = *ch.Name
	}
	if ch.Email != nil {
		set["email"] = *ch.Email
	}
	if ch.Phone != nil {
		set["phone"] = *ch.Phone
	}
	if ch.Address != nil {
		set["address"] = *ch.Address
	}
	if ch.DateOfBirth != nil {
		set["dateOfBirth"] = *ch.DateOfBirth
	}
	if ch.EmergencyContact != nil {
		set["emergencyContact"] = *ch.EmergencyContact
	}
	if ch.MedicalHistory != nil {
		set["medicalHistory"] = *ch.MedicalHistory
	}
	if ch.Token != nil {
		set["token"] = *ch.Token
	}

	var p models.Patient
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}
