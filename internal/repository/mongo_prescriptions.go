package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/clinic-api/internal/models"
)

type MongoPrescriptionRepository struct {
	coll *mongo.Collection
}

func NewMongoPrescriptionRepository(db *mongo.Database) *MongoPrescriptionRepository {
	return &MongoPrescriptionRepository{coll: db.Collection(PrescriptionsCollection)}
}

func (r *MongoPrescriptionRepository) List(ctx context.Context, f PrescriptionFilter) ([]models.Prescription, error) {
	filter := bson.M{}
	if f.PatientID != nil {
		filter["patientId"] = *f.PatientID
	}
	if f.DoctorID != "" {
		filter["doctorId"] = f.DoctorID
	}
	cursor, err := r.coll.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Prescription](ctx, cursor)
}

func (r *MongoPrescriptionRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Prescription, error) {
	var p models.Prescription
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *MongoPrescriptionRepository) Insert(ctx context.Context, p *models.Prescription) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, p)
	return translate(err)
}

func (r *MongoPrescriptionRepository) Update(ctx context.Context, id primitive.ObjectID, ch PrescriptionChanges) (*models.Prescription, error) {
	set := bson.M{"updatedAt": ch.UpdatedAt}
	if ch.PatientName != nil {
		set["patientName"] = *ch.PatientName
	}
	if ch.Medications != nil {
		set["medications"] = ch.Medications
	}
	if ch.Notes != nil {
		set["notes"] = *ch.Notes
	}

	var p models.Prescription
	err := r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&p)
	if err != nil {
		return nil, translate(err)
	}
	return &p, nil
}

func (r *MongoPrescriptionRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
