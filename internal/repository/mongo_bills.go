package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/clinic-api/internal/models"
)

type MongoBillRepository struct {
	coll *mongo.Collection
}

func NewMongoBillRepository(db *mongo.Database) *MongoBillRepository {
	return &MongoBillRepository{coll: db.Collection(BillsCollection)}
}

func (r *MongoBillRepository) List(ctx context.Context, f BillFilter) ([]models.Bill, error) {
	filter := bson.M{}
	if f.PatientID != nil {
		filter["patientId"] = *f.PatientID
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}
	cursor, err := r.coll.Find(ctx, filter, newestFirst())
	if err != nil {
		return nil, err
	}
	return decodeAll[models.Bill](ctx, cursor)
}

func (r *MongoBillRepository) Get(ctx context.Context, id primitive.ObjectID) (*models.Bill, error) {
	var b models.Bill
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&b); err != nil {
		return nil, translate(err)
	}
	return &b, nil
}

func (r *MongoBillRepository) Insert(ctx context.Context, b *models.Bill) error {
	if b.ID.IsZero() {
		b.ID = primitive.NewObjectID()
	}
	_, err := r.coll.InsertOne(ctx, b)
	return translate(err)
}

func (r *MongoBillRepository) UpdatePending(ctx context.Context, id primitive.ObjectID, ch BillChanges) (*models.Bill, error) {
	set := bson.M{
		"updatedAt":     ch.UpdatedAt,
		"updatedBy":     ch.UpdatedBy,
		"updatedByName": ch.UpdatedByName,
	}
	if ch.PatientName != nil {
		set["patientName"] = *ch.PatientName
	}
	if ch.Items != nil {
		set["items"] = ch.Items
	}
	if ch.TotalAmount != nil {
		set["totalAmount"] = *ch.TotalAmount
	}

	var b models.Bill
	filter := bson.M{"_id": id, "status": models.BillPending}
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, returnUpdated()).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, r.classifyMiss(ctx, id)
	}
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (r *MongoBillRepository) MarkPaid(ctx context.Context, id primitive.ObjectID, stamp PaymentStamp) (*models.Bill, bool, error) {
	set := bson.M{
		"status":        models.BillPaid,
		"updatedAt":     stamp.At,
		"updatedBy":     stamp.By,
		"updatedByName": stamp.ByName,
		"paidAt":        stamp.At,
	}

	var b models.Bill
	filter := bson.M{"_id": id, "status": bson.M{"$ne": models.BillPaid}}
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": set}, returnUpdated()).Decode(&b)
	if err == nil {
		return &b, true, nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, err
	}

	// Already paid (or gone): refresh the audit stamp, keep paidAt.
	delete(set, "paidAt")
	delete(set, "status")
	err = r.coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, returnUpdated()).Decode(&b)
	if err != nil {
		return nil, false, translate(err)
	}
	return &b, false, nil
}

func (r *MongoBillRepository) DeletePending(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id, "status": models.BillPending})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return r.classifyMiss(ctx, id)
	}
	return nil
}

// classifyMiss tells apart a missing bill from one that failed the
// pending-status precondition.
func (r *MongoBillRepository) classifyMiss(ctx context.Context, id primitive.ObjectID) error {
	n, err := r.coll.CountDocuments(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return ErrConflict
}
