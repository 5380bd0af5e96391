package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"timeclock/config"
	"timeclock/models"
)

type MongoShifts struct {
	db *config.Database
}

func NewMongoShifts(db *config.Database) *MongoShifts {
	return &MongoShifts{db: db}
}

func (r *MongoShifts) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.db.Collection(ctx, config.DailyShiftsCollection)
}

func (r *MongoShifts) FindByID(ctx context.Context, id primitive.ObjectID) (*models.DailyShift, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoShifts) FindByPinDate(ctx context.Context, pin, date string) (*models.DailyShift, error) {
	return r.findOne(ctx, bson.M{"pin": pin, "date": date})
}

func (r *MongoShifts) findOne(ctx context.Context, filter bson.M) (*models.DailyShift, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var shift models.DailyShift
	if err := coll.FindOne(ctx, filter).Decode(&shift); err != nil {
		return nil, translate(err)
	}
	return &shift, nil
}

func (r *MongoShifts) List(ctx context.Context, filter ShiftFilter) ([]models.DailyShift, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	query := bson.M{}
	if filter.Pin != "" {
		query["pin"] = filter.Pin
	}
	if filter.Date != "" {
		query["date"] = filter.Date
	}
	cursor, err := coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	shifts := []models.DailyShift{}
	if err := cursor.All(ctx, &shifts); err != nil {
		return nil, err
	}
	return shifts, nil
}

func (r *MongoShifts) Upsert(ctx context.Context, s *models.DailyShift) error {
	if err := PrepareShift(s); err != nil {
		return err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	// the replacement carries no _id for new shifts so that a concurrent
	// upsert on the same (pin, date) replaces instead of clashing on _id
	res, err := coll.ReplaceOne(ctx,
		bson.M{"pin": s.Pin, "date": s.Date},
		s,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return translate(err)
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		s.ID = id
	}
	return nil
}

func (r *MongoShifts) SetStatus(ctx context.Context, id primitive.ObjectID, status string) (*models.DailyShift, error) {
	if !contains(models.ShiftStatuses, status) {
		return nil, &models.FieldError{Fields: map[string]string{"status": "must be one of active, completed, approved, rejected"}}
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var shift models.DailyShift
	err = coll.FindOneAndUpdate(ctx,
		bson.M{"_id": id},
		bson.M{"$set": bson.M{"status": status, "updatedAt": time.Now().UTC()}},
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&shift)
	if err != nil {
		return nil, translate(err)
	}
	return &shift, nil
}

func (r *MongoShifts) DeleteBefore(ctx context.Context, beforeISO string) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	res, err := coll.DeleteMany(ctx, DateBeforeFilter(beforeISO))
	if err != nil {
		return 0, err
	}
	return res.DeletedCount, nil
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
