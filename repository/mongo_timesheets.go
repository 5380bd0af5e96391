package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"timeclock/config"
	"timeclock/models"
)

type MongoTimesheets struct {
	db *config.Database
}

func NewMongoTimesheets(db *config.Database) *MongoTimesheets {
	return &MongoTimesheets{db: db}
}

func (r *MongoTimesheets) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.db.Collection(ctx, config.TimesheetsCollection)
}

func (r *MongoTimesheets) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Timesheet, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var row models.Timesheet
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&row); err != nil {
		return nil, translate(err)
	}
	return &row, nil
}

func (r *MongoTimesheets) ListForDay(ctx context.Context, pin, date string) ([]models.Timesheet, error) {
	return r.find(ctx, bson.M{"pin": pin, "date": date}, options.Find().SetSort(bson.D{{Key: "time", Value: 1}}))
}

func (r *MongoTimesheets) List(ctx context.Context, filter TimesheetFilter) ([]models.Timesheet, error) {
	rows, err := r.find(ctx, timesheetQuery(filter), options.Find())
	if err != nil {
		return nil, err
	}
	SortTimesheets(rows)
	return rows, nil
}

func (r *MongoTimesheets) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.Timesheet, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	rows := []models.Timesheet{}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *MongoTimesheets) Create(ctx context.Context, t *models.Timesheet) error {
	if err := PrepareTimesheet(t); err != nil {
		return err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	t.ID = primitive.NewObjectID()
	if _, err := coll.InsertOne(ctx, t); err != nil {
		t.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (r *MongoTimesheets) Replace(ctx context.Context, t *models.Timesheet) error {
	if err := PrepareTimesheet(t); err != nil {
		return err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": t.ID}, t)
	if err != nil {
		return translate(err)
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTimesheets) Delete(ctx context.Context, id primitive.ObjectID) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	res, err := coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *MongoTimesheets) DeleteBefore(ctx context.Context, beforeISO string) (int64, error) {
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
