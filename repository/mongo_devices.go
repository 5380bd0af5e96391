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

type MongoDevices struct {
	db *config.Database
}

func NewMongoDevices(db *config.Database) *MongoDevices {
	return &MongoDevices{db: db}
}

func (r *MongoDevices) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.db.Collection(ctx, config.DevicesCollection)
}

func (r *MongoDevices) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Device, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoDevices) FindByDeviceID(ctx context.Context, deviceID string) (*models.Device, error) {
	return r.findOne(ctx, bson.M{"deviceId": deviceID})
}

func (r *MongoDevices) findOne(ctx context.Context, filter bson.M) (*models.Device, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var device models.Device
	if err := coll.FindOne(ctx, filter).Decode(&device); err != nil {
		return nil, translate(err)
	}
	return &device, nil
}

func (r *MongoDevices) List(ctx context.Context) ([]models.Device, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "registeredAt", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	devices := []models.Device{}
	if err := cursor.All(ctx, &devices); err != nil {
		return nil, err
	}
	return devices, nil
}

func (r *MongoDevices) Create(ctx context.Context, d *models.Device) error {
	if err := PrepareDevice(d); err != nil {
		return err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	d.ID = primitive.NewObjectID()
	if _, err := coll.InsertOne(ctx, d); err != nil {
		d.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

// SetStatus changes a device's status. Revoking records who did it and when;
// reactivating clears that record.
func (r *MongoDevices) SetStatus(ctx context.Context, id primitive.ObjectID, status string, by primitive.ObjectID) (*models.Device, error) {
	if !models.ValidDeviceStatus(status) {
		return nil, &models.FieldError{Fields: map[string]string{"status": "must be one of active, disabled, revoked"}}
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	update := bson.M{"$set": bson.M{"status": status, "updatedAt": now}}
	switch status {
	case models.DeviceRevoked:
		update["$set"].(bson.M)["revokedBy"] = by
		update["$set"].(bson.M)["revokedAt"] = now
	case models.DeviceActive:
		update["$unset"] = bson.M{"revokedBy": "", "revokedAt": ""}
	}

	var device models.Device
	err = coll.FindOneAndUpdate(ctx, bson.M{"_id": id}, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&device)
	if err != nil {
		return nil, translate(err)
	}
	return &device, nil
}

func (r *MongoDevices) Touch(ctx context.Context, deviceID string) error {
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	_, err = coll.UpdateOne(ctx, bson.M{"deviceId": deviceID}, bson.M{"$set": bson.M{"lastSeenAt": time.Now().UTC()}})
	return err
}

func (r *MongoDevices) Delete(ctx context.Context, id primitive.ObjectID) error {
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
