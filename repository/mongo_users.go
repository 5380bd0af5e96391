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

type MongoUsers struct {
	db *config.Database
}

func NewMongoUsers(db *config.Database) *MongoUsers {
	return &MongoUsers{db: db}
}

func (r *MongoUsers) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.db.Collection(ctx, config.UsersCollection)
}

func (r *MongoUsers) FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoUsers) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"username": username})
}

func (r *MongoUsers) findOne(ctx context.Context, filter bson.M) (*models.User, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var user models.User
	if err := coll.FindOne(ctx, filter).Decode(&user); err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

func (r *MongoUsers) List(ctx context.Context) ([]models.User, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetSort(bson.D{{Key: "username", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (r *MongoUsers) Create(ctx context.Context, u *models.User) error {
	if err := PrepareUser(u); err != nil {
		return err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	u.ID = primitive.NewObjectID()
	if _, err := coll.InsertOne(ctx, u); err != nil {
		u.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (r *MongoUsers) Update(ctx context.Context, id primitive.ObjectID, upd models.UserUpdate) (*models.User, error) {
	user, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := ApplyUserUpdate(user, upd); err != nil {
		return nil, err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, user)
	if err != nil {
		return nil, translate(err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return user, nil
}

func (r *MongoUsers) Delete(ctx context.Context, id primitive.ObjectID) error {
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

func (r *MongoUsers) CountAdmins(ctx context.Context) (int64, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return 0, err
	}
	return coll.CountDocuments(ctx, bson.M{"role": bson.M{"$in": bson.A{models.RoleAdmin, models.RoleSuperAdmin}}})
}
