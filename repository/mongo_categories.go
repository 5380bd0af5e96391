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

type MongoCategories struct {
	db *config.Database
}

func NewMongoCategories(db *config.Database) *MongoCategories {
	return &MongoCategories{db: db}
}

func (r *MongoCategories) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.db.Collection(ctx, config.CategoriesCollection)
}

func (r *MongoCategories) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Category, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var category models.Category
	if err := coll.FindOne(ctx, bson.M{"_id": id}).Decode(&category); err != nil {
		return nil, translate(err)
	}
	return &category, nil
}

func (r *MongoCategories) List(ctx context.Context, typ string) ([]models.Category, error) {
	filter := bson.M{}
	if typ != "" {
		filter["type"] = typ
	}
	return r.find(ctx, filter)
}

func (r *MongoCategories) ListLocations(ctx context.Context, names []string) ([]models.Category, error) {
	if len(names) == 0 {
		return []models.Category{}, nil
	}
	return r.find(ctx, bson.M{"type": models.CategoryLocation, "name": bson.M{"$in": names}})
}

func (r *MongoCategories) find(ctx context.Context, filter bson.M) ([]models.Category, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	categories := []models.Category{}
	if err := cursor.All(ctx, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

func (r *MongoCategories) Create(ctx context.Context, c *models.Category) error {
	if err := PrepareCategory(c); err != nil {
		return err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	c.ID = primitive.NewObjectID()
	if _, err := coll.InsertOne(ctx, c); err != nil {
		c.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (r *MongoCategories) Update(ctx context.Context, id primitive.ObjectID, upd models.CategoryUpdate) (*models.Category, error) {
	category, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	category.Apply(upd)
	if err := PrepareCategory(category); err != nil {
		return nil, err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, category)
	if err != nil {
		return nil, translate(err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return category, nil
}

func (r *MongoCategories) Delete(ctx context.Context, id primitive.ObjectID) error {
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
