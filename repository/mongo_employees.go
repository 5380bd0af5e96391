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

type MongoEmployees struct {
	db *config.Database
}

func NewMongoEmployees(db *config.Database) *MongoEmployees {
	return &MongoEmployees{db: db}
}

func (r *MongoEmployees) coll(ctx context.Context) (*mongo.Collection, error) {
	return r.db.Collection(ctx, config.EmployeesCollection)
}

func (r *MongoEmployees) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoEmployees) FindByPin(ctx context.Context, pin string) (*models.Employee, error) {
	return r.findOne(ctx, bson.M{"pin": pin})
}

func (r *MongoEmployees) findOne(ctx context.Context, filter bson.M) (*models.Employee, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	var emp models.Employee
	if err := coll.FindOne(ctx, filter).Decode(&emp); err != nil {
		return nil, translate(err)
	}
	emp.Normalize()
	return &emp, nil
}

func (r *MongoEmployees) List(ctx context.Context, filter EmployeeFilter) ([]models.Employee, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	query := bson.M{}
	if len(filter.Locations) > 0 {
		query["location"] = bson.M{"$in": filter.Locations}
	}
	cursor, err := coll.Find(ctx, query, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	employees := []models.Employee{}
	if err := cursor.All(ctx, &employees); err != nil {
		return nil, err
	}
	for i := range employees {
		employees[i].Normalize()
	}
	return employees, nil
}

func (r *MongoEmployees) ListPins(ctx context.Context) ([]string, error) {
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.M{}, options.Find().SetProjection(bson.M{"pin": 1}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var pins []string
	for cursor.Next(ctx) {
		var row struct {
			Pin string `bson:"pin"`
		}
		if err := cursor.Decode(&row); err != nil {
			return nil, err
		}
		pins = append(pins, row.Pin)
	}
	return pins, cursor.Err()
}

func (r *MongoEmployees) Create(ctx context.Context, e *models.Employee) error {
	if err := PrepareEmployee(e); err != nil {
		return err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return err
	}
	e.ID = primitive.NewObjectID()
	if _, err := coll.InsertOne(ctx, e); err != nil {
		e.ID = primitive.NilObjectID
		return translate(err)
	}
	return nil
}

func (r *MongoEmployees) Update(ctx context.Context, id primitive.ObjectID, upd models.EmployeeUpdate) (*models.Employee, error) {
	emp, err := r.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	emp.Apply(upd)
	if err := PrepareEmployee(emp); err != nil {
		return nil, err
	}
	coll, err := r.coll(ctx)
	if err != nil {
		return nil, err
	}
	res, err := coll.ReplaceOne(ctx, bson.M{"_id": id}, emp)
	if err != nil {
		return nil, translate(err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return emp, nil
}

func (r *MongoEmployees) Delete(ctx context.Context, id primitive.ObjectID) error {
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
