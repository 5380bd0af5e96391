package config

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	UsersCollection       = "users"
	EmployeesCollection   = "employees"
	TimesheetsCollection  = "timesheets"
	DailyShiftsCollection = "dailyshifts"
	CategoriesCollection  = "categories"
	DevicesCollection     = "devices"
)

// Database is the process-wide MongoDB handle. It is created once in main and
// handed to every repository; Connect may be called any number of times.
type Database struct {
	uri  string
	name string

	mu     sync.Mutex
	client *mongo.Client
	db     *mongo.Database
}

func NewDatabase(uri, name string) *Database {
	return &Database{uri: uri, name: name}
}

// Connect dials MongoDB on first use and reuses the client afterwards.
func (d *Database) Connect(ctx context.Context) (*mongo.Database, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.db != nil {
		return d.db, nil
	}

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(d.uri))
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}

	d.client = client
	d.db = client.Database(d.name)
	log.Println("Connected to MongoDB")
	return d.db, nil
}

// Collection connects if needed and returns the named collection.
func (d *Database) Collection(ctx context.Context, name string) (*mongo.Collection, error) {
	db, err := d.Connect(ctx)
	if err != nil {
		return nil, err
	}
	return db.Collection(name), nil
}

func (d *Database) Disconnect(ctx context.Context) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.client == nil {
		return nil
	}
	err := d.client.Disconnect(ctx)
	d.client, d.db = nil, nil
	return err
}

// Indexes lists the named indexes each collection carries.
func Indexes() map[string][]mongo.IndexModel {
	return map[string][]mongo.IndexModel{
		UsersCollection: {
			{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true).SetName("username_unique")},
		},
		EmployeesCollection: {
			{Keys: bson.D{{Key: "pin", Value: 1}}, Options: options.Index().SetName("pin_1")},
		},
		TimesheetsCollection: {
			{Keys: bson.D{{Key: "pin", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetName("pin_1_date_1")},
		},
		DailyShiftsCollection: {
			{Keys: bson.D{{Key: "pin", Value: 1}, {Key: "date", Value: 1}}, Options: options.Index().SetUnique(true).SetName("pin_1_date_1_unique")},
		},
		CategoriesCollection: {
			{Keys: bson.D{{Key: "type", Value: 1}, {Key: "name", Value: 1}}, Options: options.Index().SetUnique(true).SetName("type_1_name_1_unique")},
		},
		DevicesCollection: {
			{Keys: bson.D{{Key: "deviceId", Value: 1}}, Options: options.Index().SetUnique(true).SetName("deviceId_unique")},
		},
	}
}

func (d *Database) EnsureIndexes(ctx context.Context) error {
	db, err := d.Connect(ctx)
	if err != nil {
		return err
	}
	var errs []error
	for name, models := range Indexes() {
		if _, err := db.Collection(name).Indexes().CreateMany(ctx, models); err != nil {
			errs = append(errs, fmt.Errorf("indexes for %s: %w", name, err))
		}
	}
	return errors.Join(errs...)
}
