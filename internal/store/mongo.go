package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/theirongolddev/mobius/internal/budget"
	"github.com/theirongolddev/mobius/internal/model"
)

const activeBudgetID = "active"

// Mongo stores the snapshot as a single document and each archived month
// as a document whose _id is the "2006-01" period.
type Mongo struct {
	client   *mongo.Client
	budgets  *mongo.Collection
	archives *mongo.Collection
}

type budgetDoc struct {
	ID        string           `bson:"_id"`
	Budget    model.BudgetData `bson:"budget"`
	UpdatedAt time.Time        `bson:"updatedAt"`
}

type recordDoc struct {
	Period              string `bson:"_id"`
	model.MonthlyRecord `bson:",inline"`
}

// OpenMongo connects to uri and uses the given database.
func OpenMongo(ctx context.Context, uri, database string) (*Mongo, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	db := client.Database(database)
	return &Mongo{
		client:   client,
		budgets:  db.Collection("budgets"),
		archives: db.Collection("monthly_records"),
	}, nil
}

// Close disconnects the client.
func (m *Mongo) Close() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return m.client.Disconnect(ctx)
}

// Load reads the active snapshot.
func (m *Mongo) Load(ctx context.Context) (model.BudgetData, error) {
	var doc budgetDoc
	err := m.budgets.FindOne(ctx, bson.M{"_id": activeBudgetID}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return model.BudgetData{}, budget.ErrNoBudget
	}
	if err != nil {
		return model.BudgetData{}, fmt.Errorf("reading budget: %w", err)
	}
	return doc.Budget, nil
}

// Save replaces the active snapshot.
func (m *Mongo) Save(ctx context.Context, b model.BudgetData) error {
	doc := budgetDoc{ID: activeBudgetID, Budget: b, UpdatedAt: time.Now()}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.budgets.ReplaceOne(ctx, bson.M{"_id": activeBudgetID}, doc, opts); err != nil {
		return fmt.Errorf("writing budget: %w", err)
	}
	return nil
}

// LoadHistory reads every archived month, oldest first.
func (m *Mongo) LoadHistory(ctx context.Context) ([]model.MonthlyRecord, error) {
	opts := options.Find().SetSort(bson.D{{Key: "year", Value: 1}, {Key: "month", Value: 1}})
	cursor, err := m.archives.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("reading history: %w", err)
	}
	defer func() { _ = cursor.Close(ctx) }()

	var records []model.MonthlyRecord
	for cursor.Next(ctx) {
		var doc recordDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decoding record: %w", err)
		}
		records = append(records, doc.MonthlyRecord)
	}
	return records, cursor.Err()
}

// AppendOrReplaceRecord upserts rec keyed by its period, so re-running a
// reset for the same month overwrites rather than duplicates.
func (m *Mongo) AppendOrReplaceRecord(ctx context.Context, rec model.MonthlyRecord) error {
	doc := recordDoc{Period: rec.Key(), MonthlyRecord: rec}
	opts := options.Replace().SetUpsert(true)
	if _, err := m.archives.ReplaceOne(ctx, bson.M{"_id": doc.Period}, doc, opts); err != nil {
		return fmt.Errorf("writing record %s: %w", doc.Period, err)
	}
	return nil
}
