package infrastructure

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tolikvseokey-dev/bk-reminder-bot/domain"
)

// The whole reminders document lives under one fixed _id, so ReplaceOne
// gives the same whole-document-overwrite semantics as the file store.
const remindersDocID = "reminders"

func ConnectMongoDB(ctx context.Context, uri string) (*mongo.Client, *mongo.Collection, error) {
	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, err
	}

	collection := client.Database("telegram_bot").Collection("reminders")
	return client, collection, nil
}

// MongoStore is an alternative backend for deployments that already run
// MongoDB. Selected by MONGODB_URI.
type MongoStore struct {
	collection *mongo.Collection
}

func NewMongoStore(collection *mongo.Collection) *MongoStore {
	return &MongoStore{collection: collection}
}

type mongoDocument struct {
	ID        string            `bson:"_id"`
	Reminders []domain.Reminder `bson:"reminders"`
}

func (s *MongoStore) Load(ctx context.Context) (domain.Document, error) {
	var doc mongoDocument
	err := s.collection.FindOne(ctx, bson.M{"_id": remindersDocID}).Decode(&doc)
	if err != nil {
		// Absent or undecodable document: no data yet.
		return domain.Document{}, nil
	}
	return domain.Document{Reminders: doc.Reminders}, nil
}

func (s *MongoStore) Save(ctx context.Context, doc domain.Document) error {
	if doc.Reminders == nil {
		doc.Reminders = []domain.Reminder{}
	}
	_, err := s.collection.ReplaceOne(
		ctx,
		bson.M{"_id": remindersDocID},
		mongoDocument{ID: remindersDocID, Reminders: doc.Reminders},
		options.Replace().SetUpsert(true),
	)
	return err
}
