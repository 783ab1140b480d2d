package db

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog/log"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"arguematch/models"
)

const matchesCollection = "matches"

var MongoClient *mongo.Client
var MongoDatabase *mongo.Database

// extractDBName parses the database name from the URI, falling back to def
func extractDBName(uri, def string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return def
	}
	if u.Path != "" && u.Path != "/" {
		return u.Path[1:] // Trim leading '/'
	}
	return def
}

// ConnectMongoDB establishes a connection to MongoDB using the provided URI.
// A database named in the URI path wins over dbName.
func ConnectMongoDB(ctx context.Context, uri, dbName string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Verify connection with a ping
	if err := client.Ping(ctx, nil); err != nil {
		client.Disconnect(context.Background())
		return fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	MongoClient = client
	name := extractDBName(uri, dbName)
	log.Info().Str("database", name).Msg("[db] connected")

	MongoDatabase = client.Database(name)
	return nil
}

// DisconnectMongoDB closes the shared client if one is open
func DisconnectMongoDB(ctx context.Context) error {
	if MongoClient == nil {
		return nil
	}
	err := MongoClient.Disconnect(ctx)
	MongoClient = nil
	MongoDatabase = nil
	return err
}

// MatchArchive stores one document per room in the matches collection
type MatchArchive struct {
	collection *mongo.Collection
}

// NewMatchArchive uses the matches collection of the given database
func NewMatchArchive(database *mongo.Database) *MatchArchive {
	return &MatchArchive{collection: database.Collection(matchesCollection)}
}

// RecordMatch upserts the match document. Fields written by RecordOutcome
// are left alone so the two writes may land in either order.
func (a *MatchArchive) RecordMatch(ctx context.Context, record models.MatchRecord) error {
	filter := bson.M{"_id": record.RoomID}
	update := bson.M{
		"$set": bson.M{
			"participants":    record.Participants,
			"topic":           record.Topic,
			"openingQuestion": record.OpeningQuestion,
			"createdAt":       record.CreatedAt,
		},
		"$setOnInsert": bson.M{"outcome": record.Outcome},
	}
	_, err := a.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to record match %s: %w", record.RoomID, err)
	}
	return nil
}

// RecordOutcome sets the final outcome of a room
func (a *MatchArchive) RecordOutcome(ctx context.Context, roomID, outcome string, endedAt time.Time) error {
	filter := bson.M{"_id": roomID}
	update := bson.M{"$set": bson.M{"outcome": outcome, "endedAt": endedAt}}
	_, err := a.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to record outcome for %s: %w", roomID, err)
	}
	return nil
}

// GetMatch loads an archived match
func (a *MatchArchive) GetMatch(ctx context.Context, roomID string) (*models.MatchRecord, error) {
	var record models.MatchRecord
	err := a.collection.FindOne(ctx, bson.M{"_id": roomID}).Decode(&record)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, fmt.Errorf("no match found for room: %s", roomID)
		}
		return nil, err
	}
	return &record, nil
}
