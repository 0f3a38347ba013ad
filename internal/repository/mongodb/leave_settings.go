package mongodb

import (
	"context"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	settingsCollection = "leave_settings"
	settingsDocumentID = "leave_settings"
)

type leaveSettingsRepositoryImpl struct {
	collection *mongo.Collection
}

func NewLeaveSettingsRepository(db *mongo.Database) leave.SettingsRepository {
	return &leaveSettingsRepositoryImpl{collection: db.Collection(settingsCollection)}
}

// Get implements leave.SettingsRepository.
func (r *leaveSettingsRepositoryImpl) Get(ctx context.Context) (leave.LeaveSettings, error) {
	if err := r.ensure(ctx); err != nil {
		return leave.LeaveSettings{}, err
	}

	var record leaveSettingsRecord
	if err := r.collection.FindOne(ctx, bson.M{"_id": settingsDocumentID}).Decode(&record); err != nil {
		return leave.LeaveSettings{}, err
	}
	return recordToSettings(record), nil
}

// Update implements leave.SettingsRepository.
func (r *leaveSettingsRepositoryImpl) Update(ctx context.Context, fn func(settings *leave.LeaveSettings) error) (leave.LeaveSettings, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		settings, err := r.Get(ctx)
		if err != nil {
			return leave.LeaveSettings{}, err
		}

		readVersion := settings.Version
		if err := fn(&settings); err != nil {
			return leave.LeaveSettings{}, err
		}

		settings.Version = readVersion + 1
		settings.UpdatedAt = time.Now()
		res, err := r.collection.ReplaceOne(ctx,
			bson.M{"_id": settingsDocumentID, "version": readVersion},
			settingsToRecord(settingsDocumentID, settings))
		if err != nil {
			return leave.LeaveSettings{}, err
		}
		if res.MatchedCount == 1 {
			return settings, nil
		}
	}

	return leave.LeaveSettings{}, leave.ErrConcurrentModification
}

// ensure upserts the empty singleton. Concurrent first calls may both try the
// insert; the loser sees a duplicate key and the document is there either way.
func (r *leaveSettingsRepositoryImpl) ensure(ctx context.Context) error {
	now := time.Now()
	initial := settingsToRecord(settingsDocumentID, leave.LeaveSettings{
		Version:   1,
		CreatedAt: now,
		UpdatedAt: now,
	})

	_, err := r.collection.UpdateOne(ctx,
		bson.M{"_id": settingsDocumentID},
		bson.M{"$setOnInsert": bson.M{
			"leavePolicy": initial.LeavePolicy,
			"holidays":    initial.Holidays,
			"version":     initial.Version,
			"createdAt":   initial.CreatedAt,
			"updatedAt":   initial.UpdatedAt,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil && !mongo.IsDuplicateKeyError(err) {
		return err
	}
	return nil
}
