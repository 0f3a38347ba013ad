package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/cmlabs-hris/leave-engine/internal/domain/leave"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	profilesCollection = "leave_profiles"
	// maxUpdateAttempts bounds the optimistic retry loop in Update.
	maxUpdateAttempts = 5
)

type leaveProfileRepositoryImpl struct {
	collection *mongo.Collection
}

func NewLeaveProfileRepository(db *mongo.Database) leave.ProfileRepository {
	return &leaveProfileRepositoryImpl{collection: db.Collection(profilesCollection)}
}

// EnsureIndexes creates the unique employee index that backs get-or-create.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(profilesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "employeeId", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("uniq_employee_id"),
		},
		{
			Keys:    bson.D{{Key: "createdAt", Value: 1}},
			Options: options.Index().SetName("idx_created_at"),
		},
	})
	if err != nil {
		return fmt.Errorf("create leave profile indexes: %w", err)
	}
	return nil
}

// Create implements leave.ProfileRepository.
func (r *leaveProfileRepositoryImpl) Create(ctx context.Context, profile leave.LeaveProfile) (leave.LeaveProfile, bool, error) {
	profile.Version = 1
	record, err := profileToRecord(profile)
	if err != nil {
		return leave.LeaveProfile{}, false, err
	}

	if _, err := r.collection.InsertOne(ctx, record); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			existing, getErr := r.GetByEmployeeID(ctx, profile.EmployeeID)
			if getErr != nil {
				return leave.LeaveProfile{}, false, getErr
			}
			return existing, false, nil
		}
		return leave.LeaveProfile{}, false, err
	}

	return profile, true, nil
}

// GetByEmployeeID implements leave.ProfileRepository.
func (r *leaveProfileRepositoryImpl) GetByEmployeeID(ctx context.Context, employeeID string) (leave.LeaveProfile, error) {
	var record leaveProfileRecord
	err := r.collection.FindOne(ctx, bson.M{"employeeId": employeeID}).Decode(&record)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return leave.LeaveProfile{}, leave.ErrProfileNotFound
		}
		return leave.LeaveProfile{}, err
	}
	return recordToProfile(record)
}

// Update implements leave.ProfileRepository. The replace only matches the
// version that was read, so a concurrent writer forces a reload and a fresh
// run of fn.
func (r *leaveProfileRepositoryImpl) Update(ctx context.Context, employeeID string, fn func(profile *leave.LeaveProfile) error) (leave.LeaveProfile, error) {
	for attempt := 1; attempt <= maxUpdateAttempts; attempt++ {
		profile, err := r.GetByEmployeeID(ctx, employeeID)
		if err != nil {
			return leave.LeaveProfile{}, err
		}

		readVersion := profile.Version
		if err := fn(&profile); err != nil {
			return leave.LeaveProfile{}, err
		}

		profile.Version = readVersion + 1
		profile.UpdatedAt = time.Now()
		record, err := profileToRecord(profile)
		if err != nil {
			return leave.LeaveProfile{}, err
		}

		res, err := r.collection.ReplaceOne(ctx, bson.M{"employeeId": employeeID, "version": readVersion}, record)
		if err != nil {
			return leave.LeaveProfile{}, err
		}
		if res.MatchedCount == 1 {
			return profile, nil
		}

		slog.Debug("leave profile version conflict, retrying",
			"employee_id", employeeID,
			"version", readVersion,
			"attempt", attempt,
		)
	}

	return leave.LeaveProfile{}, leave.ErrConcurrentModification
}

// List implements leave.ProfileRepository.
func (r *leaveProfileRepositoryImpl) List(ctx context.Context) ([]leave.LeaveProfile, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: 1}, {Key: "_id", Value: 1}})
	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	profiles := []leave.LeaveProfile{}
	for cursor.Next(ctx) {
		var record leaveProfileRecord
		if err := cursor.Decode(&record); err != nil {
			return nil, err
		}
		profile, err := recordToProfile(record)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, profile)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return profiles, nil
}
