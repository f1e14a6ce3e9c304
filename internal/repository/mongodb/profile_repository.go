package mongodb

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/gdugdh24/bandmate-backend/internal/domain"
	"github.com/gdugdh24/bandmate-backend/internal/repository"
)

// DefaultCollection is the collection profiles live in unless configured otherwise.
const DefaultCollection = "profiles"

type profileRepository struct {
	collection *mongo.Collection
	now        func() time.Time
}

func NewProfileRepository(db *mongo.Database, collection string) repository.ProfileRepository {
	if collection == "" {
		collection = DefaultCollection
	}
	return &profileRepository{
		collection: db.Collection(collection),
		now:        func() time.Time { return time.Now().UTC().Truncate(time.Millisecond) },
	}
}

// Migrate creates the unique email index and the status index used by ListActive.
func (r *profileRepository) Migrate(ctx context.Context) error {
	_, err := r.collection.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true).SetName("email_unique"),
		},
		{
			Keys:    bson.D{{Key: "status", Value: 1}},
			Options: options.Index().SetName("status"),
		},
	})
	if err != nil {
		return storageError("create indexes", err)
	}
	return nil
}

func (r *profileRepository) Create(ctx context.Context, profile *domain.Profile) error {
	now := r.now()
	doc := toDocument(profile)
	doc.ID = primitive.NewObjectID()
	doc.Version = 1
	doc.CreatedAt = now
	doc.UpdatedAt = now

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrProfileAlreadyExists
		}
		return storageError("create profile", err)
	}

	profile.ID = doc.ID.Hex()
	profile.Version = doc.Version
	profile.CreatedAt = now
	profile.UpdatedAt = now
	if profile.Instruments == nil {
		profile.Instruments = []domain.Instrument{}
	}
	return nil
}

func (r *profileRepository) GetByID(ctx context.Context, id string) (*domain.Profile, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOne(ctx, bson.M{"_id": oid})
}

func (r *profileRepository) GetByEmail(ctx context.Context, email string) (*domain.Profile, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *profileRepository) ListActive(ctx context.Context) ([]*domain.Profile, error) {
	cursor, err := r.collection.Find(ctx, bson.M{"status": true}, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, storageError("list active profiles", err)
	}
	defer cursor.Close(ctx)

	var docs []profileDocument
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, storageError("decode profiles", err)
	}

	profiles := make([]*domain.Profile, 0, len(docs))
	for i := range docs {
		profiles = append(profiles, docs[i].toDomain())
	}
	return profiles, nil
}

func (r *profileRepository) Update(ctx context.Context, id string, changes domain.ProfileChanges) (*domain.Profile, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	set := bson.M{}
	if changes.Email != nil {
		set["email"] = *changes.Email
	}
	if changes.FirstName != nil {
		set["firstName"] = *changes.FirstName
	}
	if changes.LastName != nil {
		set["lastName"] = *changes.LastName
	}
	if changes.Description != nil {
		set["description"] = *changes.Description
	}
	if changes.City != nil {
		set["city"] = *changes.City
	}
	if changes.ZipCode != nil {
		set["zipCode"] = *changes.ZipCode
	}
	if changes.Status != nil {
		set["status"] = *changes.Status
	}
	if changes.Newsletter != nil {
		set["newsletter"] = *changes.Newsletter
	}

	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, set, domain.ErrProfileNotFound)
}

func (r *profileRepository) UpdatePassword(ctx context.Context, id string, passwordHash string) (*domain.Profile, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}
	return r.findOneAndUpdate(ctx, bson.M{"_id": oid}, bson.M{"password": passwordHash}, domain.ErrProfileNotFound)
}

// ReplaceInstruments writes the list only while the stored version equals expectedVersion.
// A document without a version field counts as version 0.
func (r *profileRepository) ReplaceInstruments(ctx context.Context, id string, expectedVersion int64, instruments []domain.Instrument) (*domain.Profile, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	filter := versionFilter(oid, expectedVersion)
	set := bson.M{"instruments": toInstrumentDocuments(instruments)}
	return r.findOneAndUpdate(ctx, filter, set, domain.ErrVersionConflict)
}

func (r *profileRepository) Delete(ctx context.Context, id string) (*domain.Profile, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc profileDocument
	err = r.collection.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, storageError("delete profile", err)
	}
	return doc.toDomain(), nil
}

func (r *profileRepository) DeleteMany(ctx context.Context, filter domain.ProfileFilter) (int64, error) {
	query, err := buildFilter(filter)
	if err != nil {
		return 0, err
	}

	result, err := r.collection.DeleteMany(ctx, query)
	if err != nil {
		return 0, storageError("delete profiles", err)
	}
	return result.DeletedCount, nil
}

func (r *profileRepository) findOne(ctx context.Context, filter bson.M) (*domain.Profile, error) {
	var doc profileDocument
	if err := r.collection.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, domain.ErrProfileNotFound
		}
		return nil, storageError("get profile", err)
	}
	return doc.toDomain(), nil
}

// findOneAndUpdate applies set, bumps the version and returns the document after the write.
// notMatched is returned when filter selects nothing.
func (r *profileRepository) findOneAndUpdate(ctx context.Context, filter, set bson.M, notMatched error) (*domain.Profile, error) {
	set["updatedAt"] = r.now()
	update := bson.M{
		"$set": set,
		"$inc": bson.M{"version": 1},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc profileDocument
	if err := r.collection.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, notMatched
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, domain.ErrProfileAlreadyExists
		}
		return nil, storageError("update profile", err)
	}
	return doc.toDomain(), nil
}

func buildFilter(filter domain.ProfileFilter) (bson.M, error) {
	query := bson.M{}
	if filter.IDs != nil {
		oids := make([]primitive.ObjectID, 0, len(filter.IDs))
		for _, id := range filter.IDs {
			oid, err := parseID(id)
			if err != nil {
				return nil, err
			}
			oids = append(oids, oid)
		}
		query["_id"] = bson.M{"$in": oids}
	}
	if filter.Email != nil {
		query["email"] = *filter.Email
	}
	if filter.Status != nil {
		query["status"] = *filter.Status
	}
	if filter.Newsletter != nil {
		query["newsletter"] = *filter.Newsletter
	}
	return query, nil
}

func versionFilter(oid primitive.ObjectID, expectedVersion int64) bson.M {
	if expectedVersion == 0 {
		return bson.M{"_id": oid, "$or": bson.A{
			bson.M{"version": int64(0)},
			bson.M{"version": bson.M{"$exists": false}},
		}}
	}
	return bson.M{"_id": oid, "version": expectedVersion}
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, fmt.Errorf("%w: %q", domain.ErrMalformedID, id)
	}
	return oid, nil
}

func storageError(op string, err error) error {
	return fmt.Errorf("failed to %s: %w: %w", op, domain.ErrStorage, err)
}
