package mongodb

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jhoicas/stock-ledger-api/internal/domain"
	"github.com/jhoicas/stock-ledger-api/internal/domain/entity"
	"github.com/jhoicas/stock-ledger-api/internal/domain/repository"
)

var _ repository.LocationRepository = (*LocationRepo)(nil)

// LocationRepo implementación de LocationRepository sobre MongoDB.
type LocationRepo struct {
	col *mongo.Collection
}

func NewLocationRepository(db *mongo.Database) *LocationRepo {
	return &LocationRepo{col: db.Collection(colLocations)}
}

func (r *LocationRepo) Create(ctx context.Context, location *entity.Location) error {
	oid, ok := objectID(location.ID)
	if !ok {
		return errInvalidID(location.ID)
	}
	doc := locationDoc{
		ID:            oid,
		Name:          location.Name,
		Address:       location.Address,
		ContactPerson: location.ContactPerson,
		CreatedAt:     location.CreatedAt,
		UpdatedAt:     location.UpdatedAt,
	}
	if _, err := r.col.InsertOne(ctx, doc); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("insert location: %w", err)
	}
	return nil
}

func (r *LocationRepo) GetByID(ctx context.Context, id string) (*entity.Location, error) {
	oid, ok := objectID(id)
	if !ok {
		return nil, nil
	}
	return r.findOne(ctx, bson.D{{Key: "_id", Value: oid}})
}

func (r *LocationRepo) GetByName(ctx context.Context, name string) (*entity.Location, error) {
	return r.findOne(ctx, bson.D{{Key: "name", Value: name}})
}

func (r *LocationRepo) findOne(ctx context.Context, filter bson.D) (*entity.Location, error) {
	var doc locationDoc
	if err := r.col.FindOne(ctx, filter).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, fmt.Errorf("find location: %w", err)
	}
	return doc.toEntity(), nil
}

// ListByIDs resuelve varias ubicaciones con un solo $in.
func (r *LocationRepo) ListByIDs(ctx context.Context, ids []string) ([]*entity.Location, error) {
	oids := objectIDs(ids)
	if len(oids) == 0 {
		return nil, nil
	}
	return r.find(ctx, bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: oids}}}}, options.Find())
}

func (r *LocationRepo) Update(ctx context.Context, location *entity.Location) error {
	oid, ok := objectID(location.ID)
	if !ok {
		return domain.ErrNotFound
	}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "name", Value: location.Name},
		{Key: "address", Value: location.Address},
		{Key: "contact_person", Value: location.ContactPerson},
		{Key: "updated_at", Value: location.UpdatedAt},
	}}}
	res, err := r.col.UpdateByID(ctx, oid, update)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return domain.ErrDuplicate
		}
		return fmt.Errorf("update location: %w", err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// List ubicaciones ordenadas por nombre y el total sin paginar.
func (r *LocationRepo) List(ctx context.Context, limit, offset int) ([]*entity.Location, int, error) {
	total, err := r.col.CountDocuments(ctx, bson.D{})
	if err != nil {
		return nil, 0, fmt.Errorf("count locations: %w", err)
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "name", Value: 1}}).
		SetSkip(int64(offset)).
		SetLimit(int64(limit))
	list, err := r.find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, 0, err
	}
	return list, int(total), nil
}

func (r *LocationRepo) find(ctx context.Context, filter bson.D, opts *options.FindOptions) ([]*entity.Location, error) {
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("list locations: %w", err)
	}
	var docs []locationDoc
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode locations: %w", err)
	}
	list := make([]*entity.Location, 0, len(docs))
	for i := range docs {
		list = append(list, docs[i].toEntity())
	}
	return list, nil
}

func (r *LocationRepo) Delete(ctx context.Context, id string) error {
	oid, ok := objectID(id)
	if !ok {
		return domain.ErrNotFound
	}
	res, err := r.col.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("delete location: %w", err)
	}
	if res.DeletedCount == 0 {
		return domain.ErrNotFound
	}
	return nil
}
