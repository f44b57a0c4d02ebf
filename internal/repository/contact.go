package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/umalmyha/contacts-api/internal/model"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ContactRepository represents behavior of contact storage
type ContactRepository interface {
	FindAll(context.Context) ([]*model.Contact, error)
	FindByID(context.Context, string) (*model.Contact, error)
	Create(context.Context, *model.Contact) error
	Update(context.Context, *model.Contact) (*model.Contact, error)
	DeleteByID(context.Context, string) (bool, error)
}

type contactDocument struct {
	ID        primitive.ObjectID `bson:"_id"`
	FirstName string             `bson:"firstName"`
	LastName  string             `bson:"lastName"`
	Email     string             `bson:"email"`
	Phone     string             `bson:"phone"`
}

func (d *contactDocument) contact() *model.Contact {
	return &model.Contact{
		ID:        d.ID.Hex(),
		FirstName: d.FirstName,
		LastName:  d.LastName,
		Email:     d.Email,
		Phone:     d.Phone,
	}
}

type mongoContactRepository struct {
	coll *mongo.Collection
}

// NewMongoContactRepository builds ContactRepository on top of mongo collection
func NewMongoContactRepository(coll *mongo.Collection) ContactRepository {
	return &mongoContactRepository{coll: coll}
}

func (r *mongoContactRepository) FindAll(ctx context.Context) ([]*model.Contact, error) {
	cur, err := r.coll.Find(ctx, bson.D{})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	contacts := make([]*model.Contact, 0)
	for cur.Next(ctx) {
		var doc contactDocument
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		contacts = append(contacts, doc.contact())
	}

	if err := cur.Err(); err != nil {
		return nil, err
	}
	return contacts, nil
}

// FindByID returns nil contact if id is not a valid object id or contact doesn't exist
func (r *mongoContactRepository) FindByID(ctx context.Context, id string) (*model.Contact, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, nil
	}

	var doc contactDocument
	if err := r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.contact(), nil
}

func (r *mongoContactRepository) Create(ctx context.Context, c *model.Contact) error {
	doc := contactDocument{
		ID:        primitive.NewObjectID(),
		FirstName: c.FirstName,
		LastName:  c.LastName,
		Email:     c.Email,
		Phone:     c.Phone,
	}

	if _, err := r.coll.InsertOne(ctx, &doc); err != nil {
		return err
	}

	c.ID = doc.ID.Hex()
	return nil
}

// Update replaces all contact fields and returns the document after update, nil is returned if contact doesn't exist
func (r *mongoContactRepository) Update(ctx context.Context, c *model.Contact) (*model.Contact, error) {
	oid, err := primitive.ObjectIDFromHex(c.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to cast contact id %q - %w", c.ID, err)
	}

	filter := bson.D{{Key: "_id", Value: oid}}
	update := bson.D{{Key: "$set", Value: bson.D{
		{Key: "firstName", Value: c.FirstName},
		{Key: "lastName", Value: c.LastName},
		{Key: "email", Value: c.Email},
		{Key: "phone", Value: c.Phone},
	}}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc contactDocument
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return doc.contact(), nil
}

func (r *mongoContactRepository) DeleteByID(ctx context.Context, id string) (bool, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return false, fmt.Errorf("failed to cast contact id %q - %w", id, err)
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
