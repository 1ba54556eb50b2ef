package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/lalith-99/happythoughts/internal/models"
	"github.com/lalith-99/happythoughts/internal/repository"
)

// messageDoc keeps the field names existing happy-thoughts collections use.
type messageDoc struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty"`
	Text           string               `bson:"message"`
	Hearts         int                  `bson:"hearts"`
	CreatedAt      time.Time            `bson:"createdAt"`
	UserID         *primitive.ObjectID  `bson:"userId,omitempty"`
	LikedByUsers   []primitive.ObjectID `bson:"likedByUsers"`
	LikedByClients []string             `bson:"likedByClients"`
}

func (d messageDoc) model() *models.Message {
	msg := &models.Message{
		ID:               d.ID.Hex(),
		Text:             d.Text,
		HeartCount:       d.Hearts,
		CreatedAt:        d.CreatedAt,
		LikedByUserIDs:   make([]string, 0, len(d.LikedByUsers)),
		LikedByClientIDs: d.LikedByClients,
	}
	if d.UserID != nil {
		author := d.UserID.Hex()
		msg.AuthorID = &author
	}
	for _, u := range d.LikedByUsers {
		msg.LikedByUserIDs = append(msg.LikedByUserIDs, u.Hex())
	}
	msg.Normalize()
	return msg
}

func parseID(id string) (primitive.ObjectID, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return primitive.NilObjectID, repository.ErrInvalidID
	}
	return oid, nil
}

type MessageStore struct {
	coll *mongo.Collection
}

func NewMessageStore(coll *mongo.Collection) *MessageStore {
	return &MessageStore{coll: coll}
}

func (s *MessageStore) Create(ctx context.Context, text string, authorID *string) (*models.Message, error) {
	doc := messageDoc{
		ID:             primitive.NewObjectID(),
		Text:           text,
		CreatedAt:      time.Now().UTC().Truncate(time.Millisecond),
		LikedByUsers:   []primitive.ObjectID{},
		LikedByClients: []string{},
	}
	if authorID != nil {
		oid, err := parseID(*authorID)
		if err != nil {
			return nil, fmt.Errorf("author id: %w", err)
		}
		doc.UserID = &oid
	}

	if _, err := s.coll.InsertOne(ctx, doc); err != nil {
		return nil, fmt.Errorf("insert message: %w", err)
	}
	return doc.model(), nil
}

func (s *MessageStore) GetByID(ctx context.Context, id string) (*models.Message, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc messageDoc
	if err := s.coll.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("get message: %w", err)
	}
	return doc.model(), nil
}

func (s *MessageStore) List(ctx context.Context, opts repository.ListOptions) ([]models.Message, error) {
	opts = opts.WithDefaults()

	filter := bson.M{}
	switch opts.Hearts {
	case repository.HeartsSome:
		filter["hearts"] = bson.M{"$gt": 0}
	case repository.HeartsNone:
		filter["hearts"] = 0
	}

	field := "createdAt"
	if opts.Sort == repository.SortByHearts {
		field = "hearts"
	}
	direction := -1
	if opts.Order == repository.SortAsc {
		direction = 1
	}
	findOpts := options.Find().SetSort(bson.D{{Key: field, Value: direction}, {Key: "_id", Value: direction}})

	cur, err := s.coll.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer cur.Close(ctx)

	messages := make([]models.Message, 0)
	for cur.Next(ctx) {
		var doc messageDoc
		if err := cur.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode message: %w", err)
		}
		messages = append(messages, *doc.model())
	}
	if err := cur.Err(); err != nil {
		return nil, fmt.Errorf("iterate messages: %w", err)
	}
	return messages, nil
}

func (s *MessageStore) IncrementHeart(ctx context.Context, id string, like repository.Like) (*models.Message, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"_id": oid}
	var update bson.M
	if like.UserID != "" {
		userOID, err := parseID(like.UserID)
		if err != nil {
			return nil, fmt.Errorf("liker id: %w", err)
		}
		update = bson.M{
			"$inc":      bson.M{"hearts": 1},
			"$addToSet": bson.M{"likedByUsers": userOID},
		}
	} else {
		// Single-document updates are atomic, so filtering on the
		// client's absence makes the check and the write one step.
		filter["likedByClients"] = bson.M{"$ne": like.ClientID}
		update = bson.M{
			"$inc":  bson.M{"hearts": 1},
			"$push": bson.M{"likedByClients": like.ClientID},
		}
	}

	var doc messageDoc
	err = s.coll.FindOneAndUpdate(ctx, filter, update,
		options.FindOneAndUpdate().SetReturnDocument(options.After),
	).Decode(&doc)
	if err == nil {
		return doc.model(), nil
	}
	if !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, fmt.Errorf("increment hearts: %w", err)
	}

	if _, err := s.GetByID(ctx, id); err != nil {
		return nil, err
	}
	return nil, repository.ErrAlreadyLiked
}

func (s *MessageStore) Delete(ctx context.Context, id string) (*models.Message, error) {
	oid, err := parseID(id)
	if err != nil {
		return nil, err
	}

	var doc messageDoc
	if err := s.coll.FindOneAndDelete(ctx, bson.M{"_id": oid}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("delete message: %w", err)
	}
	return doc.model(), nil
}

func (s *MessageStore) Ping(ctx context.Context) error {
	return s.coll.Database().Client().Ping(ctx, nil)
}
