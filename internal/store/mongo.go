package store

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readconcern"
	"go.mongodb.org/mongo-driver/mongo/writeconcern"
)

// Mongo implements Store on top of a MongoDB database.  Document ids
// are uuid strings assigned at insert so the engine never depends on
// ObjectID semantics.
type Mongo struct {
	client *mongo.Client
	db     *mongo.Database
}

// OpenMongo connects to the given URI, verifies the connection and
// returns a Store bound to the named database.
func OpenMongo(uri, database string) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, err
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, err
	}
	return &Mongo{client: client, db: client.Database(database)}, nil
}

// Close disconnects the underlying client.
func (m *Mongo) Close(ctx context.Context) error {
	return m.client.Disconnect(ctx)
}

func toBSON(filter Filter) bson.M {
	out := bson.M{}
	for field, v := range filter {
		if cond, ok := v.(Cond); ok {
			out[field] = bson.M{"$" + cond.Op: cond.Value}
			continue
		}
		out[field] = v
	}
	return out
}

// Query decodes every matching document into out (*[]T).
func (m *Mongo) Query(ctx context.Context, collection string, filter Filter, out any) error {
	cur, err := m.db.Collection(collection).Find(ctx, toBSON(filter))
	if err != nil {
		return err
	}
	return cur.All(ctx, out)
}

// Insert stores the document, assigning a fresh uuid id when the
// document carries none, and returns the id.
func (m *Mongo) Insert(ctx context.Context, collection string, doc any) (string, error) {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return "", err
	}
	var d bson.M
	if err := bson.Unmarshal(raw, &d); err != nil {
		return "", err
	}
	id, _ := d["_id"].(string)
	if id == "" {
		id = uuid.NewString()
		d["_id"] = id
	}
	if _, err := m.db.Collection(collection).InsertOne(ctx, d); err != nil {
		return "", err
	}
	return id, nil
}

// Update applies the patch to one document.  With a precondition the
// filter also requires the guarded field to still hold its expected
// value, so a lost compare-and-swap surfaces as ErrPreconditionFailed.
func (m *Mongo) Update(ctx context.Context, collection string, id string, patch Patch, pre *Precondition) error {
	filter := bson.M{"_id": id}
	if pre != nil {
		filter[pre.Field] = pre.Equals
	}
	res, err := m.db.Collection(collection).UpdateOne(ctx, filter, bson.M{"$set": bson.M(patch)})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		if pre == nil {
			return ErrNotFound
		}
		return ErrPreconditionFailed
	}
	return nil
}

// Touch upserts the marker document and bumps its counter.  Inside a
// session transaction two scopes touching the same id produce a write
// conflict; the driver aborts and retries the loser, whose re-read
// then observes the winner's committed writes.  Snapshot reads alone
// never see a concurrent transaction's insert, so without this shared
// write two racing booking commits would both go through.
func (m *Mongo) Touch(ctx context.Context, collection string, id string) error {
	_, err := m.db.Collection(collection).UpdateOne(ctx,
		bson.M{"_id": id},
		bson.M{"$inc": bson.M{"touched": 1}},
		options.Update().SetUpsert(true))
	return err
}

// Delete removes one document by id.
func (m *Mongo) Delete(ctx context.Context, collection string, id string) error {
	res, err := m.db.Collection(collection).DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// Atomically runs fn inside a session transaction.  Operations that
// use the callback's context join the transaction, which gives the
// booking commit its single atomic check-then-write.
func (m *Mongo) Atomically(ctx context.Context, fn func(ctx context.Context) error) error {
	session, err := m.client.StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	txnOpts := options.Transaction().
		SetReadConcern(readconcern.Snapshot()).
		SetWriteConcern(writeconcern.Majority())

	_, err = session.WithTransaction(ctx, func(sc mongo.SessionContext) (any, error) {
		return nil, fn(sc)
	}, txnOpts)
	return err
}
