// storage/blob_store.go
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// ErrBlobNotFound is returned when no blob exists for the given id.
var ErrBlobNotFound = errors.New("blob not found")

// Blob is an uploaded file with its metadata. Blobs are write-once.
type Blob struct {
	ID          string
	Filename    string
	ContentType string
	Data        []byte
	UploadedBy  string
	CreatedAt   time.Time
}

// BlobStore abstracts where uploaded files live so handlers don't care
// about the backing storage.
type BlobStore interface {
	Put(ctx context.Context, blob Blob) (string, error)
	Get(ctx context.Context, id string) (*Blob, error)
	Exists(ctx context.Context, id string) (bool, error)
}

// fileDocument is the Mongo representation of a blob. Data is kept
// base64-encoded, the format the frontend was built against.
type fileDocument struct {
	ID          string    `bson:"id"`
	Filename    string    `bson:"filename"`
	Data        string    `bson:"data"`
	ContentType string    `bson:"contentType"`
	UploadedBy  string    `bson:"uploadedBy"`
	CreatedAt   time.Time `bson:"createdAt"`
}

// MongoBlobStore stores blobs as base64 documents in the files collection.
type MongoBlobStore struct {
	collection *mongo.Collection
}

func NewMongoBlobStore(db *mongo.Database) *MongoBlobStore {
	return &MongoBlobStore{collection: db.Collection("files")}
}

func (s *MongoBlobStore) Put(ctx context.Context, blob Blob) (string, error) {
	id := blob.ID
	if id == "" {
		id = uuid.NewString()
	}

	doc := fileDocument{
		ID:          id,
		Filename:    blob.Filename,
		Data:        base64.StdEncoding.EncodeToString(blob.Data),
		ContentType: blob.ContentType,
		UploadedBy:  blob.UploadedBy,
		CreatedAt:   time.Now().UTC(),
	}

	if _, err := s.collection.InsertOne(ctx, doc); err != nil {
		return "", err
	}
	return id, nil
}

func (s *MongoBlobStore) Get(ctx context.Context, id string) (*Blob, error) {
	var doc fileDocument
	err := s.collection.FindOne(ctx, bson.M{"id": id}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrBlobNotFound
		}
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(doc.Data)
	if err != nil {
		return nil, err
	}

	return &Blob{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Data:        data,
		UploadedBy:  doc.UploadedBy,
		CreatedAt:   doc.CreatedAt,
	}, nil
}

func (s *MongoBlobStore) Exists(ctx context.Context, id string) (bool, error) {
	count, err := s.collection.CountDocuments(ctx, bson.M{"id": id})
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
