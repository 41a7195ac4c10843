package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/tuanvumaihuynh/self-checkout/internal/model"
)

// ReceiptRepository archives completed sales.
type ReceiptRepository interface {
	// SaveReceipt is idempotent on the receipt id, so redelivered events are harmless.
	SaveReceipt(ctx context.Context, receipt model.Receipt) error
	GetReceipt(ctx context.Context, id uuid.UUID) (model.Receipt, error)
}

type receiptDocument struct {
	ID        string                `bson:"_id"`
	Items     []receiptLineDocument `bson:"items"`
	Total     float64               `bson:"total"`
	CreatedAt time.Time             `bson:"created_at"`
}

type receiptLineDocument struct {
	Name      string  `bson:"name"`
	Quantity  int     `bson:"quantity"`
	UnitPrice float64 `bson:"unit_price"`
	Subtotal  float64 `bson:"subtotal"`
}

type mongoReceiptRepository struct {
	collection *mongo.Collection
}

func NewMongoReceiptRepository(collection *mongo.Collection) ReceiptRepository {
	return &mongoReceiptRepository{
		collection: collection,
	}
}

func (r mongoReceiptRepository) SaveReceipt(ctx context.Context, receipt model.Receipt) error {
	doc := receiptToDocument(receipt)

	_, err := r.collection.ReplaceOne(ctx,
		bson.M{"_id": doc.ID},
		doc,
		options.Replace().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("replace receipt: %w", err)
	}

	return nil
}

func (r mongoReceiptRepository) GetReceipt(ctx context.Context, id uuid.UUID) (model.Receipt, error) {
	var doc receiptDocument
	if err := r.collection.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return model.Receipt{}, ErrReceiptNotFound
		}
		return model.Receipt{}, fmt.Errorf("find receipt: %w", err)
	}

	receipt, err := documentToReceipt(doc)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("convert receipt document: %w", err)
	}

	return receipt, nil
}

func receiptToDocument(receipt model.Receipt) receiptDocument {
	lines := make([]receiptLineDocument, 0, len(receipt.Items))
	for _, item := range receipt.Items {
		lines = append(lines, receiptLineDocument(item))
	}

	return receiptDocument{
		ID:        receipt.ID.String(),
		Items:     lines,
		Total:     receipt.Total,
		CreatedAt: receipt.CreatedAt.UTC(),
	}
}

func documentToReceipt(doc receiptDocument) (model.Receipt, error) {
	id, err := uuid.Parse(doc.ID)
	if err != nil {
		return model.Receipt{}, fmt.Errorf("parse receipt id: %w", err)
	}

	items := make([]model.ReceiptLine, 0, len(doc.Items))
	for _, line := range doc.Items {
		items = append(items, model.ReceiptLine(line))
	}

	return model.Receipt{
		ID:        id,
		Items:     items,
		Total:     doc.Total,
		CreatedAt: doc.CreatedAt,
	}, nil
}
