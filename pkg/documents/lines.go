package documents

import (
	"context"
	"errors"
	"fmt"

	"github.com/travigo/urbantransit/pkg/transit"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"golang.org/x/exp/slices"
)

// LineStore reads line documents. A line is matched on either its _id or
// its line_id field.
type LineStore struct {
	Collection *mongo.Collection
}

func NewLineStore(collection *mongo.Collection) *LineStore {
	return &LineStore{Collection: collection}
}

func lineFilter(ids ...string) bson.M {
	if len(ids) == 1 {
		return bson.M{"$or": bson.A{
			bson.M{"_id": ids[0]},
			bson.M{"line_id": ids[0]},
		}}
	}

	return bson.M{"$or": bson.A{
		bson.M{"_id": bson.M{"$in": ids}},
		bson.M{"line_id": bson.M{"$in": ids}},
	}}
}

func (s *LineStore) GetItinerary(ctx context.Context, lineID string) ([]transit.ItineraryStop, error) {
	var document transit.LineDocument

	opts := options.FindOne().SetProjection(bson.D{
		bson.E{Key: "_id", Value: 1},
		bson.E{Key: "itinerary", Value: 1},
	})

	err := s.Collection.FindOne(ctx, lineFilter(lineID), opts).Decode(&document)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return []transit.ItineraryStop{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("finding itinerary: %w", err)
	}

	itinerary := document.Itinerary
	if itinerary == nil {
		itinerary = []transit.ItineraryStop{}
	}

	slices.SortStableFunc(itinerary, func(a, b transit.ItineraryStop) int {
		return a.Sequence - b.Sequence
	})

	return itinerary, nil
}

func (s *LineStore) GetLineDocuments(ctx context.Context, ids []string) (map[string]*transit.LineDocument, error) {
	documents := map[string]*transit.LineDocument{}
	if len(ids) == 0 {
		return documents, nil
	}

	opts := options.Find().SetProjection(bson.D{
		bson.E{Key: "itinerary", Value: 0},
	})

	cursor, err := s.Collection.Find(ctx, lineFilter(ids...), opts)
	if err != nil {
		return nil, fmt.Errorf("finding line documents: %w", err)
	}

	var results []*transit.LineDocument
	if err := cursor.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("decoding line documents: %w", err)
	}

	for _, document := range results {
		if slices.Contains(ids, document.ID) {
			documents[document.ID] = document
		}
		if document.LineID != "" && slices.Contains(ids, document.LineID) {
			documents[document.LineID] = document
		}
	}

	return documents, nil
}
