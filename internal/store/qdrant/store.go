package qdrant

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	qdrantclient "github.com/qdrant/go-client/qdrant"
	"github.com/sirupsen/logrus"

	"github.com/remodela/remodela-backend/internal/catalog"
	"github.com/remodela/remodela-backend/internal/config"
)

// Store implements the document store over two Qdrant collections: one
// holding the node text embedding with the full node payload, one holding a
// CLIP vector per catalog image with its provenance payload. This mirrors two
// vector indexes over the same logical collection.
type Store struct {
	client          *qdrantclient.Client
	nodeCollection  string
	imageCollection string
	numCandidates   int
	log             *logrus.Logger
}

// New connects to Qdrant over gRPC.
func New(cfg config.QdrantConfig, numCandidates int, log *logrus.Logger) (*Store, error) {
	client, err := qdrantclient.NewClient(&qdrantclient.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to qdrant: %w", err)
	}

	return &Store{
		client:          client,
		nodeCollection:  cfg.NodeCollection,
		imageCollection: cfg.ImageCollection,
		numCandidates:   numCandidates,
		log:             log,
	}, nil
}

// EnsureCollections creates both collections and their payload indexes if
// missing. Existing collections are left untouched.
func (s *Store) EnsureCollections(ctx context.Context, textDim, clipDim int) error {
	collections := []struct {
		name string
		dim  int
	}{
		{s.nodeCollection, textDim},
		{s.imageCollection, clipDim},
	}

	for _, c := range collections {
		exists, err := s.client.CollectionExists(ctx, c.name)
		if err != nil {
			return fmt.Errorf("failed to check collection %s: %w", c.name, err)
		}
		if exists {
			continue
		}

		err = s.client.CreateCollection(ctx, &qdrantclient.CreateCollection{
			CollectionName: c.name,
			VectorsConfig: qdrantclient.NewVectorsConfig(&qdrantclient.VectorParams{
				Size:     uint64(c.dim),
				Distance: qdrantclient.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection %s: %w", c.name, err)
		}

		if _, err := s.client.CreateFieldIndex(ctx, &qdrantclient.CreateFieldIndexCollection{
			CollectionName: c.name,
			FieldName:      "category",
			FieldType:      qdrantclient.FieldType_FieldTypeKeyword.Enum(),
		}); err != nil {
			return fmt.Errorf("failed to index category on %s: %w", c.name, err)
		}

		if c.name == s.nodeCollection {
			if _, err := s.client.CreateFieldIndex(ctx, &qdrantclient.CreateFieldIndexCollection{
				CollectionName: c.name,
				FieldName:      "combined_text",
				FieldType:      qdrantclient.FieldType_FieldTypeText.Enum(),
			}); err != nil {
				return fmt.Errorf("failed to index combined_text on %s: %w", c.name, err)
			}
		}

		s.log.WithField("collection", c.name).Info("Created qdrant collection")
	}

	return nil
}

// UpsertNodes writes nodes and their images, keyed deterministically so
// re-ingesting the same entries replaces rather than duplicates them.
func (s *Store) UpsertNodes(ctx context.Context, nodes []catalog.Node) error {
	nodePoints := make([]*qdrantclient.PointStruct, 0, len(nodes))
	imagePoints := make([]*qdrantclient.PointStruct, 0)

	for _, node := range nodes {
		nodePoints = append(nodePoints, &qdrantclient.PointStruct{
			Id:      qdrantclient.NewID(pointID("node:" + node.ID)),
			Vectors: qdrantclient.NewVectorsDense(node.Embedding),
			Payload: qdrantclient.NewValueMap(nodePayload(node)),
		})

		for _, img := range node.RelatedImages {
			if !img.HasEmbedding() {
				continue
			}
			imagePoints = append(imagePoints, &qdrantclient.PointStruct{
				Id:      qdrantclient.NewID(pointID("image:" + img.Path)),
				Vectors: qdrantclient.NewVectorsDense(img.ClipEmbedding),
				Payload: qdrantclient.NewValueMap(imagePayload(node, img)),
			})
		}
	}

	if len(nodePoints) > 0 {
		if _, err := s.client.Upsert(ctx, &qdrantclient.UpsertPoints{
			CollectionName: s.nodeCollection,
			Points:         nodePoints,
			Wait:           qdrantclient.PtrOf(true),
		}); err != nil {
			return fmt.Errorf("failed to upsert nodes: %w", err)
		}
	}

	if len(imagePoints) > 0 {
		if _, err := s.client.Upsert(ctx, &qdrantclient.UpsertPoints{
			CollectionName: s.imageCollection,
			Points:         imagePoints,
			Wait:           qdrantclient.PtrOf(true),
		}); err != nil {
			return fmt.Errorf("failed to upsert images: %w", err)
		}
	}

	return nil
}

// TextSearch runs similarity search over node text embeddings.
func (s *Store) TextSearch(ctx context.Context, vector []float32, category catalog.Category, limit int) ([]catalog.Node, error) {
	points, err := s.client.Query(ctx, &qdrantclient.QueryPoints{
		CollectionName: s.nodeCollection,
		Query:          qdrantclient.NewQueryDense(vector),
		Filter:         categoryFilter(category),
		Limit:          qdrantclient.PtrOf(uint64(limit)),
		Params: &qdrantclient.SearchParams{
			HnswEf: qdrantclient.PtrOf(uint64(s.numCandidates)),
		},
		WithPayload: qdrantclient.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("text vector search failed: %w", err)
	}

	nodes := make([]catalog.Node, 0, len(points))
	for _, p := range points {
		nodes = append(nodes, nodeFromPayload(p.Payload))
	}
	return nodes, nil
}

// VisualSearch runs similarity search over per-image CLIP vectors. The raw
// stored vector is returned with each hit.
func (s *Store) VisualSearch(ctx context.Context, vector []float32, category catalog.Category, limit int) ([]catalog.ImageRef, error) {
	points, err := s.client.Query(ctx, &qdrantclient.QueryPoints{
		CollectionName: s.imageCollection,
		Query:          qdrantclient.NewQueryDense(vector),
		Filter:         categoryFilter(category),
		Limit:          qdrantclient.PtrOf(uint64(limit)),
		Params: &qdrantclient.SearchParams{
			HnswEf: qdrantclient.PtrOf(uint64(s.numCandidates)),
		},
		WithPayload: qdrantclient.NewWithPayload(true),
		WithVectors: qdrantclient.NewWithVectors(true),
	})
	if err != nil {
		return nil, fmt.Errorf("visual vector search failed: %w", err)
	}

	images := make([]catalog.ImageRef, 0, len(points))
	for _, p := range points {
		img := imageFromPayload(p.Payload)
		if v := p.GetVectors().GetVector(); v != nil {
			img.ClipEmbedding = v.GetData()
		}
		images = append(images, img)
	}
	return images, nil
}

// KeywordSearch matches any keyword against combined_text, ANDed with the
// category filter. This is the fallback for exact terms embedding search
// misses.
func (s *Store) KeywordSearch(ctx context.Context, keywords []string, category catalog.Category, limit int) ([]catalog.Node, error) {
	should := make([]*qdrantclient.Condition, 0, len(keywords))
	for _, kw := range keywords {
		should = append(should, qdrantclient.NewMatchText("combined_text", kw))
	}

	filter := &qdrantclient.Filter{Should: should}
	if category != catalog.CategoryNone {
		filter.Must = []*qdrantclient.Condition{
			qdrantclient.NewMatch("category", string(category)),
		}
	}

	points, err := s.scroll(ctx, s.nodeCollection, filter, limit)
	if err != nil {
		return nil, fmt.Errorf("keyword search failed: %w", err)
	}

	nodes := make([]catalog.Node, 0, len(points))
	for _, p := range points {
		nodes = append(nodes, nodeFromPayload(p.Payload))
	}
	return nodes, nil
}

// Sample fetches up to limit arbitrary nodes matching the category filter.
func (s *Store) Sample(ctx context.Context, category catalog.Category, limit int) ([]catalog.Node, error) {
	points, err := s.scroll(ctx, s.nodeCollection, categoryFilter(category), limit)
	if err != nil {
		return nil, fmt.Errorf("sample fetch failed: %w", err)
	}

	nodes := make([]catalog.Node, 0, len(points))
	for _, p := range points {
		nodes = append(nodes, nodeFromPayload(p.Payload))
	}
	return nodes, nil
}

func (s *Store) scroll(ctx context.Context, collection string, filter *qdrantclient.Filter, limit int) ([]*qdrantclient.RetrievedPoint, error) {
	return s.client.Scroll(ctx, &qdrantclient.ScrollPoints{
		CollectionName: collection,
		Filter:         filter,
		Limit:          qdrantclient.PtrOf(uint32(limit)),
		WithPayload:    qdrantclient.NewWithPayload(true),
	})
}

func categoryFilter(category catalog.Category) *qdrantclient.Filter {
	if category == catalog.CategoryNone {
		return nil
	}
	return &qdrantclient.Filter{
		Must: []*qdrantclient.Condition{
			qdrantclient.NewMatch("category", string(category)),
		},
	}
}

// pointID maps an application key to a stable UUID, since Qdrant point IDs
// must be integers or UUIDs.
func pointID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(key)).String()
}
